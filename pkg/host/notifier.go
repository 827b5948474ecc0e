package host

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/ooxml-tools/ooxml-validator/pkg/util"
)

// Level of a notification
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Notification is one message shown to the user
type Notification struct {
	Level   Level  `json:"level" yaml:"level"`
	Message string `json:"message" yaml:"message"`
	Detail  string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Modal   bool   `json:"modal" yaml:"modal"`
}

// TerminalNotifier prints notifications as coloured lines and keeps a
// history so they can be included in the run output
type TerminalNotifier struct {
	out     io.Writer
	mu      sync.Mutex
	history []Notification
}

// NewTerminalNotifier creates a notifier writing to out, usually os.Stderr
func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: out}
}

// Error shows an error. Modal errors are the ones that stopped the run.
func (n *TerminalNotifier) Error(message string, modal bool) {
	util.GetLogger().Error(nil, "Validation error", "message", message, "modal", modal)
	n.record(Notification{Level: LevelError, Message: message, Modal: modal})

	if modal {
		color.New(color.FgRed, color.Bold).Fprintf(n.out, "✗ OOXML Validator: %s\n", message)
		return
	}
	color.New(color.FgRed).Fprintf(n.out, "✗ %s\n", message)
}

// Warning shows a warning with optional detail
func (n *TerminalNotifier) Warning(message, detail string, modal bool) {
	util.GetLogger().Info("Validation warning", "message", message, "detail", detail, "modal", modal)
	n.record(Notification{Level: LevelWarning, Message: message, Detail: detail, Modal: modal})

	c := color.New(color.FgYellow)
	if modal {
		c.Add(color.Bold)
	}
	c.Fprintf(n.out, "⚠ %s\n", message)
	if detail != "" {
		fmt.Fprintf(n.out, "  %s\n", detail)
	}
}

// History returns the notifications shown so far
func (n *TerminalNotifier) History() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.history...)
}

func (n *TerminalNotifier) record(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.history = append(n.history, note)
}
