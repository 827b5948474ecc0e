package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/go-logr/logr"
	"github.com/ooxml-tools/ooxml-validator/pkg/util"
)

// ExecutionResult contains the results of executing a command
type ExecutionResult struct {
	// ExitCode from the process
	ExitCode int

	// Duration of execution
	Duration time.Duration

	// Stdout captured from execution
	Stdout []byte

	// Stderr captured from execution
	Stderr []byte
}

// ExecuteCommand runs a command to completion and captures its output.
// There is no timeout: the output is only useful once the process exits.
// A non-zero exit code is reported in the result, not as an error.
func ExecuteCommand(ctx context.Context, binary string, args []string, workDir string) (*ExecutionResult, error) {
	log := util.GetLogger()
	log.Info("Executing command", "binary", binary, "args", args, "workDir", workDir)

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Execute
	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	// Get exit code
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			// Command failed to start or was killed
			return nil, fmt.Errorf("failed to execute command: %w", err)
		}
	}

	result := &ExecutionResult{
		ExitCode: exitCode,
		Duration: duration,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}

	log.Info("Command completed", "exitCode", exitCode, "duration", duration)

	return result, nil
}

// LogResult logs the execution result details
func LogResult(log logr.Logger, result *ExecutionResult) {
	log.Info("Execution result",
		"exitCode", result.ExitCode,
		"duration", result.Duration,
		"stdoutBytes", len(result.Stdout),
		"stderrBytes", len(result.Stderr),
	)

	if len(result.Stdout) > 0 {
		log.V(1).Info("Stdout", "output", string(result.Stdout))
	}

	if len(result.Stderr) > 0 {
		log.V(1).Info("Stderr", "output", string(result.Stderr))
	}
}
