package executor

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ooxml-tools/ooxml-validator/pkg/util"
)

// ProcessError is returned when the validator writes to stderr
type ProcessError struct {
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return e.Stderr
}

// DependencyEnsurer installs OS dependencies the runtime needs, best-effort
type DependencyEnsurer interface {
	EnsureDependencies(ctx context.Context, command string, args []string) error
}

// Invoker runs the OOXML validator assembly on a dotnet runtime
type Invoker struct {
	validatorPath string
	ensurer       DependencyEnsurer
}

// NewInvoker creates an Invoker for the validator at validatorPath.
// ensurer may be nil.
func NewInvoker(validatorPath string, ensurer DependencyEnsurer) *Invoker {
	return &Invoker{
		validatorPath: validatorPath,
		ensurer:       ensurer,
	}
}

// Invoke validates targetFile against the format version token and returns
// the captured output. Anything on stderr fails the run.
func (i *Invoker) Invoke(ctx context.Context, dotnetPath, targetFile, versionToken string) (*ExecutionResult, error) {
	log := util.GetLogger()
	log.Info("Executing OOXML validation", "file", targetFile, "version", versionToken)

	if i.ensurer != nil {
		if err := i.ensurer.EnsureDependencies(ctx, dotnetPath, []string{i.validatorPath}); err != nil {
			log.V(1).Info("Ensuring dependencies failed", "error", err.Error())
		}
	}

	args := i.buildArgs(targetFile, versionToken)

	result, err := ExecuteCommand(ctx, dotnetPath, args, "")
	if err != nil {
		return nil, fmt.Errorf("failed to run validator: %w", err)
	}

	LogResult(log, result)

	if stderr := bytes.TrimSpace(result.Stderr); len(stderr) > 0 {
		return result, &ProcessError{
			ExitCode: result.ExitCode,
			Stderr:   string(stderr),
		}
	}

	return result, nil
}

// buildArgs constructs the validator command arguments
func (i *Invoker) buildArgs(targetFile, versionToken string) []string {
	return []string{i.validatorPath, targetFile, versionToken}
}
