package dotnet

import (
	"context"
	"errors"
	"os/exec"
)

var (
	// ErrRuntimeNotFound means no usable .NET runtime could be located or acquired
	ErrRuntimeNotFound = errors.New("could not find a .NET runtime")

	// ErrAcquisitionFacilityMissing means there is no way to acquire a runtime at all
	ErrAcquisitionFacilityMissing = errors.New(".NET runtime acquisition facility is not available")
)

// FacilityMissingMessage is shown instead of the raw error when acquisition is unavailable
const FacilityMissingMessage = "OOXML Validator needs a .NET runtime to run. " +
	"Install the .NET runtime (https://dotnet.microsoft.com/download) or set \"dotnetPath\" " +
	"in your settings to the dotnet executable, then run the validation again."

// AcquireRequest asks a provider for a runtime
type AcquireRequest struct {
	// Version is the runtime version, e.g. "6.0"
	Version string

	// RequestingExtensionID identifies who is asking, for the provider's logs
	RequestingExtensionID string
}

// RuntimeProvider is the host facility that locates or installs a .NET runtime
type RuntimeProvider interface {
	// ShowAcquisitionLog surfaces the provider's diagnostics, fire-and-forget
	ShowAcquisitionLog()

	// Acquire returns the path to a dotnet executable for the requested version
	Acquire(ctx context.Context, req AcquireRequest) (string, error)

	// EnsureDependencies installs whatever the runtime needs to run command, best-effort
	EnsureDependencies(ctx context.Context, command string, args []string) error
}

// CommandRunner runs a command and returns its stdout
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// RunCommand is the CommandRunner backed by os/exec
func RunCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
