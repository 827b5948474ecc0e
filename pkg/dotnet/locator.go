package dotnet

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ooxml-tools/ooxml-validator/pkg/util"
)

const (
	// RuntimeMarker is printed by `dotnet --info` on every supported platform
	RuntimeMarker = ".NET"

	// RequesterID identifies this tool to the acquisition facility
	RequesterID = "ooxml-tools.ooxml-validator"
)

// Warner receives a warning when a configured runtime path is rejected
type Warner interface {
	Warning(message, detail string, modal bool)
}

// Locator resolves the dotnet executable used to run the validator
type Locator struct {
	provider RuntimeProvider
	warner   Warner
	version  string
	run      CommandRunner
	lookPath func(string) (string, error)
}

// NewLocator creates a Locator. provider may be nil when no acquisition
// facility is available; warner may be nil to drop warnings.
func NewLocator(provider RuntimeProvider, warner Warner, version string) *Locator {
	return &Locator{
		provider: provider,
		warner:   warner,
		version:  version,
		run:      RunCommand,
		lookPath: exec.LookPath,
	}
}

// WithRunner replaces the command runner used to probe runtimes
func (l *Locator) WithRunner(run CommandRunner) *Locator {
	l.run = run
	return l
}

// WithLookPath replaces how a configured path is found on PATH
func (l *Locator) WithLookPath(lookPath func(string) (string, error)) *Locator {
	l.lookPath = lookPath
	return l
}

// Resolve returns an absolute path to a dotnet executable. A configured path
// is used only if it really is a .NET runtime, otherwise the provider is asked.
func (l *Locator) Resolve(ctx context.Context, configuredPath string) (string, error) {
	log := util.GetLogger()

	if configuredPath != "" {
		// A bare name like "dotnet" is looked up on PATH, not joined to the working directory
		resolved, err := l.lookPath(configuredPath)
		if err != nil {
			log.V(1).Info("Configured .NET runtime not found", "path", configuredPath, "error", err.Error())
		} else if l.IsDotNetRuntime(ctx, resolved) {
			abs, err := filepath.Abs(resolved)
			if err != nil {
				return "", fmt.Errorf("failed to get absolute runtime path: %w", err)
			}
			log.Info("Using configured .NET runtime", "path", abs)
			return abs, nil
		}

		message := fmt.Sprintf("%s is not a valid .NET runtime path", configuredPath)
		detail := fmt.Sprintf("Falling back to acquiring .NET %s", l.version)
		log.Info("Rejected configured .NET runtime", "path", configuredPath)
		if l.warner != nil {
			l.warner.Warning(message, detail, false)
		}
	}

	if l.provider == nil {
		return "", ErrAcquisitionFacilityMissing
	}

	l.provider.ShowAcquisitionLog()

	path, err := l.provider.Acquire(ctx, AcquireRequest{
		Version:               l.version,
		RequestingExtensionID: RequesterID,
	})
	if err != nil {
		if errors.Is(err, ErrAcquisitionFacilityMissing) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrRuntimeNotFound, err)
	}
	if path == "" {
		return "", ErrRuntimeNotFound
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute runtime path: %w", err)
	}

	log.Info("Acquired .NET runtime", "path", abs, "version", l.version)
	return abs, nil
}

// IsDotNetRuntime runs path --info and checks the output names .NET
func (l *Locator) IsDotNetRuntime(ctx context.Context, path string) bool {
	out, err := l.run(ctx, path, "--info")
	if err != nil {
		util.GetLogger().V(1).Info("Runtime probe failed", "path", path, "error", err.Error())
		return false
	}
	return strings.Contains(strings.TrimSpace(string(out)), RuntimeMarker)
}
