package dotnet

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ooxml-tools/ooxml-validator/pkg/util"
	"github.com/spf13/afero"
)

// SharedRuntimeName is the framework name listed by `dotnet --list-runtimes`
const SharedRuntimeName = "Microsoft.NETCore.App"

// PathProvider acquires a runtime by searching the machine for an installed
// dotnet that carries the requested shared runtime
type PathProvider struct {
	fs      afero.Fs
	run     CommandRunner
	getenv  func(string) string
	homeDir func() (string, error)
	goos    string
}

// NewPathProvider creates a provider backed by the real OS
func NewPathProvider() *PathProvider {
	return &PathProvider{
		fs:      afero.NewOsFs(),
		run:     RunCommand,
		getenv:  os.Getenv,
		homeDir: os.UserHomeDir,
		goos:    runtime.GOOS,
	}
}

// executableName returns the dotnet file name for the platform
func (p *PathProvider) executableName() string {
	if p.goos == "windows" {
		return "dotnet.exe"
	}
	return "dotnet"
}

// Candidates returns where dotnet is looked for, in order
func (p *PathProvider) Candidates() []string {
	exe := p.executableName()
	var candidates []string

	if root := p.getenv("DOTNET_ROOT"); root != "" {
		candidates = append(candidates, filepath.Join(root, exe))
	}

	for _, dir := range filepath.SplitList(p.getenv("PATH")) {
		if dir == "" {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, exe))
	}

	if home, err := p.homeDir(); err == nil && home != "" {
		candidates = append(candidates, filepath.Join(home, ".dotnet", exe))
	}

	switch p.goos {
	case "windows":
		candidates = append(candidates, filepath.Join(`C:\Program Files`, "dotnet", exe))
	case "darwin":
		candidates = append(candidates, filepath.Join("/usr/local/share/dotnet", exe))
	default:
		candidates = append(candidates,
			filepath.Join("/usr/share/dotnet", exe),
			filepath.Join("/usr/lib/dotnet", exe),
			filepath.Join("/usr/local/share/dotnet", exe),
		)
	}

	return dedupe(candidates)
}

// ShowAcquisitionLog logs where the provider looks for a runtime
func (p *PathProvider) ShowAcquisitionLog() {
	util.GetLogger().Info("Searching for .NET runtime", "candidates", p.Candidates())
}

// Acquire returns the first candidate with the requested runtime installed
func (p *PathProvider) Acquire(ctx context.Context, req AcquireRequest) (string, error) {
	log := util.GetLogger()
	log.V(1).Info("Acquiring .NET runtime", "version", req.Version, "requester", req.RequestingExtensionID)

	var searched []string
	for _, candidate := range p.Candidates() {
		info, err := p.fs.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		searched = append(searched, candidate)

		out, err := p.run(ctx, candidate, "--list-runtimes")
		if err != nil {
			log.V(1).Info("Failed to list runtimes", "path", candidate, "error", err.Error())
			continue
		}
		if HasRuntime(out, req.Version) {
			return candidate, nil
		}
		log.V(1).Info("Runtime version not installed", "path", candidate, "version", req.Version)
	}

	if len(searched) == 0 {
		return "", fmt.Errorf("no dotnet executable found")
	}
	return "", fmt.Errorf("no %s %s runtime found in %s", SharedRuntimeName, req.Version, strings.Join(searched, ", "))
}

// EnsureDependencies makes the validator files executable on unix systems.
// Missing files are skipped, and the caller treats failures as non-fatal.
func (p *PathProvider) EnsureDependencies(ctx context.Context, command string, args []string) error {
	if p.goos == "windows" {
		return nil
	}

	var errs []error
	for _, arg := range args {
		targets := []string{arg}
		// The validator ships a native apphost next to its assembly
		if strings.HasSuffix(arg, ".dll") {
			targets = append(targets, strings.TrimSuffix(arg, ".dll"))
		}

		for _, target := range targets {
			info, err := p.fs.Stat(target)
			if err != nil || info.IsDir() {
				continue
			}
			if info.Mode()&0o111 != 0 {
				continue
			}
			if err := p.fs.Chmod(target, info.Mode()|0o755); err != nil {
				errs = append(errs, fmt.Errorf("failed to make %s executable: %w", target, err))
			}
		}
	}

	return errors.Join(errs...)
}

// HasRuntime reports whether `dotnet --list-runtimes` output contains the
// shared runtime for version. "6.0" matches any 6.0.x release.
func HasRuntime(listRuntimesOutput []byte, version string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(listRuntimesOutput))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != SharedRuntimeName {
			continue
		}
		installed := fields[1]
		if installed == version || strings.HasPrefix(installed, version+".") {
			return true
		}
	}
	return false
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		result = append(result, p)
	}
	return result
}
