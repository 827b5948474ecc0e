package dotnet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

type fakeProvider struct {
	path        string
	err         error
	logShown    bool
	acquireReqs []AcquireRequest
}

func (f *fakeProvider) ShowAcquisitionLog() { f.logShown = true }

func (f *fakeProvider) Acquire(ctx context.Context, req AcquireRequest) (string, error) {
	f.acquireReqs = append(f.acquireReqs, req)
	return f.path, f.err
}

func (f *fakeProvider) EnsureDependencies(ctx context.Context, command string, args []string) error {
	return nil
}

type recordedWarning struct {
	message string
	detail  string
	modal   bool
}

type fakeWarner struct {
	warnings []recordedWarning
}

func (f *fakeWarner) Warning(message, detail string, modal bool) {
	f.warnings = append(f.warnings, recordedWarning{message, detail, modal})
}

// infoRunner answers `--info` with output for the given paths only
func infoRunner(outputs map[string]string) CommandRunner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		out, ok := outputs[name]
		if !ok {
			return nil, fmt.Errorf("exec: %q: executable file not found", name)
		}
		return []byte(out), nil
	}
}

// samePath skips the PATH lookup so fixtures can use paths that don't exist
func samePath(path string) (string, error) { return path, nil }

const dotnetInfo = `.NET SDK:
 Version:   6.0.420

Runtime Environment:
 OS Name:     ubuntu
`

func TestLocatorResolve(t *testing.T) {
	tests := []struct {
		name         string
		configured   string
		outputs      map[string]string
		provider     *fakeProvider
		noProvider   bool
		wantPath     string
		wantErr      error
		wantWarnings int
		wantAcquire  bool
	}{
		{
			name:       "valid configured path is used",
			configured: "/opt/dotnet/dotnet",
			outputs:    map[string]string{"/opt/dotnet/dotnet": dotnetInfo},
			provider:   &fakeProvider{path: "/acquired/dotnet"},
			wantPath:   "/opt/dotnet/dotnet",
		},
		{
			name:         "configured path that is not dotnet falls back to acquisition",
			configured:   "/usr/bin/python3",
			outputs:      map[string]string{"/usr/bin/python3": "Python 3.12.1"},
			provider:     &fakeProvider{path: "/acquired/dotnet"},
			wantPath:     "/acquired/dotnet",
			wantWarnings: 1,
			wantAcquire:  true,
		},
		{
			name:         "configured path that cannot run falls back",
			configured:   "/missing/dotnet",
			outputs:      map[string]string{},
			provider:     &fakeProvider{path: "/acquired/dotnet"},
			wantPath:     "/acquired/dotnet",
			wantWarnings: 1,
			wantAcquire:  true,
		},
		{
			name:        "no configured path acquires",
			provider:    &fakeProvider{path: "/acquired/dotnet"},
			wantPath:    "/acquired/dotnet",
			wantAcquire: true,
		},
		{
			name:        "acquisition returns empty path",
			provider:    &fakeProvider{path: ""},
			wantErr:     ErrRuntimeNotFound,
			wantAcquire: true,
		},
		{
			name:        "acquisition fails",
			provider:    &fakeProvider{err: errors.New("download failed")},
			wantErr:     ErrRuntimeNotFound,
			wantAcquire: true,
		},
		{
			name:        "provider reports facility missing",
			provider:    &fakeProvider{err: fmt.Errorf("command not found: %w", ErrAcquisitionFacilityMissing)},
			wantErr:     ErrAcquisitionFacilityMissing,
			wantAcquire: true,
		},
		{
			name:       "no provider at all",
			noProvider: true,
			wantErr:    ErrAcquisitionFacilityMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warner := &fakeWarner{}
			var provider RuntimeProvider
			if !tt.noProvider {
				provider = tt.provider
			}

			locator := NewLocator(provider, warner, "6.0").WithRunner(infoRunner(tt.outputs)).WithLookPath(samePath)
			path, err := locator.Resolve(context.Background(), tt.configured)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				if path != "" {
					t.Errorf("expected empty path on error, got %q", path)
				}
			} else if err != nil {
				t.Fatalf("Resolve() unexpected error = %v", err)
			}

			if tt.wantPath != "" {
				want, _ := filepath.Abs(tt.wantPath)
				if path != want {
					t.Errorf("Resolve() = %q, want %q", path, want)
				}
			}

			if len(warner.warnings) != tt.wantWarnings {
				t.Errorf("expected %d warnings, got %d", tt.wantWarnings, len(warner.warnings))
			}

			if tt.provider != nil && !tt.noProvider {
				if tt.wantAcquire != (len(tt.provider.acquireReqs) == 1) {
					t.Errorf("Acquire called %d times, wantAcquire=%v", len(tt.provider.acquireReqs), tt.wantAcquire)
				}
				if tt.wantAcquire && !tt.provider.logShown {
					t.Error("expected acquisition log to be shown")
				}
				for _, req := range tt.provider.acquireReqs {
					if req.Version != "6.0" || req.RequestingExtensionID != RequesterID {
						t.Errorf("unexpected acquire request: %+v", req)
					}
				}
			}
		})
	}
}

func TestLocatorResolve_WarningNamesPath(t *testing.T) {
	warner := &fakeWarner{}
	locator := NewLocator(&fakeProvider{path: "/acquired/dotnet"}, warner, "6.0").
		WithRunner(infoRunner(map[string]string{"/bin/echo": "hello"})).
		WithLookPath(samePath)

	if _, err := locator.Resolve(context.Background(), "/bin/echo"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(warner.warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(warner.warnings))
	}
	w := warner.warnings[0]
	if w.message != "/bin/echo is not a valid .NET runtime path" {
		t.Errorf("unexpected warning message: %q", w.message)
	}
	if w.modal {
		t.Error("rejected path warning should not be modal")
	}
}

func TestLocatorResolve_NilWarner(t *testing.T) {
	locator := NewLocator(&fakeProvider{path: "/acquired/dotnet"}, nil, "6.0").
		WithRunner(infoRunner(nil))

	if _, err := locator.Resolve(context.Background(), "/not/dotnet"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
}

func TestLocatorResolve_BareNameOnPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable lookup relies on the exec bit")
	}
	dir := t.TempDir()
	runtimePath := filepath.Join(dir, "fakedotnet")
	if err := os.WriteFile(runtimePath, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("failed to write runtime stub: %v", err)
	}
	t.Setenv("PATH", dir)
	// Run from a different directory so a working-directory join cannot match
	chdirForTest(t, t.TempDir())

	warner := &fakeWarner{}
	provider := &fakeProvider{path: "/acquired/dotnet"}
	locator := NewLocator(provider, warner, "6.0").
		WithRunner(infoRunner(map[string]string{runtimePath: dotnetInfo}))

	got, err := locator.Resolve(context.Background(), "fakedotnet")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != runtimePath {
		t.Errorf("Resolve() = %q, want %q", got, runtimePath)
	}
	if len(provider.acquireReqs) != 0 {
		t.Errorf("expected no acquisition, got %d requests", len(provider.acquireReqs))
	}
	if len(warner.warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warner.warnings)
	}
}

func TestLocatorResolve_BareNameNotOnPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	warner := &fakeWarner{}
	provider := &fakeProvider{path: "/acquired/dotnet"}
	locator := NewLocator(provider, warner, "6.0").WithRunner(infoRunner(nil))

	got, err := locator.Resolve(context.Background(), "nosuchdotnet")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "/acquired/dotnet" {
		t.Errorf("Resolve() = %q, want acquired runtime", got)
	}
	if len(warner.warnings) != 1 {
		t.Errorf("expected one warning, got %d", len(warner.warnings))
	}
}

// chdirForTest changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
