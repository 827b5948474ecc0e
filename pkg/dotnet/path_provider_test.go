package dotnet

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const listRuntimes6 = `Microsoft.AspNetCore.App 6.0.25 [/usr/share/dotnet/shared/Microsoft.AspNetCore.App]
Microsoft.NETCore.App 6.0.25 [/usr/share/dotnet/shared/Microsoft.NETCore.App]
`

const listRuntimes8 = `Microsoft.NETCore.App 8.0.4 [/home/dev/.dotnet/shared/Microsoft.NETCore.App]
`

func newTestProvider(fs afero.Fs, env map[string]string, outputs map[string]string) *PathProvider {
	return &PathProvider{
		fs: fs,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			if len(args) != 1 || args[0] != "--list-runtimes" {
				return nil, errors.New("unexpected args")
			}
			out, ok := outputs[name]
			if !ok {
				return nil, errors.New("exit status 1")
			}
			return []byte(out), nil
		},
		getenv:  func(key string) string { return env[key] },
		homeDir: func() (string, error) { return "/home/dev", nil },
		goos:    "linux",
	}
}

func touch(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte("#!"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHasRuntime(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		version string
		want    bool
	}{
		{name: "exact minor match", output: listRuntimes6, version: "6.0", want: true},
		{name: "full version match", output: listRuntimes6, version: "6.0.25", want: true},
		{name: "other major", output: listRuntimes8, version: "6.0", want: false},
		{name: "prefix must end at a dot", output: "Microsoft.NETCore.App 6.01.0 [x]", version: "6.0", want: false},
		{name: "aspnet only does not count", output: "Microsoft.AspNetCore.App 6.0.25 [x]", version: "6.0", want: false},
		{name: "empty output", output: "", version: "6.0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasRuntime([]byte(tt.output), tt.version); got != tt.want {
				t.Errorf("HasRuntime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPathProvider_Candidates(t *testing.T) {
	p := newTestProvider(afero.NewMemMapFs(), map[string]string{
		"DOTNET_ROOT": "/opt/dotnet",
		"PATH":        strings.Join([]string{"/usr/bin", "", "/opt/dotnet"}, string(filepath.ListSeparator)),
	}, nil)

	got := p.Candidates()
	want := []string{
		"/opt/dotnet/dotnet",
		"/usr/bin/dotnet",
		"/home/dev/.dotnet/dotnet",
		"/usr/share/dotnet/dotnet",
		"/usr/lib/dotnet/dotnet",
		"/usr/local/share/dotnet/dotnet",
	}

	if len(got) != len(want) {
		t.Fatalf("Candidates() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Candidates()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPathProvider_Acquire(t *testing.T) {
	fs := afero.NewMemMapFs()
	touch(t, fs, "/home/dev/.dotnet/dotnet")
	touch(t, fs, "/usr/share/dotnet/dotnet")

	p := newTestProvider(fs, map[string]string{}, map[string]string{
		"/home/dev/.dotnet/dotnet": listRuntimes8,
		"/usr/share/dotnet/dotnet": listRuntimes6,
	})

	path, err := p.Acquire(context.Background(), AcquireRequest{Version: "6.0", RequestingExtensionID: RequesterID})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if path != "/usr/share/dotnet/dotnet" {
		t.Errorf("Acquire() = %q, want /usr/share/dotnet/dotnet", path)
	}

	path, err = p.Acquire(context.Background(), AcquireRequest{Version: "8.0"})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if path != "/home/dev/.dotnet/dotnet" {
		t.Errorf("Acquire() = %q, want /home/dev/.dotnet/dotnet", path)
	}
}

func TestPathProvider_AcquireNotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := newTestProvider(fs, map[string]string{}, nil)

	if _, err := p.Acquire(context.Background(), AcquireRequest{Version: "6.0"}); err == nil {
		t.Error("expected error when no dotnet exists")
	}

	touch(t, fs, "/usr/lib/dotnet/dotnet")
	p = newTestProvider(fs, map[string]string{}, map[string]string{"/usr/lib/dotnet/dotnet": listRuntimes8})

	_, err := p.Acquire(context.Background(), AcquireRequest{Version: "6.0"})
	if err == nil || !strings.Contains(err.Error(), "/usr/lib/dotnet/dotnet") {
		t.Errorf("expected error naming the searched path, got %v", err)
	}
}

func TestPathProvider_EnsureDependencies(t *testing.T) {
	fs := afero.NewMemMapFs()
	touch(t, fs, "/opt/validator/OOXMLValidatorCLI.dll")
	touch(t, fs, "/opt/validator/OOXMLValidatorCLI")

	p := newTestProvider(fs, nil, nil)
	err := p.EnsureDependencies(context.Background(), "/usr/bin/dotnet", []string{"/opt/validator/OOXMLValidatorCLI.dll", "/missing/file"})
	if err != nil {
		t.Fatalf("EnsureDependencies() error = %v", err)
	}

	for _, path := range []string{"/opt/validator/OOXMLValidatorCLI.dll", "/opt/validator/OOXMLValidatorCLI"} {
		info, err := fs.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode()&0o111 == 0 {
			t.Errorf("%s is not executable: %v", path, info.Mode())
		}
	}
}

func TestPathProvider_EnsureDependenciesWindows(t *testing.T) {
	fs := afero.NewMemMapFs()
	touch(t, fs, "/opt/validator/OOXMLValidatorCLI.dll")

	p := newTestProvider(fs, nil, nil)
	p.goos = "windows"
	if err := p.EnsureDependencies(context.Background(), "dotnet.exe", []string{"/opt/validator/OOXMLValidatorCLI.dll"}); err != nil {
		t.Fatalf("EnsureDependencies() error = %v", err)
	}

	info, _ := fs.Stat("/opt/validator/OOXMLValidatorCLI.dll")
	if info.Mode()&0o111 != 0 {
		t.Error("expected windows to leave file modes alone")
	}
}
