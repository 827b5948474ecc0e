package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveFormatVersion(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		versions  []FormatVersion
		wantLabel string
		wantToken string
	}{
		{
			name:      "known label",
			label:     "2016",
			versions:  DefaultFormatVersions(),
			wantLabel: "2016",
			wantToken: "Office2016",
		},
		{
			name:      "label is case insensitive",
			label:     "microsoft365",
			versions:  DefaultFormatVersions(),
			wantLabel: "Microsoft365",
			wantToken: "Microsoft365",
		},
		{
			name:      "empty label uses latest",
			label:     "",
			versions:  DefaultFormatVersions(),
			wantLabel: "Microsoft365",
			wantToken: "Microsoft365",
		},
		{
			name:      "unknown label uses latest",
			label:     "1997",
			versions:  DefaultFormatVersions(),
			wantLabel: "Microsoft365",
			wantToken: "Microsoft365",
		},
		{
			name:  "numeric tokens from older validators",
			label: "2010",
			versions: []FormatVersion{
				{Label: "2007", Token: "0"},
				{Label: "2010", Token: "1"},
				{Label: "2013", Token: "2"},
			},
			wantLabel: "2010",
			wantToken: "1",
		},
		{
			name:      "no versions configured",
			label:     "2019",
			versions:  nil,
			wantLabel: "",
			wantToken: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Settings{FileFormatVersion: tt.label, FormatVersions: tt.versions}
			got := s.ResolveFormatVersion()
			if got.Label != tt.wantLabel || got.Token != tt.wantToken {
				t.Errorf("ResolveFormatVersion() = %+v, want {%s %s}", got, tt.wantLabel, tt.wantToken)
			}
		})
	}
}

func TestGetValidatorPath(t *testing.T) {
	s := &Settings{ValidatorPath: "/opt/validator/OOXMLValidatorCLI.dll"}
	if got := s.GetValidatorPath(); got != "/opt/validator/OOXMLValidatorCLI.dll" {
		t.Errorf("GetValidatorPath() = %q", got)
	}

	s = &Settings{}
	if got := s.GetValidatorPath(); !strings.HasSuffix(got, filepath.Join("bin", ValidatorAssembly)) {
		t.Errorf("default GetValidatorPath() = %q, want suffix bin/%s", got, ValidatorAssembly)
	}
}

func TestGetReportPath(t *testing.T) {
	s := &Settings{}
	want := filepath.Join(os.TempDir(), "ooxml-validator", "doc.docx.html")
	if got := s.GetReportPath("/some/dir/doc.docx"); got != want {
		t.Errorf("GetReportPath() = %q, want %q", got, want)
	}

	s.ReportPath = "/reports/out.html"
	if got := s.GetReportPath("/some/dir/doc.docx"); got != "/reports/out.html" {
		t.Errorf("GetReportPath() = %q", got)
	}
}
