package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// tempPDF creates an empty file to stand in for an input document
func tempPDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	return path
}

func TestLoadFromArgs_DefaultConfig(t *testing.T) {
	cfg, err := LoadFromArgs([]string{"doc.pdf"})
	if err != nil {
		t.Fatalf("LoadFromArgs() unexpected error: %v", err)
	}

	if cfg.Filename != "doc.pdf" {
		t.Errorf("LoadFromArgs() Filename = %v, want %v", cfg.Filename, "doc.pdf")
	}
	if cfg.MetaOnly || cfg.Bitmap {
		t.Errorf("LoadFromArgs() MetaOnly = %v, Bitmap = %v, want false", cfg.MetaOnly, cfg.Bitmap)
	}
	if cfg.Pages.Specified() {
		t.Errorf("LoadFromArgs() Pages = %v, want unspecified", cfg.Pages)
	}
	if cfg.Encoding != "UTF-8" {
		t.Errorf("LoadFromArgs() Encoding = %v, want %v", cfg.Encoding, "UTF-8")
	}
	if cfg.Validation != "relaxed" {
		t.Errorf("LoadFromArgs() Validation = %v, want %v", cfg.Validation, "relaxed")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromArgs() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
}

func TestLoadFromArgs_ValidFlags(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantMetaOnly bool
		wantBitmap   bool
		wantPages    PageRange
		wantLogLevel string
	}{
		{
			name:         "meta only",
			args:         []string{"--meta-only", "doc.pdf"},
			wantMetaOnly: true,
			wantLogLevel: "info",
		},
		{
			name:         "single dash spelling",
			args:         []string{"-meta-only", "-bitmap", "doc.pdf"},
			wantMetaOnly: true,
			wantBitmap:   true,
			wantLogLevel: "info",
		},
		{
			name:         "filename first",
			args:         []string{"doc.pdf", "--pages=2-5", "--bitmap"},
			wantBitmap:   true,
			wantPages:    PageRange{Start: 2, End: 5},
			wantLogLevel: "info",
		},
		{
			name:         "single dash pages",
			args:         []string{"-pages=1-1", "doc.pdf"},
			wantPages:    PageRange{Start: 1, End: 1},
			wantLogLevel: "info",
		},
		{
			name:         "debug logging",
			args:         []string{"--loglevel=debug", "doc.pdf"},
			wantLogLevel: "debug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromArgs(tt.args)
			if err != nil {
				t.Fatalf("LoadFromArgs() unexpected error: %v", err)
			}

			if cfg.Filename != "doc.pdf" {
				t.Errorf("LoadFromArgs() Filename = %v, want %v", cfg.Filename, "doc.pdf")
			}
			if cfg.MetaOnly != tt.wantMetaOnly {
				t.Errorf("LoadFromArgs() MetaOnly = %v, want %v", cfg.MetaOnly, tt.wantMetaOnly)
			}
			if cfg.Bitmap != tt.wantBitmap {
				t.Errorf("LoadFromArgs() Bitmap = %v, want %v", cfg.Bitmap, tt.wantBitmap)
			}
			if cfg.Pages != tt.wantPages {
				t.Errorf("LoadFromArgs() Pages = %v, want %v", cfg.Pages, tt.wantPages)
			}
			if cfg.LogLevel != tt.wantLogLevel {
				t.Errorf("LoadFromArgs() LogLevel = %v, want %v", cfg.LogLevel, tt.wantLogLevel)
			}
		})
	}
}

func TestLoadFromArgs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no arguments",
			args:    nil,
			wantErr: "no input file specified",
		},
		{
			name:    "flags only",
			args:    []string{"--meta-only"},
			wantErr: "no input file specified",
		},
		{
			name:    "pages without value",
			args:    []string{"--pages", "1-2", "doc.pdf"},
			wantErr: "--pages must be specified as --pages=a-b",
		},
		{
			name:    "encoding without value",
			args:    []string{"--encoding", "ISO-8859-1", "doc.pdf"},
			wantErr: "--encoding must be specified as --encoding=NAME",
		},
		{
			name:    "log level without value",
			args:    []string{"-loglevel", "debug", "doc.pdf"},
			wantErr: "--loglevel must be specified as --loglevel=LEVEL",
		},
		{
			name:    "validation without value",
			args:    []string{"doc.pdf", "--validation"},
			wantErr: "--validation must be specified as --validation=MODE",
		},
		{
			name:    "reversed range",
			args:    []string{"--pages=5-3", "doc.pdf"},
			wantErr: "invalid format for pages: specify like 1-10",
		},
		{
			name:    "empty range",
			args:    []string{"--pages=", "doc.pdf"},
			wantErr: "invalid format for pages: specify like 1-10",
		},
		{
			name:    "unknown flag",
			args:    []string{"--frobnicate", "doc.pdf"},
			wantErr: "unknown parameter specified: frobnicate",
		},
		{
			name:    "second filename",
			args:    []string{"a.pdf", "b.pdf"},
			wantErr: "unknown parameter specified: b.pdf",
		},
		{
			name:    "invalid log level",
			args:    []string{"--loglevel=verbose", "doc.pdf"},
			wantErr: "invalid log level: verbose",
		},
		{
			name:    "invalid validation mode",
			args:    []string{"--validation=maybe", "doc.pdf"},
			wantErr: "invalid validation mode: maybe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromArgs(tt.args)
			if err == nil {
				t.Fatalf("LoadFromArgs() expected error, got config %v", cfg)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadFromArgs() error = %q, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromArgs_DashedFilename(t *testing.T) {
	path := tempPDF(t, "report.pdf")

	cfg, err := LoadFromArgs([]string{"--meta-only", "--" + path})
	if err != nil {
		t.Fatalf("LoadFromArgs() unexpected error: %v", err)
	}
	if cfg.Filename != path {
		t.Errorf("LoadFromArgs() Filename = %v, want %v", cfg.Filename, path)
	}
	if !cfg.MetaOnly {
		t.Error("LoadFromArgs() MetaOnly should be true")
	}

	// A file that exists is still an unknown parameter once a filename is set
	_, err = LoadFromArgs([]string{"doc.pdf", "--" + path})
	if err == nil || !strings.Contains(err.Error(), "unknown parameter specified") {
		t.Errorf("LoadFromArgs() error = %v, want unknown parameter", err)
	}
}

func TestLoadFromArgs_StdinName(t *testing.T) {
	cfg, err := LoadFromArgs([]string{"-"})
	if err != nil {
		t.Fatalf("LoadFromArgs() unexpected error: %v", err)
	}
	if cfg.Filename != "-" {
		t.Errorf("LoadFromArgs() Filename = %v, want %v", cfg.Filename, "-")
	}
}

func TestLoadFromArgs_EnvironmentVariables(t *testing.T) {
	t.Setenv("P2M_META_ONLY", "true")
	t.Setenv("P2M_BITMAP", "true")
	t.Setenv("P2M_PAGES", "2-4")
	t.Setenv("P2M_ENCODING", "ISO-8859-1")
	t.Setenv("P2M_VALIDATION", "off")
	t.Setenv("P2M_LOGLEVEL", "warn")

	cfg, err := LoadFromArgs([]string{"doc.pdf"})
	if err != nil {
		t.Fatalf("LoadFromArgs() unexpected error: %v", err)
	}

	if !cfg.MetaOnly {
		t.Error("LoadFromArgs() MetaOnly should be true")
	}
	if !cfg.Bitmap {
		t.Error("LoadFromArgs() Bitmap should be true")
	}
	if want := (PageRange{Start: 2, End: 4}); cfg.Pages != want {
		t.Errorf("LoadFromArgs() Pages = %v, want %v", cfg.Pages, want)
	}
	if cfg.Encoding != "ISO-8859-1" {
		t.Errorf("LoadFromArgs() Encoding = %v, want %v", cfg.Encoding, "ISO-8859-1")
	}
	if cfg.Validation != "off" {
		t.Errorf("LoadFromArgs() Validation = %v, want %v", cfg.Validation, "off")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromArgs() LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
}

func TestLoadFromArgs_FlagOverridesEnvironment(t *testing.T) {
	t.Setenv("P2M_LOGLEVEL", "warn")
	t.Setenv("P2M_PAGES", "2-4")

	cfg, err := LoadFromArgs([]string{"--loglevel=error", "--pages=1-1", "doc.pdf"})
	if err != nil {
		t.Fatalf("LoadFromArgs() unexpected error: %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("LoadFromArgs() LogLevel = %v, want %v", cfg.LogLevel, "error")
	}
	if want := (PageRange{Start: 1, End: 1}); cfg.Pages != want {
		t.Errorf("LoadFromArgs() Pages = %v, want %v", cfg.Pages, want)
	}
}

func TestLoadFromArgs_InvalidEnvironmentRange(t *testing.T) {
	t.Setenv("P2M_PAGES", "9-1")

	_, err := LoadFromArgs([]string{"doc.pdf"})
	if err == nil || !strings.Contains(err.Error(), "invalid format for pages") {
		t.Errorf("LoadFromArgs() error = %v, want invalid range", err)
	}
}

func TestLoadFromArgs_VersionFlag(t *testing.T) {
	for _, arg := range []string{"--version", "-version"} {
		t.Run(arg, func(t *testing.T) {
			_, err := LoadFromArgs([]string{arg})
			if !errors.Is(err, ErrVersionRequested) {
				t.Errorf("LoadFromArgs() error = %v, want %v", err, ErrVersionRequested)
			}
		})
	}
}
