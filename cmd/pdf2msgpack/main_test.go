package main

import (
	"bytes"
	stderrors "errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/pdf2msgpack/internal/pdf/errors"
	"github.com/a3tai/pdf2msgpack/internal/pdf/pdftest"
	"github.com/a3tai/pdf2msgpack/pkg/p2m"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVersion = "1.2.3"

func noSandbox() error { return nil }

func runTool(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
		log.SetPrefix("")
	})

	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut, noSandbox)
	return code, out.String(), errOut.String()
}

func sampleFile(t *testing.T) string {
	t.Helper()
	return pdftest.Document{
		MediaBox: pdftest.Letter,
		Info:     map[string]string{"Author": "(Tester)"},
		Pages: []pdftest.Page{
			{Content: pdftest.HelloWorld},
			{Content: pdftest.Text("one two three")},
		},
	}.WriteFile(t)
}

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	version, buildTime, gitCommit = testVersion, "2023-12-01_10:30:00", "abc123"
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	var buf bytes.Buffer
	printVersion(&buf)
	output := buf.String()

	expectedStrings := []string{
		"pdf2msgpack",
		"Version: " + testVersion,
		"Build Time: 2023-12-01_10:30:00",
		"Git Commit: abc123",
		"Sandbox:",
		"Built with:",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
		}
	}
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runTool(t, "--version")
	assert.Equal(t, errors.ExitOK, code)
	assert.Contains(t, stdout, "Version: ")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{"no input", nil, "Error: no input file specified"},
		{"bad range", []string{"--pages=5-3", "x.pdf"}, "Error: invalid format for pages: specify like 1-10"},
		{"pages without value", []string{"--pages", "x.pdf"}, "Error: --pages must be specified as --pages=a-b"},
		{"unknown flag", []string{"--nope", "x.pdf"}, "Error: unknown parameter specified: nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runTool(t, tt.args...)
			assert.Equal(t, errors.ExitUsage, code)
			assert.Empty(t, stdout)
			assert.Equal(t, tt.message+"\nusage: pdf2msgpack [--meta-only] [--pages=a-b] [--bitmap] <filename>\n", stderr)
		})
	}
}

func TestRun_MissingFile(t *testing.T) {
	code, stdout, stderr := runTool(t, filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Equal(t, errors.ExitOpenFile, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "failed to open")
}

func TestRun_InvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf\n"), 0o600))

	code, stdout, _ := runTool(t, "--validation=off", path)
	assert.Equal(t, errors.ExitInvalidDocument, code)
	assert.Empty(t, stdout)
}

func TestRun_SandboxFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{sampleFile(t)}, &out, &errOut, func() error { return stderrors.New("denied") })
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags)
	log.SetPrefix("")

	assert.Equal(t, errors.ExitSandbox, code)
	assert.Zero(t, out.Len())
	assert.Contains(t, errOut.String(), "denied")
}

func TestRun_RangeBeyondDocument(t *testing.T) {
	code, stdout, stderr := runTool(t, "--validation=off", "--pages=1-3", sampleFile(t))
	assert.Equal(t, errors.ExitUsage, code)
	assert.Empty(t, stdout, "no page output")
	assert.True(t, strings.HasPrefix(stderr, "Error: specified page range (1 - 3) exceeds document length (2)\n"), stderr)
}

func TestRun_MetaOnly(t *testing.T) {
	code, stdout, _ := runTool(t, "-meta-only", "--validation=off", sampleFile(t))
	require.Equal(t, errors.ExitOK, code)

	r, err := p2m.NewReader(strings.NewReader(stdout))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Version)
	assert.Equal(t, 2, r.Meta.Pages)
	assert.Equal(t, map[string]string{"Author": "Tester"}, r.Meta.Info)

	var page p2m.Page
	assert.ErrorIs(t, r.Next(&page), io.EOF)
}

func TestRun_RoundTrip(t *testing.T) {
	code, stdout, _ := runTool(t, "--validation=off", sampleFile(t), "--bitmap")
	require.Equal(t, errors.ExitOK, code)

	r, err := p2m.NewReader(strings.NewReader(stdout))
	require.NoError(t, err)
	assert.Equal(t, 2, r.Meta.Pages)

	var pages []p2m.Page
	for {
		var page p2m.Page
		err := r.Next(&page)
		if stderrors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		pages = append(pages, page)
	}
	require.Len(t, pages, 2)

	assert.Equal(t, [2]float64{612, 792}, pages[0].Size)
	assert.Equal(t, "Hello World", pages[0].Text())
	assert.True(t, pages[0].HasBitmap)

	// three words, two synthesized spaces
	assert.Equal(t, "one two three", pages[1].Text())
	assert.Len(t, pages[1].Glyphs, 13)
}
