package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-form-normalizer/internal/pdf/normalize"
	"github.com/a3tai/pdf-form-normalizer/internal/pdf/pdftest"
)

// workspace lays out a working directory with resources, an input form and
// the normalized/ output directory.
func workspace(t *testing.T) (dir, input string) {
	t.Helper()
	dir = t.TempDir()
	for _, name := range normalize.DefaultResourceFiles {
		pdftest.WriteFiles(t, dir, name)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "normalized"), 0o750))

	input = filepath.Join(dir, "in.pdf")
	pdftest.Save(t, pdftest.NewForm(t).Doc, input)
	return dir, input
}

func TestRun_WrongArgumentCount(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", []string{"pdf-normalize"}},
		{"one argument", []string{"pdf-normalize", "in.pdf"}},
		{"three arguments", []string{"pdf-normalize", "a.pdf", "b.pdf", "c.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			assert.Equal(t, 1, code)
			assert.Equal(t, "Usage: pdf-normalize <input file> <output file>\n", stderr.String())
		})
	}
}

func TestRun_Success(t *testing.T) {
	dir, input := workspace(t)
	out := filepath.Join(dir, "normalized")

	var stdout, stderr bytes.Buffer
	code := run([]string{"pdf-normalize", "--resources=" + dir, "--outdir=" + out, input, "clean.pdf"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(out, "clean.pdf"))
	assert.Contains(t, stderr.String(), "Document OpenAction Removed")
	assert.Contains(t, stderr.String(), `the PDF writer set Producer to "pdfcpu`)
	assert.NotContains(t, stderr.String(), "Exception")
}

func TestRun_QuietAtErrorLevel(t *testing.T) {
	dir, input := workspace(t)
	out := filepath.Join(dir, "normalized")

	var stdout, stderr bytes.Buffer
	code := run([]string{"pdf-normalize", "--loglevel=error", "--resources=" + dir, "--outdir=" + out, input, "clean.pdf"},
		&stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr.String())
}

func TestRun_MissingResourceStillExitsZero(t *testing.T) {
	dir, input := workspace(t)
	out := filepath.Join(dir, "normalized")
	require.NoError(t, os.Remove(filepath.Join(dir, "checkBox_AP_off.txt")))

	var stdout, stderr bytes.Buffer
	code := run([]string{"pdf-normalize", "--resources=" + dir, "--outdir=" + out, input, "clean.pdf"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stderr.String(), "Exception: ")
	assert.Contains(t, stderr.String(), "checkBox_AP_off.txt")
	assert.NoFileExists(t, filepath.Join(out, "clean.pdf"))
}

func TestRun_LibraryErrorReportedAsError(t *testing.T) {
	dir, _ := workspace(t)
	out := filepath.Join(dir, "normalized")
	bogus := filepath.Join(dir, "bogus.pdf")
	require.NoError(t, os.WriteFile(bogus, []byte("no pdf here"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"pdf-normalize", "--resources=" + dir, "--outdir=" + out, bogus, "clean.pdf"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stderr.String(), "Error: "), stderr.String())
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"pdf-normalize", "--bogus", "a.pdf", "b.pdf"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, 1, strings.Count(stderr.String(), "unknown flag: --bogus"))
	assert.Contains(t, stderr.String(), "Usage: pdf-normalize")
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"pdf-normalize", "--help"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr.String(), "--strip-document-scripts")
}

func TestRun_Version(t *testing.T) {
	oldVersion := version
	version = "1.2.3"
	defer func() { version = oldVersion }()

	var stdout, stderr bytes.Buffer
	code := run([]string{"pdf-normalize", "--version"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "PDF Form Normalizer")
	assert.Contains(t, stdout.String(), "Version: 1.2.3")
}
