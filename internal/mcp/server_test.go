package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/pdf-form-normalizer/internal/config"
	"github.com/a3tai/pdf-form-normalizer/internal/pdf"
	"github.com/a3tai/pdf-form-normalizer/internal/pdf/normalize"
	"github.com/a3tai/pdf-form-normalizer/internal/pdf/pdftest"
)

type testServer struct {
	server    *Server
	pdfDir    string
	outputDir string
	resources string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		pdfDir:    t.TempDir(),
		outputDir: t.TempDir(),
		resources: t.TempDir(),
	}
	for _, name := range normalize.DefaultResourceFiles {
		pdftest.WriteFiles(t, ts.resources, name)
	}

	cfg := &config.Config{
		PDFDirectory:      ts.pdfDir,
		OutputDirectory:   ts.outputDir,
		ResourceDirectory: ts.resources,
		Version:           "1.0.0",
		ServerName:        "test-server",
		LogLevel:          "info",
		MaxFileSize:       1024 * 1024,
	}
	pdfService, err := pdf.NewService(pdf.ServiceOptions{
		MaxFileSize:       cfg.MaxFileSize,
		OutputDirectory:   cfg.OutputDirectory,
		ResourceDirectory: cfg.ResourceDirectory,
		InputDirectory:    cfg.PDFDirectory,
	})
	if err != nil {
		t.Fatalf("Failed to create PDF service: %v", err)
	}

	server, err := NewServer(cfg, pdfService)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	ts.server = server
	return ts
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	pdfService, err := pdf.NewService(pdf.ServiceOptions{MaxFileSize: 1024, OutputDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create PDF service: %v", err)
	}
	cfg := config.DefaultConfig()

	tests := []struct {
		name        string
		config      *config.Config
		service     *pdf.Service
		expectError bool
	}{
		{"valid", cfg, pdfService, false},
		{"nil config", nil, pdfService, true},
		{"nil service", cfg, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(tt.config, tt.service)
			if tt.expectError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if server.config != tt.config || server.pdfService != tt.service || server.mcpServer == nil {
				t.Error("server not initialized from its arguments")
			}
		})
	}
}

func TestServer_HandlePDFNormalizeFile(t *testing.T) {
	ts := newTestServer(t)
	input := filepath.Join(ts.pdfDir, "form.pdf")
	pdftest.Save(t, pdftest.NewForm(t).Doc, input)

	result, err := ts.server.handlePDFNormalizeFile(context.Background(),
		callRequest(map[string]interface{}{"path": input, "output": "clean.pdf"}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", extractTextFromResult(result))
	}

	text := extractTextFromResult(result)
	for _, want := range []string{
		"Normalized PDF: " + input,
		"Output: " + filepath.Join(ts.outputDir, "clean.pdf"),
		"Title: form.pdf",
		"Form fields: 3",
		"checkbox: 1",
		"radio: 1",
		"text: 1",
		"OpenAction removed: true",
		"(output verified)",
		"Producer: pdfcpu",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %q:\n%s", want, text)
		}
	}

	if _, err := os.Stat(filepath.Join(ts.outputDir, "clean.pdf")); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

func TestServer_HandlePDFNormalizeFile_Errors(t *testing.T) {
	ts := newTestServer(t)
	input := filepath.Join(ts.pdfDir, "form.pdf")
	pdftest.Save(t, pdftest.NewForm(t).Doc, input)

	if err := os.Remove(filepath.Join(ts.resources, "checkBox_AP_off.txt")); err != nil {
		t.Fatalf("failed to remove resource: %v", err)
	}

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing path", map[string]interface{}{"output": "x.pdf"}, "path"},
		{"missing output", map[string]interface{}{"path": input}, "output"},
		{"missing resource", map[string]interface{}{"path": input, "output": "x.pdf"}, "checkBox_AP_off.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ts.server.handlePDFNormalizeFile(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned protocol error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected a tool error result")
			}
			if text := extractTextFromResult(result); !strings.Contains(text, tt.want) {
				t.Errorf("error %q does not mention %q", text, tt.want)
			}
		})
	}

	entries, _ := os.ReadDir(ts.outputDir)
	if len(entries) != 0 {
		t.Errorf("expected no output files, found %d", len(entries))
	}
}

func TestServer_HandlePDFNormalizeURL(t *testing.T) {
	ts := newTestServer(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forms/w9.pdf" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(ts.pdfDir, "source.pdf"))
	}))
	defer srv.Close()
	pdftest.Save(t, pdftest.NewForm(t).Doc, filepath.Join(ts.pdfDir, "source.pdf"))

	result, err := ts.server.handlePDFNormalizeURL(context.Background(),
		callRequest(map[string]interface{}{"url": srv.URL + "/forms/w9.pdf", "output": "w9-clean.pdf"}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", extractTextFromResult(result))
	}

	text := extractTextFromResult(result)
	for _, want := range []string{
		"Downloaded: " + srv.URL + "/forms/w9.pdf",
		"Normalized PDF: " + filepath.Join(ts.pdfDir, "w9.pdf"),
		"Title: w9.pdf",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %q:\n%s", want, text)
		}
	}

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing url", map[string]interface{}{"output": "x.pdf"}, "url"},
		{"missing output", map[string]interface{}{"url": srv.URL + "/forms/w9.pdf"}, "output"},
		{"not found", map[string]interface{}{"url": srv.URL + "/other.pdf", "output": "x.pdf"}, "404"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ts.server.handlePDFNormalizeURL(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned protocol error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected a tool error result")
			}
			if text := extractTextFromResult(result); !strings.Contains(text, tt.want) {
				t.Errorf("error %q does not mention %q", text, tt.want)
			}
		})
	}
}

func TestServer_HandlePDFValidateFile(t *testing.T) {
	ts := newTestServer(t)

	fake := filepath.Join(ts.pdfDir, "test.pdf")
	if err := os.WriteFile(fake, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result, err := ts.server.handlePDFValidateFile(context.Background(), callRequest(map[string]interface{}{"path": fake}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if text := extractTextFromResult(result); !strings.Contains(text, "PDF validation failed") {
		t.Errorf("expected validation to fail, got: %s", text)
	}

	result, err = ts.server.handlePDFValidateFile(context.Background(), callRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected a tool error for a missing path")
	}
}

func TestServer_HandlePDFServerInfo(t *testing.T) {
	ts := newTestServer(t)
	if err := os.Remove(filepath.Join(ts.resources, "radioButton_AP_no.txt")); err != nil {
		t.Fatalf("failed to remove resource: %v", err)
	}

	result, err := ts.server.handlePDFServerInfo(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := extractTextFromResult(result)
	for _, want := range []string{
		"test-server v1.0.0",
		"PDF directory: " + ts.pdfDir,
		"Output directory: " + ts.outputDir,
		"pdf_normalize_file",
		"Missing appearance resources:",
		"radioButton_AP_no.txt",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("server info missing %q:\n%s", want, text)
		}
	}
}

func TestFormatPDFNormalizeFileResult(t *testing.T) {
	ts := newTestServer(t)

	formatted := ts.server.formatPDFNormalizeFileResult(&pdf.PDFNormalizeFileResult{
		Path:       "in.pdf",
		OutputPath: "normalized/out.pdf",
		Title:      "in.pdf",
		Size:       2048,
		Message:    "output does not re-open as a PDF",
		Form:       &normalize.Report{AcroFormFound: false, Fields: map[normalize.FieldKind]int{}},
	})

	for _, want := range []string{"Size: 2048 bytes", "Form: none", "Verification warning"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("formatted result missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatPDFNormalizeFileResult_ReportsWriterProducer(t *testing.T) {
	ts := newTestServer(t)

	formatted := ts.server.formatPDFNormalizeFileResult(&pdf.PDFNormalizeFileResult{
		Path:     "in.pdf",
		Verified: true,
		Pages:    2,
		Producer: "pdfcpu v0.11.0 dev",
	})

	for _, want := range []string{
		"Pages: 2 (output verified)",
		"Producer: pdfcpu v0.11.0 dev (written by the PDF library, not cleared)",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("formatted result missing %q:\n%s", want, formatted)
		}
	}
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
