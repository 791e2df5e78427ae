package mcp

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/pdf-form-normalizer/internal/config"
	"github.com/a3tai/pdf-form-normalizer/internal/descriptions"
	"github.com/a3tai/pdf-form-normalizer/internal/pdf"
	"github.com/a3tai/pdf-form-normalizer/internal/pdf/normalize"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pdfNormalizeFileTool := mcp.NewTool(
		"pdf_normalize_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_normalize_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("File name of the result, relative to the output directory"),
		),
	)
	s.mcpServer.AddTool(pdfNormalizeFileTool, s.handlePDFNormalizeFile)

	pdfNormalizeURLTool := mcp.NewTool(
		"pdf_normalize_url",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_normalize_url")),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("HTTP or HTTPS URL of the PDF file"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("File name of the result, relative to the output directory"),
		),
	)
	s.mcpServer.AddTool(pdfNormalizeURLTool, s.handlePDFNormalizeURL)

	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)

	pdfServerInfoTool := mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
	)
	s.mcpServer.AddTool(pdfServerInfoTool, s.handlePDFServerInfo)
}

// Handler functions
func (s *Server) handlePDFNormalizeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFNormalizeFileRequest{Path: path, Output: output}
	result, err := s.pdfService.PDFNormalizeFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPDFNormalizeFileResult(result)), nil
}

func (s *Server) handlePDFNormalizeURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFNormalizeURLRequest{URL: rawURL, Output: output}
	result, err := s.pdfService.PDFNormalizeURL(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPDFNormalizeFileResult(result)), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFValidateFileRequest{Path: path}
	result, err := s.pdfService.PDFValidateFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable", result.Path)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}

// Formatting methods
func (s *Server) formatPDFNormalizeFileResult(result *pdf.PDFNormalizeFileResult) string {
	var b strings.Builder

	if result.URL != "" {
		fmt.Fprintf(&b, "Downloaded: %s\n", result.URL)
	}
	fmt.Fprintf(&b, "Normalized PDF: %s\n", result.Path)
	fmt.Fprintf(&b, "Output: %s\n", result.OutputPath)
	fmt.Fprintf(&b, "Title: %s\n", result.Title)
	fmt.Fprintf(&b, "Size: %d bytes\n", result.Size)
	if result.Verified {
		fmt.Fprintf(&b, "Pages: %d (output verified)\n", result.Pages)
		if result.Producer != "" {
			fmt.Fprintf(&b, "Producer: %s (written by the PDF library, not cleared)\n", result.Producer)
		}
	} else if result.Message != "" {
		fmt.Fprintf(&b, "Verification warning: %s\n", result.Message)
	}

	if form := result.Form; form != nil {
		if !form.AcroFormFound {
			b.WriteString("Form: none\n")
		} else {
			fmt.Fprintf(&b, "Form fields: %d\n", form.FieldCount)
			for _, line := range formatFieldCounts(form.Fields) {
				fmt.Fprintf(&b, "  %s\n", line)
			}
			fmt.Fprintf(&b, "Widgets normalized: %d\n", form.KidsNormalized)
			fmt.Fprintf(&b, "Appearance streams replaced: %d\n", form.StreamsReplaced)
			for _, skipped := range form.Skipped {
				fmt.Fprintf(&b, "Skipped %s\n", skipped)
			}
		}
	}

	if actions := result.Actions; actions != nil {
		fmt.Fprintf(&b, "OpenAction removed: %t\n", actions.OpenActionRemoved)
		fmt.Fprintf(&b, "Field actions removed: %d\n", actions.FieldActionsRemoved)
		if actions.DocumentActionRemoved || actions.JavaScriptRemoved {
			fmt.Fprintf(&b, "Document scripts removed: %t\n", true)
		}
	}

	return b.String()
}

func (s *Server) formatServerInfo() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	fmt.Fprintf(&b, "PDF directory: %s\n", s.config.PDFDirectory)
	fmt.Fprintf(&b, "Output directory: %s\n", s.pdfService.OutputDirectory())
	fmt.Fprintf(&b, "Max file size: %d bytes\n", s.pdfService.GetMaxFileSize())

	b.WriteString("\nTools:\n")
	for _, name := range descriptions.GetAllToolNames() {
		fmt.Fprintf(&b, "  %s\n", name)
	}

	if missing := s.pdfService.MissingResources(); len(missing) > 0 {
		b.WriteString("\nMissing appearance resources:\n")
		for _, path := range missing {
			fmt.Fprintf(&b, "  %s\n", path)
		}
	}

	return b.String()
}

func formatFieldCounts(counts map[normalize.FieldKind]int) []string {
	lines := make([]string, 0, len(counts))
	for kind, count := range counts {
		lines = append(lines, fmt.Sprintf("%s: %d", kind, count))
	}
	sort.Strings(lines)
	return lines
}

// Run serves MCP over stdio until the client disconnects
func (s *Server) Run(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF normalizer MCP server in stdio mode")
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
