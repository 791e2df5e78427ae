package pdf

import (
	"github.com/a3tai/pdf-form-normalizer/internal/pdf/normalize"
	"github.com/a3tai/pdf-form-normalizer/internal/pdf/sanitize"
)

// Request Types

// PDFNormalizeFileRequest represents a request to sanitize and normalize a PDF file
type PDFNormalizeFileRequest struct {
	Path   string `json:"path"`
	Output string `json:"output"`
}

// PDFNormalizeURLRequest represents a request to download and normalize a remote PDF
type PDFNormalizeURLRequest struct {
	URL    string `json:"url"`
	Output string `json:"output"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// Response Types

// PDFNormalizeFileResult represents the result of a normalization run
type PDFNormalizeFileResult struct {
	Path       string                `json:"path"`
	URL        string                `json:"url,omitempty"`
	OutputPath string                `json:"output_path"`
	Title      string                `json:"title"`
	Size       int64                 `json:"size"`
	Pages      int                   `json:"pages"`
	Verified   bool                  `json:"verified"`
	Producer   string                `json:"producer,omitempty"` // set by the PDF writer, not the input
	Message    string                `json:"message,omitempty"`
	Form       *normalize.Report     `json:"form"`
	Actions    *sanitize.StripReport `json:"actions"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}
