package errors

import (
	"errors"
	"fmt"
)

// PDFError represents a normalization failure with enough context to report it
type PDFError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Context    string    `json:"context,omitempty"`
	ObjectNum  int       `json:"object_num,omitempty"`
	FieldIndex int       `json:"field_index,omitempty"`
	FilePath   string    `json:"file_path,omitempty"`
	Err        error     `json:"-"`
}

// ErrorType represents the categories of failures the pipeline can surface
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidInput
	ErrorTypeLibrary
	ErrorTypeMalformedForm
	ErrorTypeResourceIO
	ErrorTypeMissingObject
	ErrorTypeInvalidMetadata
	ErrorTypeDownload
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause
func (e *PDFError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidInput:
		return "INVALID_INPUT"
	case ErrorTypeLibrary:
		return "PDF_LIBRARY"
	case ErrorTypeMalformedForm:
		return "MALFORMED_FORM"
	case ErrorTypeResourceIO:
		return "RESOURCE_IO"
	case ErrorTypeMissingObject:
		return "MISSING_OBJECT"
	case ErrorTypeInvalidMetadata:
		return "INVALID_METADATA"
	case ErrorTypeDownload:
		return "DOWNLOAD"
	default:
		return "UNKNOWN"
	}
}

// GetSeverity returns the severity level for a given error type.
// Missing objects are skipped by the normalizer; everything else aborts the run.
func (et ErrorType) GetSeverity() ErrorSeverity {
	switch et {
	case ErrorTypeMissingObject:
		return SeverityWarning
	case ErrorTypeInvalidMetadata:
		return SeverityError
	case ErrorTypeInvalidInput, ErrorTypeLibrary, ErrorTypeMalformedForm, ErrorTypeResourceIO, ErrorTypeDownload:
		return SeverityFatal
	default:
		return SeverityError
	}
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
	}
}

// NewPDFErrorWithContext creates a new PDFError with additional context
func NewPDFErrorWithContext(errorType ErrorType, message, context string) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
		Context: context,
	}
}

// WrapError wraps a standard error as a PDFError
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithField records the top-level field index the error belongs to
func (e *PDFError) WithField(index int) *PDFError {
	e.FieldIndex = index
	return e
}

// WithObject records the object number the error belongs to
func (e *PDFError) WithObject(objNum int) *PDFError {
	e.ObjectNum = objNum
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// GetSeverity returns the severity of this specific error
func (e *PDFError) GetSeverity() ErrorSeverity {
	return e.Type.GetSeverity()
}

// IsFatal returns true if the error must abort the pipeline
func (e *PDFError) IsFatal() bool {
	return e.GetSeverity() == SeverityFatal
}

// IsType reports whether err is a PDFError of the given type anywhere in its chain
func IsType(err error, errorType ErrorType) bool {
	var pdfErr *PDFError
	if errors.As(err, &pdfErr) {
		return pdfErr.Type == errorType
	}
	return false
}

// IsLibraryError reports whether err originates in the PDF library
func IsLibraryError(err error) bool {
	return IsType(err, ErrorTypeLibrary)
}
