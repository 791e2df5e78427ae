package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile performs comprehensive validation on a PDF file
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	err := v.validatePDFFile(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	result.Valid = true
	return result, nil
}

// validatePDFFile checks the file and opens it as a PDF
func (v *Validator) validatePDFFile(filePath string) error {
	fileInfo, err := v.validateInput(filePath)
	if err != nil {
		return err
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return err
	}

	f, _, err := pdf.Open(filePath)
	if err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}
	defer f.Close()

	return nil
}

// validateInput checks that filePath is an existing regular file of acceptable size.
// Unlike validatePDFFile it accepts any file name, since the normalizer does.
func (v *Validator) validateInput(filePath string) (os.FileInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("file is empty: %s", filePath)
	}
	if fileInfo.Size() > v.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}
	return fileInfo, nil
}

// OutputCheck describes a written file as seen by an independent parser
type OutputCheck struct {
	Pages int
	// Producer is whatever the writer left in the Info dictionary. pdfcpu
	// stamps its own name on every save below PDF 2.0.
	Producer string
}

// VerifyOutput re-opens a written file with an independent parser
func (v *Validator) VerifyOutput(filePath string) (check *OutputCheck, err error) {
	// The reader panics on some malformed cross-reference data
	defer func() {
		if r := recover(); r != nil {
			check, err = nil, fmt.Errorf("output does not re-open as a PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("output does not re-open as a PDF: %w", err)
	}
	defer f.Close()

	return &OutputCheck{
		Pages:    r.NumPage(),
		Producer: r.Trailer().Key("Info").Key("Producer").Text(),
	}, nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	return v.validatePDFFile(filePath) == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}
