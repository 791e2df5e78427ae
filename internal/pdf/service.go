package pdf

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/a3tai/pdf-form-normalizer/internal/pdf/document"
	pdferrors "github.com/a3tai/pdf-form-normalizer/internal/pdf/errors"
	"github.com/a3tai/pdf-form-normalizer/internal/pdf/normalize"
	"github.com/a3tai/pdf-form-normalizer/internal/pdf/sanitize"
	"github.com/a3tai/pdf-form-normalizer/internal/pdf/security"
)

// ServiceOptions configures a Service
type ServiceOptions struct {
	MaxFileSize          int64
	OutputDirectory      string
	ResourceDirectory    string
	InputDirectory       string // when set, inputs must live under it
	DownloadDirectory    string // defaults to InputDirectory; URL input is off when both are empty
	HTTPClient           *http.Client
	StripDocumentScripts bool
	StripXMP             bool
	Debug                bool
	Logger               *log.Logger
}

// Service runs the normalization pipeline by orchestrating the PDF components
type Service struct {
	maxFileSize int64
	validator   *Validator
	outputs     *security.PathValidator
	inputs      *security.PathValidator
	resources   *normalize.ResourceTable
	normalizer  *normalize.Normalizer
	stripper    *sanitize.ActionStripper
	clearer     *sanitize.MetadataClearer
	downloader  *Downloader
	logger      *log.Logger
}

// NewService creates a new PDF service with all components
func NewService(opts ServiceOptions) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	outputs, err := security.NewPathValidator(opts.OutputDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create output path validator: %w", err)
	}

	var inputs *security.PathValidator
	if opts.InputDirectory != "" {
		inputs, err = security.NewPathValidator(opts.InputDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to create input path validator: %w", err)
		}
	}

	resources := normalize.NewResourceTable(opts.ResourceDirectory)

	var downloader *Downloader
	downloadDir := opts.DownloadDirectory
	if downloadDir == "" {
		downloadDir = opts.InputDirectory
	}
	if downloadDir != "" {
		downloader = NewDownloader(opts.HTTPClient, downloadDir, opts.MaxFileSize)
	}

	return &Service{
		maxFileSize: opts.MaxFileSize,
		validator:   NewValidator(opts.MaxFileSize),
		outputs:     outputs,
		inputs:      inputs,
		resources:   resources,
		normalizer:  normalize.NewNormalizer(resources, logger, opts.Debug),
		stripper:    sanitize.NewActionStripper(logger, opts.StripDocumentScripts),
		clearer:     sanitize.NewMetadataClearer(opts.StripXMP),
		downloader:  downloader,
		logger:      logger,
	}, nil
}

// PDFNormalizeFile loads req.Path, normalizes its form, strips actions, clears
// metadata and saves the result under the output directory. Nothing is written
// unless every step succeeds.
func (s *Service) PDFNormalizeFile(req PDFNormalizeFileRequest) (*PDFNormalizeFileResult, error) {
	if s.inputs != nil {
		if err := s.inputs.ValidatePath(req.Path); err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "security validation failed", err)
		}
	}

	if _, err := s.validator.validateInput(req.Path); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "invalid input", err).WithFile(req.Path)
	}

	outputPath, err := s.outputs.ResolveOutput(req.Output)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "invalid output", err)
	}

	doc, err := document.Load(req.Path)
	if err != nil {
		return nil, err
	}

	formReport, err := s.normalizer.Normalize(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize form: %w", err)
	}

	stripReport, err := s.stripper.Strip(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to strip actions: %w", err)
	}

	if err := s.clearer.Clear(doc, req.Path); err != nil {
		return nil, fmt.Errorf("failed to clear metadata: %w", err)
	}

	if err := doc.Save(outputPath); err != nil {
		return nil, err
	}

	result := &PDFNormalizeFileResult{
		Path:       req.Path,
		OutputPath: outputPath,
		Title:      sanitize.TitleFromPath(req.Path),
		Form:       formReport,
		Actions:    stripReport,
	}

	if info, err := os.Stat(outputPath); err == nil {
		result.Size = info.Size()
	}

	check, err := s.validator.VerifyOutput(outputPath)
	if err != nil {
		result.Message = err.Error()
		s.logger.Printf("Warning: %v", err)
	} else {
		result.Pages = check.Pages
		result.Producer = check.Producer
		result.Verified = true
		if check.Producer != "" {
			s.logger.Printf("Note: the PDF writer set Producer to %q", check.Producer)
		}
	}

	return result, nil
}

// PDFNormalizeURL downloads req.URL into the download directory and normalizes
// the local copy. The title of the result follows the downloaded file name.
func (s *Service) PDFNormalizeURL(ctx context.Context, req PDFNormalizeURLRequest) (*PDFNormalizeFileResult, error) {
	if s.downloader == nil {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidInput, "URL downloads are not configured")
	}

	path, err := s.downloader.Download(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("Downloaded %s to %s", req.URL, path)

	result, err := s.PDFNormalizeFile(PDFNormalizeFileRequest{Path: path, Output: req.Output})
	if err != nil {
		return nil, err
	}
	result.URL = req.URL
	return result, nil
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	if s.inputs != nil {
		if err := s.inputs.ValidatePath(req.Path); err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
	}
	return s.validator.ValidateFile(req)
}

// MissingResources lists appearance resource files that cannot be found
func (s *Service) MissingResources() []string {
	return s.resources.Missing()
}

// OutputDirectory returns the directory results are written to
func (s *Service) OutputDirectory() string {
	return s.outputs.GetConfiguredDirectory()
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}
