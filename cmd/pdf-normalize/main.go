package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/spf13/pflag"

	"github.com/a3tai/pdf-form-normalizer/internal/config"
	"github.com/a3tai/pdf-form-normalizer/internal/pdf"
	pdferrors "github.com/a3tai/pdf-form-normalizer/internal/pdf/errors"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes one normalization and returns the process exit code. Pipeline
// failures are reported on stderr but still exit 0; only a wrong number of
// positional arguments or bad flags exit non-zero.
func run(args []string, stdout, stderr io.Writer) int {
	programName := args[0]

	for _, arg := range args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion(stdout)
			return 0
		}
	}

	cfg, err := config.Load(programName, args[1:], stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		if !errors.Is(err, config.ErrInvalidFlags) {
			fmt.Fprintf(stderr, "%v\n", err)
		}
		return 1
	}

	if len(cfg.Args) != 2 {
		fmt.Fprintf(stderr, "Usage: %s <input file> <output file>\n", programName)
		return 1
	}

	logger := newLogger(cfg, stderr)

	service, err := pdf.NewService(pdf.ServiceOptions{
		MaxFileSize:          cfg.MaxFileSize,
		OutputDirectory:      cfg.OutputDirectory,
		ResourceDirectory:    cfg.ResourceDirectory,
		StripDocumentScripts: cfg.StripDocumentScripts,
		StripXMP:             cfg.StripXMP,
		Debug:                cfg.IsDebug(),
		Logger:               logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Exception: %v\n", err)
		return 0
	}

	if cfg.IsDebug() {
		for _, path := range service.MissingResources() {
			logger.Printf("Warning: appearance resource not found: %s", path)
		}
	}

	result, err := service.PDFNormalizeFile(pdf.PDFNormalizeFileRequest{
		Path:   cfg.Args[0],
		Output: cfg.Args[1],
	})
	if err != nil {
		reportError(stderr, err)
		return 0
	}

	if cfg.IsDebug() {
		logger.Printf("Wrote %s (%d bytes)", result.OutputPath, result.Size)
	}
	return 0
}

// newLogger returns the notice logger for the configured level
func newLogger(cfg *config.Config, stderr io.Writer) *log.Logger {
	if cfg.LogLevel == "error" {
		return log.New(io.Discard, "", 0)
	}
	return log.New(stderr, "", 0)
}

// reportError separates PDF library failures from everything else
func reportError(w io.Writer, err error) {
	if pdferrors.IsLibraryError(err) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Exception: %v\n", err)
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "PDF Form Normalizer\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
