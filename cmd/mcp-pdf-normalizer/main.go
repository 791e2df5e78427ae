package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/pdf-form-normalizer/internal/config"
	"github.com/a3tai/pdf-form-normalizer/internal/mcp"
	"github.com/a3tai/pdf-form-normalizer/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging keeps stdout free for the MCP protocol
func setupLogging(cfg *config.Config) {
	log.SetOutput(os.Stderr)
	if !cfg.IsDebug() {
		log.SetOutput(io.Discard)
	}
}

// newService builds the pipeline service the tools call into
func newService(cfg *config.Config) (*pdf.Service, error) {
	return pdf.NewService(pdf.ServiceOptions{
		MaxFileSize:          cfg.MaxFileSize,
		OutputDirectory:      cfg.OutputDirectory,
		ResourceDirectory:    cfg.ResourceDirectory,
		InputDirectory:       cfg.PDFDirectory,
		StripDocumentScripts: cfg.StripDocumentScripts,
		StripXMP:             cfg.StripXMP,
		Debug:                cfg.IsDebug(),
		Logger:               log.Default(),
	})
}

// runStdio serves until stdin closes or a signal arrives
func runStdio(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) error {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		cancel()
		return nil
	case err := <-serverErrCh:
		return err
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if err := cfg.EnsurePDFDirectory(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	pdfService, err := newService(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create PDF service: %v\n", err)
		os.Exit(1)
	}

	if cfg.IsDebug() {
		for _, path := range pdfService.MissingResources() {
			log.Printf("Warning: appearance resource not found: %s", path)
		}
	}

	server, err := mcp.NewServer(cfg, pdfService)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create MCP server: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runStdio(ctx, cancel, server); err != nil {
		log.Printf("Server error: %v", err)
		cancel()
		os.Exit(1) //nolint:gocritic // cancel already called
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP PDF Normalizer\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
