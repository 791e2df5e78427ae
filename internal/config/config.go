package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultLogLevel        = "info"
	DefaultMaxFileSize     = 100 * 1024 * 1024 // 100MB
	DefaultOutputDirectory = "normalized"
	DefaultServerName      = "mcp-pdf-normalizer"

	// EnvPrefix prefixes every environment variable the tools read
	EnvPrefix = "PDF_NORMALIZE"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// ErrInvalidFlags marks command line errors already reported on stderr
var ErrInvalidFlags = errors.New("invalid command line")

// Config holds all configuration for the normalizer tools
type Config struct {
	// Pipeline configuration
	OutputDirectory      string
	ResourceDirectory    string
	StripDocumentScripts bool
	StripXMP             bool
	MaxFileSize          int64 // Maximum PDF file size in bytes

	// MCP server configuration
	PDFDirectory string
	ServerName   string

	// Application configuration
	Version  string
	LogLevel string

	// Args holds the positional arguments left after flag parsing
	Args []string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		OutputDirectory:   DefaultOutputDirectory,
		ResourceDirectory: currentDir,
		MaxFileSize:       DefaultMaxFileSize,
		PDFDirectory:      currentDir,
		ServerName:        DefaultServerName,
		Version:           "1.0.0",
		LogLevel:          DefaultLogLevel,
	}
}

// LoadFromFlags parses os.Args and the environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[0], os.Args[1:], os.Stderr)
}

// Load parses args (without the program name) on top of the environment and
// defaults. Usage and flag errors are written to stderr.
func Load(programName string, args []string, stderr io.Writer) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	fs := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	bindFlagsToViper(v, fs)
	setupUsageMessage(fs, programName, stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return nil, fmt.Errorf("%w: %w", ErrInvalidFlags, err)
	}

	populateConfigFromViper(v, cfg)
	cfg.Args = fs.Args()

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("outdir", cfg.OutputDirectory)
	v.SetDefault("resources", cfg.ResourceDirectory)
	v.SetDefault("strip-document-scripts", cfg.StripDocumentScripts)
	v.SetDefault("strip-xmp", cfg.StripXMP)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("outdir", cfg.OutputDirectory, "Directory normalized files are written to (must exist)")
	fs.String("resources", cfg.ResourceDirectory, "Directory holding the replacement appearance stream files")
	fs.Bool("strip-document-scripts", cfg.StripDocumentScripts,
		"Also remove the catalog additional actions and document JavaScript")
	fs.Bool("strip-xmp", cfg.StripXMP, "Also remove the catalog XMP metadata stream")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	fs.String("dir", cfg.PDFDirectory, "Directory containing PDF files (MCP server only)")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	for _, name := range []string{
		"outdir", "resources", "strip-document-scripts", "strip-xmp", "maxfilesize", "dir", "loglevel",
	} {
		_ = v.BindPFlag(name, fs.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet, programName string, w io.Writer) {
	fs.Usage = func() {
		fmt.Fprintf(w, "Usage: %s [options] <input file> <output file>\n", programName)
		fmt.Fprintf(w, "\nPDF Form Normalizer - strips actions and metadata and resets AcroForm fields\n\n")
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nEnvironment Variables:\n")
		fmt.Fprintf(w, "  %s_OUTDIR                  Output directory\n", EnvPrefix)
		fmt.Fprintf(w, "  %s_RESOURCES               Appearance resource directory\n", EnvPrefix)
		fmt.Fprintf(w, "  %s_STRIP_DOCUMENT_SCRIPTS  Remove document-level scripts\n", EnvPrefix)
		fmt.Fprintf(w, "  %s_STRIP_XMP               Remove XMP metadata\n", EnvPrefix)
		fmt.Fprintf(w, "  %s_MAXFILESIZE             Maximum file size\n", EnvPrefix)
		fmt.Fprintf(w, "  %s_DIR                     PDF directory (MCP server)\n", EnvPrefix)
		fmt.Fprintf(w, "  %s_LOGLEVEL                Log level\n", EnvPrefix)
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.OutputDirectory = v.GetString("outdir")
	cfg.ResourceDirectory = v.GetString("resources")
	cfg.StripDocumentScripts = v.GetBool("strip-document-scripts")
	cfg.StripXMP = v.GetBool("strip-xmp")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.LogLevel = v.GetString("loglevel")
}

// Validate checks if the configuration is valid without touching the filesystem
func (c *Config) Validate() error {
	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// EnsurePDFDirectory checks the MCP server's PDF directory, creating it if needed
func (c *Config) EnsurePDFDirectory() error {
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}
	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{OutputDirectory: %s, ResourceDirectory: %s, PDFDirectory: %s, "+
		"StripDocumentScripts: %t, StripXMP: %t, LogLevel: %s, MaxFileSize: %d}",
		c.OutputDirectory, c.ResourceDirectory, c.PDFDirectory,
		c.StripDocumentScripts, c.StripXMP, c.LogLevel, c.MaxFileSize)
}
