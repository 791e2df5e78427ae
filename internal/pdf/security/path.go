package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator keeps file paths inside a configured directory
type PathValidator struct {
	configuredDirectory string
}

// NewPathValidator creates a new path validator for the given directory
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	return &PathValidator{
		configuredDirectory: configuredDirectory,
	}, nil
}

// GetConfiguredDirectory returns the configured directory path
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.configuredDirectory
}

// ValidatePath checks that an existing or prospective path is within the configured directory
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains a null byte")
	}

	isWithin, err := v.IsPathWithinDirectory(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !isWithin {
		return fmt.Errorf("path is outside configured directory: %s", path)
	}
	return nil
}

// IsPathWithinDirectory checks if a path is within the configured directory,
// following symlinks on both sides where they exist.
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	absDir, err := filepath.Abs(v.configuredDirectory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(absDir)

	realPath := cleanPath
	if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
		realPath = resolved
	}
	realDir := cleanDir
	if resolved, err := filepath.EvalSymlinks(cleanDir); err == nil {
		realDir = resolved
	}

	return within(cleanPath, cleanDir) && (within(realPath, realDir) || within(realPath, cleanDir)), nil
}

// ResolveOutput joins name onto the configured directory. The name may contain
// subdirectories but must not be absolute or climb out of the directory.
func (v *PathValidator) ResolveOutput(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("output name cannot be empty")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("output name must be relative: %s", name)
	}

	joined := filepath.Join(v.configuredDirectory, name)
	if err := v.ValidatePath(joined); err != nil {
		return "", err
	}
	if filepath.Clean(joined) == filepath.Clean(v.configuredDirectory) {
		return "", fmt.Errorf("output name does not name a file: %s", name)
	}
	return joined, nil
}

// ValidateDirectory checks that the configured directory exists and is a directory
func (v *PathValidator) ValidateDirectory() error {
	info, err := os.Stat(v.configuredDirectory)
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", v.configuredDirectory)
	}
	return nil
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	dirWithSep := dir
	if !strings.HasSuffix(dirWithSep, string(filepath.Separator)) {
		dirWithSep += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dirWithSep)
}
