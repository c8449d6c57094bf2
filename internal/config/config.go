package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Path validation errors. Each blocks processing before anything is written.
var (
	// ErrInputMissing is returned when no input file or output directory is supplied.
	ErrInputMissing = errors.New("an input .bib file and an output directory are required")

	// ErrInputNotFound is returned when the input file does not exist.
	ErrInputNotFound = errors.New("input file does not exist")

	// ErrOutputDirNotFound is returned when the output directory does not exist.
	ErrOutputDirNotFound = errors.New("output directory does not exist")
)

// ValidatePaths checks the input file and output directory in that order.
// Both paths are expanded (~) before checking; the expanded paths are returned.
func ValidatePaths(input, outputDir string) (string, string, error) {
	if input == "" || outputDir == "" {
		return "", "", ErrInputMissing
	}

	input = ExpandPath(input)
	outputDir = ExpandPath(outputDir)

	if err := ValidateInputFile(input); err != nil {
		return "", "", err
	}
	if err := ValidateOutputDir(outputDir); err != nil {
		return "", "", err
	}
	return input, outputDir, nil
}

// ValidateInputFile checks that path exists and is a regular file.
func ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInputNotFound, path)
	}
	return nil
}

// ValidateOutputDir checks that path exists and is a directory.
func ValidateOutputDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOutputDirNotFound, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrOutputDirNotFound, path)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
