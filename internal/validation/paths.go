package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator checks database, cache, index and log paths
type PathValidator struct {
	// AllowedBaseDirs restricts paths to these trees; empty allows all
	AllowedBaseDirs []string
	MaxPathLength   int
}

// NewPathValidator confines paths to the lazyload data and config dirs and
// the temp dir
func NewPathValidator() *PathValidator {
	homeDir, _ := os.UserHomeDir()
	return &PathValidator{
		AllowedBaseDirs: []string{
			filepath.Join(homeDir, ".lazyload"),
			filepath.Join(homeDir, ".config", "lazyload"),
			os.TempDir(),
		},
		MaxPathLength: 4096,
	}
}

// NewPermissivePathValidator allows any directory
func NewPermissivePathValidator() *PathValidator {
	return &PathValidator{MaxPathLength: 4096}
}

// Clean expands ~, makes the path absolute and rejects traversal, control
// characters and paths outside the allowed directories.
func (v *PathValidator) Clean(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if len(path) > v.MaxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", v.MaxPathLength)
	}
	for _, r := range path {
		if r < 32 && r != '\t' {
			return "", fmt.Errorf("path contains control characters")
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", fmt.Errorf("directory traversal not allowed")
		}
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	} else if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("invalid tilde usage")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}
	if err := v.within(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func (v *PathValidator) within(path string) error {
	if len(v.AllowedBaseDirs) == 0 {
		return nil
	}
	for _, base := range v.AllowedBaseDirs {
		absBase, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absBase, path)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("path not within allowed directories: %v", v.AllowedBaseDirs)
}

// File validates a file path and creates its parent directory.
func (v *PathValidator) File(path string) (string, error) {
	clean, err := v.Clean(path)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(clean); statErr == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", clean)
	}
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return clean, nil
}

// Directory validates a directory path such as a bleve index. The directory
// itself is left for its owner to create.
func (v *PathValidator) Directory(path string) (string, error) {
	clean, err := v.Clean(path)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(clean); statErr == nil && !info.IsDir() {
		return "", fmt.Errorf("path exists but is not a directory: %s", clean)
	}
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return clean, nil
}
