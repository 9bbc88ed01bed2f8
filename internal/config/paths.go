package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the filesystem locations the application reads from
type Paths struct {
	ExecutableDir string
	WorkingDir    string
	DataFile      string
}

// GetPaths resolves application paths for the given data configuration.
// A relative data file is looked up next to the executable first and then in
// the working directory; when neither exists the executable-relative path is
// returned so the caller can report it.
func GetPaths(data DataConfig) (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}
	exeDir := filepath.Dir(exe)

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %v", err)
	}

	return &Paths{
		ExecutableDir: exeDir,
		WorkingDir:    wd,
		DataFile:      ResolveDataFile(data.File, exeDir, wd),
	}, nil
}

// ResolveDataFile returns the first existing candidate for file, searching
// the given base directories in order.
func ResolveDataFile(file string, bases ...string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	for _, base := range bases {
		candidate := filepath.Join(base, file)
		if FileExists(candidate) {
			return candidate
		}
	}
	if len(bases) > 0 {
		return filepath.Join(bases[0], file)
	}
	return file
}

// FileExists checks if a regular file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
