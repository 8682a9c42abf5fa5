// Package api holds the versioned configuration types of alsroute and the
// helpers to locate, read and write them.
package api

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// AppName names the configuration directory.
const AppName = "alsroute"

// GetConfigPath returns the path of filename in the user's configuration
// directory: $XDG_CONFIG_HOME/alsroute, then ~/.config/alsroute, then a
// directory under the system temp dir.
func GetConfigPath(filename string) string {
	if xdgHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdgHome != "" {
		return filepath.Join(xdgHome, AppName, filename)
	}

	usrHome, err := os.UserHomeDir()
	if err == nil && usrHome != "" {
		return filepath.Join(usrHome, ".config", AppName, filename)
	}

	tmpPath := filepath.Join(os.TempDir(), AppName, filename)

	slog.Warn("could not determine user config directory, using temp path",
		slog.String("path", tmpPath),
		slog.Any("err", err),
	)

	return tmpPath
}

// ReadFile reads a regular file.
func ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: path is a directory", path)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: not a regular file", path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is user configuration.
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// FindConfigFile walks up from targetPath (or its directory, when it is a
// file) to the filesystem root and returns the first existing file named
// one of fileNames. It returns "" when none exists.
func FindConfigFile(targetPath string, fileNames []string) (string, error) {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("get absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat path: %w", err)
	}

	dir := absPath
	if !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	for {
		for _, name := range fileNames {
			candidate := filepath.Join(dir, name)
			if fi, err := os.Stat(candidate); err == nil && fi.Mode().IsRegular() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

// WriteDefaultFile writes data to path unless a file already exists there.
// With force, an existing file is first renamed to "<name>.<unixnano>.old".
func WriteDefaultFile(path string, data []byte, force bool, kind string) error {
	exists := false

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("%s: path is a directory", path)
	case err == nil && !info.Mode().IsRegular():
		return fmt.Errorf("%s: not a regular file", path)
	case err == nil:
		exists = true
	case !os.IsNotExist(err):
		return fmt.Errorf("stat %s file: %w", kind, err)
	}

	if exists && !force {
		slog.Debug("file already exists, skipping write",
			slog.String("type", kind),
			slog.String("path", path),
		)

		return nil
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	if exists {
		backup := filepath.Join(filepath.Dir(path),
			fmt.Sprintf("%s.%d.old", filepath.Base(path), time.Now().UnixNano()))

		slog.Info("backing up existing file",
			slog.String("type", kind),
			slog.String("path", backup),
		)

		err = os.Rename(path, backup)
		if err != nil {
			return fmt.Errorf("back up existing %s file: %w", kind, err)
		}
	}

	slog.Info("write default file",
		slog.String("type", kind),
		slog.String("path", path),
	)

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("write %s file: %w", kind, err)
	}

	return nil
}
