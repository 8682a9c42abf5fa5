package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Skip is an input that was not processed.
type Skip struct {
	Path   string
	Reason string
}

// Discover expands paths into the .als files to process. Directories are
// walked recursively. Files without the .als extension and files that look
// like earlier outputs (see [IsOutput]) are skipped. Paths that cannot be
// read are returned as errors.
func Discover(paths []string, suffix string) ([]string, []Skip, []error) {
	var (
		files []string
		skips []Skip
		errs  []error
		seen  = map[string]bool{}
	)

	add := func(path string) {
		switch {
		case !IsProject(path):
			skips = append(skips, Skip{Path: path, Reason: "not an " + Ext + " file"})
		case IsOutput(path, suffix):
			skips = append(skips, Skip{Path: path, Reason: "already routed"})
		case !seen[path]:
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range paths {
		p = filepath.Clean(p)

		info, err := os.Stat(p)
		if err != nil {
			errs = append(errs, &FileError{Path: p, Err: fmt.Errorf("stat: %w", err)})
			continue
		}

		if !info.IsDir() {
			add(p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = append(errs, &FileError{Path: path, Err: err})

				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}
			if d.IsDir() || !IsProject(path) {
				return nil
			}

			add(path)

			return nil
		})
		if err != nil {
			errs = append(errs, &FileError{Path: p, Err: fmt.Errorf("walk: %w", err)})
		}
	}

	return files, skips, errs
}
