package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxCollisions bounds the search for a free output name.
const maxCollisions = 10000

// WriteUnique writes data to path, or to the first of "<stem>_1<ext>",
// "<stem>_2<ext>", ... that does not exist yet. It never overwrites a file
// and removes its own partial output on failure. It returns the written path.
func WriteUnique(path string, data []byte) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)

	for i := range maxCollisions {
		candidate := path
		if i > 0 {
			candidate = stem + "_" + strconv.Itoa(i) + ext
		}

		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrWrite, err)
		}

		_, err = f.Write(data)
		if err == nil {
			err = f.Close()
		} else {
			_ = f.Close()
		}

		if err != nil {
			_ = os.Remove(candidate)

			return "", fmt.Errorf("%w: %s: %w", ErrWrite, candidate, err)
		}

		return candidate, nil
	}

	return "", fmt.Errorf("%w: no free name for %s", ErrWrite, path)
}
