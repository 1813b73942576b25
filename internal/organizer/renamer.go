package organizer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Renamer resolves a destination conflict by producing an alternative
// filename inside destDir. The returned name must not collide with an
// existing file; the worker routes the copy through it without re-checking
// (the contract sits with the renamer, not the worker).
type Renamer interface {
	Rename(destDir, filename string) (string, error)
}

// RenamerFunc adapts a function to the Renamer interface.
type RenamerFunc func(destDir, filename string) (string, error)

// Rename implements Renamer.
func (f RenamerFunc) Rename(destDir, filename string) (string, error) {
	return f(destDir, filename)
}

var _ Renamer = (RenamerFunc)(nil)

// DefaultRenamer resolves conflicts with NextAvailable.
var DefaultRenamer Renamer = RenamerFunc(NextAvailable)

// NextAvailable returns filename when destDir/filename is free, otherwise the
// first `<name>_<n><ext>` (n = 1, 2, ...) that does not exist yet.
func NextAvailable(destDir, filename string) (string, error) {
	const maxAttempts = 10000

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	candidate := filename
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if _, err := os.Stat(filepath.Join(destDir, candidate)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return candidate, nil
			}
			return "", fmt.Errorf("probe %s: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s_%d%s", base, attempt, ext)
	}
	return "", fmt.Errorf("exhausted rename candidates for %s in %s", filename, destDir)
}
