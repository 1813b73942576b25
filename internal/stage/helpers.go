package stage

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/services"
)

// WorkingFile resolves the on-disk file a stage should operate on, preferring
// the staged copy and falling back to the inbox original. On failure it
// returns a services.ErrValidation suitable for stage Execute methods.
func WorkingFile(item *queue.Item) (string, error) {
	if item == nil {
		return "", services.Wrap(
			services.ErrValidation, "stage", "resolve working file",
			"Queue item unavailable", nil)
	}
	for _, candidate := range []string{item.StagedPath, item.SourcePath} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", services.Wrap(
				services.ErrValidation, "stage", "resolve working file",
				"Unable to inspect "+candidate, err)
		}
		if info.IsDir() {
			continue
		}
		return candidate, nil
	}
	return "", services.Wrap(
		services.ErrValidation, "stage", "resolve working file",
		"Neither staged copy nor source file exists; re-add the document", nil)
}
