package preflight

import (
	"github.com/billfold/billfold/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Directory checks run only when the corresponding path is configured.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, dir := range []struct {
		name string
		path string
	}{
		{"Inbox directory", cfg.Paths.InboxDir},
		{"Staging directory", cfg.Paths.StagingDir},
		{"Library directory", cfg.Paths.LibraryDir},
		{"Review directory", cfg.Paths.ReviewDir},
		{"Log directory", cfg.Paths.LogDir},
	} {
		if dir.path == "" {
			continue
		}
		results = append(results, CheckDirectoryAccess(dir.name, dir.path))
	}

	results = append(results, CheckNotificationsFromConfig(cfg))
	return results
}
