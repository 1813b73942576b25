package organizer

import "strings"

// ConflictMode selects how a run treats an already-occupied destination path.
type ConflictMode string

const (
	// Overwrite replaces the existing destination file.
	Overwrite ConflictMode = "Overwrite"
	// AutoRename copies to an alternative name from the job's renamer and
	// leaves the existing file untouched.
	AutoRename ConflictMode = "Auto-Rename"
	// Skip leaves both files alone; the source is neither copied nor an error.
	Skip ConflictMode = "Skip"
)

// ParseConflictMode maps a mode label onto a policy. The external labels
// "Overwrite" and "Auto-Rename" and their lowercase config spellings select
// those policies; any other value means Skip.
func ParseConflictMode(value string) ConflictMode {
	switch strings.TrimSpace(value) {
	case string(Overwrite), "overwrite":
		return Overwrite
	case string(AutoRename), "auto-rename":
		return AutoRename
	default:
		return Skip
	}
}
