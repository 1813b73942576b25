// Package preflight provides readiness checks for the filesystem paths and
// notification settings that Billfold depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup to surface misconfigured paths early.
//   - The CLI "billfold status" command uses individual check functions
//     (CheckDirectoryAccess, CheckNotificationsFromConfig) to display health.
//
// Directory checks are gated on the path being configured -- empty paths are
// skipped.
package preflight
