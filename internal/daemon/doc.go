// Package daemon coordinates the long-running Billfold services: the queue
// store, the workflow manager, and the inbox poller. It enforces
// single-instance execution through a lock file and exposes the operations
// the IPC layer forwards from the CLI.
package daemon
