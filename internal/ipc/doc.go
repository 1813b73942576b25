// Package ipc implements the control channel between the CLI and the daemon:
// JSON-RPC (net/rpc with the jsonrpc codec) over a Unix domain socket.
//
// The server registers a single service named "Billfold" whose methods mirror
// the daemon surface: status, queue operations, manual file intake, review
// corrections, notification testing, and shutdown. The client wraps each
// method in a typed call so command code never touches rpc.Client directly.
//
// The socket lives next to the daemon's other runtime files in the log
// directory. The server removes a stale socket on startup and removes its own
// on shutdown, so a crashed daemon does not block the next start.
package ipc
