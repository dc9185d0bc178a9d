// Package protocol defines the wire format spoken between the CLI and the
// scheduler daemon over the Unix domain socket.
//
// Every message is a JSON [Envelope] terminated by a newline. Requests carry
// a command and an optional command-specific payload; responses reuse the
// same envelope with [CmdOK] or [CmdError].
package protocol
