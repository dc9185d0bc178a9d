package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// A command name carried in an envelope.
type Command string

// Commands sent by the CLI and responses returned by the daemon.
const (
	CmdStatus   Command = "status"   // Query daemon status.
	CmdRun      Command = "run"      // Trigger an analysis run immediately.
	CmdShutdown Command = "shutdown" // Request daemon shutdown.

	CmdOK    Command = "ok"    // Successful response.
	CmdError Command = "error" // Error response.
)

// Wire format for a single request or response.
//
// Messages are JSON-encoded and newline-delimited on the socket. The payload
// is left raw so the receiver can decode it into the command-specific type.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Serializes a command and payload into an envelope.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "encoding payload")
		}
		env.Payload = data
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, "encoding envelope")
	}
	return data, nil
}

// Parses an envelope from raw bytes, returning the envelope and its raw
// payload for command-specific decoding.
func Decode(data []byte) (*Envelope, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, errors.Wrap(err, "decoding envelope")
	}
	if env.Command == "" {
		return nil, nil, errors.New("envelope missing command")
	}
	return &env, env.Payload, nil
}

// Decodes a raw payload into a command-specific type.
func DecodePayload[T any](payload json.RawMessage) (*T, error) {
	var v T
	if len(payload) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, errors.Wrap(err, "decoding payload")
	}
	return &v, nil
}

// Payload for [CmdRun]. Empty fields fall back to the daemon's configured
// values.
type RunRequest struct {
	Portfolio string `json:"portfolio,omitempty"` // Path to the portfolio CSV on the daemon host.
	SheetID   string `json:"sheet_id,omitempty"`  // Google Sheets document ID for price history.
	Output    string `json:"output,omitempty"`    // Output directory for the chart.
}

// Response payload for a successful [CmdRun].
type RunResult struct {
	Chart  string `json:"chart"`  // Path to the rendered chart image.
	Stocks int    `json:"stocks"` // Number of holdings included in the run.
}

// Response payload for [CmdStatus].
type StatusResult struct {
	Running   bool   `json:"running"`
	Version   string `json:"version"`
	Pid       int    `json:"pid"`
	Uptime    string `json:"uptime"`
	Runs      int    `json:"runs"`                 // Total analysis runs since startup.
	LastRun   string `json:"last_run,omitempty"`   // RFC 3339 timestamp of the last completed run.
	LastError string `json:"last_error,omitempty"` // Message from the last failed run, if any.
}

// Response payload for [CmdError].
type ErrorResult struct {
	Message string `json:"message"`
}
