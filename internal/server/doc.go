// Package server implements the hkfolio daemon.
//
// The daemon runs the portfolio analysis on a fixed interval and listens on
// a Unix domain socket for JSON-encoded commands from the CLI. Each
// connection carries a single request-response exchange: the client sends a
// newline-delimited JSON envelope, the server dispatches the command, and
// writes the result back before closing the connection.
//
// Supported commands are triggering an analysis run immediately, querying
// daemon status, and initiating shutdown. A failed run never stops the
// daemon; the error is recorded for status queries and posted to the
// configured Telegram chat.
//
// Example usage:
//
//	srv := server.New(server.Config{
//	    Interval: 24 * time.Hour,
//	    Analysis: opts,
//	})
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
