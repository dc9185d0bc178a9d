package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/hkfolio/hkfolio/internal"
	"github.com/hkfolio/hkfolio/internal/protocol"
)

// Handles a run command.
//
// Triggers an analysis run immediately. Request fields override the daemon's
// configured inputs for this run only.
func (s *Server) handleRun(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.RunRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	opts := s.analysis
	if req.Portfolio != "" {
		opts.PortfolioPath = req.Portfolio
	}
	if req.SheetID != "" {
		opts.SheetID = req.SheetID
	}
	if req.Output != "" {
		opts.OutputDir = req.Output
	}

	result, err := s.runAnalysis(ctx, opts)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.RunResult{
		Chart:  result.Chart,
		Stocks: result.Stocks,
	})
}

// Handles a status command.
func (s *Server) handleStatus(conn net.Conn) {
	s.mu.Lock()
	runs := s.runs
	lastRun := s.lastRun
	lastErr := s.lastErr
	s.mu.Unlock()

	status := &protocol.StatusResult{
		Running:   true,
		Version:   internal.VersionString(),
		Pid:       os.Getpid(),
		Uptime:    time.Since(s.startedAt).Truncate(time.Second).String(),
		Runs:      runs,
		LastError: lastErr,
	}
	if !lastRun.IsZero() {
		status.LastRun = lastRun.Format(time.RFC3339)
	}

	s.respond(conn, protocol.CmdOK, status)
}

// Handles a shutdown command.
func (s *Server) handleShutdown(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	go func() {
		s.Stop()
	}()
}
