package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/user"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hkfolio/hkfolio/internal/analysis"
	"github.com/hkfolio/hkfolio/internal/paths"
	"github.com/hkfolio/hkfolio/internal/protocol"
)

const (

	// Interval between scheduled analysis runs when none is configured.
	DefaultInterval = 24 * time.Hour

	// Group name used to grant socket access. Members of this group can
	// connect to the daemon socket without owning the process.
	socketGroup = "hkfolio"

	// File mode applied to the Unix socket. Owner and group get read-write
	// (required for connect); others get no access.
	socketMode = 0660
)

var ErrServer = errors.New("server error")

// Holds server configuration.
type Config struct {
	SocketPath string           // Override for the Unix socket path. Empty uses the default.
	Interval   time.Duration    // Time between scheduled runs. Empty uses [DefaultInterval].
	Analysis   analysis.Options // Inputs for scheduled and triggered runs.
}

// Listens on a Unix domain socket, runs the analysis on a schedule, and
// dispatches commands.
type Server struct {
	socketPath string           // Path to the Unix socket file.
	interval   time.Duration    // Time between scheduled analysis runs.
	analysis   analysis.Options // Base options for every run.
	listener   net.Listener     // Listener for incoming connections.
	startedAt  time.Time        // Timestamp when the server started.
	runs       int              // Total analysis runs since startup.
	lastRun    time.Time        // Completion time of the last successful run.
	lastErr    string           // Message from the last failed run.
	done       chan struct{}    // Channel to signal server shutdown.
	stopOnce   sync.Once        // Guards Stop against the signal and socket paths racing.
	mu         sync.Mutex       // Mutex to protect shared state.
}

// Creates a new server instance.
//
// The socket is not opened until [Start] is called.
func New(cfg Config) *Server {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		socketPath = paths.Socket()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Server{
		socketPath: socketPath,
		interval:   interval,
		analysis:   cfg.Analysis,
		done:       make(chan struct{}),
	}
}

// Opens the Unix socket, begins accepting connections, and starts the
// run scheduler.
func (s *Server) Start() error {
	listener, err := listen(s.socketPath)
	if err != nil {
		return err
	}

	s.listener = listener
	s.startedAt = time.Now()

	if err := writePID(); err != nil {
		slog.Warn("failed to write PID file", "error", err)
	}

	slog.Info("server listening on socket", "path", s.socketPath, "interval", s.interval)

	go s.accept()
	go s.schedule()
	return nil
}

// Creates the Unix socket listener, removes any stale socket from a previous
// run, and applies permissions.
func listen(socketPath string) (net.Listener, error) {
	if err := os.MkdirAll(paths.Runtime(), paths.DefaultDirMode); err != nil {
		return nil, errors.Wrapf(ErrServer, "%v", err)
	}

	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, errors.Wrapf(ErrServer, "failed to listen on %s", socketPath)
	}

	if err := setSocketPermissions(socketPath); err != nil {
		listener.Close()
		return nil, err
	}

	return listener, nil
}

// Restricts socket access to owner and group. The daemon does not run as
// root; any user in the hkfolio group can also connect.
func setSocketPermissions(socketPath string) error {
	if err := os.Chmod(socketPath, socketMode); err != nil {
		return errors.Wrapf(ErrServer, "failed to chmod socket %s", socketPath)
	}

	if g, err := user.LookupGroup(socketGroup); err == nil {
		if gid, err := strconv.Atoi(g.Gid); err == nil {
			if err := os.Chown(socketPath, -1, gid); err != nil {
				slog.Warn("failed to chgrp socket", "group", socketGroup, "error", err)
			}
		}
	} else {
		slog.Warn("socket group not found, socket accessible to owner only", "group", socketGroup)
	}

	return nil
}

// Shuts down the server and cleans up resources.
//
// Safe to call more than once; shutdown can be initiated both by a signal
// and by a socket command.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)

		if s.listener != nil {
			s.listener.Close()
		}

		os.Remove(s.socketPath)
		os.Remove(paths.PIDFile())
	})

	return nil
}

// Blocks until the server stops.
func (s *Server) Wait() {
	<-s.done
}

// Runs the analysis on the configured interval until shutdown.
func (s *Server) schedule() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runScheduled()
		case <-s.done:
			return
		}
	}
}

// Executes one scheduled analysis run.
//
// A failed run keeps the daemon alive; the error is recorded for status
// queries and posted to the Telegram chat so it does not go unnoticed.
func (s *Server) runScheduled() {
	slog.Info("starting scheduled analysis run")

	if _, err := s.runAnalysis(context.Background(), s.analysis); err != nil {
		slog.Error("scheduled analysis run failed", "error", err)
	}
}

// Runs the analysis with the given options and records the outcome.
func (s *Server) runAnalysis(ctx context.Context, opts analysis.Options) (*analysis.Result, error) {
	result, err := analysis.Run(ctx, opts)

	s.mu.Lock()
	s.runs++
	if err != nil {
		s.lastErr = err.Error()
	} else {
		s.lastErr = ""
		s.lastRun = time.Now()
	}
	s.mu.Unlock()

	if err != nil {
		s.notifyFailure(ctx, err)
		return nil, err
	}
	return result, nil
}

// Posts a failure notice to Telegram, best effort.
func (s *Server) notifyFailure(ctx context.Context, runErr error) {
	msg := fmt.Sprintf("❌ Analysis failed: %s", runErr)
	if err := analysis.Notify(ctx, s.analysis.Token, s.analysis.ChatID, msg); err != nil {
		slog.Warn("failed to deliver failure notice", "error", err)
	}
}

// Accepts connections in a loop until the server shuts down.
func (s *Server) accept() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				slog.Error("accept error", "error", err)
				continue
			}
		}

		go s.handle(conn)
	}
}

// Processes a single connection.
//
// Reads one newline-delimited JSON message, dispatches the command, and
// writes the response. The connection is closed after one exchange.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	line, err := reader.ReadBytes(byte(10))
	if err != nil {
		slog.Error("read error", "error", err)
		return
	}

	env, payload, err := protocol.Decode(line)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	slog.Info("command received", "command", env.Command)

	ctx, cancel := contextWithDisconnect(context.Background(), reader)
	defer cancel()

	s.dispatch(ctx, conn, env.Command, payload)
}

// Routes a command to the appropriate handler.
func (s *Server) dispatch(ctx context.Context, conn net.Conn, cmd protocol.Command, payload json.RawMessage) {
	switch cmd {
	case protocol.CmdRun:
		s.handleRun(ctx, conn, payload)
	case protocol.CmdStatus:
		s.handleStatus(conn)
	case protocol.CmdShutdown:
		s.handleShutdown(conn)
	default:
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{
			Message: fmt.Sprintf("unknown command: %s", cmd),
		})
	}
}

// Writes a JSON envelope response to the connection.
func (s *Server) respond(conn net.Conn, cmd protocol.Command, payload any) {
	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		return
	}
	data = append(data, byte(10))
	conn.Write(data)
}

// Writes the daemon PID to the PID file so the CLI can detect whether the
// daemon is already running and send it signals.
func writePID() error {
	if err := os.MkdirAll(paths.Runtime(), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(paths.PIDFile(), []byte(fmt.Sprintf("%d", os.Getpid())), paths.DefaultFileMode)
}

// Returns a derived context that is cancelled when the remote end of the
// connection closes.
//
// Detection works by reading from r in a background goroutine. The read blocks
// until the peer closes the connection, at which point it returns an error and
// the derived context is cancelled. The caller must ensure that no further data
// is expected on r for the lifetime of the returned context. If data arrives
// unexpectedly, it will be discarded and the context will be cancelled
// prematurely. The returned [context.CancelFunc] must always be called to
// release resources, even if the connection closes on its own.
func contextWithDisconnect(parent context.Context, r io.Reader) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		buf := make([]byte, 1)
		r.Read(buf)
		cancel()
	}()

	return ctx, cancel
}
