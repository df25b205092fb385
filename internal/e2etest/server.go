package e2etest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/myrjola/petrarun/internal/logging"
)

// Server is a running web application under test.
type Server struct {
	url        string
	client     *Client
	db         *sql.DB
	cancel     context.CancelCauseFunc
	serverDone chan struct{}
}

// LogAddrKey is the key used to log the address the server is listening on.
const LogAddrKey = "addr"

// LogDsnKey is the key used to log the data source name of the read-write database.
const LogDsnKey = "sqlDsn"

// RunFunc starts the application and blocks until ctx is done.
type RunFunc func(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error

// logCapture remembers the first value logged under each watched key.
type logCapture struct {
	mu     sync.Mutex
	values map[string]string
	ready  chan struct{}
}

func newLogCapture(keys ...string) *logCapture {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		values[key] = ""
	}
	return &logCapture{mu: sync.Mutex{}, values: values, ready: make(chan struct{})}
}

func (c *logCapture) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, watched := c.values[a.Key]
	if !watched || current != "" {
		return a
	}
	c.values[a.Key] = a.Value.String()
	for _, v := range c.values {
		if v == "" {
			return a
		}
	}
	close(c.ready)
	return a
}

func (c *logCapture) get(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

// StartServer boots run with an in-process logger and waits until the server answers /api/healthy.
//
// logSink receives the server logs, usually testhelpers.NewWriter. lookupEnv replaces [os.LookupEnv]. run must log
// the listen address under LogAddrKey and the database DSN under LogDsnKey. The server is shut down when the test
// ends.
func StartServer(t *testing.T, logSink io.Writer, lookupEnv func(string) (string, bool), run RunFunc) (*Server, error) {
	ctx, cancel := context.WithCancelCause(t.Context())
	serverDone := make(chan struct{})
	var server *Server
	t.Cleanup(func() {
		if server != nil {
			server.Shutdown()
			return
		}
		cancel(nil)
		<-serverDone
	})

	capture := newLogCapture(LogAddrKey, LogDsnKey)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: capture.replaceAttr,
	})))

	go func() {
		defer close(serverDone)
		if err := run(ctx, logger, lookupEnv); err != nil {
			cancel(err)
		}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("server stopped before it was ready: %w", context.Cause(ctx))
	case <-capture.ready:
	}

	serverURL := "http://" + capture.get(LogAddrKey)
	client, err := NewClient(serverURL)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return nil, fmt.Errorf("wait for ready: %w", err)
	}
	db, err := sql.Open("sqlite3", capture.get(LogDsnKey))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	server = &Server{url: serverURL, client: client, db: db, cancel: cancel, serverDone: serverDone}
	return server, nil
}

func (s *Server) Client() *Client {
	return s.client
}

func (s *Server) URL() string {
	return s.url
}

// DB is the server's database for test assertions.
func (s *Server) DB() *sql.DB {
	return s.db
}

// Shutdown stops the server and waits for run to return.
func (s *Server) Shutdown() {
	_ = s.db.Close()
	s.cancel(nil)
	<-s.serverDone
}
