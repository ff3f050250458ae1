// Package ipc is the daemon's control channel: one JSON request and one JSON
// response per connection over a unix socket.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"time"
)

const DefaultSocketPath = "/tmp/zara.sock"

const (
	CmdTrigger = "trigger" // listen once and answer
	CmdSay     = "say"     // answer Text as if it had been heard
	CmdPing    = "ping"
	CmdQuit    = "quit"
)

type ControlMessage struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text,omitempty"`
}

type Response struct {
	OK       bool   `json:"ok"`
	Text     string `json:"text,omitempty"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Handler func(ctx context.Context, msg ControlMessage) Response

// requestTimeout bounds how long a client may take to send its request.
const requestTimeout = 5 * time.Second

type Server struct {
	path    string
	handler Handler
	ln      net.Listener
	timeout time.Duration
}

// Listen replaces any stale socket at path and starts listening.
func Listen(path string, handler Handler) (*Server, error) {
	if path == "" {
		path = DefaultSocketPath
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	return &Server{path: path, handler: handler, ln: ln, timeout: requestTimeout}, nil
}

func (s *Server) Path() string {
	return s.path
}

// Serve handles connections one at a time until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warn("Accept failed", "err", err)
			continue
		}
		s.handleConn(ctx, conn)
	}
}

func (s *Server) Close() error {
	err := s.ln.Close()
	os.Remove(s.path)
	return err
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(s.timeout))
	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		log.Warn("Bad control message", "err", err)
		json.NewEncoder(conn).Encode(Response{Error: "bad request"})
		return
	}
	// the handler may listen for a long time
	conn.SetReadDeadline(time.Time{})

	log.Debug("Control message", "cmd", msg.Cmd)
	resp := s.handler(ctx, msg)
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		log.Warn("Failed to write control response", "err", err)
	}
}

// Send delivers msg to the daemon at path and waits for its response.
func Send(ctx context.Context, path string, msg ControlMessage) (Response, error) {
	if path == "" {
		path = DefaultSocketPath
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(2 * time.Minute))
	}

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return Response{}, fmt.Errorf("send: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	return resp, nil
}
