// Package ipc is the local control channel between murmur-ctl and a running
// daemon: one JSON message in, one JSON reply out, over a unix socket.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	CmdTrigger = "trigger"
	CmdSay     = "say"
	CmdClear   = "clear"
)

var SocketPath = filepath.Join(os.TempDir(), "murmur.sock")

type ControlMessage struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text,omitempty"`
	User string `json:"user,omitempty"`
	ID   string `json:"id,omitempty"`
}

type Reply struct {
	ID    string `json:"id,omitempty"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

type Handler func(ctx context.Context, msg ControlMessage) Reply

type Server struct {
	ln      net.Listener
	path    string
	handler Handler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// StartServer listens on path and serves each connection in its own
// goroutine until Close.
func StartServer(path string, handler Handler) (*Server, error) {
	_ = os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{ln: ln, path: path, handler: handler, ctx: ctx, cancel: cancel}

	s.wg.Add(1)
	go s.accept()

	log.Debug("IPC server listening", "socket", path)
	return s, nil
}

func (s *Server) accept() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn("IPC accept failed", "err", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		log.Warn("Bad IPC message", "err", err)
		return
	}
	log.Debug("IPC message", "cmd", msg.Cmd, "user", msg.User)

	reply := s.handler(s.ctx, msg)
	reply.ID = msg.ID
	if err := json.NewEncoder(conn).Encode(reply); err != nil {
		log.Debug("IPC reply not delivered", "err", err)
	}
}

// Close stops accepting, cancels in-flight handlers and waits for them.
func (s *Server) Close() error {
	s.cancel()
	err := s.ln.Close()
	s.wg.Wait()
	_ = os.Remove(s.path)
	return err
}

// SendCommand delivers msg to the daemon at path and waits for its reply.
func SendCommand(path string, msg ControlMessage, timeout time.Duration) (Reply, error) {
	conn, err := net.DialTimeout("unix", path, 5*time.Second)
	if err != nil {
		return Reply{}, err
	}
	defer conn.Close()

	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return Reply{}, fmt.Errorf("send: %w", err)
	}

	var reply Reply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return Reply{}, fmt.Errorf("read reply: %w", err)
	}
	if reply.Error != "" {
		return reply, errors.New(reply.Error)
	}
	return reply, nil
}
