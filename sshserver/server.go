// Package sshserver exposes the event stream as a plain-text tail over SSH,
// one line per event. It is a read-only side channel for terminals without
// a browser; viewers connect with any ssh client and watch.
package sshserver

import (
	"context"
	"net"

	gliderssh "github.com/gliderlabs/ssh"

	"pkt.systems/pslog"

	"pkt.systems/vtscope/core"
	"pkt.systems/vtscope/internal/logx"
	"pkt.systems/vtscope/schema"
)

// Server tails the session hub over SSH.
type Server struct {
	Addr        string
	HostKeyPath string
	Listener    net.Listener
	Hub         *core.Hub
	logger      pslog.Logger
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}

	signer, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}

	server := &gliderssh.Server{
		Addr:    s.Addr,
		Handler: s.handleSession,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleSession(session gliderssh.Session) {
	ctx := logx.ContextWithViewerLogger(session.Context(), s.logger, session.RemoteAddr().String())
	logger := logx.Ctx(ctx).With("viewer", session.RemoteAddr().String())

	sub, backlog, err := s.Hub.Subscribe()
	if err != nil {
		_, _ = session.Write([]byte("session ended\r\n"))
		_ = session.Exit(0)
		return
	}
	defer s.Hub.Unsubscribe(sub)
	logger.Info("ssh viewer connected", "backlog_batches", len(backlog))

	for _, batch := range backlog {
		if !writeLines(session, batch) {
			return
		}
	}

	done := session.Context().Done()
	for {
		select {
		case <-done:
			logger.Info("ssh viewer disconnected")
			return
		case batch, ok := <-sub.C():
			if !ok {
				logger.Info("ssh viewer stream ended")
				_ = session.Exit(0)
				return
			}
			if !writeLines(session, batch) {
				logger.Info("ssh viewer write failed")
				return
			}
		}
	}
}

func writeLines(session gliderssh.Session, batch []schema.Event) bool {
	for _, ev := range batch {
		if _, err := session.Write([]byte(renderLine(ev) + "\r\n")); err != nil {
			return false
		}
	}
	return true
}
