// Package ptyproc spawns a child process on a pseudo-terminal and exposes
// its master side for relaying. The caller owns the read loop; this package
// owns process lifetime and window sizing.
package ptyproc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
	"pkt.systems/pslog"

	"pkt.systems/vtscope/schema"
)

// Session is one child process attached to a pty master.
type Session struct {
	cmd    *exec.Cmd
	master *os.File
	logger pslog.Logger
}

// Spawn starts argv[0] with argv[1:] as arguments on a fresh pty sized
// rows by cols. dir sets the child working directory when non-empty.
func Spawn(ctx context.Context, argv []string, dir string, rows, cols uint16, logger pslog.Logger) (*Session, error) {
	if logger == nil {
		logger = pslog.Ctx(ctx)
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, schema.ErrNoShell
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", schema.ErrPtySpawn, argv[0], err)
	}
	logger.Info("pty spawned", "command", argv[0], "pid", cmd.Process.Pid, "rows", rows, "cols", cols)
	return &Session{cmd: cmd, master: master, logger: logger}, nil
}

// Read reads child output from the pty master. It fails with EIO once the
// child side is gone, which the pipeline treats as end of stream.
func (s *Session) Read(p []byte) (int, error) { return s.master.Read(p) }

// Write relays input bytes to the child.
func (s *Session) Write(p []byte) (int, error) { return s.master.Write(p) }

// Resize sets the pty window size and lets the kernel signal the child.
func (s *Session) Resize(rows, cols uint16) error {
	if err := pty.Setsize(s.master, &pty.Winsize{Rows: rows, Cols: cols}); err != nil {
		return fmt.Errorf("resize pty: %w", err)
	}
	s.logger.Debug("pty resized", "rows", rows, "cols", cols)
	return nil
}

// WatchWinch propagates window size changes from the controlling terminal
// tty to the child pty until ctx is done. It applies the current size once
// up front so a pre-start resize is never lost.
func (s *Session) WatchWinch(ctx context.Context, tty *os.File) {
	resize := func() {
		cols, rows, err := term.GetSize(int(tty.Fd()))
		if err != nil {
			s.logger.Warn("terminal size unavailable", "error", err)
			return
		}
		if err := s.Resize(uint16(rows), uint16(cols)); err != nil {
			s.logger.Warn("pty resize failed", "error", err)
		}
	}
	resize()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGWINCH)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				resize()
			}
		}
	}()
}

// Wait blocks until the child exits and returns its exit error, if any.
func (s *Session) Wait() error {
	return s.cmd.Wait()
}

// Kill terminates the child process.
func (s *Session) Kill() error {
	if s.cmd.Process == nil {
		return nil
	}
	if err := s.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("kill child: %w", err)
	}
	return nil
}

// Close closes the master side, which gives the child EOF on its stdin and
// unblocks any pending Read.
func (s *Session) Close() error {
	return s.master.Close()
}

// Pid returns the child process id.
func (s *Session) Pid() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}
