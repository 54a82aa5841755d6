// Package termio handles the controlling terminal: raw mode with a
// guaranteed restore, and the stdin relay into the child pty.
package termio

import (
	"context"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
	"pkt.systems/pslog"
)

// ctrlD is the end-of-transmission byte the relay treats as the exit request.
const ctrlD = 0x04

// RawGuard restores the terminal state it captured when raw mode was
// entered. Restore is safe to call from every exit path; only the first
// call does work.
type RawGuard struct {
	fd     int
	state  *term.State
	once   sync.Once
	logger pslog.Logger
}

// EnterRaw switches tty into raw mode and returns the guard that undoes it.
func EnterRaw(tty *os.File, logger pslog.Logger) (*RawGuard, error) {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	fd := int(tty.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &RawGuard{fd: fd, state: state, logger: logger}, nil
}

// Restore puts the terminal back into its original mode. A failure is
// logged rather than returned; there is nothing more a caller could do.
func (g *RawGuard) Restore() {
	g.once.Do(func() {
		if err := term.Restore(g.fd, g.state); err != nil {
			g.logger.Error("terminal restore failed", "error", err)
		}
	})
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// PumpInput relays src to dst byte for byte until src ends, ctx is done, or
// a Ctrl-D arrives. The Ctrl-D is still forwarded first, so a shell child
// sees its usual end-of-input, then onExit fires exactly once.
func PumpInput(ctx context.Context, dst io.Writer, src io.Reader, onExit func()) error {
	defer onExit()
	buf := make([]byte, 1024)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
			for _, b := range buf[:n] {
				if b == ctrlD {
					return nil
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// WaitExit blocks reading src until a Ctrl-D arrives or src ends, without
// relaying anywhere. Replay sessions use it in place of PumpInput.
func WaitExit(src io.Reader) {
	buf := make([]byte, 1024)
	for {
		n, err := src.Read(buf)
		for _, b := range buf[:n] {
			if b == ctrlD {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
