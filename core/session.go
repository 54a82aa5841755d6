package core

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
	"pkt.systems/pslog"

	"pkt.systems/vtscope/schema"
)

// BatchSink receives every published event batch in publish order. Sinks
// run on the pipeline goroutine and must not block.
type BatchSink interface {
	OnBatch(batch []schema.Event)
}

// BatchSinkFunc adapts a function to the BatchSink interface.
type BatchSinkFunc func(batch []schema.Event)

// OnBatch implements BatchSink.
func (f BatchSinkFunc) OnBatch(batch []schema.Event) { f(batch) }

// Session drives the output pipeline: raw bytes from one source through the
// decoder and coalescer into the hub, mirrored to any extra sinks. One
// Session serves one child process (or one replay file) for its lifetime.
type Session struct {
	cfg    schema.SessionConfig
	hub    *Hub
	sinks  []BatchSink
	logger pslog.Logger

	events chan []schema.Event
	done   chan struct{}
}

// NewSession wires a session around hub. The sinks receive every batch the
// hub receives, including the final Disconnected batch.
func NewSession(cfg schema.SessionConfig, hub *Hub, logger pslog.Logger, sinks ...BatchSink) *Session {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Session{
		cfg:    cfg,
		hub:    hub,
		sinks:  sinks,
		logger: logger,
		events: make(chan []schema.Event, 64),
		done:   make(chan struct{}),
	}
}

// Run consumes src until end of stream, then drains the pipeline: decoder
// flush, final coalescer flush. It returns nil on a clean end of stream and
// the read error otherwise. Run does not publish the final Disconnected
// batch; the caller finishes teardown of the terminal and pty first and
// then calls Finish.
func (s *Session) Run(ctx context.Context, src io.Reader) error {
	go s.pump()

	dec := NewDecoder()
	buf := make([]byte, 4096)
	var readErr error
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if evs := dec.Feed(buf[:n]); len(evs) > 0 {
				s.events <- evs
			}
		}
		if err != nil {
			if !streamEnded(err) {
				readErr = err
				s.logger.Error("session read failed", "error", err)
			}
			break
		}
		select {
		case <-ctx.Done():
			readErr = ctx.Err()
		default:
			continue
		}
		break
	}

	if evs := dec.Flush(); len(evs) > 0 {
		s.events <- evs
	}
	close(s.events)
	<-s.done
	return readErr
}

// Finish seals the session after the caller has torn down its side of the
// stream (terminal mode restored, pty closed): the hub publishes the final
// Disconnected batch and rejects further subscribers. Finish is idempotent;
// only the first call publishes.
func (s *Session) Finish() {
	final := s.hub.Close()
	if final == nil {
		return
	}
	s.mirror(final)
	s.logger.Info("session ended", "events", s.hub.EventCount())
}

// EventCount reports the total number of events published, including the
// final Disconnected event once the session has ended.
func (s *Session) EventCount() int { return s.hub.EventCount() }

// pump owns the coalescer. It is the hub's only publisher: batches flush on
// the debounce interval, on the batch size cap, and at end of stream.
func (s *Session) pump() {
	defer close(s.done)
	co := NewCoalescer(s.cfg.FlushBatchSize)
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case evs, ok := <-s.events:
			if !ok {
				s.publish(co.Flush())
				return
			}
			for _, ev := range evs {
				co.Push(ev)
				if co.Full() {
					s.publish(co.Flush())
				}
			}
		case <-ticker.C:
			if !co.Empty() {
				s.publish(co.Flush())
			}
		}
	}
}

func (s *Session) publish(batch []schema.Event) {
	if len(batch) == 0 {
		return
	}
	s.hub.Publish(batch)
	s.mirror(batch)
}

func (s *Session) mirror(batch []schema.Event) {
	if len(batch) == 0 {
		return
	}
	for _, sink := range s.sinks {
		if sink == nil {
			continue
		}
		sink.OnBatch(batch)
	}
}

// streamEnded reports whether err marks a normal end of the byte source.
// A pty master read fails with EIO once the child side is gone.
func streamEnded(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, fs.ErrClosed) ||
		errors.Is(err, unix.EIO)
}
