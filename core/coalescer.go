package core

import "pkt.systems/vtscope/schema"

// Coalescer buffers decoder output and merges adjacent Print events that
// share a color state, greatly cutting the event volume sent to viewers.
// It has no concurrency of its own: the session pipeline owns it and calls
// Push/Flush from a single goroutine.
type Coalescer struct {
	buf          []schema.Event
	maxBatch     int
	lastWasBreak bool
}

// NewCoalescer returns a coalescer that asks for a flush once maxBatch
// events are buffered.
func NewCoalescer(maxBatch int) *Coalescer {
	if maxBatch <= 0 {
		maxBatch = schema.DefaultFlushBatchSize
	}
	return &Coalescer{maxBatch: maxBatch}
}

// Push buffers ev, merging it into the previous Print when both are Print
// events under the same color state. Crossing between line-break and
// non-break events inserts a synthetic InvisibleLineBreak, so viewers can
// render break boundaries without extra state.
func (c *Coalescer) Push(ev schema.Event) {
	isBreak := ev.IsLineBreak()
	if isBreak != c.lastWasBreak {
		c.buf = append(c.buf, schema.Event{Type: schema.EventInvisibleLineBreak})
	}
	c.lastWasBreak = isBreak

	if ev.Type == schema.EventPrint {
		if last := c.lastPrint(); last != nil && last.Color == ev.Color && last.BG == ev.BG {
			last.Text += ev.Text
			last.Raw = append(last.Raw, ev.Raw...)
			last.RawBytes += ev.RawBytes
			return
		}
	}
	c.buf = append(c.buf, ev)
}

// Full reports whether the size threshold asks for a flush.
func (c *Coalescer) Full() bool {
	return len(c.buf) >= c.maxBatch
}

// Empty reports whether nothing is buffered.
func (c *Coalescer) Empty() bool {
	return len(c.buf) == 0
}

// Flush returns the buffered batch in decode order and resets the buffer.
func (c *Coalescer) Flush() []schema.Event {
	if len(c.buf) == 0 {
		return nil
	}
	batch := c.buf
	c.buf = nil
	return batch
}

// lastPrint returns the trailing buffered event if it is a Print run still
// open for merging.
func (c *Coalescer) lastPrint() *schema.Event {
	if len(c.buf) == 0 {
		return nil
	}
	last := &c.buf[len(c.buf)-1]
	if last.Type != schema.EventPrint {
		return nil
	}
	return last
}
