package core

import (
	"unicode/utf8"

	"pkt.systems/vtscope/schema"
)

// parseState is the decoder's current mode.
type parseState int

const (
	// stateGround handles printable text and bare C0 control bytes.
	stateGround parseState = iota
	// stateEscape is entered after a lone ESC.
	stateEscape
	// stateCSIParam collects CSI parameter and intermediate bytes.
	stateCSIParam
	// stateOSCString collects an OSC payload until BEL or ST.
	stateOSCString
	// stateStringIgnore passes DCS/SOS/PM/APC payloads through until ST.
	stateStringIgnore
)

const (
	byteESC = 0x1b
	byteBEL = 0x07
	byteDEL = 0x7f
)

// Decoder turns a pty output byte stream into an ordered, lossless sequence
// of terminal events. It is a pure state machine: no I/O, no goroutines, no
// locking. State persists across Feed calls so sequences split across read
// boundaries (including multi-byte codepoints) complete correctly.
type Decoder struct {
	state parseState

	// seq accumulates the raw bytes of the in-flight escape sequence.
	seq []byte
	// params holds CSI parameter and intermediate bytes in arrival order.
	params []byte
	// osc holds the OSC payload (introducer and terminator excluded).
	osc []byte
	// strIntro is the introducer byte of a string-ignore sequence.
	strIntro byte
	// strEsc is set when the previous byte inside a string state was ESC.
	strEsc bool

	// run is the pending printable text, always whole codepoints.
	run []byte
	// pending buffers an incomplete UTF-8 fragment split across reads.
	pending []byte

	// fg and bg are the SGR color state active for the pending run.
	fg string
	bg string
}

// NewDecoder returns a decoder in the ground state with default colors.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed consumes p and returns the events completed by it. Every input byte
// is accounted for in the Raw bytes of exactly one emitted (or still
// pending) event; no byte is ever discarded, and unknown sequences degrade
// to GenericEscape instead of stalling the parse.
func (d *Decoder) Feed(p []byte) []schema.Event {
	var out []schema.Event
	for _, b := range p {
		d.step(b, &out)
	}
	return out
}

// Flush closes the stream: the pending print run and any partial escape
// sequence are emitted so that end-of-stream truncation still yields
// well-formed events. The decoder returns to ground and may be fed again.
func (d *Decoder) Flush() []schema.Event {
	var out []schema.Event
	d.flushRun(&out)
	if len(d.seq) > 0 {
		out = append(out, schema.Event{Type: schema.EventGenericEscape}.WithRaw(d.seq))
	}
	d.resetSequence()
	d.state = stateGround
	return out
}

func (d *Decoder) step(b byte, out *[]schema.Event) {
	switch d.state {
	case stateGround:
		d.stepGround(b, out)
	case stateEscape:
		d.stepEscape(b, out)
	case stateCSIParam:
		d.stepCSI(b, out)
	case stateOSCString:
		d.stepOSC(b, out)
	case stateStringIgnore:
		d.stepStringIgnore(b, out)
	}
}

func (d *Decoder) stepGround(b byte, out *[]schema.Event) {
	switch {
	case b == byteESC:
		d.flushRun(out)
		d.seq = append(d.seq[:0], b)
		d.state = stateEscape
	case b < 0x20 || b == byteDEL:
		d.flushRun(out)
		*out = append(*out, classifyControl(b))
	default:
		d.accumulateText(b)
	}
}

// stepEscape handles the byte after ESC. Intermediate bytes (0x20-0x2F)
// accumulate, so multi-byte non-CSI sequences like charset designations
// complete as a single event; any other printable byte acts as the final.
func (d *Decoder) stepEscape(b byte, out *[]schema.Event) {
	switch {
	case b == '[':
		d.seq = append(d.seq, b)
		d.params = d.params[:0]
		d.state = stateCSIParam
	case b == ']':
		d.seq = append(d.seq, b)
		d.osc = d.osc[:0]
		d.strEsc = false
		d.state = stateOSCString
	case b == 'P' || b == 'X' || b == '^' || b == '_':
		d.seq = append(d.seq, b)
		d.strIntro = b
		d.strEsc = false
		d.state = stateStringIgnore
	case b >= 0x20 && b <= 0x2f:
		d.seq = append(d.seq, b)
	case b >= 0x30 && b <= 0x7e:
		d.seq = append(d.seq, b)
		*out = append(*out, classifyEsc(d.seq).WithRaw(d.seq))
		d.resetSequence()
		d.state = stateGround
	default:
		d.anomaly(b, out)
	}
}

func (d *Decoder) stepCSI(b byte, out *[]schema.Event) {
	switch {
	case b >= 0x30 && b <= 0x3f, b >= 0x20 && b <= 0x2f:
		d.seq = append(d.seq, b)
		d.params = append(d.params, b)
	case b >= 0x40 && b <= 0x7e:
		d.seq = append(d.seq, b)
		ev, fg, bg := classifyCSI(string(d.params), b, d.fg, d.bg)
		d.fg, d.bg = fg, bg
		*out = append(*out, ev.WithRaw(d.seq))
		d.resetSequence()
		d.state = stateGround
	default:
		d.anomaly(b, out)
	}
}

func (d *Decoder) stepOSC(b byte, out *[]schema.Event) {
	switch {
	case d.strEsc && b == '\\':
		d.seq = append(d.seq, b)
		*out = append(*out, classifyOSC(string(d.osc)).WithRaw(d.seq))
		d.resetSequence()
		d.state = stateGround
	case d.strEsc:
		d.anomaly(b, out)
	case b == byteBEL:
		d.seq = append(d.seq, b)
		*out = append(*out, classifyOSC(string(d.osc)).WithRaw(d.seq))
		d.resetSequence()
		d.state = stateGround
	case b == byteESC:
		d.seq = append(d.seq, b)
		d.strEsc = true
	default:
		d.seq = append(d.seq, b)
		d.osc = append(d.osc, b)
	}
}

func (d *Decoder) stepStringIgnore(b byte, out *[]schema.Event) {
	switch {
	case d.strEsc && b == '\\':
		d.seq = append(d.seq, b)
		*out = append(*out, classifyString(d.strIntro).WithRaw(d.seq))
		d.resetSequence()
		d.state = stateGround
	case d.strEsc:
		d.anomaly(b, out)
	case b == byteBEL:
		d.seq = append(d.seq, b)
		*out = append(*out, classifyString(d.strIntro).WithRaw(d.seq))
		d.resetSequence()
		d.state = stateGround
	case b == byteESC:
		d.seq = append(d.seq, b)
		d.strEsc = true
	default:
		d.seq = append(d.seq, b)
	}
}

// anomaly closes the partial sequence as a raw GenericEscape and reprocesses
// the offending byte from ground, so decoding resumes without losing it.
func (d *Decoder) anomaly(b byte, out *[]schema.Event) {
	if len(d.seq) > 0 {
		*out = append(*out, schema.Event{Type: schema.EventGenericEscape}.WithRaw(d.seq))
	}
	d.resetSequence()
	d.state = stateGround
	d.stepGround(b, out)
}

// accumulateText appends b to the pending UTF-8 fragment and moves every
// complete codepoint into the print run. Invalid lead bytes pass through
// one at a time so the raw stream stays byte-accurate.
func (d *Decoder) accumulateText(b byte) {
	d.pending = append(d.pending, b)
	for len(d.pending) > 0 {
		if !utf8.FullRune(d.pending) {
			if len(d.pending) < utf8.UTFMax {
				return
			}
			d.run = append(d.run, d.pending[0])
			d.pending = d.pending[1:]
			continue
		}
		_, size := utf8.DecodeRune(d.pending)
		d.run = append(d.run, d.pending[:size]...)
		d.pending = d.pending[size:]
	}
}

// flushRun emits the pending print run as one Print event carrying the
// color state active during accumulation. An incomplete trailing fragment
// can no longer complete once the run is interrupted, so its bytes join the
// run rather than being dropped.
func (d *Decoder) flushRun(out *[]schema.Event) {
	if len(d.pending) > 0 {
		d.run = append(d.run, d.pending...)
		d.pending = d.pending[:0]
	}
	if len(d.run) == 0 {
		return
	}
	ev := schema.Event{
		Type:  schema.EventPrint,
		Text:  string(d.run),
		Color: d.fg,
		BG:    d.bg,
	}.WithRaw(d.run)
	*out = append(*out, ev)
	d.run = d.run[:0]
}

func (d *Decoder) resetSequence() {
	d.seq = d.seq[:0]
	d.params = d.params[:0]
	d.osc = d.osc[:0]
	d.strIntro = 0
	d.strEsc = false
}
