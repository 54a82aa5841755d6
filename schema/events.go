package schema

import "strings"

// EventType identifies the event variant sent to viewers.
type EventType string

const (
	// EventPrint is a run of printable characters under one color state.
	EventPrint EventType = "Print"
	// EventColorEscape is a recognized color-setting SGR sequence.
	EventColorEscape EventType = "ColorEscape"
	// EventGenericEscape is any other recognized control or escape sequence.
	EventGenericEscape EventType = "GenericEscape"
	// EventLineBreak is a rendered line-terminating control byte (LF, CR).
	EventLineBreak EventType = "LineBreak"
	// EventInvisibleLineBreak marks a silent break/non-break transition.
	EventInvisibleLineBreak EventType = "InvisibleLineBreak"
	// EventDisconnected is appended exactly once when the session ends.
	EventDisconnected EventType = "Disconnected"
)

// Event is one decoded terminal event. The variant is closed: Type is always
// one of the EventType constants and unmapped escape sequences fall into
// EventGenericEscape rather than an open-ended default.
//
// Color doubles as the foreground color of a Print run and the target color
// of a ColorEscape; BG is only set on Print.
//
// Raw holds the exact input bytes consumed to produce the event; RawBytes is
// the sanitized printable form serialized to viewers. Concatenating Raw over
// the full ordered event sequence reproduces the pty output byte-for-byte.
// Synthetic events (InvisibleLineBreak, Disconnected) carry no raw bytes.
type Event struct {
	Type     EventType `json:"type"`
	Text     string    `json:"text,omitempty"`
	Color    string    `json:"color,omitempty"`
	BG       string    `json:"bg_color,omitempty"`
	Title    string    `json:"title,omitempty"`
	Tooltip  string    `json:"tooltip,omitempty"`
	Icon     string    `json:"icon,omitempty"`
	RawBytes string    `json:"raw_bytes,omitempty"`
	Raw      []byte    `json:"-"`
}

// Synthetic reports whether the event carries no raw input bytes.
func (e Event) Synthetic() bool {
	return e.Type == EventInvisibleLineBreak || e.Type == EventDisconnected
}

// IsLineBreak reports whether the event renders as a line boundary.
func (e Event) IsLineBreak() bool {
	return e.Type == EventLineBreak
}

// WithRaw sets both byte representations from the consumed input bytes.
func (e Event) WithRaw(raw []byte) Event {
	e.Raw = append([]byte(nil), raw...)
	e.RawBytes = SanitizeRaw(raw)
	return e
}

// SanitizeRaw converts raw escape bytes into a printable string for viewers,
// replacing control bytes with hex notation.
func SanitizeRaw(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range string(raw) {
		switch {
		case c == 0x1b:
			b.WriteString(`\x1b`)
		case c < 0x20 || c == 0x7f:
			b.WriteString(hexByte(byte(c)))
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func hexByte(c byte) string {
	const digits = "0123456789abcdef"
	return `\x` + string([]byte{digits[c>>4], digits[c&0xf]})
}
