package core

import (
	"fmt"
	"strings"

	"pkt.systems/vtscope/schema"
)

// Classification tables mapping completed sequences to viewer-facing titles,
// tooltips, and icons. Anything not covered falls through to a bare
// GenericEscape carrying only its raw bytes.

var c0Names = [...]string{
	0x00: "NUL", 0x01: "SOH", 0x02: "STX", 0x03: "ETX", 0x04: "EOT",
	0x05: "ENQ", 0x06: "ACK", 0x07: "BEL", 0x08: "BS", 0x09: "HT",
	0x0a: "LF", 0x0b: "VT", 0x0c: "FF", 0x0d: "CR", 0x0e: "SO",
	0x0f: "SI", 0x10: "DLE", 0x11: "DC1", 0x12: "DC2", 0x13: "DC3",
	0x14: "DC4", 0x15: "NAK", 0x16: "SYN", 0x17: "ETB", 0x18: "CAN",
	0x19: "EM", 0x1a: "SUB", 0x1b: "ESC", 0x1c: "FS", 0x1d: "GS",
	0x1e: "RS", 0x1f: "US",
}

// classifyControl maps a bare C0 byte (or DEL) encountered in ground state.
// LF and CR render as line breaks; the rest are generic escapes.
func classifyControl(b byte) schema.Event {
	raw := []byte{b}
	switch b {
	case '\n':
		return schema.Event{Type: schema.EventLineBreak, Title: "LF"}.WithRaw(raw)
	case '\r':
		return schema.Event{Type: schema.EventLineBreak, Title: "CR"}.WithRaw(raw)
	case byteBEL:
		return schema.Event{Type: schema.EventGenericEscape, Tooltip: "Bell", Icon: "bell"}.WithRaw(raw)
	case 0x08:
		return schema.Event{Type: schema.EventGenericEscape, Tooltip: "Backspace", Icon: "backspace"}.WithRaw(raw)
	case '\t':
		return schema.Event{Type: schema.EventGenericEscape, Tooltip: "Tab", Icon: "tab"}.WithRaw(raw)
	case byteDEL:
		return schema.Event{Type: schema.EventGenericEscape, Title: "DEL"}.WithRaw(raw)
	}
	title := ""
	if int(b) < len(c0Names) {
		title = c0Names[b]
	}
	return schema.Event{Type: schema.EventGenericEscape, Title: title}.WithRaw(raw)
}

// classifyEsc maps a completed non-CSI, non-string escape sequence. seq is
// the full raw sequence starting with ESC; the last byte is the final.
func classifyEsc(seq []byte) schema.Event {
	final := seq[len(seq)-1]
	if len(seq) > 2 {
		// Intermediate bytes present: charset designations and friends.
		switch seq[1] {
		case '(', ')':
			return schema.Event{
				Type:    schema.EventGenericEscape,
				Tooltip: fmt.Sprintf("Designate character set G%d: %q", seq[1]-'(', final),
				Icon:    "alphabet",
			}
		}
		return schema.Event{Type: schema.EventGenericEscape, Title: "ESC"}
	}
	switch final {
	case '7':
		return schema.Event{Type: schema.EventGenericEscape, Tooltip: "Save cursor position", Icon: "save"}
	case '8':
		return schema.Event{Type: schema.EventGenericEscape, Tooltip: "Restore cursor position", Icon: "restore"}
	case 'c':
		return schema.Event{Type: schema.EventGenericEscape, Title: "RIS", Tooltip: "Full terminal reset"}
	case 'D':
		return schema.Event{Type: schema.EventGenericEscape, Title: "IND", Tooltip: "Index (move down one line)"}
	case 'M':
		return schema.Event{Type: schema.EventGenericEscape, Title: "RI", Tooltip: "Reverse index (move up one line)"}
	case 'E':
		return schema.Event{Type: schema.EventGenericEscape, Title: "NEL", Tooltip: "Next line"}
	case '=':
		return schema.Event{Type: schema.EventGenericEscape, Tooltip: "Application keypad mode"}
	case '>':
		return schema.Event{Type: schema.EventGenericEscape, Tooltip: "Normal keypad mode"}
	case '\\':
		return schema.Event{Type: schema.EventGenericEscape, Title: "\\", Tooltip: "ST / String Terminator"}
	}
	return schema.Event{Type: schema.EventGenericEscape, Title: "ESC"}
}

// classifyCSI maps a completed CSI sequence. params holds the raw parameter
// and intermediate bytes, final is the terminating byte. The current fg/bg
// color state is threaded through so SGR sequences can update it; the
// returned values are the state after the sequence.
func classifyCSI(params string, final byte, fg, bg string) (schema.Event, string, string) {
	if final == 'm' {
		return classifySGR(params, fg, bg)
	}
	ev := schema.Event{Type: schema.EventGenericEscape}
	switch final {
	case 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'f', 'd':
		ev.Tooltip = cursorTooltip(params, final)
		ev.Icon = "cursor"
	case 's':
		ev.Tooltip = "Save cursor position"
		ev.Icon = "save"
	case 'u':
		ev.Tooltip = "Restore cursor position"
		ev.Icon = "restore"
	case 'J':
		ev.Tooltip = eraseDisplayTooltip(params)
		ev.Icon = "eraser"
	case 'K':
		ev.Tooltip = eraseLineTooltip(params)
		ev.Icon = "eraser"
	case 'h', 'l':
		ev.Title, ev.Tooltip = modeTooltip(params, final)
	case 'r':
		ev.Tooltip = "Set scrolling region"
	case 'n':
		ev.Title = "DSR"
		ev.Tooltip = "Device status report"
	case 'c':
		ev.Title = "DA"
		ev.Tooltip = "Device attributes query"
	case 't':
		ev.Title = "Window"
		ev.Tooltip = "Window manipulation"
	case '@':
		ev.Tooltip = "Insert blank characters"
		ev.Icon = "eraser"
	case 'L':
		ev.Tooltip = "Insert lines"
	case 'M':
		ev.Tooltip = "Delete lines"
	case 'P':
		ev.Tooltip = "Delete characters"
		ev.Icon = "eraser"
	case 'S':
		ev.Tooltip = "Scroll up"
	case 'T':
		ev.Tooltip = "Scroll down"
	case 'X':
		ev.Tooltip = "Erase characters"
		ev.Icon = "eraser"
	default:
		// Unknown final byte: the sequence still closes cleanly, carrying
		// only its raw bytes.
	}
	return ev, fg, bg
}

var cursorDirections = map[byte]string{
	'A': "up", 'B': "down", 'C': "forward", 'D': "back",
	'E': "to next line", 'F': "to previous line",
}

func cursorTooltip(params string, final byte) string {
	switch final {
	case 'H', 'f':
		if params == "" {
			return "Move cursor to home"
		}
		return fmt.Sprintf("Move cursor to %s", strings.ReplaceAll(params, ";", ","))
	case 'G':
		return "Move cursor to column " + firstParamOr(params, "1")
	case 'd':
		return "Move cursor to row " + firstParamOr(params, "1")
	}
	return fmt.Sprintf("Move cursor %s %s", cursorDirections[final], firstParamOr(params, "1"))
}

func eraseDisplayTooltip(params string) string {
	switch firstParamOr(params, "0") {
	case "0":
		return "Erase to end of display"
	case "1":
		return "Erase to start of display"
	case "2":
		return "Erase display"
	case "3":
		return "Erase scrollback"
	}
	return "Erase in display"
}

func eraseLineTooltip(params string) string {
	switch firstParamOr(params, "0") {
	case "0":
		return "Erase to end of line"
	case "1":
		return "Erase to start of line"
	case "2":
		return "Erase line"
	}
	return "Erase in line"
}

var privateModes = map[string]string{
	"1":    "application cursor keys",
	"7":    "auto-wrap mode",
	"12":   "cursor blinking",
	"25":   "cursor visibility",
	"47":   "alternate screen",
	"1000": "mouse click tracking",
	"1002": "mouse drag tracking",
	"1003": "mouse any-event tracking",
	"1004": "focus reporting",
	"1006": "SGR mouse encoding",
	"1049": "alternate screen with saved cursor",
	"2004": "bracketed paste",
}

func modeTooltip(params string, final byte) (string, string) {
	verb := "Enable"
	if final == 'l' {
		verb = "Disable"
	}
	if strings.HasPrefix(params, "?") {
		mode := strings.TrimPrefix(params, "?")
		if name, ok := privateModes[mode]; ok {
			return "Mode", fmt.Sprintf("%s %s", verb, name)
		}
		return "Mode", fmt.Sprintf("%s private mode %s", verb, mode)
	}
	return "Mode", fmt.Sprintf("%s mode %s", verb, params)
}

// classifyOSC maps a completed OSC payload of the form "code;argument".
func classifyOSC(payload string) schema.Event {
	code, arg, _ := strings.Cut(payload, ";")
	switch code {
	case "0", "2":
		return schema.Event{Type: schema.EventGenericEscape, Title: "Title", Tooltip: "Set window title: " + arg}
	case "1":
		return schema.Event{Type: schema.EventGenericEscape, Title: "Icon", Tooltip: "Set icon name: " + arg}
	case "7":
		return schema.Event{Type: schema.EventGenericEscape, Tooltip: "Report working directory: " + arg, Icon: "folder"}
	case "8":
		// OSC 8 hyperlinks: params;uri. Empty uri clears the link.
		_, uri, _ := strings.Cut(arg, ";")
		if strings.TrimSpace(uri) == "" {
			return schema.Event{Type: schema.EventGenericEscape, Tooltip: "Clear hyperlink", Icon: "link-off"}
		}
		return schema.Event{Type: schema.EventGenericEscape, Tooltip: "Set hyperlink: " + uri, Icon: "link"}
	case "52":
		return schema.Event{Type: schema.EventGenericEscape, Tooltip: "Clipboard access", Icon: "clipboard"}
	case "133":
		return schema.Event{Type: schema.EventGenericEscape, Title: "Prompt", Tooltip: "Shell integration marker: " + arg}
	}
	return schema.Event{Type: schema.EventGenericEscape, Title: "OSC", Tooltip: "OSC " + payload}
}

// classifyString maps a completed passthrough string sequence by introducer.
func classifyString(intro byte) schema.Event {
	switch intro {
	case 'P':
		return schema.Event{Type: schema.EventGenericEscape, Title: "DCS", Tooltip: "Device control string"}
	case 'X':
		return schema.Event{Type: schema.EventGenericEscape, Title: "SOS", Tooltip: "Start of string"}
	case '^':
		return schema.Event{Type: schema.EventGenericEscape, Title: "PM", Tooltip: "Privacy message"}
	case '_':
		return schema.Event{Type: schema.EventGenericEscape, Title: "APC", Tooltip: "Application program command"}
	}
	return schema.Event{Type: schema.EventGenericEscape}
}

func firstParamOr(params, fallback string) string {
	first, _, _ := strings.Cut(params, ";")
	if first == "" {
		return fallback
	}
	return first
}
