package core

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"pkt.systems/vtscope/schema"
)

// SGR parameter handling. A single CSI ... m sequence may carry several
// attributes; the emitted event reflects the most interesting one (a color
// change wins over text attributes), while the returned fg/bg state always
// reflects every parameter applied in order.

var sgrAttributes = map[int]string{
	1: "bold", 2: "dim", 3: "italic", 4: "underline", 5: "blink",
	7: "reverse video", 8: "conceal", 9: "strikethrough",
	21: "double underline", 22: "normal intensity", 23: "no italic",
	24: "no underline", 25: "no blink", 27: "no reverse", 28: "reveal",
	29: "no strikethrough",
}

func classifySGR(params, fg, bg string) (schema.Event, string, string) {
	fields := splitSGRParams(params)

	var fgSet, bgSet, reset bool
	var attrs []string
	for i := 0; i < len(fields); i++ {
		n := fields[i]
		switch {
		case n == 0:
			reset = true
			fg, bg = "", ""
		case n >= 30 && n <= 37:
			fg = paletteHex(n - 30)
			fgSet = true
		case n >= 90 && n <= 97:
			fg = paletteHex(n - 90 + 8)
			fgSet = true
		case n >= 40 && n <= 47:
			bg = paletteHex(n - 40)
			bgSet = true
		case n >= 100 && n <= 107:
			bg = paletteHex(n - 100 + 8)
			bgSet = true
		case n == 39:
			fg = ""
			fgSet = true
		case n == 49:
			bg = ""
			bgSet = true
		case n == 38 || n == 48:
			hex, consumed := extendedColorHex(fields[i+1:])
			if consumed == 0 {
				attrs = append(attrs, fmt.Sprintf("attribute %d", n))
				break
			}
			if n == 38 {
				fg = hex
				fgSet = true
			} else {
				bg = hex
				bgSet = true
			}
			i += consumed
		default:
			if name, ok := sgrAttributes[n]; ok {
				attrs = append(attrs, name)
			} else {
				attrs = append(attrs, fmt.Sprintf("attribute %d", n))
			}
		}
	}

	switch {
	case fgSet:
		return schema.Event{
			Type:    schema.EventColorEscape,
			Title:   "FG",
			Color:   fg,
			Tooltip: "Set foreground color to " + describeColor(fg),
		}, fg, bg
	case bgSet:
		return schema.Event{
			Type:    schema.EventColorEscape,
			Title:   "BG",
			Color:   bg,
			Tooltip: "Set background color to " + describeColor(bg),
		}, fg, bg
	case reset:
		return schema.Event{
			Type:    schema.EventGenericEscape,
			Tooltip: "SGR (Select Graphic Rendition) reset (reset all styles)",
			Icon:    "reset",
		}, fg, bg
	default:
		return schema.Event{
			Type:    schema.EventGenericEscape,
			Title:   "SGR",
			Tooltip: "Set " + strings.Join(attrs, ", "),
		}, fg, bg
	}
}

// splitSGRParams parses the raw parameter bytes into integers. Both ';' and
// ':' separate values (the latter appears in colon-form extended colors).
// An empty parameter list means reset, per ECMA-48.
func splitSGRParams(params string) []int {
	if strings.TrimSpace(params) == "" {
		return []int{0}
	}
	parts := strings.FieldsFunc(params, func(r rune) bool {
		return r == ';' || r == ':'
	})
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return []int{0}
	}
	return out
}

// extendedColorHex resolves the argument form of SGR 38/48: "5;n" palette
// or "2;r;g;b" truecolor. It returns the hex color and how many fields it
// consumed; zero consumed means the arguments were malformed.
func extendedColorHex(rest []int) (string, int) {
	if len(rest) >= 2 && rest[0] == 5 {
		return paletteHex(rest[1]), 2
	}
	if len(rest) >= 4 && rest[0] == 2 {
		return fmt.Sprintf("#%02x%02x%02x", clampByte(rest[1]), clampByte(rest[2]), clampByte(rest[3])), 4
	}
	return "", 0
}

// paletteHex converts a 256-color palette index to its hex RGB string.
func paletteHex(idx int) string {
	if idx < 0 || idx > 255 {
		return ""
	}
	var c color.Color
	if idx < 16 {
		c = ansi.BasicColor(idx)
	} else {
		c = ansi.ExtendedColor(idx)
	}
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func describeColor(hex string) string {
	if hex == "" {
		return "default"
	}
	return hex
}

func clampByte(n int) int {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}
