package sshserver

import (
	"fmt"
	"strings"

	"pkt.systems/vtscope/schema"
)

// renderLine formats one event as a single line of plain text. Control
// bytes never pass through raw; the sanitized escaped form is used instead.
func renderLine(ev schema.Event) string {
	switch ev.Type {
	case schema.EventPrint:
		return fmt.Sprintf("%-18s %s", ev.Type, schema.SanitizeRaw([]byte(ev.Text)))
	case schema.EventLineBreak:
		return fmt.Sprintf("%-18s %s", ev.Type, ev.Title)
	case schema.EventInvisibleLineBreak:
		return fmt.Sprintf("%-18s", ev.Type)
	case schema.EventColorEscape:
		return fmt.Sprintf("%-18s %s %s (%s)", ev.Type, ev.Title, ev.Color, ev.RawBytes)
	case schema.EventDisconnected:
		return fmt.Sprintf("%-18s session ended", ev.Type)
	}
	parts := []string{fmt.Sprintf("%-18s", ev.Type)}
	if ev.Title != "" {
		parts = append(parts, ev.Title)
	}
	if ev.Tooltip != "" {
		parts = append(parts, ev.Tooltip)
	}
	if ev.RawBytes != "" {
		parts = append(parts, "("+ev.RawBytes+")")
	}
	return strings.Join(parts, " ")
}
