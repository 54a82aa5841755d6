package core

import (
	"testing"

	"pkt.systems/vtscope/schema"
)

func TestClassifySGRBasicForeground(t *testing.T) {
	ev, fg, bg := classifySGR("34", "", "")
	if ev.Type != schema.EventColorEscape || ev.Title != "FG" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if fg != paletteHex(4) || bg != "" {
		t.Fatalf("unexpected state: fg=%q bg=%q", fg, bg)
	}
}

func TestClassifySGRBrightBackground(t *testing.T) {
	ev, fg, bg := classifySGR("103", "", "")
	if ev.Title != "BG" || ev.Color != paletteHex(11) {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if fg != "" || bg != paletteHex(11) {
		t.Fatalf("unexpected state: fg=%q bg=%q", fg, bg)
	}
}

func TestClassifySGRPalette(t *testing.T) {
	ev, fg, _ := classifySGR("38;5;196", "", "")
	if ev.Type != schema.EventColorEscape || ev.Color != "#ff0000" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if fg != "#ff0000" {
		t.Fatalf("unexpected fg: %q", fg)
	}
}

func TestClassifySGRTruecolor(t *testing.T) {
	_, _, bg := classifySGR("48;2;16;32;64", "", "")
	if bg != "#102040" {
		t.Fatalf("unexpected bg: %q", bg)
	}
}

func TestClassifySGRColonSeparated(t *testing.T) {
	ev, fg, _ := classifySGR("38:5:21", "", "")
	if ev.Type != schema.EventColorEscape {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if fg != paletteHex(21) {
		t.Fatalf("unexpected fg: %q", fg)
	}
}

func TestClassifySGRResetClearsState(t *testing.T) {
	ev, fg, bg := classifySGR("0", "#ff0000", "#000080")
	if ev.Type != schema.EventGenericEscape || ev.Icon != "reset" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if fg != "" || bg != "" {
		t.Fatalf("state not cleared: fg=%q bg=%q", fg, bg)
	}
}

func TestClassifySGREmptyParamsMeansReset(t *testing.T) {
	ev, fg, bg := classifySGR("", "#ff0000", "")
	if ev.Icon != "reset" || fg != "" || bg != "" {
		t.Fatalf("empty params should reset: %+v fg=%q bg=%q", ev, fg, bg)
	}
}

func TestClassifySGRDefaultForeground(t *testing.T) {
	ev, fg, bg := classifySGR("39", "#ff0000", "#000080")
	if ev.Type != schema.EventColorEscape || ev.Tooltip != "Set foreground color to default" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if fg != "" || bg != "#000080" {
		t.Fatalf("unexpected state: fg=%q bg=%q", fg, bg)
	}
}

func TestClassifySGRAttributesOnly(t *testing.T) {
	ev, fg, bg := classifySGR("1;4", "#ff0000", "")
	if ev.Type != schema.EventGenericEscape || ev.Title != "SGR" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Tooltip != "Set bold, underline" {
		t.Fatalf("unexpected tooltip: %q", ev.Tooltip)
	}
	if fg != "#ff0000" || bg != "" {
		t.Fatalf("attributes must not touch color state: fg=%q bg=%q", fg, bg)
	}
}

func TestClassifySGRColorWinsOverAttributes(t *testing.T) {
	ev, fg, _ := classifySGR("1;31", "", "")
	if ev.Type != schema.EventColorEscape || ev.Title != "FG" {
		t.Fatalf("color change should win: %+v", ev)
	}
	if fg != paletteHex(1) {
		t.Fatalf("unexpected fg: %q", fg)
	}
}

func TestClassifySGRMalformedExtended(t *testing.T) {
	ev, fg, bg := classifySGR("38", "", "")
	if ev.Type != schema.EventGenericEscape {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if fg != "" || bg != "" {
		t.Fatalf("malformed extended color must not set state: fg=%q bg=%q", fg, bg)
	}
}

func TestPaletteHexBounds(t *testing.T) {
	if hex := paletteHex(-1); hex != "" {
		t.Fatalf("expected empty hex for negative index, got %q", hex)
	}
	if hex := paletteHex(256); hex != "" {
		t.Fatalf("expected empty hex for out of range index, got %q", hex)
	}
	if hex := paletteHex(15); hex != "#ffffff" {
		t.Fatalf("unexpected hex for index 15: %q", hex)
	}
}
