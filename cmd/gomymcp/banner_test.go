package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintBannerPlain(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	printBanner(&buf, false)
	out := buf.String()

	if strings.Contains(out, "\033[") {
		t.Fatalf("expected no ANSI escape codes without color, got:\n%s", out)
	}
	// A couple of distinctive ASCII art fragments.
	if !strings.Contains(out, `__ _  ___`) {
		t.Fatalf("expected banner art, got:\n%s", out)
	}
	if !strings.Contains(out, `|___/`) {
		t.Fatalf("expected banner art, got:\n%s", out)
	}
}

func TestPrintBannerColor(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	printBanner(&buf, true)
	out := buf.String()

	if !strings.Contains(out, "\033[") {
		t.Fatalf("expected ANSI escape codes with color, got:\n%s", out)
	}
	if !strings.Contains(out, "\033[0m") {
		t.Fatalf("expected ANSI reset codes, got:\n%s", out)
	}
}
