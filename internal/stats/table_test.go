package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Series", "Mean", "Frames"}
	rows := [][]string{
		{"2 mm", "0.1250", "12"},
		{"10 mm", "1.5000", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Series   Mean Frames" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "2 mm   0.1250     12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "10 mm  1.5000      3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestDisplayWidthWideRunes(t *testing.T) {
	if got := displayWidth("mm"); got != 2 {
		t.Fatalf("expected width 2, got %d", got)
	}
	if got := displayWidth("直径"); got != 4 {
		t.Fatalf("expected width 4 for wide runes, got %d", got)
	}
}
