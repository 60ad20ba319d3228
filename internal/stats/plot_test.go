package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Absolute Error", []Series{
		{Name: "2 mm", Values: []float64{0.1, 0.2, 0.3, 0.2, 0.1}},
		{Name: "5 mm", Values: []float64{0.4, 0.4, 0.5}},
	}, 20, 4, false)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Absolute Error") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "shared scale") {
		t.Fatalf("expected scale note in output")
	}
	if !strings.Contains(out, "min=0.000 max=0.500") {
		t.Fatalf("expected zero-anchored shared range, got:\n%s", out)
	}
	if !strings.Contains(out, "Legend:") || !strings.Contains(out, "5 mm") {
		t.Fatalf("expected legend in output")
	}
	if !strings.Contains(out, "frame 4") {
		t.Fatalf("expected frame axis in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	expectedMin := 1 + 1 + 4 + 1 + 1
	if len(lines) < expectedMin {
		t.Fatalf("expected at least %d lines of output, got %d", expectedMin, len(lines))
	}
}

func TestPlotSeriesSinglePointAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "", []Series{{Name: "empty"}}, 20, 4, false); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty series")
	}
	if err := PlotSeries(&buf, "", []Series{{Name: "one", Values: []float64{0}}}, 20, 4, false); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if !strings.Contains(buf.String(), "min=0.000 max=1.000") {
		t.Fatalf("expected widened range for constant data, got:\n%s", buf.String())
	}
}

func TestSharedRange(t *testing.T) {
	r := sharedRange([]Series{{Values: []float64{2, 3}}, {Values: []float64{-1, 1}}})
	if r.min != -1 || r.max != 3 {
		t.Fatalf("unexpected range %+v", r)
	}
}
