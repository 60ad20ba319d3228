package aggregate

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/specklerr/internal/discovery"
	"github.com/verte-zerg/specklerr/internal/loader"
	"github.com/verte-zerg/specklerr/internal/model"
	"github.com/verte-zerg/specklerr/internal/stats"
)

const header = "Error X (mm),Error Y (mm),Dist. X (mm),Dist. Y (mm)\n"

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func testConfig(dir string) model.Config {
	return model.Config{
		InputDir:        dir,
		Extension:       ".csv",
		Delimiter:       ',',
		ConfidenceLevel: 0.95,
		SingleSample:    model.SingleSampleZero,
	}
}

func TestRunOrdersAndSummarizes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "laserDia_5mm.csv", header+"0,0,0.3,0.3\n")
	writeFile(t, dir, "laserDia_2mm.csv", header+"3,4,0.1,0.1\n3,4,0.2,0.2\n")
	writeFile(t, dir, "readme.txt", "not a log")

	var out bytes.Buffer
	collection, err := New(testConfig(dir), WithSummaryWriter(&out)).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if collection.Len() != 2 {
		t.Fatalf("expected 2 series, got %d", collection.Len())
	}
	labels := collection.Labels()
	if labels[0] != "2" || labels[1] != "5" {
		t.Fatalf("unexpected order: %v", labels)
	}

	first := collection.Series[0].Summary
	if first.MeanError != 5 || first.StdError != 0 || first.RMSE != 5 || first.SampleCount != 2 {
		t.Fatalf("unexpected 2mm summary: %+v", first)
	}
	second := collection.Series[1].Summary
	if second.MeanError != 0 || second.SampleCount != 1 || !second.Degenerate {
		t.Fatalf("unexpected 5mm summary: %+v", second)
	}
	if second.LowerBand != 0 || second.UpperBand != 0 {
		t.Fatalf("expected clamped band for single sample: %+v", second)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 summary lines, got %q", out.String())
	}
	if lines[0] != "For 2 mm - Mean: 5.0, CI: (5.0, 5.0), RMSE: 5.0" {
		t.Fatalf("unexpected summary line %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "[single sample]") {
		t.Fatalf("expected single sample marker, got %q", lines[1])
	}
}

func TestRunFramesAndAbsoluteError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "run_1mm.csv", header+"0.3,0.4,0,0\n-0.6,0.8,0,0\n0,0,0,0\n")
	collection, err := New(testConfig(dir), WithSummaryWriter(nil)).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	s := collection.Series[0]
	if s.Label != "1" || s.Source.SortKey != 0 {
		t.Fatalf("unexpected series identity: %+v", s.Source)
	}
	want := []float64{0.5, 1, 0}
	for i, f := range s.Frames {
		if f.FrameIndex != i {
			t.Fatalf("frame %d has index %d", i, f.FrameIndex)
		}
		if diff := s.AbsoluteError[i] - want[i]; diff > 1e-12 || diff < -1e-12 {
			t.Fatalf("abs error %d = %v, want %v", i, s.AbsoluteError[i], want[i])
		}
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	var out bytes.Buffer
	collection, err := New(testConfig(t.TempDir()), WithSummaryWriter(&out)).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if collection.Len() != 0 {
		t.Fatalf("expected empty collection, got %d", collection.Len())
	}
	if out.Len() != 0 {
		t.Fatalf("expected no summary output")
	}
}

func TestRunMissingDirectory(t *testing.T) {
	_, err := New(testConfig(filepath.Join(t.TempDir(), "missing"))).Run()
	var derr *discovery.DiscoveryError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DiscoveryError, got %v", err)
	}
}

func TestRunFailsFastOnMissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "laserDia_2mm.csv", header+"0,0,0,0\n")
	writeFile(t, dir, "laserDia_3mm.csv", "Error X (mm),Error Y (mm),Dist. Y (mm)\n0,0,0\n")
	writeFile(t, dir, "laserDia_4mm.csv", header+"0,0,0,0\n")

	collection, err := New(testConfig(dir), WithSummaryWriter(nil)).Run()
	var merr *loader.MalformedSeriesError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedSeriesError, got %v", err)
	}
	if merr.Column != loader.ColumnDistX || !strings.HasSuffix(merr.Path, "laserDia_3mm.csv") {
		t.Fatalf("unexpected error fields: %+v", merr)
	}
	if !strings.Contains(err.Error(), "laserDia_3mm.csv") {
		t.Fatalf("expected file in message: %v", err)
	}
	if collection.Len() != 0 {
		t.Fatalf("expected no partial collection, got %d series", collection.Len())
	}
}

func TestRunSingleSampleErrorPolicy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "laserDia_5mm.csv", header+"0,0,0,0\n")
	cfg := testConfig(dir)
	cfg.SingleSample = model.SingleSampleError

	_, err := New(cfg, WithSummaryWriter(nil)).Run()
	var serr *stats.InsufficientSampleError
	if !errors.As(err, &serr) || serr.Count != 1 {
		t.Fatalf("expected InsufficientSampleError, got %v", err)
	}
}

func TestRunHeaderOnlyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "laserDia_5mm.csv", header)
	_, err := New(testConfig(dir), WithSummaryWriter(nil)).Run()
	var serr *stats.InsufficientSampleError
	if !errors.As(err, &serr) || serr.Count != 0 {
		t.Fatalf("expected InsufficientSampleError for empty series, got %v", err)
	}
}

func TestRunNoLabelToken(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plain.csv", header+"0,0,0,0\n")
	_, err := New(testConfig(dir), WithSummaryWriter(nil)).Run()
	if !errors.Is(err, discovery.ErrNoLabelToken) {
		t.Fatalf("expected ErrNoLabelToken, got %v", err)
	}
}

func TestFormatValue(t *testing.T) {
	cases := map[float64]string{
		5:       "5.0",
		0:       "0.0",
		0.125:   "0.125",
		-2.5:    "-2.5",
		1234567: "1234567.0",
	}
	for v, want := range cases {
		if got := formatValue(v); got != want {
			t.Fatalf("formatValue(%v) = %q, want %q", v, got, want)
		}
	}
}

func TestRunLoadsDelimitedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "laserDia_2mm.csv", strings.ReplaceAll(header, ",", ";")+"3;4;0;0\n")
	cfg := testConfig(dir)
	cfg.Delimiter = ';'
	collection, err := New(cfg, WithSummaryWriter(nil)).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if collection.Series[0].Summary.MeanError != 5 {
		t.Fatalf("unexpected summary %+v", collection.Series[0].Summary)
	}
}
