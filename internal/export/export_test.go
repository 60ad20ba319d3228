package export

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/specklerr/internal/model"
)

func sampleCollection() model.SeriesCollection {
	return model.SeriesCollection{Series: []model.Series{
		{
			Label: "2",
			Frames: []model.FrameRecord{
				{FrameIndex: 0, ErrorX: 3, ErrorY: 4, DistX: 0.1, DistY: 0.2},
				{FrameIndex: 1, ErrorX: 0, ErrorY: 1, DistX: 0.3, DistY: 0.4},
			},
			AbsoluteError: []float64{5, 1},
			Summary:       model.SummaryStatistics{SampleCount: 2, MeanError: 3, RMSE: 3.6055512755},
		},
		{
			Label:         "5",
			Frames:        []model.FrameRecord{{FrameIndex: 0}},
			AbsoluteError: []float64{0},
			Summary:       model.SummaryStatistics{SampleCount: 1, Degenerate: true},
		},
	}}
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWorkbookSheets(t *testing.T) {
	var buf bytes.Buffer
	if err := Workbook(&buf, sampleCollection()); err != nil {
		t.Fatalf("workbook: %v", err)
	}
	f := openWorkbook(t, buf.Bytes())
	sheets := f.GetSheetList()
	want := []string{"Summary", "01_2", "02_5"}
	if strings.Join(sheets, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	rows, err := f.GetRows(SummarySheet)
	if err != nil {
		t.Fatalf("summary rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Label" || rows[1][0] != "2 mm" || rows[2][0] != "5 mm" {
		t.Fatalf("unexpected summary rows %v", rows)
	}
	if rows[1][1] != "2" || rows[1][2] != "3" {
		t.Fatalf("unexpected summary values %v", rows[1])
	}
	if rows[2][10] != "TRUE" {
		t.Fatalf("expected single sample flag, got %q", rows[2][10])
	}

	frames, err := f.GetRows("01_2")
	if err != nil {
		t.Fatalf("frame rows: %v", err)
	}
	if len(frames) != 3 || frames[1][5] != "5" || frames[2][0] != "1" {
		t.Fatalf("unexpected frame rows %v", frames)
	}
}

func TestWorkbookEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	if err := Workbook(&buf, model.SeriesCollection{}); err != nil {
		t.Fatalf("workbook: %v", err)
	}
	f := openWorkbook(t, buf.Bytes())
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SummarySheet {
		t.Fatalf("unexpected sheets %v", sheets)
	}
}

func TestSheetName(t *testing.T) {
	if got := SheetName(0, "a/b:c"); got != "01_a_b_c" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
	long := SheetName(9, strings.Repeat("x", 40))
	if len(long) != 31 || !strings.HasPrefix(long, "10_") {
		t.Fatalf("unexpected truncated name %q", long)
	}
}

func TestSheetNameTruncatesOnCharacters(t *testing.T) {
	name := SheetName(0, "a"+strings.Repeat("é", 40))
	if !utf8.ValidString(name) {
		t.Fatalf("invalid UTF-8 sheet name %q", name)
	}
	if n := utf8.RuneCountInString(name); n != 31 {
		t.Fatalf("expected 31 characters, got %d", n)
	}

	var buf bytes.Buffer
	collection := model.SeriesCollection{Series: []model.Series{{
		Label:         "a" + strings.Repeat("é", 40),
		Frames:        []model.FrameRecord{{FrameIndex: 0}},
		AbsoluteError: []float64{0},
	}}}
	if err := Workbook(&buf, collection); err != nil {
		t.Fatalf("workbook: %v", err)
	}
	f := openWorkbook(t, buf.Bytes())
	if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[1] != name {
		t.Fatalf("unexpected sheets %q", sheets)
	}
}
