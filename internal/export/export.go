// Package export writes aggregated series to a spreadsheet workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/specklerr/internal/model"
)

// SummarySheet is the name of the first sheet of every workbook.
const SummarySheet = "Summary"

const maxSheetName = 31

var (
	summaryHeaders = []interface{}{
		"Label", "Samples", "Mean", "Std", "CI Low", "CI High", "RMSE", "Median", "P95", "Max", "Single Sample",
	}
	frameHeaders = []interface{}{
		"Frame", "Error X (mm)", "Error Y (mm)", "Dist. X (mm)", "Dist. Y (mm)", "Absolute Error (mm)",
	}
	sheetReplacer = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_", "'", "_")
)

// Workbook writes a summary sheet and one frame sheet per series to w.
func Workbook(w io.Writer, collection model.SeriesCollection) error {
	f := excelize.NewFile()
	// Best-effort close; the workbook is already written or the error is reported.
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if err := writeSummary(f, collection); err != nil {
		return err
	}
	for i, s := range collection.Series {
		name := SheetName(i, s.Label)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		if err := writeFrames(f, name, s); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SheetName returns the frame sheet name of the series at index i, at most 31 characters.
// The index prefix keeps names unique after sanitizing and truncation.
func SheetName(i int, label string) string {
	name := []rune(fmt.Sprintf("%02d_%s", i+1, sheetReplacer.Replace(label)))
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return string(name)
}

func writeSummary(f *excelize.File, collection model.SeriesCollection) error {
	if err := setRow(f, SummarySheet, 1, summaryHeaders); err != nil {
		return err
	}
	for i, s := range collection.Series {
		sum := s.Summary
		row := []interface{}{
			model.LegendLabel(s.Label),
			sum.SampleCount,
			sum.MeanError,
			sum.StdError,
			sum.LowerBand,
			sum.UpperBand,
			sum.RMSE,
			sum.MedianError,
			sum.P95Error,
			sum.MaxError,
			sum.Degenerate,
		}
		if err := setRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeFrames(f *excelize.File, sheet string, s model.Series) error {
	if err := setRow(f, sheet, 1, frameHeaders); err != nil {
		return err
	}
	for i, fr := range s.Frames {
		abs := 0.0
		if i < len(s.AbsoluteError) {
			abs = s.AbsoluteError[i]
		}
		row := []interface{}{fr.FrameIndex, fr.ErrorX, fr.ErrorY, fr.DistX, fr.DistY, abs}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
