// Package loader parses tracking logs into frame records.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/specklerr/internal/model"
)

// Column names written by the tracking exporter.
const (
	ColumnErrorX = "Error X (mm)"
	ColumnErrorY = "Error Y (mm)"
	ColumnDistX  = "Dist. X (mm)"
	ColumnDistY  = "Dist. Y (mm)"
)

// HeaderRow is the Row value of errors found in the header.
const HeaderRow = -1

var requiredColumns = []string{ColumnErrorX, ColumnErrorY, ColumnDistX, ColumnDistY}

// MalformedSeriesError reports a missing column or a bad cell. Row is the 0-based frame index,
// or HeaderRow for header problems.
type MalformedSeriesError struct {
	Path   string
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *MalformedSeriesError) Error() string {
	switch {
	case e.Row == HeaderRow && e.Column != "":
		return fmt.Sprintf("%s: missing column %q", e.Path, e.Column)
	case e.Row == HeaderRow:
		return fmt.Sprintf("%s: invalid header: %v", e.Path, e.Err)
	case e.Column == "":
		return fmt.Sprintf("%s: row %d: %v", e.Path, e.Row, e.Err)
	default:
		return fmt.Sprintf("%s: row %d column %q: invalid number %q", e.Path, e.Row, e.Column, e.Value)
	}
}

func (e *MalformedSeriesError) Unwrap() error {
	return e.Err
}

// Options controls parsing.
type Options struct {
	Delimiter rune
}

// DefaultOptions returns comma-delimited parsing options.
func DefaultOptions() Options {
	return Options{Delimiter: ','}
}

// Load reads the frame records of the log at path.
func Load(path string, opts Options) (frames []model.FrameRecord, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			frames, err = nil, fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return LoadReader(file, path, opts)
}

// LoadReader parses frame records from r; path is only used in errors.
func LoadReader(r io.Reader, path string, opts Options) ([]model.FrameRecord, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("empty file")
		}
		return nil, &MalformedSeriesError{Path: path, Row: HeaderRow, Err: err}
	}
	idx, err := columnIndex(header, path)
	if err != nil {
		return nil, err
	}

	var frames []model.FrameRecord
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row := len(frames)
		if err != nil {
			return nil, &MalformedSeriesError{Path: path, Row: row, Err: err}
		}
		values := [4]float64{}
		for i, col := range requiredColumns {
			raw := strings.TrimSpace(record[idx[i]])
			v, perr := parseCell(raw)
			if perr != nil {
				return nil, &MalformedSeriesError{Path: path, Column: col, Row: row, Value: raw, Err: perr}
			}
			values[i] = v
		}
		frames = append(frames, model.FrameRecord{
			FrameIndex: row,
			ErrorX:     values[0],
			ErrorY:     values[1],
			DistX:      values[2],
			DistY:      values[3],
		})
	}
	return frames, nil
}

func columnIndex(header []string, path string) ([4]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := positions[h]; !dup {
			positions[h] = i
		}
	}
	var idx [4]int
	for i, col := range requiredColumns {
		pos, ok := positions[col]
		if !ok {
			return idx, &MalformedSeriesError{Path: path, Column: col, Row: HeaderRow}
		}
		idx[i] = pos
	}
	return idx, nil
}

func parseCell(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value")
	}
	return v, nil
}
