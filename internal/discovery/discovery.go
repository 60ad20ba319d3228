// Package discovery lists measurement logs and orders them by the laser diameter in their names.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/verte-zerg/specklerr/internal/model"
)

// labelSuffixLen is the unit+extension tail ("mm.csv") dropped from the label token.
const labelSuffixLen = 6

var laserDiaRe = regexp.MustCompile(`laserDia_(\d+)mm.csv`)

// ErrNoLabelToken is returned for names without a second "_" separated token.
var ErrNoLabelToken = errors.New("filename has no label token")

// DiscoveryError reports a missing or unreadable input directory.
type DiscoveryError struct {
	Dir string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to read input directory %s: %v", e.Dir, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Strategy maps a file name to its sort key and legend label.
type Strategy interface {
	Parse(name string) (sortKey int, label string, err error)
}

// LaserDiameter is the naming convention of the tracking exporter: <prefix>_<label>mm.csv,
// sorted by the integer in laserDia_<n>mm.csv.
type LaserDiameter struct{}

// Parse implements Strategy.
func (LaserDiameter) Parse(name string) (int, string, error) {
	label, err := Label(name)
	if err != nil {
		return 0, "", err
	}
	return SortKey(name), label, nil
}

// SortKey extracts the laser diameter from name, or 0 when the pattern is absent.
func SortKey(name string) int {
	match := laserDiaRe.FindStringSubmatch(name)
	if match == nil {
		return 0
	}
	key, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return key
}

// Label takes the second "_" token and drops its last six bytes.
func Label(name string) (string, error) {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return "", ErrNoLabelToken
	}
	token := parts[1]
	if len(token) <= labelSuffixLen {
		return "", nil
	}
	return token[:len(token)-labelSuffixLen], nil
}

// List returns the files in dir whose name ends with ext, in directory listing order.
// Subdirectories are not descended into. Labels and sort keys are left for Resolve.
func List(dir, ext string) ([]model.InputFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DiscoveryError{Dir: dir, Err: err}
	}
	files := make([]model.InputFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ext) {
			continue
		}
		files = append(files, model.InputFile{
			Path: filepath.Join(dir, name),
			Name: name,
		})
	}
	return files, nil
}

// Resolve fills SortKey and Label of each file using strategy.
func Resolve(files []model.InputFile, strategy Strategy) error {
	if strategy == nil {
		strategy = LaserDiameter{}
	}
	for i := range files {
		key, label, err := strategy.Parse(files[i].Name)
		if err != nil {
			return fmt.Errorf("failed to parse name of %s: %w", files[i].Path, err)
		}
		files[i].SortKey = key
		files[i].Label = label
	}
	return nil
}

// Sort orders files by ascending sort key, keeping listing order for equal keys.
func Sort(files []model.InputFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].SortKey < files[j].SortKey
	})
}
