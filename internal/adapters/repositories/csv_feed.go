package repositories

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrMissingFeed means a required input feed does not exist.
var ErrMissingFeed = errors.New("input feed not found")

// csvFeed is a parsed CSV file whose columns are addressed by header name.
type csvFeed struct {
	path string
	cols map[string]int
	rows [][]string
}

// readCSVFeed loads path and checks that every required column is present.
// Column order in the file does not matter; extra columns are ignored.
func readCSVFeed(path string, required ...string) (*csvFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFeed, path)
		}
		return nil, fmt.Errorf("open feed %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read feed %q: missing header row", path)
		}
		return nil, fmt.Errorf("read feed %q: header: %w", path, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		// Spreadsheet exports sometimes prefix the first column with a BOM.
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.TrimSpace(h)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("read feed %q: missing column %q", path, name)
		}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read feed %q: %w", path, err)
	}

	return &csvFeed{path: path, cols: cols, rows: rows}, nil
}

func (f *csvFeed) has(col string) bool {
	_, ok := f.cols[col]
	return ok
}

// str returns the trimmed cell at row i, col. Line numbers in errors are
// 1-based and count the header.
func (f *csvFeed) str(i int, col string) (string, error) {
	row := f.rows[i]
	j := f.cols[col]
	if j >= len(row) {
		return "", fmt.Errorf("%s line %d: missing %s", f.path, i+2, col)
	}
	return strings.TrimSpace(row[j]), nil
}

func (f *csvFeed) id(i int, col string) (string, error) {
	s, err := f.str(i, col)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("%s line %d: %s must not be empty", f.path, i+2, col)
	}
	return s, nil
}

func (f *csvFeed) float(i int, col string) (float64, error) {
	s, err := f.str(i, col)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: %s %q is not a number", f.path, i+2, col, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s line %d: %s %q is not a finite number", f.path, i+2, col, s)
	}
	return v, nil
}

// integer accepts "12" and "12.0", which is how dataframe exports often
// render integer columns, but rejects fractional values.
func (f *csvFeed) integer(i int, col string) (int, error) {
	v, err := f.float(i, col)
	if err != nil {
		return 0, err
	}
	if math.Abs(v) > math.MaxInt32 {
		return 0, fmt.Errorf("%s line %d: %s %v is out of range", f.path, i+2, col, v)
	}
	if v != float64(int(v)) {
		return 0, fmt.Errorf("%s line %d: %s %v is not a whole number", f.path, i+2, col, v)
	}
	return int(v), nil
}
