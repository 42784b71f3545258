// Package rawlog reads and writes the rig's raw sample logs: a header row
// "angle, reflectivity" followed by one angle/reflectivity pair per line in
// capture order.
package rawlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/reflectivity.report/internal/rotation"
)

// Column names expected in the header. The rig writes the second with a
// leading space, which is trimmed before comparison.
const (
	AngleColumn        = "angle"
	ReflectivityColumn = "reflectivity"
)

var (
	// ErrMissingHeader is returned for an empty log.
	ErrMissingHeader = errors.New("raw log has no header row")
	// ErrBadColumns is returned when the header does not name the two
	// expected columns.
	ErrBadColumns = errors.New("raw log columns missing or misnamed")
	// ErrNonFinite is returned for NaN or infinite cells.
	ErrNonFinite = errors.New("value is not a finite number")
)

// Read parses a raw log. Every data row must carry two numeric fields.
func Read(r io.Reader) ([]rotation.Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var samples []rotation.Sample
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) != 2 {
			return nil, fmt.Errorf("line %d: expected 2 fields, got %d: %w", line, len(rec), ErrBadColumns)
		}
		angle, err := parseCell(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: failed to parse angle: %w", line, err)
		}
		refl, err := parseCell(rec[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: failed to parse reflectivity: %w", line, err)
		}
		samples = append(samples, rotation.Sample{Angle: angle, Reflectivity: refl})
	}
	return samples, nil
}

func parseCell(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q: %w", strings.TrimSpace(cell), ErrNonFinite)
	}
	return v, nil
}

func checkHeader(header []string) error {
	if len(header) != 2 {
		return fmt.Errorf("header %q: %w", strings.Join(header, ","), ErrBadColumns)
	}
	got := []string{strings.TrimSpace(header[0]), strings.TrimSpace(header[1])}
	if !strings.EqualFold(got[0], AngleColumn) || !strings.EqualFold(got[1], ReflectivityColumn) {
		return fmt.Errorf("header %q: %w", strings.Join(header, ","), ErrBadColumns)
	}
	return nil
}

// Writer appends samples to a raw log in the rig's format.
type Writer struct {
	w      io.Writer
	header bool
	rows   int
}

// NewWriter returns a Writer that emits the header before the first sample.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Log appends one sample.
func (lw *Writer) Log(s rotation.Sample) error {
	if !lw.header {
		if err := lw.WriteHeader(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(lw.w, "%s, %s\n", formatNumber(s.Angle), formatNumber(s.Reflectivity))
	if err == nil {
		lw.rows++
	}
	return err
}

// WriteHeader writes the header row if it has not been written yet. A log
// with no samples still carries a header.
func (lw *Writer) WriteHeader() error {
	if lw.header {
		return nil
	}
	lw.header = true
	_, err := fmt.Fprintf(lw.w, "%s, %s\n", AngleColumn, ReflectivityColumn)
	return err
}

// Rows returns the number of samples written.
func (lw *Writer) Rows() int { return lw.rows }

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
