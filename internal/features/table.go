package features

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/reflectivity.report/internal/rotation"
)

// TargetColumn names the label column that follows the bucket columns.
const TargetColumn = "target"

// Header returns the table header: bucket angles "0".."360", then target.
func Header() []string {
	return append(rotation.BucketLabels(), TargetColumn)
}

// WriteCSV writes rows under the standard header. Output depends only on
// the rows and their order.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	rec := make([]string, Width+1)
	for _, r := range rows {
		for j, v := range r.Values {
			rec[j] = strconv.Itoa(v)
		}
		rec[Width] = strconv.Itoa(r.Target)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table written by WriteCSV. The header must match
// exactly, since consumers rely on column order.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = Width + 1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("feature table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	want := Header()
	for i := range want {
		if header[i] != want[i] {
			return nil, fmt.Errorf("column %d is %q, want %q", i, header[i], want[i])
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var row Row
		for j := 0; j < Width; j++ {
			if row.Values[j], err = strconv.Atoi(rec[j]); err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, want[j], err)
			}
		}
		if row.Target, err = strconv.Atoi(rec[Width]); err != nil {
			return nil, fmt.Errorf("line %d column %q: %w", line, TargetColumn, err)
		}
		if row.Target < 0 || row.Target >= NumClasses {
			return nil, fmt.Errorf("line %d: target %d outside 0-%d", line, row.Target, NumClasses-1)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
