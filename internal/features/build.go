// Package features converts the runs recorded from one source file into
// labelled, fixed-width feature rows: one integer reflectivity per bucket
// plus the target digit.
package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/reflectivity.report/internal/rotation"
)

// Width is the number of feature columns per row.
const Width = rotation.BucketCount

// Row is one imputed, labelled run.
type Row struct {
	Values [Width]int
	Target int
}

// Vector returns the row's features as floats for distance computations.
func (r Row) Vector() []float64 {
	out := make([]float64, Width)
	for i, v := range r.Values {
		out[i] = float64(v)
	}
	return out
}

// Build turns the runs of one source file into feature rows labelled with
// target. Steps, in order:
//
//  1. a zero bucket 0 takes the value of bucket 360 (same physical angle)
//  2. any bucket still at zero is treated as a sensor dropout
//  3. dropouts are filled with the truncated mean of that bucket over the
//     other runs of the file
//  4. all values are truncated to integers
//
// A true zero reading cannot be told apart from a dropout and is imputed
// too.
func Build(runs []rotation.Run, target int) ([]Row, error) {
	if target < 0 || target >= NumClasses {
		return nil, fmt.Errorf("target %d outside 0-%d", target, NumClasses-1)
	}
	if len(runs) == 0 {
		return nil, nil
	}

	grid := make([][Width]float64, len(runs))
	missing := make([][Width]bool, len(runs))
	for i := range runs {
		grid[i] = runs[i].Values()
		if grid[i][0] == 0 {
			grid[i][0] = grid[i][Width-1]
		}
		for j, v := range grid[i] {
			missing[i][j] = v == 0
		}
	}

	for j := 0; j < Width; j++ {
		var observed []float64
		gaps := 0
		for i := range grid {
			if missing[i][j] {
				gaps++
				continue
			}
			observed = append(observed, grid[i][j])
		}
		if gaps == 0 {
			continue
		}
		if len(observed) == 0 {
			return nil, fmt.Errorf("bucket %d: %w", j*rotation.BucketWidth, ErrMissingBucketFallback)
		}
		fill := math.Trunc(stat.Mean(observed, nil))
		for i := range grid {
			if missing[i][j] {
				grid[i][j] = fill
			}
		}
	}

	rows := make([]Row, len(grid))
	for i := range grid {
		rows[i].Target = target
		for j, v := range grid[i] {
			rows[i].Values[j] = int(math.Trunc(v))
		}
	}
	return rows, nil
}
