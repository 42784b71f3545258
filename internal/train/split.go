package train

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/banshee-data/reflectivity.report/internal/features"
)

// Default split parameters.
const (
	DefaultTestFraction = 0.3
	DefaultSeed         = 21
)

// Absorbs representation error in products like 100*0.3.
const fractionEpsilon = 1e-9

// Split holds the two partitions of a dataset. Rows keep their dataset
// order within each partition.
type Split struct {
	Train []features.Row
	Test  []features.Row
}

// CheckClasses verifies that every digit label is present and has at
// least two rows.
func CheckClasses(rows []features.Row) error {
	for i, r := range rows {
		if r.Target < 0 || r.Target >= features.NumClasses {
			return fmt.Errorf("row %d: target %d outside 0-%d", i, r.Target, features.NumClasses-1)
		}
	}
	counts := classCounts(rows)
	var missing []int
	for label, n := range counts {
		if n == 0 {
			missing = append(missing, label)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingClass, missing)
	}
	for label, n := range counts {
		if n < 2 {
			return &ClassImbalanceError{Label: label, Rows: n}
		}
	}
	return nil
}

// StratifiedSplit partitions rows so that each label keeps roughly its
// dataset proportion in both partitions. The test partition holds exactly
// ceil(len(rows)*testFraction) rows; when that leaves either side with
// fewer rows than there are labels the split fails with *SplitSizeError.
// The same rows, fraction and seed always give the same split.
func StratifiedSplit(rows []features.Row, testFraction float64, seed uint64) (Split, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return Split{}, fmt.Errorf("test fraction must be in (0, 1), got %g", testFraction)
	}
	if err := CheckClasses(rows); err != nil {
		return Split{}, err
	}

	want := testSize(len(rows), testFraction)
	if want < features.NumClasses || len(rows)-want < features.NumClasses {
		return Split{}, &SplitSizeError{Rows: len(rows), Train: len(rows) - want, Test: want}
	}

	byLabel := make([][]int, features.NumClasses)
	for i, r := range rows {
		byLabel[r.Target] = append(byLabel[r.Target], i)
	}
	alloc := allocateTest(classCounts(rows), want, testFraction)

	rng := rand.New(rand.NewPCG(seed, seed))
	inTest := make([]bool, len(rows))
	for label, idx := range byLabel {
		shuffled := slices.Clone(idx)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		for _, i := range shuffled[:alloc[label]] {
			inTest[i] = true
		}
	}

	var s Split
	for i, r := range rows {
		if inTest[i] {
			s.Test = append(s.Test, r)
		} else {
			s.Train = append(s.Train, r)
		}
	}
	return s, nil
}

func classCounts(rows []features.Row) [features.NumClasses]int {
	var counts [features.NumClasses]int
	for _, r := range rows {
		if r.Target >= 0 && r.Target < features.NumClasses {
			counts[r.Target]++
		}
	}
	return counts
}

// testSize is the number of test rows for total rows at fraction frac.
func testSize(total int, frac float64) int {
	return int(math.Ceil(float64(total)*frac - fractionEpsilon))
}

// allocateTest spreads want test rows over the labels by largest
// remainder, keeping at least one row of each label on both sides.
func allocateTest(counts [features.NumClasses]int, want int, frac float64) [features.NumClasses]int {

	var alloc [features.NumClasses]int
	var exact [features.NumClasses]float64
	sum := 0
	for label, n := range counts {
		exact[label] = float64(n) * frac
		alloc[label] = min(max(int(math.Floor(exact[label]+fractionEpsilon)), 1), n-1)
		sum += alloc[label]
	}

	labels := make([]int, features.NumClasses)
	for i := range labels {
		labels[i] = i
	}
	remainder := func(l int) float64 { return exact[l] - float64(alloc[l]) }

	for sum != want {
		// Largest remainder first when growing, smallest first when shrinking.
		slices.SortFunc(labels, func(a, b int) int {
			c := cmp.Compare(remainder(a), remainder(b))
			if sum < want {
				c = -c
			}
			if c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
		moved := false
		for _, l := range labels {
			if sum < want && alloc[l] < counts[l]-1 {
				alloc[l]++
				sum++
				moved = true
				break
			}
			if sum > want && alloc[l] > 1 {
				alloc[l]--
				sum--
				moved = true
				break
			}
		}
		if !moved {
			break
		}
	}
	return alloc
}

// Vectors converts rows into a feature matrix and label slice.
func Vectors(rows []features.Row) ([][]float64, []int) {
	X := make([][]float64, len(rows))
	y := make([]int, len(rows))
	for i, r := range rows {
		X[i] = r.Vector()
		y[i] = r.Target
	}
	return X, y
}
