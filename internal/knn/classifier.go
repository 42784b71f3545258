// Package knn implements the k-nearest-neighbour classifier used to
// recognise digits from their reflectivity profile.
//
// Distances are Euclidean over the raw feature values. Prediction is a
// uniform majority vote among the k closest training samples; equal
// distances keep training order and tied votes go to the smaller label.
package knn

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrNotFitted is returned when predicting before Fit.
	ErrNotFitted = errors.New("classifier has not been fitted")
	// ErrDimension is returned for vectors whose length differs from the
	// training data.
	ErrDimension = errors.New("feature dimension mismatch")
)

// Classifier is a fitted or unfitted k-NN model.
type Classifier struct {
	k       int
	samples [][]float64
	labels  []int
	dim     int
}

// New returns an unfitted classifier that votes over k neighbours.
func New(k int) (*Classifier, error) {
	if k < 1 {
		return nil, fmt.Errorf("invalid neighbour count: %d", k)
	}
	return &Classifier{k: k}, nil
}

// K returns the neighbour count.
func (c *Classifier) K() int { return c.k }

// Len returns the number of stored training samples.
func (c *Classifier) Len() int { return len(c.samples) }

// Classes returns the distinct training labels in ascending order.
func (c *Classifier) Classes() []int {
	out := slices.Clone(c.labels)
	slices.Sort(out)
	return slices.Compact(out)
}

// Fit stores the training set. X rows must share one length and there must
// be at least k of them.
func (c *Classifier) Fit(X [][]float64, y []int) error {
	if len(X) != len(y) {
		return fmt.Errorf("%d samples but %d labels", len(X), len(y))
	}
	if len(X) == 0 {
		return errors.New("empty training set")
	}
	if c.k > len(X) {
		return fmt.Errorf("k=%d exceeds %d training samples", c.k, len(X))
	}
	dim := len(X[0])
	samples := make([][]float64, len(X))
	for i, x := range X {
		if len(x) != dim {
			return fmt.Errorf("sample %d has %d features, want %d: %w", i, len(x), dim, ErrDimension)
		}
		samples[i] = slices.Clone(x)
	}
	c.samples = samples
	c.labels = slices.Clone(y)
	c.dim = dim
	return nil
}

type neighbour struct {
	index    int
	distance float64
}

// Neighbours returns the indices of the k training samples closest to x,
// nearest first.
func (c *Classifier) Neighbours(x []float64) ([]int, error) {
	if len(c.samples) == 0 {
		return nil, ErrNotFitted
	}
	if len(x) != c.dim {
		return nil, fmt.Errorf("got %d features, want %d: %w", len(x), c.dim, ErrDimension)
	}
	ns := make([]neighbour, len(c.samples))
	for i, s := range c.samples {
		ns[i] = neighbour{index: i, distance: floats.Distance(x, s, 2)}
	}
	slices.SortStableFunc(ns, func(a, b neighbour) int {
		return cmp.Compare(a.distance, b.distance)
	})
	out := make([]int, c.k)
	for i := range out {
		out[i] = ns[i].index
	}
	return out, nil
}

// Predict returns the majority label among x's neighbours.
func (c *Classifier) Predict(x []float64) (int, error) {
	idx, err := c.Neighbours(x)
	if err != nil {
		return 0, err
	}
	votes := make(map[int]int, len(idx))
	for _, i := range idx {
		votes[c.labels[i]]++
	}
	best, bestVotes := 0, -1
	for label, n := range votes {
		if n > bestVotes || (n == bestVotes && label < best) {
			best, bestVotes = label, n
		}
	}
	return best, nil
}

// PredictAll predicts each row of X.
func (c *Classifier) PredictAll(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, x := range X {
		p, err := c.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// Score returns the fraction of X predicted as y.
func (c *Classifier) Score(X [][]float64, y []int) (float64, error) {
	if len(X) != len(y) {
		return 0, fmt.Errorf("%d samples but %d labels", len(X), len(y))
	}
	if len(X) == 0 {
		return 0, errors.New("cannot score an empty set")
	}
	pred, err := c.PredictAll(X)
	if err != nil {
		return 0, err
	}
	return Accuracy(y, pred), nil
}

// Accuracy returns the fraction of positions where want and got agree.
func Accuracy(want, got []int) float64 {
	if len(want) == 0 || len(want) != len(got) {
		return 0
	}
	hits := make([]float64, len(want))
	for i := range want {
		if want[i] == got[i] {
			hits[i] = 1
		}
	}
	return floats.Sum(hits) / float64(len(hits))
}
