package train

import (
	"errors"
	"fmt"

	"github.com/banshee-data/reflectivity.report/internal/features"
)

// ErrMissingClass is returned when the dataset lacks one of the ten digit
// labels.
var ErrMissingClass = errors.New("dataset is missing a digit class")

// ClassImbalanceError reports a label with too few rows to appear in both
// the training and test partitions.
type ClassImbalanceError struct {
	Label int
	Rows  int
}

func (e *ClassImbalanceError) Error() string {
	return fmt.Sprintf("label %d has %d row(s); at least 2 are needed to stratify", e.Label, e.Rows)
}

// SplitSizeError reports a dataset too small for the requested test
// fraction: one partition would hold fewer rows than there are digit
// classes, so some label could not appear on that side.
type SplitSizeError struct {
	Rows  int
	Train int
	Test  int
}

func (e *SplitSizeError) Error() string {
	return fmt.Sprintf("%d rows would split into %d train and %d test; each partition needs at least %d rows to stratify",
		e.Rows, e.Train, e.Test, features.NumClasses)
}
