package features

import (
	"fmt"
	"path/filepath"
)

// DefaultTargetOffset is where the digit sits in names such as "train7.csv".
const DefaultTargetOffset = 5

// NumClasses is the number of digit labels, 0 through 9.
const NumClasses = 10

// ParseTarget reads the digit label from the base name of source at the
// given byte offset.
func ParseTarget(source string, offset int) (int, error) {
	base := filepath.Base(source)
	if offset < 0 || offset >= len(base) {
		return 0, &MalformedInputError{
			Source: source,
			Err:    fmt.Errorf("name shorter than offset %d: %w", offset, ErrNoTargetDigit),
		}
	}
	c := base[offset]
	if c < '0' || c > '9' {
		return 0, &MalformedInputError{
			Source: source,
			Err:    fmt.Errorf("found %q at offset %d: %w", c, offset, ErrNoTargetDigit),
		}
	}
	return int(c - '0'), nil
}
