package testutil

import (
	"strings"
	"testing"

	"github.com/banshee-data/reflectivity.report/internal/rotation"
)

func TestRawSweepsCloseEachTurn(t *testing.T) {
	samples := RawSweeps(3, DigitProfile(4))
	if len(samples) != 3*rotation.BucketCount {
		t.Fatalf("got %d samples, want %d", len(samples), 3*rotation.BucketCount)
	}

	wraps := 0
	for _, s := range samples {
		if rotation.BucketOf(s.Angle) == rotation.WrapBucket {
			wraps++
		}
	}
	// first turn closes once; later turns see an early wrap plus the close
	if wraps != 5 {
		t.Errorf("got %d wrap samples, want 5", wraps)
	}
}

func TestRawLogHeader(t *testing.T) {
	text := RawLog([]rotation.Sample{{Angle: 12, Reflectivity: 40}})
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if lines[0] != "angle, reflectivity" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "12, 40" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestDigitProfilesDiffer(t *testing.T) {
	a := DigitProfile(1)
	b := DigitProfile(2)
	same := true
	for bucket := 0; bucket <= rotation.WrapBucket; bucket += rotation.BucketWidth {
		if a(0, bucket) != b(0, bucket) {
			same = false
		}
	}
	if same {
		t.Error("digit profiles 1 and 2 are identical")
	}
}
