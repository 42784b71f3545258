package rotation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketOf(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  int
	}{
		{"zero", 0, 0},
		{"rounds down below half", 4.9, 0},
		{"half rounds up", 5, 10},
		{"interior", 123, 120},
		{"interior half", 125, 130},
		{"fractional", 44.99, 40},
		{"355 rounds up to wrap", 355, 360},
		{"just below full turn", 359.5, 360},
		{"exact full turn reads as zero", 360, 0},
		{"overflow slack pulls back to wrap", 364, 360},
		{"overflow just past slack", 365, 10},
		{"second turn interior", 372, 10},
		{"second full turn", 720, 360},
		{"many turns", 3600 + 87, 90},
		{"negative wraps to top", -3, 360},
		{"negative interior", -100, 260},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketOf(tt.angle))
		})
	}
}

func TestBucketOfWithinHalfWidth(t *testing.T) {
	for a := 0.0; a < 360; a += 0.25 {
		b := BucketOf(a)
		if b%BucketWidth != 0 || b < 0 || b > WrapBucket {
			t.Fatalf("BucketOf(%v) = %d, not a bucket", a, b)
		}
		if d := math.Abs(float64(b) - a); d > BucketWidth/2 {
			t.Fatalf("BucketOf(%v) = %d, off by %v", a, b, d)
		}
	}
}

func TestIndex(t *testing.T) {
	assert.Equal(t, 0, Index(0))
	assert.Equal(t, 36, Index(360))
	assert.Equal(t, 9, Index(90))
	assert.Equal(t, -1, Index(95))
	assert.Equal(t, -1, Index(370))
	assert.Equal(t, -1, Index(-10))
}

func TestBucketLabels(t *testing.T) {
	labels := BucketLabels()
	assert.Len(t, labels, BucketCount)
	assert.Equal(t, "0", labels[0])
	assert.Equal(t, "180", labels[18])
	assert.Equal(t, "360", labels[36])
}

func TestBucketize(t *testing.T) {
	got := Bucketize([]Sample{{Angle: 2, Reflectivity: 11}, {Angle: 358, Reflectivity: 12}})
	assert.Equal(t, []Reading{{Bucket: 0, Reflectivity: 11}, {Bucket: 360, Reflectivity: 12}}, got)
}
