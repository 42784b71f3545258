// Package rotation turns the rig's raw angle/reflectivity trace into
// per-sweep runs. Angles are quantised into 10 degree buckets and the flat
// sample stream is cut into one run per full 0 to 360 degree rotation.
package rotation

import (
	"math"
	"strconv"
)

const (
	// BucketWidth is the angular width of one bucket in degrees.
	BucketWidth = 10
	// WrapBucket is the bucket that closes a sweep. It is the same physical
	// position as bucket 0.
	WrapBucket = 360
	// BucketCount is the number of buckets per run, 0 and 360 inclusive.
	BucketCount = WrapBucket/BucketWidth + 1

	// overflowSlack is the window past a full turn that is pulled back
	// below the boundary so late samples still close the sweep.
	overflowSlack = 5
)

// Sample is one raw reading as logged by the rig.
type Sample struct {
	Angle        float64
	Reflectivity float64
}

// Reading is a sample whose angle has been bucketed.
type Reading struct {
	Bucket       int
	Reflectivity float64
}

// BucketOf maps a raw motor angle onto a bucket in {0, 10, ..., 360}.
//
// The angle may exceed 360 because the motor reports accumulated rotation
// across turns. Angles within overflowSlack degrees past a whole number of
// turns are shifted back by the slack before wrapping, so they round up to
// 360 rather than down to 0. Rounding is to the nearest 10 with halves
// rounding up.
func BucketOf(angle float64) int {
	var deg float64
	if angle > WrapBucket && floorMod(angle, WrapBucket) < overflowSlack {
		deg = floorMod(angle-overflowSlack, WrapBucket)
	} else {
		deg = floorMod(angle, WrapBucket)
	}

	m := math.Mod(deg, BucketWidth)
	floor := int(math.Round(deg - m))
	if m < BucketWidth/2 {
		return floor
	}
	return floor + BucketWidth
}

// floorMod is the modulo with the sign of the divisor, so negative angles
// land in [0, d).
func floorMod(x, d float64) float64 {
	m := math.Mod(x, d)
	if m < 0 {
		m += d
	}
	return m
}

// Index returns the slot of bucket b in a run, or -1 if b is not a bucket.
func Index(b int) int {
	if b < 0 || b > WrapBucket || b%BucketWidth != 0 {
		return -1
	}
	return b / BucketWidth
}

// Buckets lists every bucket in ascending order.
func Buckets() []int {
	out := make([]int, BucketCount)
	for i := range out {
		out[i] = i * BucketWidth
	}
	return out
}

// BucketLabels returns the bucket angles as column names "0".."360".
func BucketLabels() []string {
	out := make([]string, BucketCount)
	for i := range out {
		out[i] = strconv.Itoa(i * BucketWidth)
	}
	return out
}

// Bucketize applies BucketOf to each sample, keeping capture order.
func Bucketize(samples []Sample) []Reading {
	out := make([]Reading, len(samples))
	for i, s := range samples {
		out[i] = Reading{Bucket: BucketOf(s.Angle), Reflectivity: s.Reflectivity}
	}
	return out
}
