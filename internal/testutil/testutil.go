// Package testutil provides shared test fixtures for the scan pipeline:
// synthetic rig sweeps and raw log text.
package testutil

import (
	"fmt"
	"strings"

	"github.com/banshee-data/reflectivity.report/internal/rotation"
)

// SweepReadings returns one already-bucketed sweep, 0 through 360, with
// the reflectivity for each bucket taken from values.
func SweepReadings(values [rotation.BucketCount]float64) []rotation.Reading {
	out := make([]rotation.Reading, 0, rotation.BucketCount)
	for i, b := range rotation.Buckets() {
		out = append(out, rotation.Reading{Bucket: b, Reflectivity: values[i]})
	}
	return out
}

// LinearSweep returns bucket values 10, 20, ... so that bucket 0 reads 10
// and bucket 360 reads 370.
func LinearSweep() [rotation.BucketCount]float64 {
	var v [rotation.BucketCount]float64
	for i := range v {
		v[i] = float64((i + 1) * 10)
	}
	return v
}

// RawSweeps simulates the motor's accumulated angle over turns full
// rotations, one sample per bucket. Angles sit 2 degrees past each bucket
// centre, and each turn ends with a sample 2 degrees short of the next full
// turn so the sweep closes. After the first turn the bucket 0 sample falls
// inside the overflow slack and reads as a repeated wrap, as it does on the
// rig.
func RawSweeps(turns int, reflect func(turn, bucket int) float64) []rotation.Sample {
	var out []rotation.Sample
	for t := 0; t < turns; t++ {
		base := float64(t * 360)
		for b := 0; b < rotation.WrapBucket; b += rotation.BucketWidth {
			out = append(out, rotation.Sample{Angle: base + float64(b) + 2, Reflectivity: reflect(t, b)})
		}
		out = append(out, rotation.Sample{Angle: base + 358, Reflectivity: reflect(t, rotation.WrapBucket)})
	}
	return out
}

// DigitProfile returns a reflectivity function with a distinct shape per
// digit: a bright band whose position depends on the digit, over a base
// level that also shifts with the digit.
func DigitProfile(digit int) func(turn, bucket int) float64 {
	return func(turn, bucket int) float64 {
		base := 20.0 + float64(digit)*3
		centre := digit * 36
		d := bucket - centre
		if d < 0 {
			d = -d
		}
		if d < 40 {
			base += 40
		}
		// small per-turn jitter keeps samples distinct without crossing digits
		return base + float64(turn%3)
	}
}

// RawLog renders samples in the rig's log format, including the header
// whose second column carries a leading space.
func RawLog(samples []rotation.Sample) string {
	var b strings.Builder
	b.WriteString("angle, reflectivity\n")
	for _, s := range samples {
		fmt.Fprintf(&b, "%g, %g\n", s.Angle, s.Reflectivity)
	}
	return b.String()
}
