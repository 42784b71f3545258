package capture

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/banshee-data/reflectivity.report/internal/rotation"
)

// EndMarker is the line the rig bridge sends after the last sample.
const EndMarker = "END"

// LineKind classifies one serial line.
type LineKind int

const (
	// LineIgnored is blank, a header, or anything unparseable.
	LineIgnored LineKind = iota
	LineSample
	LineEnd
)

// consoleLine matches the rig's human readable progress output.
var consoleLine = regexp.MustCompile(`(?i)^angle:\s*(-?[0-9.]+)\s*degrees,\s*reflectivity:\s*(-?[0-9.]+)\s*%?$`)

// ParseLine accepts either a CSV pair "angle,reflectivity" or the rig's
// console form "Angle: 120 degrees, Reflectivity: 43%".
func ParseLine(line string) (rotation.Sample, LineKind) {
	line = strings.TrimSpace(line)
	if line == "" {
		return rotation.Sample{}, LineIgnored
	}
	if strings.EqualFold(line, EndMarker) {
		return rotation.Sample{}, LineEnd
	}

	var angleText, reflText string
	if m := consoleLine.FindStringSubmatch(line); m != nil {
		angleText, reflText = m[1], m[2]
	} else {
		a, r, ok := strings.Cut(line, ",")
		if !ok || strings.Contains(r, ",") {
			return rotation.Sample{}, LineIgnored
		}
		angleText, reflText = strings.TrimSpace(a), strings.TrimSpace(r)
	}

	angle, err := strconv.ParseFloat(angleText, 64)
	if err != nil {
		return rotation.Sample{}, LineIgnored
	}
	refl, err := strconv.ParseFloat(reflText, 64)
	if err != nil {
		return rotation.Sample{}, LineIgnored
	}
	if !finite(angle) || !finite(refl) {
		return rotation.Sample{}, LineIgnored
	}
	return rotation.Sample{Angle: angle, Reflectivity: refl}, LineSample
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
