package rotation

import "github.com/banshee-data/reflectivity.report/internal/monitoring"

// SegmentState is the segmenter's position relative to the sweep boundary.
type SegmentState int

const (
	// Accumulating means the previous reading was below the wrap bucket.
	Accumulating SegmentState = iota
	// JustClosed means the previous reading hit the wrap bucket and closed
	// a run. Further wrap readings are ignored until the angle drops below
	// the boundary again.
	JustClosed
)

func (s SegmentState) String() string {
	switch s {
	case Accumulating:
		return "accumulating"
	case JustClosed:
		return "just_closed"
	default:
		return "unknown"
	}
}

// Segmenter cuts a stream of bucketed readings into runs. A run closes when
// its wrap bucket is written; the next reading starts a fresh run.
type Segmenter struct {
	state  SegmentState
	active Run
	closed int
}

// NewSegmenter returns a segmenter with an empty active run.
func NewSegmenter() *Segmenter {
	return &Segmenter{state: Accumulating}
}

// State returns the current segmenter state.
func (s *Segmenter) State() SegmentState { return s.state }

// Closed returns how many runs have been emitted so far.
func (s *Segmenter) Closed() int { return s.closed }

// Push feeds one reading. It returns the completed run and true when the
// reading closed the active run.
func (s *Segmenter) Push(rd Reading) (Run, bool) {
	atWrap := rd.Bucket >= WrapBucket
	defer func() {
		if atWrap {
			s.state = JustClosed
		} else {
			s.state = Accumulating
		}
	}()

	if atWrap && s.state == JustClosed {
		return Run{}, false
	}

	s.active.Set(rd.Bucket, rd.Reflectivity)
	if !atWrap {
		return Run{}, false
	}

	done := s.active
	s.active = Run{}
	s.closed++
	return done, true
}

// Finish ends the stream. The active run never reached the wrap bucket so
// it is dropped; the number of buckets it had filled is returned.
func (s *Segmenter) Finish() int {
	filled := s.active.Filled()
	s.active = Run{}
	s.state = Accumulating
	return filled
}

// Segment splits readings into completed runs. A trailing partial sweep is
// discarded and logged.
func Segment(readings []Reading) []Run {
	runs, _ := SegmentWithTail(readings)
	return runs
}

// SegmentWithTail is Segment that also reports how many buckets the
// discarded trailing sweep had filled. Zero means nothing was dropped.
func SegmentWithTail(readings []Reading) ([]Run, int) {
	seg := NewSegmenter()
	var runs []Run
	for _, rd := range readings {
		if run, ok := seg.Push(rd); ok {
			runs = append(runs, run)
		}
	}
	filled := seg.Finish()
	if filled > 0 {
		monitoring.Logf("discarding incomplete trailing sweep (%d of %d buckets filled) after %d complete runs",
			filled, BucketCount, len(runs))
	}
	return runs, filled
}
