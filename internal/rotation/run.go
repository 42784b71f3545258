package rotation

// Run holds the last reflectivity observed in each bucket during one sweep.
// Slots are fixed, one per bucket; an unset slot reads as zero.
type Run struct {
	values [BucketCount]float64
	set    [BucketCount]bool
}

// Set stores r for bucket b, replacing any earlier reading. Non-bucket
// values are ignored.
func (r *Run) Set(b int, reflectivity float64) {
	i := Index(b)
	if i < 0 {
		return
	}
	r.values[i] = reflectivity
	r.set[i] = true
}

// Value returns the stored reading for bucket b and whether one was set.
func (r *Run) Value(b int) (float64, bool) {
	i := Index(b)
	if i < 0 {
		return 0, false
	}
	return r.values[i], r.set[i]
}

// Values returns the run's readings indexed by bucket slot.
func (r *Run) Values() [BucketCount]float64 {
	return r.values
}

// Filled counts the buckets that received at least one reading.
func (r *Run) Filled() int {
	n := 0
	for _, ok := range r.set {
		if ok {
			n++
		}
	}
	return n
}

// Full reports whether every bucket received a reading.
func (r *Run) Full() bool {
	return r.Filled() == BucketCount
}
