package engine

// StallDetector counts consecutive iterations in which the queue contents
// did not change.
//
// Progress is measured on the queue as a multiset of rendered items, not on
// its length: a single item rewritten in place keeps the length at 1 while
// still making progress, whereas two terminal items nobody combines keep
// rotating without any change.
type StallDetector struct {
	maxStall int
	last     string
	started  bool
	stalls   int
}

// NewStallDetector creates a detector that fails after maxStall consecutive
// unchanged observations.
func NewStallDetector(maxStall int) *StallDetector {
	return &StallDetector{maxStall: maxStall}
}

// Observe records the queue fingerprint for one iteration.
//
// Returns a STALLED RuntimeError once the fingerprint has repeated more than
// maxStall times in a row.
func (d *StallDetector) Observe(engineID, fingerprint string) error {
	if d.started && fingerprint == d.last {
		d.stalls++
		if d.stalls > d.maxStall {
			return NewStallError(engineID, d.stalls, d.maxStall)
		}
		return nil
	}
	d.started = true
	d.last = fingerprint
	d.stalls = 0
	return nil
}

// Stalls returns the current run of unchanged observations.
func (d *StallDetector) Stalls() int {
	return d.stalls
}
