package monitor

// Classification is the tracker's verdict over the recent run of cycle
// outcomes.
type Classification int

const (
	// Healthy means the last cycle succeeded.
	Healthy Classification = iota

	// Warn means at least one cycle failed but the run is still below
	// the configured threshold.
	Warn

	// Down means the consecutive-failure threshold has been reached.
	Down
)

func (c Classification) String() string {
	switch c {
	case Healthy:
		return "healthy"
	case Warn:
		return "warn"
	case Down:
		return "down"
	}
	return "unknown"
}

// Tracker turns a stream of whole-cycle outcomes into a stable up/down
// signal. It is a pure counter and classifier: no transport, timing, or
// I/O. It is mutated only by the single-threaded cycle driver.
type Tracker struct {
	threshold   int
	consecutive int
}

func NewTracker(threshold int) *Tracker {
	if threshold <= 0 {
		threshold = 1
	}
	return &Tracker{threshold: threshold}
}

// Success resets the failure run.
func (t *Tracker) Success() {
	t.consecutive = 0
}

// Failure records one whole-cycle failure and returns the resulting
// classification (Warn or Down).
func (t *Tracker) Failure() Classification {
	t.consecutive++
	return t.Classify()
}

// Classify is a pure function of the current counter and the threshold.
func (t *Tracker) Classify() Classification {
	switch {
	case t.consecutive == 0:
		return Healthy
	case t.consecutive < t.threshold:
		return Warn
	default:
		return Down
	}
}

// ConsecutiveFailures reports the current run length.
func (t *Tracker) ConsecutiveFailures() int {
	return t.consecutive
}
