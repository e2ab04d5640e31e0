package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCountsConsecutiveFailures(t *testing.T) {
	tr := NewTracker(5)

	for i := 1; i <= 4; i++ {
		tr.Failure()
		assert.Equal(t, i, tr.ConsecutiveFailures())
	}

	tr.Success()
	assert.Equal(t, 0, tr.ConsecutiveFailures())
	assert.Equal(t, Healthy, tr.Classify())

	tr.Failure()
	assert.Equal(t, 1, tr.ConsecutiveFailures())
}

func TestTrackerClassification(t *testing.T) {
	tr := NewTracker(2)

	// Scenario: threshold 2, starting from zero failures.
	assert.Equal(t, Healthy, tr.Classify())

	got := tr.Failure()
	assert.Equal(t, Warn, got)
	assert.Equal(t, 1, tr.ConsecutiveFailures())

	got = tr.Failure()
	assert.Equal(t, Down, got)
	assert.Equal(t, 2, tr.ConsecutiveFailures())

	// Past the threshold it stays down.
	assert.Equal(t, Down, tr.Failure())
}

func TestTrackerThresholdBoundary(t *testing.T) {
	tr := NewTracker(3)

	assert.Equal(t, Warn, tr.Failure())
	assert.Equal(t, Warn, tr.Failure())
	assert.Equal(t, Down, tr.Failure())

	tr.Success()
	assert.Equal(t, Healthy, tr.Classify())
}

func TestTrackerClampsThreshold(t *testing.T) {
	tr := NewTracker(0)
	assert.Equal(t, Down, tr.Failure())
}
