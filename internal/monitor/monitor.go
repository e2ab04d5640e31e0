// Package monitor contains the liveness-check engine: the per-cycle
// attempt driver, the consecutive-failure tracker, and the interval
// loop that ties them together.
package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Heartbeat is notified exactly once per successful cycle. Its failure
// is reported distinctly and never counted as a liveness failure.
type Heartbeat interface {
	Notify(ctx context.Context) error
}

// Recorder persists cycle outcomes.
type Recorder interface {
	Record(rec CycleRecord) error
}

// CycleRecord is one cycle outcome as handed to the Recorder.
type CycleRecord struct {
	At                  time.Time
	OK                  bool
	Classification      Classification
	ConsecutiveFailures int
	Attempts            int
	Response            string
	Error               string
}

// Status is the monitor's current view, served by the status API.
type Status struct {
	Classification      string    `json:"classification"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastCheck           time.Time `json:"last_check,omitzero"`
	LastOK              bool      `json:"last_ok"`
	LastResponse        string    `json:"last_response,omitempty"`
	LastError           string    `json:"last_error,omitempty"`
}

// Monitor owns the periodic check loop. One cycle runs at a time; a new
// cycle never starts before the previous one (including its retry
// delays) completes. Cycle failures are absorbed and classified, never
// fatal.
type Monitor struct {
	cycle    *Cycle
	tracker  *Tracker
	interval time.Duration
	clock    clockwork.Clock

	heartbeat Heartbeat // optional
	recorder  Recorder  // optional

	mu     sync.Mutex
	status Status

	cancel context.CancelFunc
	done   chan struct{}
}

func New(cycle *Cycle, tracker *Tracker, interval time.Duration, clock clockwork.Clock) *Monitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Monitor{
		cycle:    cycle,
		tracker:  tracker,
		interval: interval,
		clock:    clock,
		status:   Status{Classification: Healthy.String()},
	}
}

// SetHeartbeat wires the external uptime collector.
func (m *Monitor) SetHeartbeat(h Heartbeat) { m.heartbeat = h }

// SetRecorder wires the check history store.
func (m *Monitor) SetRecorder(r Recorder) { m.recorder = r }

// Start launches the check loop. The first cycle runs immediately.
func (m *Monitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)

		ticker := m.clock.NewTicker(m.interval)
		defer ticker.Stop()

		log.Printf("monitor started (interval=%s)", m.interval)
		m.runOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				m.runOnce(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight cycle to finish.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

// Status returns a copy of the current state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Monitor) runOnce(ctx context.Context) {
	res := m.cycle.Run(ctx)
	if ctx.Err() != nil {
		return
	}

	rec := CycleRecord{
		At:       m.clock.Now(),
		OK:       res.OK,
		Attempts: len(res.Failures),
		Response: res.Response,
	}

	if res.OK {
		m.tracker.Success()
		rec.Attempts++
		rec.Classification = Healthy
		log.Printf("check succeeded: %q", res.Response)
		m.notifyHeartbeat(ctx)
	} else {
		class := m.tracker.Failure()
		rec.Classification = class
		if err := res.LastError(); err != nil {
			rec.Error = err.Error()
		}
		switch class {
		case Down:
			log.Printf("check failed, server down (%d consecutive failures)", m.tracker.ConsecutiveFailures())
		default:
			log.Printf("check failed (%d consecutive failures)", m.tracker.ConsecutiveFailures())
		}
	}
	rec.ConsecutiveFailures = m.tracker.ConsecutiveFailures()

	if m.recorder != nil {
		if err := m.recorder.Record(rec); err != nil {
			log.Printf("history record failed: %v", err)
		}
	}

	m.mu.Lock()
	m.status = Status{
		Classification:      rec.Classification.String(),
		ConsecutiveFailures: rec.ConsecutiveFailures,
		LastCheck:           rec.At,
		LastOK:              rec.OK,
		LastResponse:        rec.Response,
		LastError:           rec.Error,
	}
	m.mu.Unlock()
}

// notifyHeartbeat fires the collector notification. A delivery failure
// is a distinct error class: the server itself was reachable, so the
// failure counter is untouched.
func (m *Monitor) notifyHeartbeat(ctx context.Context) {
	if m.heartbeat == nil {
		return
	}
	if err := m.heartbeat.Notify(ctx); err != nil {
		log.Printf("heartbeat delivery failed: %v", err)
	}
}
