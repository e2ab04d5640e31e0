package monitor

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pulseworks/rustwatch/internal/rcon"
)

// CycleConfig is the immutable per-cycle tuning.
type CycleConfig struct {
	// Attempts is the maximum number of probe attempts per cycle.
	Attempts int

	// JitterMax bounds the random delay inserted before each retry.
	JitterMax time.Duration

	// Command is the health-check command sent to the server.
	Command string
}

// AttemptFailure records one failed attempt for observability.
type AttemptFailure struct {
	Index int
	Err   error
}

// CycleResult is the binary outcome of one whole cycle. Response is
// kept for observability only; partial progress within an attempt still
// counts as attempt failure.
type CycleResult struct {
	OK       bool
	Response string
	Failures []AttemptFailure
}

// LastError returns the error of the final failed attempt, if any.
func (r CycleResult) LastError() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return r.Failures[len(r.Failures)-1].Err
}

// Cycle drives up to Attempts sequential probe attempts against a
// fresh single-use client each, short-circuiting on the first success.
type Cycle struct {
	cfg       CycleConfig
	newClient func() rcon.Client
	clock     clockwork.Clock
	jitter    func(max time.Duration) time.Duration
}

func NewCycle(cfg CycleConfig, newClient func() rcon.Client, clock clockwork.Clock) *Cycle {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cycle{
		cfg:       cfg,
		newClient: newClient,
		clock:     clock,
		jitter:    uniformJitter,
	}
}

// Run executes one cycle. Attempts are strictly sequential; a uniform
// random delay in [0, JitterMax) separates consecutive attempts, and no
// delay follows the final one. Errors never escape: every attempt
// failure is absorbed into the result.
func (c *Cycle) Run(ctx context.Context) CycleResult {
	var res CycleResult
	for i := 1; i <= c.cfg.Attempts; i++ {
		resp, err := c.attempt(ctx)
		if err == nil {
			res.OK = true
			res.Response = resp
			return res
		}
		res.Failures = append(res.Failures, AttemptFailure{Index: i, Err: err})
		log.Printf("attempt %d/%d failed (%s): %v", i, c.cfg.Attempts, rcon.ErrorKind(err), err)

		if i < c.cfg.Attempts {
			if err := c.wait(ctx, c.jitter(c.cfg.JitterMax)); err != nil {
				return res
			}
		}
	}
	return res
}

// attempt runs one full connect -> authenticate -> execute exchange.
// The client is closed on every exit path.
func (c *Cycle) attempt(ctx context.Context) (string, error) {
	client := c.newClient()
	defer client.Close()

	if err := client.Connect(ctx); err != nil {
		return "", err
	}
	if err := client.Authenticate(ctx); err != nil {
		return "", err
	}
	return client.Execute(ctx, c.cfg.Command)
}

func (c *Cycle) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(d):
		return nil
	}
}

// uniformJitter samples independently per retry; it is deliberately not
// cumulative or exponential, existing only to break up synchronized
// retry bursts against server-side rate protections.
func uniformJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}
