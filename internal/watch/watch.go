// Package watch implements fixed-interval polling of a remote job until it
// reaches a terminal state or a wall-clock deadline elapses.
package watch

import (
	"context"
	"time"
)

// Status is a remote job state in the external service's own vocabulary.
type Status string

// Observation is one probe result: the job's current status, whether that
// status is terminal, and the timestamp the service recorded at submission.
type Observation struct {
	Status     Status
	Terminal   bool
	Failed     bool
	SubmitTime time.Time
	Message    string
}

// Probe queries the current status of a remote job without side effects.
// Implementations map the service's status vocabulary onto the Terminal and
// Failed flags.
type Probe interface {
	Probe(ctx context.Context) (Observation, error)
}

// ProbeFunc adapts a plain function to the Probe interface.
type ProbeFunc func(ctx context.Context) (Observation, error)

func (f ProbeFunc) Probe(ctx context.Context) (Observation, error) {
	return f(ctx)
}

// Options tunes a WaitForTerminal run.
type Options struct {
	// Interval is the fixed delay between probes.
	Interval time.Duration
	// Deadline is the absolute wall-clock cutoff. Once it passes, the last
	// observation is returned as-is, terminal or not.
	Deadline time.Time
	// OnPoll, when set, receives each successful observation together with
	// the elapsed time since the job was submitted (not since the previous
	// poll, so reported progress is a monotonic total duration).
	OnPoll func(obs Observation, elapsed time.Duration)
}

// WaitForTerminal polls probe at a fixed interval until the job reaches a
// terminal state or opts.Deadline elapses. Deadline expiry is not an error:
// the last observed non-terminal status is returned and the caller decides
// whether that counts as failure. Probe errors are treated as transient and
// retried on the next cycle. The only error return is context cancellation.
func WaitForTerminal(ctx context.Context, probe Probe, opts Options) (Observation, error) {
	var last Observation

	for {
		if !time.Now().Before(opts.Deadline) {
			return last, nil
		}

		obs, err := probe.Probe(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return last, ctxErr
			}
			// Transient probe failure: skip this cycle, keep polling.
		} else {
			last = obs
			if opts.OnPoll != nil {
				opts.OnPoll(obs, time.Since(obs.SubmitTime))
			}
			if obs.Terminal {
				return obs, nil
			}
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(opts.Interval):
		}
	}
}
