package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProbe returns its observations in order, repeating the last one
// once the script is exhausted.
type scriptedProbe struct {
	script []Observation
	errs   []error
	calls  int
}

func (p *scriptedProbe) Probe(ctx context.Context) (Observation, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return Observation{}, p.errs[i]
	}
	if i >= len(p.script) {
		i = len(p.script) - 1
	}
	return p.script[i], nil
}

func TestWaitForTerminal_TerminalOnFirstProbe(t *testing.T) {
	submitted := time.Now().Add(-5 * time.Minute)
	probe := &scriptedProbe{
		script: []Observation{
			{Status: "TRAINED", Terminal: true, SubmitTime: submitted},
		},
	}

	obs, err := WaitForTerminal(context.Background(), probe, Options{
		Interval: time.Millisecond,
		Deadline: time.Now().Add(time.Second),
	})
	require.NoError(t, err)

	assert.True(t, obs.Terminal)
	assert.False(t, obs.Failed)
	assert.Equal(t, Status("TRAINED"), obs.Status)
	assert.Equal(t, 1, probe.calls)
}

func TestWaitForTerminal_PollsUntilTerminal(t *testing.T) {
	probe := &scriptedProbe{
		script: []Observation{
			{Status: "SUBMITTED"},
			{Status: "IN_PROGRESS"},
			{Status: "COMPLETED", Terminal: true},
		},
	}

	obs, err := WaitForTerminal(context.Background(), probe, Options{
		Interval: time.Millisecond,
		Deadline: time.Now().Add(time.Second),
	})
	require.NoError(t, err)

	assert.Equal(t, Status("COMPLETED"), obs.Status)
	assert.Equal(t, 3, probe.calls)
}

func TestWaitForTerminal_DeadlineReturnsLastObservation(t *testing.T) {
	probe := &scriptedProbe{
		script: []Observation{
			{Status: "IN_PROGRESS"},
		},
	}

	obs, err := WaitForTerminal(context.Background(), probe, Options{
		Interval: time.Millisecond,
		Deadline: time.Now().Add(25 * time.Millisecond),
	})

	// Deadline expiry is not an error; the caller checks the status.
	require.NoError(t, err)
	assert.False(t, obs.Terminal)
	assert.Equal(t, Status("IN_PROGRESS"), obs.Status)
	assert.GreaterOrEqual(t, probe.calls, 1)
}

func TestWaitForTerminal_DeadlineAlreadyPassed(t *testing.T) {
	probe := &scriptedProbe{
		script: []Observation{
			{Status: "COMPLETED", Terminal: true},
		},
	}

	obs, err := WaitForTerminal(context.Background(), probe, Options{
		Interval: time.Millisecond,
		Deadline: time.Now().Add(-time.Second),
	})
	require.NoError(t, err)

	// The probe is never called once the deadline has passed.
	assert.Equal(t, 0, probe.calls)
	assert.False(t, obs.Terminal)
}

func TestWaitForTerminal_TransientProbeErrorsAreRetried(t *testing.T) {
	probe := &scriptedProbe{
		errs: []error{errors.New("throttled"), errors.New("throttled")},
		script: []Observation{
			{Status: "IN_PROGRESS"},
			{Status: "IN_PROGRESS"},
			{Status: "COMPLETED", Terminal: true},
		},
	}

	obs, err := WaitForTerminal(context.Background(), probe, Options{
		Interval: time.Millisecond,
		Deadline: time.Now().Add(time.Second),
	})
	require.NoError(t, err)

	assert.Equal(t, Status("COMPLETED"), obs.Status)
	assert.Equal(t, 3, probe.calls)
}

func TestWaitForTerminal_TerminalFailureIsReturnedNotRaised(t *testing.T) {
	probe := &scriptedProbe{
		script: []Observation{
			{Status: "FAILED", Terminal: true, Failed: true, Message: "bad input"},
		},
	}

	obs, err := WaitForTerminal(context.Background(), probe, Options{
		Interval: time.Millisecond,
		Deadline: time.Now().Add(time.Second),
	})
	require.NoError(t, err)

	assert.True(t, obs.Terminal)
	assert.True(t, obs.Failed)
	assert.Equal(t, "bad input", obs.Message)
}

func TestWaitForTerminal_ElapsedMeasuredFromSubmitTime(t *testing.T) {
	submitted := time.Now().Add(-10 * time.Minute)
	probe := &scriptedProbe{
		script: []Observation{
			{Status: "IN_PROGRESS", SubmitTime: submitted},
			{Status: "COMPLETED", Terminal: true, SubmitTime: submitted},
		},
	}

	var elapsed []time.Duration
	_, err := WaitForTerminal(context.Background(), probe, Options{
		Interval: time.Millisecond,
		Deadline: time.Now().Add(time.Second),
		OnPoll: func(obs Observation, e time.Duration) {
			elapsed = append(elapsed, e)
		},
	})
	require.NoError(t, err)

	require.Len(t, elapsed, 2)
	// Elapsed is total time since submission, not time between polls.
	assert.GreaterOrEqual(t, elapsed[0], 10*time.Minute)
	assert.GreaterOrEqual(t, elapsed[1], elapsed[0])
}

func TestWaitForTerminal_ContextCancellation(t *testing.T) {
	probe := &scriptedProbe{
		script: []Observation{
			{Status: "IN_PROGRESS"},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WaitForTerminal(ctx, probe, Options{
		Interval: 50 * time.Millisecond,
		Deadline: time.Now().Add(time.Minute),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProbeFunc_Adapts(t *testing.T) {
	called := false
	p := ProbeFunc(func(ctx context.Context) (Observation, error) {
		called = true
		return Observation{Status: "OK"}, nil
	})

	obs, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, Status("OK"), obs.Status)
}
