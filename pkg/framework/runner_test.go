package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunnerFailureStopsOthers(t *testing.T) {
	failure := errors.New("serial port gone")
	r := NewRunner()
	r.Go(
		NamedRun("blocking", RunnableFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		NamedRun("failing", RunnableFunc(func(ctx context.Context) error {
			return failure
		})),
	)
	done := make(chan error, 1)
	go func() { done <- r.Wait() }()
	select {
	case err := <-done:
		require.Error(t, err)
		require.Equal(t, failure.Error(), err.Error())
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner()
	r.Go(RunnableFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	r.Stop()
	require.NoError(t, r.Wait())
}

func TestRunnerForceExit(t *testing.T) {
	r := NewRunner()
	stuck := make(chan struct{})
	r.Go(RunnableFunc(func(ctx context.Context) error {
		<-stuck
		return nil
	}))
	r.ForceExit()
	r.ForceExit()
	require.Equal(t, ErrForcedExit, r.Wait())
	close(stuck)
}

func TestRunWithContextCloser(t *testing.T) {
	closer := &testCloser{ch: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-closer.ch
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closer.closed)
}

type testCloser struct {
	ch     chan struct{}
	closed int
}

func (c *testCloser) Close() error {
	if c.closed == 0 {
		close(c.ch)
	}
	c.closed++
	return nil
}
