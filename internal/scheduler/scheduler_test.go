package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quiet() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestScheduler_RunsUntilCanceled(t *testing.T) {
	var runs atomic.Int32
	task := TaskFunc{TaskName: "count", Fn: func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("ignored")
	}}

	s := NewScheduler(20*time.Millisecond, task, WithLogger(quiet()))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_Stop(t *testing.T) {
	var runs atomic.Int32
	task := TaskFunc{TaskName: "once", Fn: func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}}

	s := NewScheduler(time.Hour, task, WithLogger(quiet()), WithImmediateRun(true))
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
