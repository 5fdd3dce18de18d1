package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnce_JoinsErrors(t *testing.T) {
	s := NewScheduler(context.Background())
	boom := errors.New("boom")
	var ran []string

	s.AddJob("first", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "first")
		return boom
	})
	s.AddJob("second", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "second")
		return nil
	})

	err := s.RunOnce(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, ran)
}

func TestScheduler_RunOnce_RecoversPanic(t *testing.T) {
	s := NewScheduler(context.Background())
	s.AddJob("panicky", time.Minute, func(ctx context.Context) error {
		panic("unexpected")
	})

	err := s.RunOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicky")
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler(context.Background())
	var calls atomic.Int32
	done := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()

	assert.Equal(t, int32(1), calls.Load())
}

type countingAttendance struct {
	attendance.AttendanceService
	closed, marked int
	err            error
}

func (c *countingAttendance) AutoClockOut(context.Context) (int, error) { return c.closed, c.err }
func (c *countingAttendance) MarkAbsent(context.Context) (int, error)   { return c.marked, c.err }

func TestAttendanceJobs(t *testing.T) {
	svc := &countingAttendance{closed: 2, marked: 3}
	jobs := NewAttendanceJobs(svc)
	s := NewScheduler(context.Background())
	jobs.RegisterJobs(s)

	require.NoError(t, s.RunOnce(context.Background()))

	svc.err = errors.New("db down")
	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, svc.err)
}
