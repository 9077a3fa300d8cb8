package services

import (
	"context"
	"errors"
	"testing"

	"cleanhub/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopJob struct {
	name     string
	schedule Schedule
}

func (j noopJob) Name() string                  { return j.name }
func (j noopJob) Execute(context.Context) error { return nil }
func (j noopJob) Schedule() Schedule            { return j.schedule }

func TestSchedulerService_Lifecycle(t *testing.T) {
	scheduler := NewSchedulerService()
	ctx := context.Background()

	require.NoError(t, scheduler.Start(ctx))
	assert.False(t, scheduler.IsRunning(), "no jobs means no start")

	require.NoError(t, scheduler.AddJob(noopJob{name: "hourly", schedule: Hourly}))
	require.NoError(t, scheduler.AddJob(noopJob{name: "daily", schedule: Daily}))
	assert.Error(t, scheduler.AddJob(noopJob{name: "bogus", schedule: Schedule(99)}))
	assert.Equal(t, 2, scheduler.GetJobCount())

	require.NoError(t, scheduler.Start(ctx))
	assert.True(t, scheduler.IsRunning())

	require.NoError(t, scheduler.Stop(ctx))
	assert.False(t, scheduler.IsRunning())
}

type countingJob struct {
	noopJob
	runs int
	err  error
}

func (j *countingJob) Execute(context.Context) error {
	j.runs++
	return j.err
}

func TestSchedulerService_RunJob(t *testing.T) {
	scheduler := NewSchedulerService()
	job := &countingJob{noopJob: noopJob{name: "reconcile", schedule: Hourly}}
	require.NoError(t, scheduler.AddJob(job))
	assert.Equal(t, []string{"reconcile"}, scheduler.JobNames())

	require.NoError(t, scheduler.RunJob(context.Background(), "reconcile"))
	assert.Equal(t, 1, job.runs)

	err := scheduler.RunJob(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	job.err = errors.New("boom")
	assert.EqualError(t, scheduler.RunJob(context.Background(), "reconcile"), "boom")
}
