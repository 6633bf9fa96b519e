package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/internal/external/massive"
	"github.com/wonny/aktietipset/backend/internal/external/memory"
	"github.com/wonny/aktietipset/backend/internal/scheduler/jobs"
	"github.com/wonny/aktietipset/backend/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // runs that fail before the first success
	runs     atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	if n := j.runs.Add(1); n <= j.failures {
		return errors.New("boom")
	}
	return nil
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@every 1h"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "0 6 * * *"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "c", schedule: "0 0 6 * * *"}))

	assert.Error(t, s.AddJob(&fakeJob{name: "a", schedule: "@every 1h"}), "duplicate name")
	assert.Error(t, s.AddJob(&fakeJob{name: "d", schedule: "not a schedule"}))

	assert.Equal(t, []string{"a", "b", "c"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("b"))
	assert.Error(t, s.RemoveJob("b"))
	assert.Equal(t, []string{"a", "c"}, s.GetAllJobs())
}

func TestScheduler_RunJobRetries(t *testing.T) {
	s := New(logger.Nop(), WithRetries(3, time.Millisecond))
	job := &fakeJob{name: "flaky", schedule: "@every 1h", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob("flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int32(3), job.runs.Load())

	history, err := s.GetJobHistory("flaky")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 3, history[0].Attempts)
	assert.Equal(t, "flaky", history[0].Job)

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)
}

func TestScheduler_RunJobGivesUp(t *testing.T) {
	s := New(logger.Nop(), WithRetries(2, time.Millisecond))
	job := &fakeJob{name: "broken", schedule: "@every 1h", failures: 100}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob("broken")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "boom", result.Error)
	assert.Equal(t, int32(3), job.runs.Load())

	stats := s.GetJobStats()["broken"]
	assert.Equal(t, 1, stats.FailureCount)
	assert.Equal(t, 0.0, stats.SuccessRate)

	_, err = s.RunJob("missing")
	assert.Error(t, err)
}

func TestScheduler_StopAbortsRetries(t *testing.T) {
	s := New(logger.Nop(), WithRetries(5, time.Hour))
	job := &fakeJob{name: "slow", schedule: "@every 1h", failures: 100}
	require.NoError(t, s.AddJob(job))
	s.Start()

	done := make(chan RunRecord, 1)
	go func() {
		r, _ := s.RunJob("slow")
		done <- r
	}()

	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, time.Millisecond)
	s.Stop()

	select {
	case r := <-done:
		assert.False(t, r.Success)
		assert.Contains(t, r.Error, "retry aborted")
	case <-time.After(2 * time.Second):
		t.Fatal("retry sleep was not interrupted by Stop")
	}
}

func TestRunLog_KeepsMostRecent(t *testing.T) {
	l := &runLog{}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < runLogSize+5; i++ {
		l.append(RunRecord{Job: "j", Started: start.Add(time.Duration(i) * time.Minute), Success: i%2 == 0})
	}

	records := l.snapshot()
	require.Len(t, records, runLogSize)
	assert.Equal(t, start.Add(5*time.Minute), records[0].Started)
	assert.Equal(t, start.Add(time.Duration(runLogSize+4)*time.Minute), records[runLogSize-1].Started)

	stats := l.stats("j", "@every 1m")
	assert.Equal(t, runLogSize, stats.TotalRuns)
	assert.Equal(t, runLogSize/2, stats.SuccessCount)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-9)
	require.NotNil(t, stats.LastRun)
	assert.Equal(t, records[runLogSize-1].Started, *stats.LastRun)
	require.NotNil(t, stats.LastSuccess)
	assert.Equal(t, start.Add(time.Duration(runLogSize+4)*time.Minute), *stats.LastSuccess)

	empty := (&runLog{}).stats("none", "@hourly")
	assert.Zero(t, empty.SuccessRate)
	assert.Nil(t, empty.LastRun)
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("@every 55m"))
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.Error(t, ValidateSchedule("every hour"))
}

func TestUniverseWarmJob(t *testing.T) {
	p := memory.New().WithTickers(contracts.Ticker{Symbol: "AAA"})
	job := jobs.NewUniverseWarmJob(p, "", logger.Nop())

	assert.Equal(t, jobs.DefaultUniverseWarmSchedule, job.Schedule())

	s := New(logger.Nop(), WithRetries(0, 0))
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(job.Name())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, p.Calls(memory.MethodListTickers))

	failing := jobs.NewUniverseWarmJob(
		memory.New().WithError(memory.MethodListTickers, contracts.ErrTransientUpstream),
		"@every 1m",
		logger.Nop(),
	)
	assert.ErrorIs(t, failing.Run(context.Background()), contracts.ErrTransientUpstream)
}

var _ jobs.UniverseRefresher = (*massive.Client)(nil)

type refreshingProvider struct {
	*memory.Provider
	refreshes int
}

func (p *refreshingProvider) RefreshUniverse(ctx context.Context) ([]contracts.Ticker, error) {
	p.refreshes++
	return []contracts.Ticker{{Symbol: "AAA"}}, nil
}

func TestUniverseWarmJob_PrefersRefresh(t *testing.T) {
	p := &refreshingProvider{Provider: memory.New()}
	job := jobs.NewUniverseWarmJob(p, "", logger.Nop())

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 2, p.refreshes)
	assert.Equal(t, 0, p.Calls(memory.MethodListTickers))
}
