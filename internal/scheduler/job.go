package scheduler

import (
	"context"
	"time"
)

// Job is a unit of background work fired on a cron spec.
// Run must return once ctx is done; Stop cancels it.
// ⭐ SSOT: the job contract is defined here only
type Job interface {
	Name() string

	// Schedule is a robfig/cron spec such as "@every 55m" or "0 16 * * *"
	Schedule() string

	Run(ctx context.Context) error
}

// RunRecord describes one run of a job, retries included
type RunRecord struct {
	Job      string        `json:"job"`
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Duration time.Duration `json:"duration"`
	Attempts int           `json:"attempts"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
}

// runLogSize bounds the records kept per job
const runLogSize = 100

// runLog holds the most recent runs of one job, oldest first
type runLog struct {
	records []RunRecord
}

func (l *runLog) append(r RunRecord) {
	if len(l.records) == runLogSize {
		copy(l.records, l.records[1:])
		l.records = l.records[:runLogSize-1]
	}
	l.records = append(l.records, r)
}

func (l *runLog) snapshot() []RunRecord {
	return append([]RunRecord(nil), l.records...)
}

// stats folds the log into counts and the latest run times
func (l *runLog) stats(name, schedule string) JobStats {
	s := JobStats{JobName: name, Schedule: schedule, TotalRuns: len(l.records)}
	for i := range l.records {
		started := l.records[i].Started
		s.LastRun = &started
		if l.records[i].Success {
			s.SuccessCount++
			s.LastSuccess = &started
		} else {
			s.FailureCount++
			s.LastFailure = &started
		}
	}
	if s.TotalRuns > 0 {
		s.SuccessRate = float64(s.SuccessCount) / float64(s.TotalRuns)
	}
	return s
}

// JobStats summarizes the retained runs of a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}
