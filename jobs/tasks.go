package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/atelier-store/atelier/internal/inventory"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeLogRetry replays an inventory log append that failed inline.
	TaskTypeLogRetry = "inventory:log_retry"
	// TaskTypeStatsWarmup refreshes the cached inventory snapshot.
	TaskTypeStatsWarmup = "inventory:stats_warmup"
)

// NewLogRetryTask wraps a pending log entry for background replay.
func NewLogRetryTask(entry inventory.LogEntry) (*asynq.Task, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLogRetry, data,
		asynq.Queue(QueueDefault), asynq.MaxRetry(10)), nil
}

// NewStatsWarmupTask constructs the scheduled snapshot refresh task.
func NewStatsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeStatsWarmup, nil, asynq.Queue(QueueDefault))
}
