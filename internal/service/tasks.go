package service

import "context"

// TaskTypeRefresh is the Asynq task type for rate refresh jobs.
const TaskTypeRefresh = "prices:refresh"

// RefreshPayload is the payload of a refresh task. The API key is not part of
// the payload; the worker reads it from preferences.
type RefreshPayload struct {
	RefreshID string `json:"refresh_id"`
	Base      string `json:"base"`
	UseMock   bool   `json:"use_mock"`
}

// TaskEnqueuer schedules refresh tasks for background processing.
type TaskEnqueuer interface {
	EnqueueRefreshTask(ctx context.Context, payload RefreshPayload) error
}
