// Package worker runs rate refreshes as background asynq tasks.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"metalpriceservice/internal/service"
)

// NewRefreshHandler returns a function to handle refresh tasks. Malformed
// payloads are logged and dropped so they are not retried.
func NewRefreshHandler(svc service.PriceServiceInterface, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload service.RefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
			return nil
		}
		if payload.RefreshID == "" {
			logger.Errorw("Task payload without refresh_id", "type", t.Type())
			return nil
		}

		if err := svc.ProcessRefresh(ctx, payload.RefreshID, payload.Base, payload.UseMock); err != nil {
			logger.Errorw("Task processing failed", "refresh_id", payload.RefreshID, "error", err)
			return fmt.Errorf("refresh %s: %w", payload.RefreshID, err)
		}

		logger.Infow("Task completed", "refresh_id", payload.RefreshID)
		return nil
	}
}

// taskEnqueuer is the part of *asynq.Client used by AsynqEnqueuer.
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqEnqueuer enqueues refresh tasks. Tasks are never retried: a failed
// fetch is reported to the user, who triggers the next one.
type AsynqEnqueuer struct {
	client  taskEnqueuer
	timeout time.Duration
}

var _ service.TaskEnqueuer = (*AsynqEnqueuer)(nil)

// NewAsynqEnqueuer creates a new AsynqEnqueuer with the given client and task timeout.
func NewAsynqEnqueuer(client *asynq.Client, timeout time.Duration) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client:  client,
		timeout: timeout,
	}
}

// NewRefreshTask builds the asynq task for payload.
func NewRefreshTask(payload service.RefreshPayload, timeout time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(service.TaskTypeRefresh, data,
		asynq.MaxRetry(0),
		asynq.Timeout(timeout),
	), nil
}

// EnqueueRefreshTask enqueues a refresh task for payload.
func (e *AsynqEnqueuer) EnqueueRefreshTask(ctx context.Context, payload service.RefreshPayload) error {
	task, err := NewRefreshTask(payload, e.timeout)
	if err != nil {
		return fmt.Errorf("create refresh task: %w", err)
	}

	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue refresh task: %w", err)
	}
	return nil
}
