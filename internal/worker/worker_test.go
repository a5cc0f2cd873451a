package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"metalpriceservice/internal/service"
)

type mockPriceService struct {
	mock.Mock
	service.PriceServiceInterface
}

func (m *mockPriceService) ProcessRefresh(ctx context.Context, refreshID, base string, useMock bool) error {
	args := m.Called(ctx, refreshID, base, useMock)
	return args.Error(0)
}

type mockClient struct {
	mock.Mock
}

func (m *mockClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func TestRefreshHandler(t *testing.T) {
	logger := zap.NewNop().Sugar()

	t.Run("processes payload", func(t *testing.T) {
		svc := new(mockPriceService)
		svc.On("ProcessRefresh", mock.Anything, "r-1", "USD", true).Return(nil).Once()

		data, _ := json.Marshal(service.RefreshPayload{RefreshID: "r-1", Base: "USD", UseMock: true})
		err := NewRefreshHandler(svc, logger)(context.Background(), asynq.NewTask(service.TaskTypeRefresh, data))

		assert.NoError(t, err)
		svc.AssertExpectations(t)
	})

	t.Run("propagates processing error", func(t *testing.T) {
		svc := new(mockPriceService)
		svc.On("ProcessRefresh", mock.Anything, "r-2", "USD", false).Return(errors.New("provider down")).Once()

		data, _ := json.Marshal(service.RefreshPayload{RefreshID: "r-2", Base: "USD"})
		err := NewRefreshHandler(svc, logger)(context.Background(), asynq.NewTask(service.TaskTypeRefresh, data))

		assert.ErrorContains(t, err, "provider down")
	})

	t.Run("drops malformed payload", func(t *testing.T) {
		svc := new(mockPriceService)

		err := NewRefreshHandler(svc, logger)(context.Background(), asynq.NewTask(service.TaskTypeRefresh, []byte("{")))

		assert.NoError(t, err)
		svc.AssertNotCalled(t, "ProcessRefresh", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("drops payload without id", func(t *testing.T) {
		svc := new(mockPriceService)

		err := NewRefreshHandler(svc, logger)(context.Background(), asynq.NewTask(service.TaskTypeRefresh, []byte(`{"base":"USD"}`)))

		assert.NoError(t, err)
		svc.AssertNotCalled(t, "ProcessRefresh", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAsynqEnqueuer_EnqueueRefreshTask(t *testing.T) {
	payload := service.RefreshPayload{RefreshID: "r-1", Base: "EUR"}

	t.Run("enqueues task with payload", func(t *testing.T) {
		client := new(mockClient)
		client.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
			var got service.RefreshPayload
			if err := json.Unmarshal(task.Payload(), &got); err != nil {
				return false
			}
			return task.Type() == service.TaskTypeRefresh && got == payload
		})).Return(&asynq.TaskInfo{ID: "t"}, nil).Once()

		e := &AsynqEnqueuer{client: client, timeout: 30 * time.Second}
		require.NoError(t, e.EnqueueRefreshTask(context.Background(), payload))
		client.AssertExpectations(t)
	})

	t.Run("wraps client error", func(t *testing.T) {
		client := new(mockClient)
		client.On("EnqueueContext", mock.Anything, mock.Anything).Return(nil, errors.New("redis down")).Once()

		e := &AsynqEnqueuer{client: client, timeout: 30 * time.Second}
		err := e.EnqueueRefreshTask(context.Background(), payload)
		assert.ErrorContains(t, err, "enqueue refresh task")
		assert.ErrorContains(t, err, "redis down")
	})
}
