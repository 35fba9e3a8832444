package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeDeliverer struct {
	delivered []uuid.UUID
	changed   bool
	err       error
}

func (f *fakeDeliverer) MarkDelivered(ctx context.Context, orderID uuid.UUID) (bool, error) {
	f.delivered = append(f.delivered, orderID)
	return f.changed, f.err
}

func TestDeliveryHandler(t *testing.T) {
	orderID := uuid.New()
	task, err := NewDeliverOrderTask(orderID)
	require.NoError(t, err)
	assert.Equal(t, TypeDeliverOrder, task.Type())

	t.Run("marks the order delivered", func(t *testing.T) {
		orders := &fakeDeliverer{changed: true}
		h := NewDeliveryHandler(orders, zap.NewNop())

		require.NoError(t, h.ProcessTask(context.Background(), task))
		assert.Equal(t, []uuid.UUID{orderID}, orders.delivered)
	})

	t.Run("already delivered is not an error", func(t *testing.T) {
		h := NewDeliveryHandler(&fakeDeliverer{changed: false}, zap.NewNop())
		assert.NoError(t, h.ProcessTask(context.Background(), task))
	})

	t.Run("unknown order is not retried", func(t *testing.T) {
		h := NewDeliveryHandler(&fakeDeliverer{err: gorm.ErrRecordNotFound}, zap.NewNop())
		err := h.ProcessTask(context.Background(), task)
		assert.True(t, errors.Is(err, asynq.SkipRetry))
	})

	t.Run("storage errors are retried", func(t *testing.T) {
		boom := errors.New("connection reset")
		h := NewDeliveryHandler(&fakeDeliverer{err: boom}, zap.NewNop())
		err := h.ProcessTask(context.Background(), task)
		assert.ErrorIs(t, err, boom)
		assert.False(t, errors.Is(err, asynq.SkipRetry))
	})

	t.Run("bad payload is not retried", func(t *testing.T) {
		orders := &fakeDeliverer{}
		h := NewDeliveryHandler(orders, zap.NewNop())
		err := h.ProcessTask(context.Background(), asynq.NewTask(TypeDeliverOrder, []byte("{")))
		assert.True(t, errors.Is(err, asynq.SkipRetry))
		assert.Empty(t, orders.delivered)
	})
}
