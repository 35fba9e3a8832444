package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deliverer marks an order's tickets as delivered to the buyer.
type Deliverer interface {
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (bool, error)
}

type DeliveryHandler struct {
	orders Deliverer
	log    *zap.Logger
}

func NewDeliveryHandler(orders Deliverer, log *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{orders: orders, log: log}
}

func (h *DeliveryHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	p, err := parseDeliverOrder(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	changed, err := h.orders.MarkDelivered(ctx, p.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.log.Warn("delivery for unknown order", zap.String("order_id", p.OrderID.String()))
			return fmt.Errorf("order %s: %w", p.OrderID, asynq.SkipRetry)
		}
		return err
	}
	if !changed {
		h.log.Debug("order already delivered", zap.String("order_id", p.OrderID.String()))
	}
	return nil
}

func NewServeMux(delivery *DeliveryHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeDeliverOrder, delivery)
	return mux
}

func NewServer(cfg RedisConfig, concurrency int) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 10
	}
	return asynq.NewServer(cfg.connOpt(), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"default": 10,
		},
	})
}
