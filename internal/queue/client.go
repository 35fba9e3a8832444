package queue

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (cfg RedisConfig) connOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

// Client enqueues background work for the worker process.
type Client struct {
	client *asynq.Client
	log    *zap.Logger
}

func NewClient(cfg RedisConfig, log *zap.Logger) *Client {
	return &Client{
		client: asynq.NewClient(cfg.connOpt()),
		log:    log,
	}
}

func (c *Client) EnqueueDelivery(ctx context.Context, orderID uuid.UUID) error {
	task, err := NewDeliverOrderTask(orderID)
	if err != nil {
		return err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}
	c.log.Debug("delivery enqueued",
		zap.String("order_id", orderID.String()),
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue))
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
