package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TypeDeliverOrder = "order:deliver"

type DeliverOrderPayload struct {
	OrderID uuid.UUID `json:"order_id"`
}

func NewDeliverOrderTask(orderID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(DeliverOrderPayload{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDeliverOrder, payload, asynq.MaxRetry(5)), nil
}

func parseDeliverOrder(t *asynq.Task) (DeliverOrderPayload, error) {
	var p DeliverOrderPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w", t.Type(), err)
	}
	if p.OrderID == uuid.Nil {
		return p, fmt.Errorf("%s payload has no order id", t.Type())
	}
	return p, nil
}
