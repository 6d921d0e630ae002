package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/mascotienda/backend-tienda/internal/events"
	"github.com/mascotienda/backend-tienda/internal/order"
)

// TaskOrderConfirmation is the asynq task type delivering order
// confirmations to the support channel.
const TaskOrderConfirmation = "notify:order_confirmation"

type confirmationPayload struct {
	OrderID string `json:"orderId"`
}

// NewOrderConfirmationTask builds the asynq task for an order.
func NewOrderConfirmationTask(orderID string) (*asynq.Task, error) {
	payload, err := json.Marshal(confirmationPayload{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderConfirmation, payload, asynq.MaxRetry(5)), nil
}

// Sender delivers a composed message to the support channel.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// LogSender records outbound messages in the service log. The customer-side
// delivery is a deep link they open themselves; this sender keeps an
// operator-visible trail of what was composed.
type LogSender struct {
	Logger zerolog.Logger
}

// Send implements Sender.
func (s LogSender) Send(ctx context.Context, to, text string) error {
	s.Logger.Info().Str("to", to).Int("chars", len(text)).Msg("order confirmation composed")
	return nil
}

// ConfirmationWorker processes confirmation tasks in the worker binary.
type ConfirmationWorker struct {
	Store    order.Getter
	Composer Composer
	Sender   Sender
	Events   *events.Bus
	Logger   zerolog.Logger
}

// Handle implements the asynq handler for TaskOrderConfirmation.
func (w ConfirmationWorker) Handle(ctx context.Context, task *asynq.Task) error {
	var payload confirmationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode confirmation payload: %w", err)
	}
	o, err := w.Store.GetByID(ctx, payload.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", payload.OrderID, err)
	}
	text := w.Composer.Compose(o)
	if w.Sender != nil {
		if err := w.Sender.Send(ctx, o.CustomerPhone, text); err != nil {
			return fmt.Errorf("send confirmation: %w", err)
		}
	}
	if w.Events != nil {
		_, _ = w.Events.Emit(ctx, events.TopicOrderConfirmationSent, o.ID, map[string]any{
			"orderId": o.ID,
			"link":    w.Composer.DeepLink(text),
		})
	}
	w.Logger.Info().Str("order_id", o.ID).Msg("order confirmation processed")
	return nil
}
