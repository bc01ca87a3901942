// Package events consumes order events published by the orders service.
package events

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"comanda/internal/customers/service"
	apperrors "comanda/pkg/errors"
	"comanda/pkg/kafka"
	"comanda/pkg/logger"
	"comanda/pkg/model"
)

const defaultSeenCapacity = 10000

type OrderEventsHandler struct {
	service service.CustomerService
	log     *logger.Logger
	seen    *seenSet
}

func NewOrderEventsHandler(service service.CustomerService, log *logger.Logger) *OrderEventsHandler {
	return &OrderEventsHandler{
		service: service,
		log:     log,
		seen:    newSeenSet(defaultSeenCapacity),
	}
}

// Handle attributes an order.created event to its customer. Other event types,
// orders without a customer and redelivered events are acknowledged untouched.
func (h *OrderEventsHandler) Handle(ctx context.Context, msg kafka.Message) error {
	if msg.GetEventType() != model.EventOrderCreated {
		return nil
	}

	eventID := msg.GetEventID()
	if h.seen.Contains(eventID) {
		h.log.Debug("Skipping redelivered order event", "event_id", eventID)
		return nil
	}

	if v, ok := msg.GetHeader(kafka.HeaderSchemaVersion); ok && v != model.EventSchemaVersion {
		return kafka.NewPermanentError("unsupported order event schema", nil).
			WithDetail("event_id", eventID).
			WithDetail("schema_version", v)
	}

	var evt model.OrderCreatedEvent
	if err := msg.DecodeValue(&evt); err != nil {
		var kafkaErr *kafka.KafkaError
		if errors.As(err, &kafkaErr) {
			return kafkaErr.WithDetail("event_id", eventID)
		}
		return err
	}
	if evt.CustomerID == "" {
		h.seen.Add(eventID)
		return nil
	}

	if err := h.service.RecordOrder(ctx, evt.CustomerID, evt.CreatedAt); err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr != nil && appErr.StatusCode() < http.StatusInternalServerError {
			h.log.Warn("Order event references an unknown customer",
				"event_id", eventID,
				"order_id", evt.OrderID,
				"customer_id", evt.CustomerID,
				"error", err,
			)
			h.seen.Add(eventID)
			return nil
		}
		return kafka.NewTransientError("record customer order", err)
	}

	h.seen.Add(eventID)
	h.log.Info("Order attributed to customer",
		"event_id", eventID,
		"order_id", evt.OrderID,
		"customer_id", evt.CustomerID,
	)
	return nil
}

// seenSet remembers the last capacity event ids.
type seenSet struct {
	mu    sync.Mutex
	ids   map[string]struct{}
	order []string
	next  int
}

func newSeenSet(capacity int) *seenSet {
	return &seenSet{
		ids:   make(map[string]struct{}, capacity),
		order: make([]string, capacity),
	}
}

func (s *seenSet) Contains(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *seenSet) Add(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return
	}
	if evicted := s.order[s.next]; evicted != "" {
		delete(s.ids, evicted)
	}
	s.order[s.next] = id
	s.ids[id] = struct{}{}
	s.next = (s.next + 1) % len(s.order)
}
