package model

import "time"

// Kafka event types. The value travels in the event-type header.
const (
	EventCustomerRegistered = "customer.registered"
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

const EventSchemaVersion = "1"

// CustomerRegisteredEvent never carries the full CPF. Timezone is inferred from
// the phone prefix.
type CustomerRegisteredEvent struct {
	CustomerID string    `json:"customer_id"`
	CPFMasked  string    `json:"cpf_masked"`
	Phone      string    `json:"phone"`
	Timezone   string    `json:"timezone"`
	CreatedAt  time.Time `json:"created_at"`
}

type OrderCreatedEvent struct {
	OrderID    string    `json:"order_id"`
	StoreID    string    `json:"store_id"`
	CustomerID string    `json:"customer_id,omitempty"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderID    string      `json:"order_id"`
	StoreID    string      `json:"store_id"`
	CustomerID string      `json:"customer_id,omitempty"`
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	ChangedAt  time.Time   `json:"changed_at"`
}
