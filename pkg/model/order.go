package model

import "time"

type OrderStatus = string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

const (
	MaxOrderItems    = 100
	MaxItemQuantity  = 100
	MaxNotesLength   = 500
	MaxStoreIDLength = 64
)

type OrderItem struct {
	Name           string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Quantity       int    `json:"quantity" bson:"quantity" validate:"required,min=1,max=100"`
	UnitPriceCents int64  `json:"unit_price_cents" bson:"unit_price_cents" validate:"min=0,max=100000000"`
}

// Order is a ticket placed at a store. CustomerCPF is the optional "CPF na nota"
// printed on the receipt; when it matches a registered customer, CustomerID is
// filled in on creation.
type Order struct {
	ID                   string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	StoreID              string      `json:"store_id" bson:"store_id" validate:"required,min=1,max=64,excludes=:"`
	CustomerID           string      `json:"customer_id,omitempty" bson:"customer_id,omitempty" validate:"omitempty,mongodb"`
	CustomerCPF          string      `json:"customer_cpf,omitempty" bson:"customer_cpf,omitempty" validate:"omitempty,cpf"`
	CustomerCPFFormatted string      `json:"customer_cpf_formatted,omitempty" bson:"-" validate:"-"`
	Items                []OrderItem `json:"items" bson:"items" validate:"required,min=1,max=100,dive"`
	TotalCents           int64       `json:"total_cents" bson:"total_cents" validate:"min=0"`
	Currency             string      `json:"currency" bson:"currency" validate:"required,iso4217"`
	Status               OrderStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed preparing ready delivered cancelled"`
	Notes                string      `json:"notes,omitempty" bson:"notes,omitempty" validate:"max=500"`
	TrackingToken        string      `json:"tracking_token,omitempty" bson:"-" validate:"-"`
	CreatedAt            time.Time   `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt            time.Time   `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type OrderUpdate struct {
	Status OrderStatus `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed preparing ready delivered cancelled"`
	Notes  *string     `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// OrderTracking is the public view behind a tracking token. It leaves out the
// customer and the price.
type OrderTracking struct {
	OrderID   string      `json:"order_id"`
	StoreID   string      `json:"store_id"`
	Status    OrderStatus `json:"status"`
	Items     int         `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
