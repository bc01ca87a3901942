package model

import "time"

// Customer is a person registered at the counter, identified by CPF.
type Customer struct {
	ID           string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	CPF          string     `json:"cpf" bson:"cpf" validate:"required,cpf"`
	CPFFormatted string     `json:"cpf_formatted,omitempty" bson:"-" validate:"-"`
	Phone        string     `json:"phone" bson:"phone" validate:"required,e164"`
	Email        string     `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email,max=254"`
	OrdersCount  int64      `json:"orders_count" bson:"orders_count" validate:"min=0"`
	LastOrderAt  *time.Time `json:"last_order_at,omitempty" bson:"last_order_at,omitempty" validate:"-"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// CustomerUpdate is a PATCH body. The CPF is the identity of a customer and
// cannot be changed.
type CustomerUpdate struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone string `json:"phone,omitempty" validate:"omitempty,e164"`
	Email string `json:"email,omitempty" validate:"omitempty,email,max=254"`
}

// CPFFormatResult answers the input-change helper endpoint.
type CPFFormatResult struct {
	Formatted string `json:"formatted"`
	Digits    int    `json:"digits"`
	Complete  bool   `json:"complete"`
}

// CPFValidationResult answers the submission-time check endpoint.
type CPFValidationResult struct {
	Valid     bool   `json:"valid"`
	Formatted string `json:"formatted"`
}
