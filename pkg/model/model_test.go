package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda/pkg/model"
	"comanda/pkg/validation"
)

func validOrder() model.Order {
	return model.Order{
		StoreID:  "loja-centro",
		Items:    []model.OrderItem{{Name: "X-Burger", Quantity: 2, UnitPriceCents: 2590}},
		Currency: "BRL",
		Status:   model.OrderStatusPending,
	}
}

func TestCustomer_Validation(t *testing.T) {
	v, err := validation.New()
	require.NoError(t, err)

	base := model.Customer{Name: "Maria Silva", CPF: "11144477735", Phone: "+5511987654321"}
	require.NoError(t, v.Struct(base))

	tests := []struct {
		name   string
		mutate func(*model.Customer)
	}{
		{"missing name", func(c *model.Customer) { c.Name = "" }},
		{"formatted cpf is not the stored form", func(c *model.Customer) { c.CPF = "111.444.777-35" }},
		{"bad check digit", func(c *model.Customer) { c.CPF = "11144477736" }},
		{"repeated digits", func(c *model.Customer) { c.CPF = "00000000000" }},
		{"local phone", func(c *model.Customer) { c.Phone = "11987654321" }},
		{"bad email", func(c *model.Customer) { c.Email = "maria@" }},
		{"negative orders", func(c *model.Customer) { c.OrdersCount = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, v.Struct(c))
		})
	}
}

func TestOrder_Validation(t *testing.T) {
	v, err := validation.New()
	require.NoError(t, err)

	require.NoError(t, v.Struct(validOrder()))

	withCPF := validOrder()
	withCPF.CustomerCPF = "52998224725"
	require.NoError(t, v.Struct(withCPF))

	tests := []struct {
		name   string
		mutate func(*model.Order)
	}{
		{"no store", func(o *model.Order) { o.StoreID = "" }},
		{"store with separator", func(o *model.Order) { o.StoreID = "loja:1" }},
		{"no items", func(o *model.Order) { o.Items = nil }},
		{"zero quantity", func(o *model.Order) { o.Items[0].Quantity = 0 }},
		{"quantity over limit", func(o *model.Order) { o.Items[0].Quantity = model.MaxItemQuantity + 1 }},
		{"negative price", func(o *model.Order) { o.Items[0].UnitPriceCents = -1 }},
		{"invalid cpf na nota", func(o *model.Order) { o.CustomerCPF = "12345678900" }},
		{"unknown status", func(o *model.Order) { o.Status = "lost" }},
		{"bad currency", func(o *model.Order) { o.Currency = "REAIS" }},
		{"notes too long", func(o *model.Order) { o.Notes = strings.Repeat("x", model.MaxNotesLength+1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOrder()
			o.Items = append([]model.OrderItem(nil), o.Items...)
			tt.mutate(&o)
			assert.Error(t, v.Struct(o))
		})
	}
}
