//go:build integration

package testutil

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"testing"
	"time"

	"comanda/pkg/client"
	"comanda/pkg/cpf"
	"comanda/pkg/model"
)

var fixtureRand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 7))

// NewCPF returns a fresh valid CPF, digits only.
func NewCPF() string {
	return cpf.Generate(fixtureRand)
}

func ValidCustomer() map[string]any {
	return map[string]any{
		"name":  "Maria da Silva",
		"cpf":   cpf.Format(NewCPF()),
		"phone": fmt.Sprintf("+5511987%06d", fixtureRand.IntN(1_000_000)),
		"email": "maria@example.com",
	}
}

func ValidOrder(storeID string) map[string]any {
	return map[string]any{
		"store_id": storeID,
		"items": []map[string]any{
			{"name": "Pão de queijo", "quantity": 3, "unit_price_cents": 450},
			{"name": "Café coado", "quantity": 1, "unit_price_cents": 700},
		},
		"notes": "sem açúcar",
	}
}

func MustCreateCustomer(t *testing.T, c *client.CustomerClient, body map[string]any) *model.Customer {
	t.Helper()

	resp, err := c.Create(body)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	AssertStatusCode(t, resp, http.StatusCreated)

	created, err := c.DecodeCustomer(resp)
	if err != nil {
		t.Fatal(err)
	}
	return created
}

func MustCreateOrder(t *testing.T, c *client.OrderClient, body map[string]any) *model.Order {
	t.Helper()

	resp, err := c.Create(body)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	AssertStatusCode(t, resp, http.StatusCreated)

	created, err := c.DecodeOrder(resp)
	if err != nil {
		t.Fatal(err)
	}
	return created
}

func AssertStatusCode(t *testing.T, resp *client.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d. Body: %s", expected, resp.StatusCode, string(resp.Body))
	}
}
