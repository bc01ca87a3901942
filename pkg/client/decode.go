package client

import (
	"encoding/json"
	"fmt"

	"comanda/pkg/model"
)

type Metadata struct {
	TotalCount int64
	Limit      int
	Offset     int64
}

func (r *Response) String() string {
	if r == nil || r.Response == nil {
		return "<nil response>"
	}
	if r.Request == nil {
		return fmt.Sprintf("%d: %s", r.StatusCode, string(r.Body))
	}
	return fmt.Sprintf("%s %d: %s", r.Request.URL.Path, r.StatusCode, string(r.Body))
}

// DecodeList unwraps a paginated {"data": [...], "total_count": ...} body.
func DecodeList[T any](resp *Response) ([]*T, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp: %s: %w", resp, err)
	}

	var items []*T
	if err := json.Unmarshal(wrapper.Data, &items); err != nil {
		return nil, nil, fmt.Errorf("could not decode list: %s: %w", resp, err)
	}

	return items, &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}, nil
}

func (c *CustomerClient) DecodeCustomer(resp *Response) (*model.Customer, error) {
	var customer model.Customer
	if err := resp.DecodeData(&customer); err != nil {
		return nil, fmt.Errorf("could not decode customer: %s: %w", resp, err)
	}
	return &customer, nil
}

func (c *CustomerClient) DecodeCustomers(resp *Response) ([]*model.Customer, *Metadata, error) {
	return DecodeList[model.Customer](resp)
}

func (c *OrderClient) DecodeOrder(resp *Response) (*model.Order, error) {
	var order model.Order
	if err := resp.DecodeData(&order); err != nil {
		return nil, fmt.Errorf("could not decode order: %s: %w", resp, err)
	}
	return &order, nil
}

func (c *OrderClient) DecodeOrders(resp *Response) ([]*model.Order, *Metadata, error) {
	return DecodeList[model.Order](resp)
}
