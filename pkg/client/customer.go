package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"comanda/pkg/model"
)

var ErrCustomerNotFound = errors.New("customer not found")

type CustomerClient struct {
	httpClient *HttpClient
}

func NewCustomerClient(baseURL string) *CustomerClient {
	return &CustomerClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *CustomerClient) HTTP() *HttpClient {
	return c.httpClient
}

func (c *CustomerClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/customers", body)
}

func (c *CustomerClient) GetAll(limit int, offset int64) (*Response, error) {
	return c.httpClient.GET(fmt.Sprintf("/api/v1/customers?limit=%d&offset=%d", limit, offset))
}

func (c *CustomerClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/customers/id/" + url.PathEscape(id))
}

func (c *CustomerClient) GetByCPF(cpf string) (*Response, error) {
	return c.httpClient.GET("/api/v1/customers/cpf/" + url.PathEscape(cpf))
}

func (c *CustomerClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/customers/id/"+url.PathEscape(id), body)
}

func (c *CustomerClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/customers/id/" + url.PathEscape(id))
}

func (c *CustomerClient) FormatCPF(value string) (*Response, error) {
	return c.httpClient.GET("/api/v1/cpf/format?value=" + url.QueryEscape(value))
}

func (c *CustomerClient) ValidateCPF(value string) (*Response, error) {
	return c.httpClient.GET("/api/v1/cpf/validate?value=" + url.QueryEscape(value))
}

// FindByCPF looks a customer up by CPF. ErrCustomerNotFound is returned for an
// unknown CPF; any other non-200 answer is an error.
func (c *CustomerClient) FindByCPF(ctx context.Context, cpf string) (*model.Customer, error) {
	resp, err := c.httpClient.Do(ctx, http.MethodGet, "/api/v1/customers/cpf/"+url.PathEscape(cpf), nil, nil)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var customer model.Customer
		if err := resp.DecodeData(&customer); err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
		return &customer, nil
	case http.StatusNotFound:
		return nil, ErrCustomerNotFound
	default:
		return nil, fmt.Errorf("customers service answered %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}
}
