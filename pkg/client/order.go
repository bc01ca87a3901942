package client

import (
	"fmt"
	"net/url"
)

type OrderClient struct {
	httpClient *HttpClient
}

func NewOrderClient(baseURL string) *OrderClient {
	return &OrderClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *OrderClient) HTTP() *HttpClient {
	return c.httpClient
}

func (c *OrderClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/orders", body)
}

func (c *OrderClient) GetAll(limit int, offset int64) (*Response, error) {
	return c.httpClient.GET(fmt.Sprintf("/api/v1/orders?limit=%d&offset=%d", limit, offset))
}

func (c *OrderClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/orders/id/" + url.PathEscape(id))
}

func (c *OrderClient) SearchByStore(storeID, status string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("store_id", storeID)
	if status != "" {
		q.Set("status", status)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GET("/api/v1/orders/search?" + q.Encode())
}

func (c *OrderClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/orders/id/"+url.PathEscape(id), body)
}

func (c *OrderClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/orders/id/" + url.PathEscape(id))
}

func (c *OrderClient) Track(token string) (*Response, error) {
	return c.httpClient.GET("/api/v1/orders/track/" + url.PathEscape(token))
}
