package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/farmcart/checkout-service/internal/errors"
	"github.com/farmcart/checkout-service/internal/models"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// LineItem is the wire form of a cart line: identifier and quantity only,
// the Order API snapshots prices server-side.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	BuyerID         string         `json:"buyer_id"`
	LineItems       []LineItem     `json:"line_items"`
	DeliveryAddress models.Address `json:"delivery_address"`
	PaymentMethod   string         `json:"payment_method"`
	Notes           string         `json:"notes,omitempty"`
}

// Client persists carts as server-side orders and reads order history.
// Failures map onto the shared taxonomy: invalid-payload (400), not-found
// (404), generic-server (other non-2xx), transport (network/timeout).
type Client interface {
	Submit(ctx context.Context, token string, req *CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, token, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, token, buyerID string) ([]models.Order, error)
	CancelOrder(ctx context.Context, token, orderID, reason string) (*models.Order, error)
	UpdateStatus(ctx context.Context, token, orderID string, status models.OrderStatus) (*models.Order, error)
}

type httpResult struct {
	status int
	body   []byte
}

type client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[httpResult]
	sanitizer  *bluemonday.Policy
}

func NewClient(baseURL string, timeout time.Duration) Client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[httpResult](gobreaker.Settings{
			Name: "order-api",
		}),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (c *client) Submit(ctx context.Context, token string, req *CreateOrderRequest) (*models.Order, error) {

	if req == nil || len(req.LineItems) == 0 {
		return nil, errors.ValidationError("Cannot submit an order without line items")
	}

	for _, item := range req.LineItems {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, errors.ValidationError("Order line is missing a product identifier")
		}
		if item.Quantity < 1 {
			return nil, errors.ValidationError("Order line quantity must be at least 1")
		}
	}

	// Buyer-supplied free text never reaches the Order API unsanitized.
	req.Notes = c.sanitizer.Sanitize(req.Notes)

	result, err := c.do(ctx, http.MethodPost, c.baseURL+"/orders", token, req)
	if err != nil {
		return nil, err
	}

	if result.status < 200 || result.status >= 300 {
		return nil, errors.UpstreamError("Order API", result.status)
	}

	return decodeOrder(result.body)
}

func (c *client) GetOrder(ctx context.Context, token, orderID string) (*models.Order, error) {

	result, err := c.do(ctx, http.MethodGet, c.baseURL+"/orders/"+orderID, token, nil)
	if err != nil {
		return nil, err
	}

	if result.status < 200 || result.status >= 300 {
		return nil, errors.UpstreamError("Order API", result.status)
	}

	return decodeOrder(result.body)
}

func (c *client) ListOrders(ctx context.Context, token, buyerID string) ([]models.Order, error) {

	result, err := c.do(ctx, http.MethodGet, c.baseURL+"/orders?buyer_id="+buyerID, token, nil)
	if err != nil {
		return nil, err
	}

	if result.status < 200 || result.status >= 300 {
		return nil, errors.UpstreamError("Order API", result.status)
	}

	var payload struct {
		Orders []models.Order `json:"orders"`
	}

	if err := json.Unmarshal(result.body, &payload); err != nil {
		return nil, errors.InternalError("Malformed order list response").WithError(err)
	}

	for i := range payload.Orders {
		payload.Orders[i].Status = models.ParseOrderStatus(string(payload.Orders[i].Status))
	}

	return payload.Orders, nil
}

func (c *client) CancelOrder(ctx context.Context, token, orderID, reason string) (*models.Order, error) {

	body := models.CancelOrderRequest{Reason: c.sanitizer.Sanitize(reason)}

	result, err := c.do(ctx, http.MethodPost, c.baseURL+"/orders/"+orderID+"/cancel", token, body)
	if err != nil {
		return nil, err
	}

	if result.status < 200 || result.status >= 300 {
		return nil, errors.UpstreamError("Order API", result.status)
	}

	return decodeOrder(result.body)
}

func (c *client) UpdateStatus(ctx context.Context, token, orderID string, status models.OrderStatus) (*models.Order, error) {

	body := models.UpdateOrderStatusRequest{Status: status}

	result, err := c.do(ctx, http.MethodPatch, c.baseURL+"/orders/"+orderID+"/status", token, body)
	if err != nil {
		return nil, err
	}

	if result.status < 200 || result.status >= 300 {
		return nil, errors.UpstreamError("Order API", result.status)
	}

	return decodeOrder(result.body)
}

func decodeOrder(body []byte) (*models.Order, error) {

	var payload struct {
		Order models.Order `json:"order"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.InternalError("Malformed order response").WithError(err)
	}

	payload.Order.Status = models.ParseOrderStatus(string(payload.Order.Status))

	return &payload.Order, nil
}

func (c *client) do(ctx context.Context, method, url, token string, body any) (httpResult, error) {

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return httpResult{}, errors.InternalError("Failed to encode request").WithError(err)
		}
		reader = bytes.NewReader(data)
	}

	result, err := c.breaker.Execute(func() (httpResult, error) {

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return httpResult{}, err
		}

		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return httpResult{}, err
		}

		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return httpResult{}, err
		}

		return httpResult{status: resp.StatusCode, body: data}, nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return httpResult{}, errors.TransportError("Order API circuit is open").WithError(err)
		}

		return httpResult{}, errors.TransportError(fmt.Sprintf("Order API unreachable: %v", err)).WithError(err)
	}

	return result, nil
}
