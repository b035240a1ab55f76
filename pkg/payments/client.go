package payments

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
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Item is one preference line, priced at the product's listed price.
type Item struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type Payer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type CallbackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type PreferenceRequest struct {
	Items        []Item       `json:"items"`
	Payer        *Payer       `json:"payer,omitempty"`
	OrderID      string       `json:"order_id,omitempty"`
	CallbackURLs CallbackURLs `json:"callback_urls"`
}

// Preference is the provider's handle on a pending payment: the URL the
// buyer's browser is sent to, and the id used to corroborate the outcome.
type Preference struct {
	RedirectURL  string `json:"redirect_url"`
	PreferenceID string `json:"preference_id"`
}

type PaymentInfo struct {
	Status    models.PaymentStatus `json:"status"`
	RawStatus string               `json:"raw_status"`
	Amount    float64              `json:"amount"`
	Currency  string               `json:"currency"`
}

// Client talks to the external provider's preference API. Implementations
// never touch the cart or order state.
type Client interface {
	CreatePreference(ctx context.Context, items []Item, payer *Payer, orderID string) (*Preference, error)
	QueryPayment(ctx context.Context, paymentID string) (*PaymentInfo, error)
}

type httpResult struct {
	status int
	body   []byte
}

type client struct {
	baseURL    string
	callbacks  CallbackURLs
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[httpResult]
}

// NewClient builds the provider client. callbackBaseURL is where the
// provider redirects the buyer's browser after checkout; the three outcome
// paths are derived from it.
func NewClient(baseURL, callbackBaseURL string, timeout time.Duration) Client {
	base := strings.TrimRight(callbackBaseURL, "/")

	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		callbacks: CallbackURLs{
			Success: base + "/payment/callback/success",
			Failure: base + "/payment/callback/failure",
			Pending: base + "/payment/callback/pending",
		},
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[httpResult](gobreaker.Settings{
			Name: "payment-api",
		}),
	}
}

// CreatePreference validates the payload client-side before anything goes on
// the wire: an empty cart or a payer without a usable email never reaches
// the provider.
func (c *client) CreatePreference(ctx context.Context, items []Item, payer *Payer, orderID string) (*Preference, error) {

	if len(items) == 0 {
		return nil, errors.ValidationError("Cannot create a payment preference for an empty cart")
	}

	if payer == nil || strings.TrimSpace(payer.Email) == "" {
		return nil, errors.ValidationError("Payer email is required")
	}

	if !strings.Contains(payer.Email, "@") {
		return nil, errors.ValidationError("Payer email is not a valid address")
	}

	reqBody := PreferenceRequest{
		Items:        items,
		Payer:        payer,
		OrderID:      orderID,
		CallbackURLs: c.callbacks,
	}

	result, err := c.do(ctx, http.MethodPost, c.baseURL+"/payment/preference", "", reqBody)
	if err != nil {
		return nil, err
	}

	if result.status < 200 || result.status >= 300 {
		return nil, errors.UpstreamError("Payment API", result.status)
	}

	var preference Preference
	if err := json.Unmarshal(result.body, &preference); err != nil {
		return nil, errors.InternalError("Malformed preference response").WithError(err)
	}

	if preference.RedirectURL == "" {
		return nil, errors.InternalError("Preference response missing redirect URL")
	}

	return &preference, nil
}

// QueryPayment corroborates an external callback. The happy path never needs
// it; the callback itself carries the outcome.
func (c *client) QueryPayment(ctx context.Context, paymentID string) (*PaymentInfo, error) {

	if strings.TrimSpace(paymentID) == "" {
		return nil, errors.ValidationError("Payment id is required")
	}

	result, err := c.do(ctx, http.MethodGet, c.baseURL+"/payment/status/"+paymentID, "", nil)
	if err != nil {
		return nil, err
	}

	if result.status < 200 || result.status >= 300 {
		return nil, errors.UpstreamError("Payment API", result.status)
	}

	var payload struct {
		Status   string  `json:"status"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}

	if err := json.Unmarshal(result.body, &payload); err != nil {
		return nil, errors.InternalError("Malformed payment status response").WithError(err)
	}

	return &PaymentInfo{
		Status:    models.ParsePaymentStatus(payload.Status),
		RawStatus: payload.Status,
		Amount:    payload.Amount,
		Currency:  payload.Currency,
	}, nil
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
			return httpResult{}, errors.TransportError("Payment API circuit is open").WithError(err)
		}

		return httpResult{}, errors.TransportError(fmt.Sprintf("Payment API unreachable: %v", err)).WithError(err)
	}

	return result, nil
}
