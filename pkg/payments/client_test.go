package payments_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appErrors "github.com/farmcart/checkout-service/internal/errors"
	"github.com/farmcart/checkout-service/internal/models"
	"github.com/farmcart/checkout-service/pkg/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePreference(t *testing.T) {
	ctx := t.Context()

	items := []payments.Item{
		{ID: "p-1", Title: "Tomatoes 1kg", Quantity: 3, UnitPrice: 3.50},
		{ID: "p-2", Title: "Eggs x12", Quantity: 1, UnitPrice: 4.25},
	}
	payer := &payments.Payer{Name: "Ana", Email: "ana@example.com"}

	t.Run("Success - Request Mirrors Cart And Callbacks", func(t *testing.T) {
		// Arrange
		var received payments.PreferenceRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/payment/preference", r.URL.Path)

			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			json.NewEncoder(w).Encode(payments.Preference{
				RedirectURL:  "https://pay.example/p/abc",
				PreferenceID: "pref-1",
			})
		}))
		defer server.Close()

		client := payments.NewClient(server.URL, "https://shop.example", 5*time.Second)

		// Act
		preference, err := client.CreatePreference(ctx, items, payer, "nonce-1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/p/abc", preference.RedirectURL)
		assert.Equal(t, "pref-1", preference.PreferenceID)

		assert.ElementsMatch(t, items, received.Items)
		assert.Equal(t, "ana@example.com", received.Payer.Email)
		assert.Equal(t, "nonce-1", received.OrderID)
		assert.Equal(t, "https://shop.example/payment/callback/success", received.CallbackURLs.Success)
		assert.Equal(t, "https://shop.example/payment/callback/failure", received.CallbackURLs.Failure)
		assert.Equal(t, "https://shop.example/payment/callback/pending", received.CallbackURLs.Pending)
	})

	t.Run("Failure - Empty Items Never Hit The Wire", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))
		defer server.Close()

		client := payments.NewClient(server.URL, "https://shop.example", 5*time.Second)

		// Act
		preference, err := client.CreatePreference(ctx, nil, payer, "")

		// Assert
		assert.Nil(t, preference)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
	})

	t.Run("Failure - Payer Without Email", func(t *testing.T) {
		// Arrange
		client := payments.NewClient("http://unused.invalid", "https://shop.example", 5*time.Second)

		// Act
		_, err := client.CreatePreference(ctx, items, &payments.Payer{Name: "Ana"}, "")

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
	})

	t.Run("Failure - Payer Email Without At Sign", func(t *testing.T) {
		// Arrange
		client := payments.NewClient("http://unused.invalid", "https://shop.example", 5*time.Second)

		// Act
		_, err := client.CreatePreference(ctx, items, &payments.Payer{Email: "not-an-email"}, "")

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
	})

	t.Run("Failure - Upstream 400 Maps To Request Error", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := payments.NewClient(server.URL, "https://shop.example", 5*time.Second)

		// Act
		_, err := client.CreatePreference(ctx, items, payer, "")

		// Assert
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeRequest, appErr.Code)
		assert.Equal(t, http.StatusBadRequest, appErr.UpstreamStatus)
	})

	t.Run("Failure - Upstream 500 Maps To Request Error", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := payments.NewClient(server.URL, "https://shop.example", 5*time.Second)

		// Act
		_, err := client.CreatePreference(ctx, items, payer, "")

		// Assert
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeRequest, appErr.Code)
		assert.Equal(t, http.StatusInternalServerError, appErr.UpstreamStatus)
	})

	t.Run("Failure - Missing Redirect URL", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(payments.Preference{PreferenceID: "pref-1"})
		}))
		defer server.Close()

		client := payments.NewClient(server.URL, "https://shop.example", 5*time.Second)

		// Act
		_, err := client.CreatePreference(ctx, items, payer, "")

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInternal))
	})

	t.Run("Failure - Network Error Maps To Transport Error", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := payments.NewClient(server.URL, "https://shop.example", time.Second)

		// Act
		_, err := client.CreatePreference(ctx, items, payer, "")

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeTransport))
	})
}

func TestQueryPayment(t *testing.T) {
	ctx := t.Context()

	t.Run("Success - Status Canonicalized", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/payment/status/pay-1", r.URL.Path)

			json.NewEncoder(w).Encode(map[string]any{
				"status":   "APPROVED",
				"amount":   14.75,
				"currency": "ARS",
			})
		}))
		defer server.Close()

		client := payments.NewClient(server.URL, "https://shop.example", 5*time.Second)

		// Act
		info, err := client.QueryPayment(ctx, "pay-1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusApproved, info.Status)
		assert.Equal(t, "APPROVED", info.RawStatus)
		assert.InDelta(t, 14.75, info.Amount, 0.001)
	})

	t.Run("Success - Unmapped Status Becomes Unknown", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"status": "in_mediation"})
		}))
		defer server.Close()

		client := payments.NewClient(server.URL, "https://shop.example", 5*time.Second)

		// Act
		info, err := client.QueryPayment(ctx, "pay-1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusUnknown, info.Status)
	})

	t.Run("Failure - Blank Payment ID", func(t *testing.T) {
		// Arrange
		client := payments.NewClient("http://unused.invalid", "https://shop.example", 5*time.Second)

		// Act
		_, err := client.QueryPayment(ctx, "  ")

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
	})
}
