package health

import (
	"fmt"
	"net/http"
	"time"

	"github.com/farmcart/checkout-service/internal/config"
	"github.com/hellofresh/health-go/v5"
	healthHTTP "github.com/hellofresh/health-go/v5/checks/http"
	healthPg "github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

// NewHealthHandler wires liveness checks for everything the checkout flow
// depends on: session store, settlement journal and both upstream APIs.
func NewHealthHandler(cfg *config.Config) (*health.Health, error) {

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "checkout-service",
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(
			health.Config{
				Name:      "postgres",
				Timeout:   3 * time.Second,
				SkipOnErr: false,
				Check: healthPg.New(healthPg.Config{
					DSN: cfg.Database.GetDSN(),
				}),
			},
			health.Config{
				Name:      "redis",
				Timeout:   2 * time.Second,
				SkipOnErr: false,
				Check: healthRedis.New(healthRedis.Config{
					DSN: cfg.RedisConnect.GetDSN(),
				}),
			},
			health.Config{
				Name:      "order-api",
				Timeout:   5 * time.Second,
				SkipOnErr: true,
				Check: healthHTTP.New(healthHTTP.Config{
					URL:            cfg.OrderAPI.BaseURL + "/health",
					RequestTimeout: 5 * time.Second,
				}),
			},
			health.Config{
				Name:      "payment-api",
				Timeout:   5 * time.Second,
				SkipOnErr: true,
				Check: healthHTTP.New(healthHTTP.Config{
					URL:            cfg.PaymentAPI.BaseURL + "/health",
					RequestTimeout: 5 * time.Second,
				}),
			},
		),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

// Handler exposes the health check endpoint.
func Handler(h *health.Health) http.Handler {
	return h.Handler()
}
