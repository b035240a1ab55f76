package services

import (
	"context"
	"log/slog"

	"github.com/farmcart/checkout-service/internal/models"
	"github.com/farmcart/checkout-service/pkg/orders"
)

// OrderService proxies order reads and cancellation to the Order API on the
// buyer's behalf. Orders are owned upstream; nothing here caches or mutates
// them locally.
type OrderService struct {
	logger *slog.Logger
	orders orders.Client
}

func NewOrderService(logger *slog.Logger, ordersClient orders.Client) *OrderService {
	return &OrderService{logger: logger, orders: ordersClient}
}

func (s *OrderService) History(ctx context.Context, token, buyerID string) ([]models.Order, error) {
	return s.orders.ListOrders(ctx, token, buyerID)
}

func (s *OrderService) Detail(ctx context.Context, token, orderID string) (*models.Order, error) {
	return s.orders.GetOrder(ctx, token, orderID)
}

func (s *OrderService) Cancel(ctx context.Context, token, orderID, reason string) (*models.Order, error) {

	order, err := s.orders.CancelOrder(ctx, token, orderID, reason)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Order cancelled",
		slog.String("order_id", orderID))

	return order, nil
}
