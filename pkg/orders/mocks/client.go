package mocks

import (
	"context"

	"github.com/farmcart/checkout-service/internal/models"
	"github.com/farmcart/checkout-service/pkg/orders"
	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockClient) Submit(ctx context.Context, token string, req *orders.CreateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, token, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockClient) GetOrder(ctx context.Context, token, orderID string) (*models.Order, error) {
	args := m.Called(ctx, token, orderID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockClient) ListOrders(ctx context.Context, token, buyerID string) ([]models.Order, error) {
	args := m.Called(ctx, token, buyerID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockClient) CancelOrder(ctx context.Context, token, orderID, reason string) (*models.Order, error) {
	args := m.Called(ctx, token, orderID, reason)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockClient) UpdateStatus(ctx context.Context, token, orderID string, status models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, token, orderID, status)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Order), args.Error(1)
}
