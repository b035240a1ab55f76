package mocks

import (
	"context"

	"github.com/farmcart/checkout-service/pkg/payments"
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

func (m *MockClient) CreatePreference(ctx context.Context, items []payments.Item, payer *payments.Payer, orderID string) (*payments.Preference, error) {
	args := m.Called(ctx, items, payer, orderID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*payments.Preference), args.Error(1)
}

func (m *MockClient) QueryPayment(ctx context.Context, paymentID string) (*payments.PaymentInfo, error) {
	args := m.Called(ctx, paymentID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*payments.PaymentInfo), args.Error(1)
}
