package mocks

import (
	"context"

	"github.com/farmcart/checkout-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockSessionRepository struct {
	mock.Mock
}

func NewMockSessionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSessionRepository) Save(ctx context.Context, session *models.UserSession) error {
	args := m.Called(ctx, session)

	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, buyerID string) (*models.UserSession, error) {
	args := m.Called(ctx, buyerID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.UserSession), args.Error(1)
}

func (m *MockSessionRepository) Clear(ctx context.Context, buyerID string) error {
	args := m.Called(ctx, buyerID)

	return args.Error(0)
}

type MockSettlementRepository struct {
	mock.Mock
}

func NewMockSettlementRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSettlementRepository {
	m := &MockSettlementRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSettlementRepository) Record(ctx context.Context, gap *models.SettlementGap) error {
	args := m.Called(ctx, gap)

	return args.Error(0)
}

func (m *MockSettlementRepository) ListUnresolved(ctx context.Context) ([]models.SettlementGap, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.SettlementGap), args.Error(1)
}

func (m *MockSettlementRepository) MarkResolved(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}
