package services

import (
	"context"
	"log/slog"

	"github.com/farmcart/checkout-service/internal/errors"
	"github.com/farmcart/checkout-service/internal/models"
	repository "github.com/farmcart/checkout-service/internal/repositories"
)

// SessionService keeps the buyer's session persisted across requests. The
// checkout flow only reads it; Logout is the single write that removes it.
type SessionService struct {
	logger *slog.Logger
	repo   repository.SessionRepository
}

func NewSessionService(logger *slog.Logger, repo repository.SessionRepository) *SessionService {
	return &SessionService{logger: logger, repo: repo}
}

// Resolve returns the stored session for the authenticated buyer, creating
// it from the verified claims on first sight. The token is refreshed on
// every hit so upstream calls always use the buyer's current credentials.
func (s *SessionService) Resolve(ctx context.Context, claims *models.Claims, token string) (*models.UserSession, error) {

	session, err := s.repo.Get(ctx, claims.BuyerID)
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeNotFound) {
			return nil, err
		}

		session = &models.UserSession{
			BuyerID: claims.BuyerID,
			Name:    claims.Name,
			Email:   claims.Email,
		}
	}

	session.Token = token

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Logout clears the persisted session.
func (s *SessionService) Logout(ctx context.Context, buyerID string) error {

	if err := s.repo.Clear(ctx, buyerID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Session cleared", slog.String("buyer_id", buyerID))

	return nil
}
