package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farmcart/checkout-service/internal/models"
	"github.com/farmcart/checkout-service/internal/utils"
	"github.com/google/uuid"
)

// SettlementRepository is the durable journal of settlement gaps: payments
// captured by the provider without a matching local order.
type SettlementRepository interface {
	Record(ctx context.Context, gap *models.SettlementGap) error
	ListUnresolved(ctx context.Context) ([]models.SettlementGap, error)
	MarkResolved(ctx context.Context, id uuid.UUID) error
}

type settlementRepository struct {
	DB *sql.DB
}

func NewSettlementRepository(db *sql.DB) SettlementRepository {
	return &settlementRepository{DB: db}
}

func (r *settlementRepository) Record(ctx context.Context, gap *models.SettlementGap) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO settlement_gaps (id, nonce, buyer_id, amount, payment_state, cause, created_at, resolved)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), FALSE)
	`

	_, err := r.DB.ExecContext(dbCtx, query, gap.ID, gap.Nonce, gap.BuyerID, gap.Amount, gap.PaymentState, gap.Cause)

	if err != nil {
		return fmt.Errorf("failed to record settlement gap: %w", err)
	}

	return nil
}

func (r *settlementRepository) ListUnresolved(ctx context.Context) ([]models.SettlementGap, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, nonce, buyer_id, amount, payment_state, cause, created_at, resolved
		FROM settlement_gaps
		WHERE NOT resolved
		ORDER BY created_at ASC
	`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlement gaps: %w", err)
	}

	defer rows.Close()

	var gaps []models.SettlementGap

	for rows.Next() {

		var gap models.SettlementGap

		err := rows.Scan(&gap.ID, &gap.Nonce, &gap.BuyerID, &gap.Amount, &gap.PaymentState, &gap.Cause, &gap.CreatedAt, &gap.Resolved)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement gap: %w", err)
		}

		gaps = append(gaps, gap)

	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return gaps, nil
}

func (r *settlementRepository) MarkResolved(ctx context.Context, id uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE settlement_gaps SET resolved = TRUE WHERE id = $1
	`

	result, err := r.DB.ExecContext(dbCtx, query, id)
	if err != nil {
		return fmt.Errorf("failed to resolve settlement gap: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to resolve settlement gap: %w", err)
	}

	if updatedRows == 0 {
		return fmt.Errorf("settlement gap not found")
	}

	return nil
}
