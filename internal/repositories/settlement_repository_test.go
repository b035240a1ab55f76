package repository_test

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/farmcart/checkout-service/internal/models"
	repository "github.com/farmcart/checkout-service/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSettlementRepoTest(t *testing.T) (repository.SettlementRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	repo := repository.NewSettlementRepository(db)
	require.NotNil(t, repo, "NewSettlementRepository should return a non-nil repository")

	return repo, mock
}

func TestSettlementRepository(t *testing.T) {
	repo, mock := setupSettlementRepoTest(t)
	ctx := t.Context()

	gap := &models.SettlementGap{
		ID:           uuid.New(),
		Nonce:        uuid.New(),
		BuyerID:      "buyer-1",
		Amount:       14.75,
		PaymentState: models.PaymentMethodExternal,
		Cause:        "Order API failed with a server error",
	}

	t.Run("Record", func(t *testing.T) {

		t.Run("Success", func(t *testing.T) {
			// Arrange
			mock.ExpectExec("INSERT INTO settlement_gaps").
				WithArgs(gap.ID, gap.Nonce, gap.BuyerID, gap.Amount, gap.PaymentState, gap.Cause).
				WillReturnResult(sqlmock.NewResult(0, 1))

			// Act
			err := repo.Record(ctx, gap)

			// Assert
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Failure - Database Error", func(t *testing.T) {
			// Arrange
			dbErr := errors.New("connection reset")
			mock.ExpectExec("INSERT INTO settlement_gaps").
				WithArgs(gap.ID, gap.Nonce, gap.BuyerID, gap.Amount, gap.PaymentState, gap.Cause).
				WillReturnError(dbErr)

			// Act
			err := repo.Record(ctx, gap)

			// Assert
			assert.Error(t, err)
			assert.ErrorIs(t, err, dbErr)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("ListUnresolved", func(t *testing.T) {

		t.Run("Success", func(t *testing.T) {
			// Arrange
			now := time.Now()
			rows := sqlmock.NewRows([]string{"id", "nonce", "buyer_id", "amount", "payment_state", "cause", "created_at", "resolved"}).
				AddRow(gap.ID, gap.Nonce, gap.BuyerID, gap.Amount, gap.PaymentState, gap.Cause, now, false)

			mock.ExpectQuery("SELECT (.+) FROM settlement_gaps").
				WillReturnRows(rows)

			// Act
			gaps, err := repo.ListUnresolved(ctx)

			// Assert
			require.NoError(t, err)
			require.Len(t, gaps, 1)
			assert.Equal(t, gap.ID, gaps[0].ID)
			assert.Equal(t, gap.BuyerID, gaps[0].BuyerID)
			assert.False(t, gaps[0].Resolved)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Success - No Rows", func(t *testing.T) {
			// Arrange
			mock.ExpectQuery("SELECT (.+) FROM settlement_gaps").
				WillReturnRows(sqlmock.NewRows([]string{"id", "nonce", "buyer_id", "amount", "payment_state", "cause", "created_at", "resolved"}))

			// Act
			gaps, err := repo.ListUnresolved(ctx)

			// Assert
			require.NoError(t, err)
			assert.Empty(t, gaps)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("MarkResolved", func(t *testing.T) {

		t.Run("Success", func(t *testing.T) {
			// Arrange
			mock.ExpectExec("UPDATE settlement_gaps SET resolved").
				WithArgs(gap.ID).
				WillReturnResult(sqlmock.NewResult(0, 1))

			// Act
			err := repo.MarkResolved(ctx, gap.ID)

			// Assert
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Failure - Unknown Gap", func(t *testing.T) {
			// Arrange
			mock.ExpectExec("UPDATE settlement_gaps SET resolved").
				WithArgs(gap.ID).
				WillReturnResult(sqlmock.NewResult(0, 0))

			// Act
			err := repo.MarkResolved(ctx, gap.ID)

			// Assert
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "not found")
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})
}
