package repository_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	appErrors "github.com/farmcart/checkout-service/internal/errors"
	"github.com/farmcart/checkout-service/internal/models"
	repository "github.com/farmcart/checkout-service/internal/repositories"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSessionRepoTest(t *testing.T) (repository.SessionRepository, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()

	t.Cleanup(func() {
		client.Close()
	})

	return repository.NewSessionRepository(client, time.Hour), mock
}

func TestSessionRepository(t *testing.T) {
	ctx := t.Context()

	session := &models.UserSession{
		BuyerID: "buyer-1",
		Token:   "test-token",
		Name:    "Ana",
		Email:   "ana@example.com",
	}

	payload, err := json.Marshal(session)
	require.NoError(t, err)

	t.Run("Save", func(t *testing.T) {

		t.Run("Success", func(t *testing.T) {
			// Arrange
			repo, mock := setupSessionRepoTest(t)
			mock.ExpectSet("session:buyer-1", payload, time.Hour).SetVal("OK")

			// Act
			err := repo.Save(ctx, session)

			// Assert
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Failure - Redis Error", func(t *testing.T) {
			// Arrange
			repo, mock := setupSessionRepoTest(t)
			mock.ExpectSet("session:buyer-1", payload, time.Hour).SetErr(errors.New("redis down"))

			// Act
			err := repo.Save(ctx, session)

			// Assert
			assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDatabaseError))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("Get", func(t *testing.T) {

		t.Run("Success", func(t *testing.T) {
			// Arrange
			repo, mock := setupSessionRepoTest(t)
			mock.ExpectGet("session:buyer-1").SetVal(string(payload))

			// Act
			got, err := repo.Get(ctx, "buyer-1")

			// Assert
			require.NoError(t, err)
			assert.Equal(t, session, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Failure - No Session", func(t *testing.T) {
			// Arrange
			repo, mock := setupSessionRepoTest(t)
			mock.ExpectGet("session:buyer-1").RedisNil()

			// Act
			got, err := repo.Get(ctx, "buyer-1")

			// Assert
			assert.Nil(t, got)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
			require.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run("Failure - Corrupt Payload", func(t *testing.T) {
			// Arrange
			repo, mock := setupSessionRepoTest(t)
			mock.ExpectGet("session:buyer-1").SetVal("{not-json")

			// Act
			got, err := repo.Get(ctx, "buyer-1")

			// Assert
			assert.Nil(t, got)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInternal))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})

	t.Run("Clear", func(t *testing.T) {

		t.Run("Success", func(t *testing.T) {
			// Arrange
			repo, mock := setupSessionRepoTest(t)
			mock.ExpectDel("session:buyer-1").SetVal(1)

			// Act
			err := repo.Clear(ctx, "buyer-1")

			// Assert
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	})
}
