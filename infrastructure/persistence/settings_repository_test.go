package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youtube-auto-post/domain/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestSettingsRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsRepository(db)

	mock.ExpectExec("INSERT INTO youtube_api_settings").
		WithArgs(model.SettingsSingletonID, model.DefaultSettingsName, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s := model.NewAPISettings("")
	require.NoError(t, repo.Create(context.Background(), s))
	assert.False(t, s.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepository_CreateSecondRecord(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsRepository(db)

	mock.ExpectExec("INSERT INTO youtube_api_settings").
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	err := repo.Create(context.Background(), model.NewAPISettings("Second"))
	assert.ErrorIs(t, err, model.ErrSettingsExists)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSettingsRepository_Get(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("missing row", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT id, name, client_secrets_attachment_id").
			WithArgs(model.SettingsSingletonID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "client_secrets_attachment_id", "created_at", "updated_at"}))

		_, err := NewSettingsRepository(db).Get(context.Background())
		assert.ErrorIs(t, err, model.ErrSettingsNotFound)
		assert.ErrorIs(t, err, model.ErrConfiguration)
	})

	t.Run("with client secrets", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT id, name, client_secrets_attachment_id").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "client_secrets_attachment_id", "created_at", "updated_at"}).
				AddRow(1, "Channel", "att-1", now, now))

		s, err := NewSettingsRepository(db).Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Channel", s.Name)
		require.NotNil(t, s.ClientSecretsAttachmentID)
		assert.Equal(t, "att-1", *s.ClientSecretsAttachmentID)
		assert.True(t, s.HasClientSecrets())
	})
}

func TestSettingsRepository_UpdateWithoutRow(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE youtube_api_settings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewSettingsRepository(db).Update(context.Background(), model.NewAPISettings("x"))
	assert.ErrorIs(t, err, model.ErrSettingsNotFound)
}
