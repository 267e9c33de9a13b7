package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irkinnovations/portfolio/internal/database"
	"github.com/irkinnovations/portfolio/internal/domain"
)

var adminCols = []string{"id", "email", "password_hash", "created_at", "updated_at"}

func setupAdminRepo(t *testing.T) (*AdminRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewAdminRepository(database.Ready("postgres", sqlx.NewDb(db, "pgx"))), mock
}

func TestAdminRepository_FindByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := setupAdminRepo(t)
		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE email = $1")).
			WithArgs("admin@irk.test").
			WillReturnRows(sqlmock.NewRows(adminCols).AddRow("a1", "admin@irk.test", "$2a$10$hash", now, now))

		admin, err := repo.FindByEmail(context.Background(), "admin@irk.test")
		require.NoError(t, err)
		assert.Equal(t, "a1", admin.ID)
		assert.Equal(t, "$2a$10$hash", admin.PasswordHash)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupAdminRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE email = $1")).
			WithArgs("nobody@irk.test").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByEmail(context.Background(), "nobody@irk.test")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAdminRepository_FindByID(t *testing.T) {
	repo, mock := setupAdminRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepository_Upsert(t *testing.T) {
	repo, mock := setupAdminRepo(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(48 * time.Hour)

	// An existing row keeps its id and created_at.
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (email)")).
		WithArgs("new-id", "admin@irk.test", "$2a$10$new", now).
		WillReturnRows(sqlmock.NewRows(adminCols).AddRow("old-id", "admin@irk.test", "$2a$10$new", created, now))

	admin, err := repo.Upsert(context.Background(), domain.Admin{
		ID: "new-id", Email: "admin@irk.test", PasswordHash: "$2a$10$new", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "old-id", admin.ID)
	assert.Equal(t, created, admin.CreatedAt)
	assert.Equal(t, "$2a$10$new", admin.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}
