package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/irkinnovations/portfolio/internal/database"
	"github.com/irkinnovations/portfolio/internal/domain"
)

// AdminRepository handles administrator data access on Postgres.
type AdminRepository struct {
	db *database.Handle[*sqlx.DB]
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(db *database.Handle[*sqlx.DB]) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByID retrieves an administrator by ID.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*domain.Admin, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var admin domain.Admin
	err = db.GetContext(ctx, &admin,
		`SELECT id, email, password_hash, created_at, updated_at
		 FROM admins WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find admin by id %s: %w", id, err)
	}
	return &admin, nil
}

// FindByEmail retrieves an administrator by email address.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var admin domain.Admin
	err = db.GetContext(ctx, &admin,
		`SELECT id, email, password_hash, created_at, updated_at
		 FROM admins WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	return &admin, nil
}

// Upsert creates the administrator or replaces the password of the existing one with the same email.
// Returns the stored administrator.
func (r *AdminRepository) Upsert(ctx context.Context, admin domain.Admin) (*domain.Admin, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var result domain.Admin
	err = db.QueryRowxContext(ctx,
		`INSERT INTO admins (id, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (email)
		 DO UPDATE SET password_hash = EXCLUDED.password_hash,
		               updated_at = EXCLUDED.updated_at
		 RETURNING id, email, password_hash, created_at, updated_at`,
		admin.ID, admin.Email, admin.PasswordHash, admin.UpdatedAt,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("upsert admin: %w", err)
	}
	return &result, nil
}
