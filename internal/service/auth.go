package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/irkinnovations/portfolio/internal/domain"
)

// AdminStore defines the administrator data access interface consumed by AuthService.
type AdminStore interface {
	FindByID(ctx context.Context, id string) (*domain.Admin, error)
	FindByEmail(ctx context.Context, email string) (*domain.Admin, error)
	Upsert(ctx context.Context, admin domain.Admin) (*domain.Admin, error)
}

// Compared against when the email is unknown so both failure paths cost one bcrypt run.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("irk-dummy-password"), bcrypt.DefaultCost)

// AuthService handles administrator authentication.
type AuthService struct {
	admins AdminStore
	tokens TokenIssuer
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(admins AdminStore, tokens TokenIssuer) *AuthService {
	return &AuthService{admins: admins, tokens: tokens, now: time.Now}
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Admin     *domain.Admin
	Token     string
	ExpiresAt time.Time
}

// Login checks the credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.admins.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(admin.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("admin login", "admin_id", admin.ID)
	return &LoginResult{Admin: admin, Token: token, ExpiresAt: exp}, nil
}

// Verify validates a bearer token and returns the administrator ID it was issued to.
func (s *AuthService) Verify(token string) (string, error) {
	return s.tokens.Verify(token)
}

// GetAdmin retrieves an administrator by ID.
func (s *AuthService) GetAdmin(ctx context.Context, id string) (*domain.Admin, error) {
	return s.admins.FindByID(ctx, id)
}

// EnsureAdmin creates the administrator or resets its password.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*domain.Admin, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: admin email and password are required", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	admin, err := s.admins.Upsert(ctx, domain.Admin{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert admin: %w", err)
	}

	slog.Info("admin ensured", "admin_id", admin.ID, "email", admin.Email)
	return admin, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
