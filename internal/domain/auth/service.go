package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
)

// Operator is a member of staff who can open the drawer and commit tickets.
type Operator struct {
	ID           id.ID  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Active       bool   `db:"active" json:"active"`
}

// OperatorRepository resolves operator accounts.
type OperatorRepository interface {
	GetByEmail(ctx context.Context, email string) (*Operator, error)
}

// LoginResult carries a freshly issued token.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Operator  *Operator `json:"operator"`
}

// Service authenticates operators.
type Service struct {
	operators OperatorRepository
	jwt       *JWTService
}

// NewService creates the auth service.
func NewService(operators OperatorRepository, jwt *JWTService) *Service {
	return &Service{operators: operators, jwt: jwt}
}

// Login verifies credentials and issues a token. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	op, err := s.operators.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	if !op.Active {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateToken(op.ID.String(), op.Name, op.Email)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, Operator: op}, nil
}
