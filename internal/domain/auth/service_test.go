package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"salonpos/internal/core/apperror"
	"salonpos/internal/core/id"
)

type fakeOperators struct {
	byEmail map[string]*Operator
}

func (f *fakeOperators) GetByEmail(ctx context.Context, email string) (*Operator, error) {
	if op, ok := f.byEmail[email]; ok {
		return op, nil
	}
	return nil, apperror.NewNotFound("operator", email)
}

func newAuthFixture(t *testing.T) (*Service, *Operator) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	op := &Operator{
		ID:           id.New(),
		Name:         "Maria",
		Email:        "maria@salon.local",
		PasswordHash: string(hash),
		Active:       true,
	}
	repo := &fakeOperators{byEmail: map[string]*Operator{op.Email: op}}
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(repo, jwtSvc), op
}

func TestService_Login(t *testing.T) {
	svc, op := newAuthFixture(t)

	res, err := svc.Login(context.Background(), op.Email, "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.False(t, res.ExpiresAt.IsZero())
	require.Equal(t, op.ID, res.Operator.ID)

	// The issued token round-trips through validation.
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	user, err := jwtSvc.ValidateToken(res.Token)
	require.NoError(t, err)
	require.Equal(t, op.ID.String(), user.UserID)
	require.Equal(t, op.Email, user.Email)
}

func TestService_Login_Rejections(t *testing.T) {
	svc, op := newAuthFixture(t)
	ctx := context.Background()

	// Wrong password, unknown email and an inactive account all read the same.
	_, err := svc.Login(ctx, op.Email, "wrong password")
	requireUnauthorized(t, err)

	_, err = svc.Login(ctx, "nobody@salon.local", "correct horse")
	requireUnauthorized(t, err)

	op.Active = false
	_, err = svc.Login(ctx, op.Email, "correct horse")
	requireUnauthorized(t, err)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	svc, op := newAuthFixture(t)

	res, err := svc.Login(context.Background(), op.Email, "correct horse")
	require.NoError(t, err)

	other := NewJWTService(DefaultJWTConfig("different-secret"))
	_, err = other.ValidateToken(res.Token)
	require.Error(t, err)
}

func requireUnauthorized(t *testing.T, err error) {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, apperror.CodeUnauthorized, appErr.Code)
	require.Equal(t, "invalid credentials", appErr.Message)
}
