package service_test

import (
	"context"
	"testing"

	"branchpos/internal/config"
	"branchpos/internal/dto"
	"branchpos/internal/model"
	"branchpos/internal/repository"
	"branchpos/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubUserRepo struct {
	users map[string]*model.User // keyed by email
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := r.users[email]
	if !ok || !u.Active {
		return nil, errStubNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errStubNotFound
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func buildAuthSvc(t *testing.T) (service.AuthService, *model.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		ID:           uuid.New(),
		Name:         "Cashier One",
		Email:        "cashier@branchpos.local",
		PasswordHash: string(hash),
		Role:         "user",
		Active:       true,
	}
	repo := &stubUserRepo{users: map[string]*model.User{user.Email: user}}
	cfg := &config.Config{JWTSecret: "unit-test-secret", JWTExpirationHours: 8}
	return service.NewAuthService(repo, cfg), user
}

func TestLogin_IssuesSignedToken(t *testing.T) {
	svc, user := buildAuthSvc(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    user.Email,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), resp.UserID)
	assert.Equal(t, "user", resp.Role)

	parsed, err := jwt.Parse(resp.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("unit-test-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, user.Email, claims["email"])
	assert.Equal(t, "user", claims["role"])
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, user := buildAuthSvc(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    user.Email,
		Password: "wrong",
	})

	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestLogin_UnknownOrInactiveUser(t *testing.T) {
	svc, user := buildAuthSvc(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@branchpos.local",
		Password: "correct-horse",
	})
	require.Error(t, err)

	user.Active = false
	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    user.Email,
		Password: "correct-horse",
	})
	require.Error(t, err)
}
