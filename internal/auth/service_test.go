package auth_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/shared"
)

type stubRepo struct {
	users map[int64]*auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, shared.ErrNotFound)
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
}

func newService(t *testing.T, users ...*auth.User) (*auth.Service, *stubRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &stubRepo{users: make(map[int64]*auth.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	tokens := auth.NewTokenManager("test-secret", time.Hour, redisClient)
	return auth.NewService(repo, tokens), repo
}

func testUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.User{
		ID:           1,
		Email:        "pharmacist@pharmadesk.local",
		Name:         "Head Pharmacist",
		PasswordHash: string(hash),
		Role:         "pharmacist",
		IsActive:     true,
	}
}

func TestLoginAndVerify(t *testing.T) {
	user := testUser(t, "secret123")
	svc, _ := newService(t, user)
	ctx := context.Background()

	token, got, err := svc.Login(ctx, user.Email, "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, got.ID)

	principal, claims, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, principal.UserID)
	require.Equal(t, "pharmacist", principal.Role)
	require.Equal(t, user.Email, claims.Subject)
	require.NotEmpty(t, claims.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	user := testUser(t, "secret123")
	svc, _ := newService(t, user)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, user.Email, "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@pharmadesk.local", "secret123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	user := testUser(t, "secret123")
	user.IsActive = false
	svc, _ := newService(t, user)

	_, _, err := svc.Login(context.Background(), user.Email, "secret123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestVerifyRejectsDeactivatedUser(t *testing.T) {
	user := testUser(t, "secret123")
	svc, repo := newService(t, user)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, user.Email, "secret123")
	require.NoError(t, err)

	repo.users[user.ID].IsActive = false
	_, _, err = svc.Verify(ctx, token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestLogoutRevokesToken(t *testing.T) {
	user := testUser(t, "secret123")
	svc, _ := newService(t, user)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, user.Email, "secret123")
	require.NoError(t, err)

	_, claims, err := svc.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))

	_, _, err = svc.Verify(ctx, token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	user := testUser(t, "secret123")
	svc, _ := newService(t, user)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: user.ID,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, _, err = svc.Verify(context.Background(), signed)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestMiddlewareInjectsPrincipal(t *testing.T) {
	user := testUser(t, "secret123")
	svc, _ := newService(t, user)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, user.Email, "secret123")
	require.NoError(t, err)

	var seen *shared.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	svc.Middleware(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	require.Equal(t, user.ID, seen.UserID)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/medicines", nil)
	svc.Middleware(next).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
