package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cablecom/leads-api/internal/entity"
)

type MockCredentialVerifier struct {
	mock.Mock
}

func (m *MockCredentialVerifier) VerifyCredentials(ctx context.Context, identifier, password string) (*entity.AdminUser, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AdminUser), args.Error(1)
}

func newTestGate(t *testing.T, creds CredentialVerifier) *SessionGate {
	t.Helper()
	g, err := NewSessionGate(creds, "test-secret", true)
	require.NoError(t, err)
	return g
}

func TestSessionGate_LoginAndCheck(t *testing.T) {
	creds := new(MockCredentialVerifier)
	creds.On("VerifyCredentials", mock.Anything, "ryan", "pw").
		Return(&entity.AdminUser{ID: 7, Username: "ryan", Email: "ryan@x.com"}, nil)

	g := newTestGate(t, creds)
	res, err := g.Login(context.Background(), "ryan", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ryan@x.com", res.User.Email)

	c := res.Cookie
	assert.Equal(t, SessionCookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.Equal(t, "/", c.Path)

	claims, err := g.Check(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "ryan", claims.Username)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)

	creds.AssertExpectations(t)
}

func TestSessionGate_LoginErrors(t *testing.T) {
	creds := new(MockCredentialVerifier)
	creds.On("VerifyCredentials", mock.Anything, "ryan", "bad").Return(nil, ErrInvalidCredentials)
	g := newTestGate(t, creds)

	_, err := g.Login(context.Background(), "", "pw")
	assert.True(t, IsValidationError(err))

	_, err = g.Login(context.Background(), "ryan", "bad")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionGate_RejectsForgedAndExpiredTokens(t *testing.T) {
	creds := new(MockCredentialVerifier)
	creds.On("VerifyCredentials", mock.Anything, mock.Anything, mock.Anything).
		Return(&entity.AdminUser{ID: 1, Username: "ryan"}, nil)
	g := newTestGate(t, creds)

	t.Run("presence is not enough", func(t *testing.T) {
		_, err := g.Check("anything")
		assert.ErrorIs(t, err, ErrUnauthorized)
		_, err = g.Check("")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := NewSessionGate(creds, "other-secret", false)
		require.NoError(t, err)
		res, err := other.Login(context.Background(), "ryan", "pw")
		require.NoError(t, err)
		_, err = g.Check(res.Token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unsigned", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"username": "ryan"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = g.Check(tok)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		g.now = func() time.Time { return issued }
		res, err := g.Login(context.Background(), "ryan", "pw")
		require.NoError(t, err)

		g.now = func() time.Time { return issued.Add(SessionTTL - time.Minute) }
		_, err = g.Check(res.Token)
		assert.NoError(t, err)

		g.now = func() time.Time { return issued.Add(SessionTTL + time.Minute) }
		_, err = g.Check(res.Token)
		assert.ErrorIs(t, err, ErrUnauthorized)
		g.now = time.Now
	})
}

func TestSessionGate_CheckRequestAndLogout(t *testing.T) {
	creds := new(MockCredentialVerifier)
	creds.On("VerifyCredentials", mock.Anything, mock.Anything, mock.Anything).
		Return(&entity.AdminUser{ID: 1, Username: "ryan"}, nil)
	g := newTestGate(t, creds)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	_, err := g.CheckRequest(req)
	assert.ErrorIs(t, err, ErrUnauthorized)

	res, err := g.Login(context.Background(), "ryan", "pw")
	require.NoError(t, err)
	req.AddCookie(res.Cookie)
	claims, err := g.CheckRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "ryan", claims.Username)

	out := g.Logout()
	assert.Equal(t, SessionCookieName, out.Name)
	assert.Empty(t, out.Value)
	assert.Contains(t, out.String(), "Max-Age=0")
}

func TestNewSessionGate_RandomKeyWhenSecretEmpty(t *testing.T) {
	a, err := NewSessionGate(nil, "", false)
	require.NoError(t, err)
	b, err := NewSessionGate(nil, "", false)
	require.NoError(t, err)
	assert.Len(t, a.key, 32)
	assert.NotEqual(t, a.key, b.key)
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), &SessionClaims{Username: "ryan"})
	c, ok := SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "ryan", c.Username)
}
