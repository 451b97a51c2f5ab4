package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cablecom/leads-api/internal/entity"
)

const (
	SessionCookieName = "admin_session"
	SessionTTL        = 7 * 24 * time.Hour
)

// SessionClaims is the signed payload carried in the session cookie.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, identifier, password string) (*entity.AdminUser, error)
}

type LoginResult struct {
	Token  string
	User   *entity.AdminUser
	Cookie *http.Cookie
}

// SessionGate issues and verifies HS256 session tokens. Tokens are not stored
// server side; logout only tells the browser to drop the cookie.
type SessionGate struct {
	Credentials CredentialVerifier
	Secure      bool
	key         []byte
	now         func() time.Time
}

// NewSessionGate uses secret as the signing key. With an empty secret a random
// key is generated, so sessions do not survive a restart.
func NewSessionGate(creds CredentialVerifier, secret string, secure bool) (*SessionGate, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	return &SessionGate{Credentials: creds, Secure: secure, key: key, now: time.Now}, nil
}

func (g *SessionGate) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ValidationError{Field: "credentials", Message: "Username and password are required"}
	}

	user, err := g.Credentials.VerifyCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := g.issue(user)
	if err != nil {
		return nil, &TechnicalError{Code: "TOKEN_ERROR", Message: "failed to sign session", Err: err}
	}

	return &LoginResult{Token: token, User: user, Cookie: g.SessionCookie(token)}, nil
}

func (g *SessionGate) issue(user *entity.AdminUser) (string, error) {
	now := g.now()
	claims := SessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.key)
}

// Check verifies the token signature and expiry.
func (g *SessionGate) Check(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return g.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// CheckRequest reads the session cookie from r and verifies it.
func (g *SessionGate) CheckRequest(r *http.Request) (*SessionClaims, error) {
	c, err := r.Cookie(SessionCookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return nil, ErrUnauthorized
	}
	return g.Check(c.Value)
}

func (g *SessionGate) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   g.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Logout returns the cookie that clears the session in the browser.
func (g *SessionGate) Logout() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

type sessionKey struct{}

func WithSession(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, sessionKey{}, claims)
}

func SessionFromContext(ctx context.Context) (*SessionClaims, bool) {
	c, ok := ctx.Value(sessionKey{}).(*SessionClaims)
	return c, ok && c != nil
}

func requireSession(ctx context.Context) error {
	if _, ok := SessionFromContext(ctx); !ok {
		return ErrUnauthorized
	}
	return nil
}
