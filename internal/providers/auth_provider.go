package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"surveycore/internal/structures"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

type authCtxKey int

const claimsKey authCtxKey = 1

// Claims identify an administrator and the tenant every report query is
// scoped to.
type Claims struct {
	UID  string `json:"uid"`
	TID  string `json:"tid"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type AuthProviderInterface interface {
	RequireTenant(next http.Handler) http.Handler
	Sign(uid, tid, role string, ttl time.Duration) (string, error)
}

type AuthProvider struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthProvider(conf *structures.Config) AuthProviderInterface {
	return &AuthProvider{
		secret: []byte(conf.Auth.JWTSecret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}
}

func (a *AuthProvider) Sign(uid, tid, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:  uid,
		TID:  tid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *AuthProvider) parse(raw string) (*Claims, error) {
	t, err := a.parser.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token")
	}
	if c.TID == "" {
		return nil, errors.New("token carries no tenant")
	}
	return c, nil
}

// RequireTenant rejects requests without a valid bearer token naming a tenant.
func (a *AuthProvider) RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		c, err := a.parse(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, c)))
	})
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}

func TenantIDFromContext(ctx context.Context) (string, bool) {
	if c, ok := ClaimsFromContext(ctx); ok && c.TID != "" {
		return c.TID, true
	}
	return "", false
}

// WithClaims attaches claims directly; handlers under test use it to skip signing.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}
