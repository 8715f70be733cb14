package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const roleAIExecutor = "ai_executor"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are issued by the identity service. Only the HS256 signature and
// the standard time claims are checked here.
type Claims struct {
	UserID     int64    `json:"user_id"`
	Privileged bool     `json:"privileged"`
	Roles      []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the caller resolved from the bearer token. The zero value is an
// anonymous caller.
type Identity struct {
	UserID     int64
	Privileged bool
	AIExecutor bool
}

func (i Identity) Authenticated() bool {
	return i.UserID != 0 || i.Privileged || i.AIExecutor
}

type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) Authenticator {
	return Authenticator{secret: []byte(secret)}
}

// Issue signs a token for identity. Used by tests and local tooling.
func (a Authenticator) Issue(identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     identity.UserID,
		Privileged: identity.Privileged,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if identity.AIExecutor {
		claims.Roles = []string{roleAIExecutor}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (a Authenticator) Verify(raw string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	identity := Identity{UserID: claims.UserID, Privileged: claims.Privileged}
	for _, role := range claims.Roles {
		if strings.EqualFold(strings.TrimSpace(role), roleAIExecutor) {
			identity.AIExecutor = true
		}
	}
	if !identity.Authenticated() {
		return Identity{}, ErrInvalidToken
	}
	return identity, nil
}

// FromRequest resolves the caller. A request without an Authorization header
// is anonymous; a malformed or invalid header is an error.
func (a Authenticator) FromRequest(r *http.Request) (Identity, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return Identity{}, ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return Identity{}, ErrInvalidToken
	}
	return a.Verify(strings.TrimSpace(parts[1]))
}
