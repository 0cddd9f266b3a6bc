package authenticator

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var errEmptyToken = errors.New("empty token")

type claims[T any] struct {
	jwt.RegisteredClaims
	Object T `json:"obj,omitempty"`
}

type jwtTokenEngine[T any] struct {
	secret     []byte
	expiration time.Duration
}

// NewTokenEngine signs and verifies HS256 tokens carrying obj. Tokens are issued by the
// identity service with the same secret; Generate is used by tooling and tests.
func NewTokenEngine[T any](secret string, expiration time.Duration) *jwtTokenEngine[T] {
	return &jwtTokenEngine[T]{secret: []byte(secret), expiration: expiration}
}

func (e *jwtTokenEngine[T]) Generate(sub string, obj T) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims[T]{
		Object: obj,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(e.expiration)),
		},
	})

	return token.SignedString(e.secret)
}

func (e *jwtTokenEngine[T]) Verify(token string) (T, error) {
	var c claims[T]
	if token == "" {
		return c.Object, errEmptyToken
	}

	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return e.secret, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return c.Object, nil
}
