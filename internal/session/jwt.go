package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTStore keeps no server-side state: the token itself is an HS256-signed
// user id with an expiry.
type JWTStore struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTStore(secret []byte, ttl time.Duration) *JWTStore {
	return &JWTStore{secret: secret, ttl: ttl, now: time.Now}
}

func (s *JWTStore) Issue(_ context.Context, userID int) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *JWTStore) Resolve(_ context.Context, token string) (int, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || c.UserID <= 0 {
		return 0, ErrInvalidSession
	}
	return c.UserID, nil
}

// Revoke is a no-op; signed tokens stay valid until they expire.
func (s *JWTStore) Revoke(context.Context, string) error {
	return nil
}
