package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/media-ranker/backend/internal/config"
)

func TestJWTStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewJWTStore([]byte("secret"), time.Hour)

	token, err := store.Issue(ctx, 42)
	require.NoError(t, err)

	userID, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)

	require.NoError(t, store.Revoke(ctx, token))
}

func TestJWTStoreRejects(t *testing.T) {
	ctx := context.Background()
	store := NewJWTStore([]byte("secret"), time.Hour)

	expired := NewJWTStore([]byte("secret"), time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(ctx, 1)
	require.NoError(t, err)

	otherKey, err := NewJWTStore([]byte("other"), time.Hour).Issue(ctx, 1)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"expired":        expiredToken,
		"wrong key":      otherKey,
		"none algorithm": unsigned,
		"no expiry":      noExpiry,
		"no user":        noUser,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := store.Resolve(ctx, token)
			assert.ErrorIs(t, err, ErrInvalidSession)
		})
	}
}

func TestNewSelectsBackend(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, config.SessionConfig{Backend: config.SessionBackendJWT, Secret: "s", TTL: time.Hour}, config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &JWTStore{}, store)

	_, err = New(ctx, config.SessionConfig{Backend: "cookie"}, config.RedisConfig{})
	assert.Error(t, err)

	_, err = New(ctx, config.SessionConfig{Backend: config.SessionBackendRedis}, config.RedisConfig{URL: "::not a url::"})
	assert.Error(t, err)
}
