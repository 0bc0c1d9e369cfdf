package token

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClaims() Claims {
	return Claims{PaymentMethodID: "pm-ideal", TransactionID: "tx-1", FinishURL: "/checkout/finish?orderId=o1"}
}

func TestFactory_GenerateAndParse(t *testing.T) {
	f := NewFactory("secret", NewMemoryStore())
	ctx := context.Background()

	raw, err := f.Generate(testClaims(), time.Hour)
	require.NoError(t, err)

	claims, err := f.Parse(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "pm-ideal", claims.PaymentMethodID)
	assert.Equal(t, "tx-1", claims.TransactionID)
	assert.Equal(t, "/checkout/finish?orderId=o1", claims.FinishURL)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestFactory_Parse_Rejections(t *testing.T) {
	f := NewFactory("secret", NewMemoryStore())
	ctx := context.Background()

	t.Run("Garbage", func(t *testing.T) {
		_, err := f.Parse(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		raw, err := NewFactory("other", NewMemoryStore()).Generate(testClaims(), time.Hour)
		require.NoError(t, err)
		_, err = f.Parse(ctx, raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		past := NewFactory("secret", NewMemoryStore())
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		raw, err := past.Generate(testClaims(), time.Hour)
		require.NoError(t, err)
		_, err = f.Parse(ctx, raw)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("NoneAlgorithm", func(t *testing.T) {
		c := testClaims()
		c.ID = "x"
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = f.Parse(ctx, raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("MissingTransaction", func(t *testing.T) {
		raw, err := f.Generate(Claims{PaymentMethodID: "pm"}, time.Hour)
		require.NoError(t, err)
		_, err = f.Parse(ctx, raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestFactory_Invalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	stores := map[string]Store{
		"Memory": NewMemoryStore(),
		"Redis":  NewRedisStore(client),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			f := NewFactory("secret", store)
			ctx := context.Background()

			raw, err := f.Generate(testClaims(), time.Hour)
			require.NoError(t, err)
			other, err := f.Generate(testClaims(), time.Hour)
			require.NoError(t, err)

			require.NoError(t, f.Invalidate(ctx, raw))
			require.NoError(t, f.Invalidate(ctx, raw), "invalidating twice is fine")

			_, err = f.Parse(ctx, raw)
			assert.ErrorIs(t, err, ErrTokenInvalidated)

			_, err = f.Parse(ctx, other)
			assert.NoError(t, err, "other tokens stay valid")

			assert.ErrorIs(t, f.Invalidate(ctx, "garbage"), ErrInvalidToken)
		})
	}
}

func TestRedisStore_KeyExpiresWithToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)
	ctx := context.Background()

	require.NoError(t, store.Invalidate(ctx, "jti-1", time.Now().Add(10*time.Minute)))
	assert.True(t, mr.Exists(redisKeyPrefix+"jti-1"))
	ttl := mr.TTL(redisKeyPrefix + "jti-1")
	assert.True(t, ttl > 9*time.Minute && ttl <= 10*time.Minute, "ttl %s", ttl)

	mr.FastForward(11 * time.Minute)
	invalidated, err := store.IsInvalidated(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, invalidated)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Invalidate(ctx, "a", now.Add(time.Minute)))
	ok, _ := store.IsInvalidated(ctx, "a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = store.IsInvalidated(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, store.Invalidate(ctx, "b", now.Add(time.Minute)))
	assert.NotContains(t, store.entries, "a", "expired entries are pruned on write")
}
