// Package token mints and rotates the signed payment tokens carried in the
// finalize URL the shopper returns to after visiting the payment page.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// QueryParam is the finalize URL query parameter holding the token.
const QueryParam = "_sw_payment_token"

var (
	ErrInvalidToken     = errors.New("invalid payment token")
	ErrExpiredToken     = errors.New("payment token expired")
	ErrTokenInvalidated = errors.New("payment token has been invalidated")
)

// Claims identify the transaction a returning shopper belongs to.
type Claims struct {
	PaymentMethodID string `json:"pmi"`
	TransactionID   string `json:"tid"`
	FinishURL       string `json:"ful,omitempty"`
	ErrorURL        string `json:"eul,omitempty"`
	jwt.RegisteredClaims
}

// Store remembers invalidated token ids until they would have expired anyway.
type Store interface {
	Invalidate(ctx context.Context, jti string, expiresAt time.Time) error
	IsInvalidated(ctx context.Context, jti string) (bool, error)
}

// Factory signs, parses and invalidates payment tokens.
type Factory struct {
	secret []byte
	store  Store
	now    func() time.Time
}

// NewFactory creates a Factory signing with HS256.
func NewFactory(secret string, store Store) *Factory {
	if secret == "" {
		panic("token secret cannot be empty")
	}
	if store == nil {
		panic("token store cannot be nil")
	}
	return &Factory{secret: []byte(secret), store: store, now: time.Now}
}

// Generate signs a new token valid for ttl. Registered claims on c are replaced.
func (f *Factory) Generate(c Claims, ttl time.Duration) (string, error) {
	now := f.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(f.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign payment token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry and rejects invalidated tokens.
func (f *Factory) Parse(ctx context.Context, raw string) (*Claims, error) {
	claims, err := f.parse(raw)
	if err != nil {
		return nil, err
	}
	invalidated, err := f.store.IsInvalidated(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check payment token: %w", err)
	}
	if invalidated {
		return nil, ErrTokenInvalidated
	}
	return claims, nil
}

// Invalidate marks the token as used. Invalidating twice is not an error.
func (f *Factory) Invalidate(ctx context.Context, raw string) error {
	claims, err := f.parse(raw)
	if err != nil {
		return err
	}
	if err := f.store.Invalidate(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to invalidate payment token: %w", err)
	}
	return nil
}

func (f *Factory) parse(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return f.secret, nil
	}, jwt.WithTimeFunc(f.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" || claims.TransactionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
