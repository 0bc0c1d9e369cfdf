package builder

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
	"github.com/yourorg/multisafepay-gateway/internal/settings"
	"github.com/yourorg/multisafepay-gateway/internal/token"
)

// Routes on the shop this service builds URLs for.
const (
	NotificationPath = "/multisafepay/notification"
	FinalizePath     = "/payment/finalize-transaction"
)

// TokenGracePeriod is added to the order lifetime so the shopper can still return
// after the payment page expired.
const TokenGracePeriod = 30 * time.Minute

// TokenRotator parses, invalidates and mints payment tokens.
type TokenRotator interface {
	Parse(ctx context.Context, raw string) (*token.Claims, error)
	Invalidate(ctx context.Context, raw string) error
	Generate(c token.Claims, ttl time.Duration) (string, error)
}

// PaymentOptionsBuilder writes notification, redirect and cancel URLs. The redirect
// URL carries a fresh payment token; the one in the return URL is invalidated.
type PaymentOptionsBuilder struct {
	tokens      TokenRotator
	shopRootURL string
}

// NewPaymentOptionsBuilder creates the builder. shopRootURL is used when the sales
// channel has none configured.
func NewPaymentOptionsBuilder(tokens TokenRotator, shopRootURL string) *PaymentOptionsBuilder {
	if tokens == nil {
		panic("token rotator cannot be nil")
	}
	return &PaymentOptionsBuilder{tokens: tokens, shopRootURL: strings.TrimRight(shopRootURL, "/")}
}

func (b *PaymentOptionsBuilder) Build(ctx context.Context, req *multisafepay.OrderRequest, in Input) error {
	shopRoot := in.Channel.Settings.ShopRootURL
	if shopRoot == "" {
		shopRoot = b.shopRootURL
	}

	redirectURL, err := b.rotate(ctx, in, shopRoot)
	if err != nil {
		return err
	}

	req.AddPaymentOptions(multisafepay.PaymentOptions{
		NotificationURL:    shopRoot + NotificationPath,
		NotificationMethod: "POST",
		RedirectURL:        redirectURL,
		CancelURL:          redirectURL + "&cancel=1",
		CloseWindow:        true,
	})
	return nil
}

// rotate returns the finalize URL with a newly minted token.
func (b *PaymentOptionsBuilder) rotate(ctx context.Context, in Input, shopRoot string) (string, error) {
	finalizeURL := in.Transaction.ReturnURL
	if finalizeURL == "" {
		finalizeURL = shopRoot + FinalizePath
	}
	u, err := url.Parse(finalizeURL)
	if err != nil {
		return "", fmt.Errorf("invalid return url: %w", err)
	}

	claims := token.Claims{
		PaymentMethodID: in.Transaction.OrderTransaction.PaymentMethodID,
		TransactionID:   in.TransactionID(),
	}
	query := u.Query()
	old := query.Get(token.QueryParam)
	if old != "" {
		parsed, err := b.tokens.Parse(ctx, old)
		if err != nil {
			return "", fmt.Errorf("failed to read payment token from return url: %w", err)
		}
		claims.PaymentMethodID = parsed.PaymentMethodID
		claims.TransactionID = parsed.TransactionID
		claims.FinishURL = parsed.FinishURL
		claims.ErrorURL = parsed.ErrorURL
	}

	ttl := time.Duration(SecondsActive(in.Channel.Settings))*time.Second + TokenGracePeriod
	fresh, err := b.tokens.Generate(claims, ttl)
	if err != nil {
		return "", err
	}
	// The old token stays valid until its replacement exists.
	if old != "" {
		if err := b.tokens.Invalidate(ctx, old); err != nil {
			return "", err
		}
	}
	query.Set(token.QueryParam, fresh)
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// SecondsActive is the order lifetime configured for the sales channel. Unset or
// non-positive values mean 30 of the configured unit.
func SecondsActive(cfg settings.Settings) int {
	value := cfg.TimeActive
	if value <= 0 {
		value = 30
	}
	switch cfg.TimeActiveLabel {
	case settings.UnitMinutes:
		return value * 60
	case settings.UnitHours:
		return value * 3600
	default:
		return value * 86400
	}
}
