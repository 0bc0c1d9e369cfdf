package context

import (
	stdcontext "context"
	"fmt"
	"strings"

	"github.com/yourorg/multisafepay-gateway/internal/settings"
)

// SettingsProvider resolves configuration for a sales channel.
type SettingsProvider interface {
	Get(ctx stdcontext.Context, salesChannelID string) (settings.Settings, error)
}

// ChannelInput is the raw storefront state sent by the host platform.
type ChannelInput struct {
	SalesChannelID string      `json:"sales_channel_id"`
	LanguageID     string      `json:"language_id"`
	CurrencyISO    string      `json:"currency"`
	CustomerID     string      `json:"customer_id"`
	Guest          bool        `json:"guest"`
	Request        RequestInfo `json:"request"`
}

// ContextBuilder is responsible for creating SalesChannelContext values.
type ContextBuilder struct {
	settings SettingsProvider
}

// NewContextBuilder creates a new ContextBuilder.
func NewContextBuilder(provider SettingsProvider) *ContextBuilder {
	if provider == nil {
		panic("SettingsProvider cannot be nil")
	}
	return &ContextBuilder{settings: provider}
}

// Build resolves settings for the channel and returns the populated context.
func (cb *ContextBuilder) Build(ctx stdcontext.Context, in ChannelInput) (SalesChannelContext, error) {
	if strings.TrimSpace(in.SalesChannelID) == "" {
		return SalesChannelContext{}, fmt.Errorf("sales channel id cannot be empty")
	}

	cfg, err := cb.settings.Get(ctx, in.SalesChannelID)
	if err != nil {
		return SalesChannelContext{}, fmt.Errorf("failed to get settings: %w", err)
	}

	return SalesChannelContext{
		Trace:          NewTraceContext(ctx),
		SalesChannelID: in.SalesChannelID,
		LanguageID:     in.LanguageID,
		CurrencyISO:    strings.ToUpper(in.CurrencyISO),
		CustomerID:     in.CustomerID,
		Guest:          in.Guest,
		Request:        in.Request,
		Settings:       cfg,
	}, nil
}
