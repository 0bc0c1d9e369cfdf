package builder

import (
	"context"
	"strconv"

	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
)

// DescriptionBuilder writes "Payment for order #<number>".
type DescriptionBuilder struct{}

func (DescriptionBuilder) Build(_ context.Context, req *multisafepay.OrderRequest, in Input) error {
	req.AddDescriptionText("Payment for order #" + in.Order.OrderNumber)
	return nil
}

// PluginDetailsBuilder identifies the shop and plugin versions.
type PluginDetailsBuilder struct{}

func (PluginDetailsBuilder) Build(_ context.Context, req *multisafepay.OrderRequest, in Input) error {
	cfg := in.Channel.Settings
	req.AddPluginDetails(multisafepay.PluginDetails{
		Shop:          cfg.ApplicationName,
		ShopVersion:   cfg.ApplicationVersion,
		PluginVersion: cfg.PluginVersion,
		ShopRootURL:   cfg.ShopRootURL,
	})
	return nil
}

// RecurringBuilder requests tokenization or pays with a stored token.
type RecurringBuilder struct{}

func (RecurringBuilder) Build(_ context.Context, req *multisafepay.OrderRequest, in Input) error {
	if active := in.FormValue(FormActiveToken); active != "" {
		req.AddRecurringID(active).AddRecurringModel(multisafepay.RecurringModelCardOnFile)
		return nil
	}
	save, _ := strconv.ParseBool(in.FormValue(FormSaveToken))
	if save && !isGuest(in) {
		req.AddRecurringModel(multisafepay.RecurringModelCardOnFile)
	}
	return nil
}

// isGuest prefers the order's customer record over the sales channel.
func isGuest(in Input) bool {
	if in.Order != nil && in.Order.Customer != nil {
		return in.Order.Customer.Guest
	}
	return in.Channel.IsGuest()
}

// SecondsActiveBuilder writes the order lifetime.
type SecondsActiveBuilder struct{}

func (SecondsActiveBuilder) Build(_ context.Context, req *multisafepay.OrderRequest, in Input) error {
	req.AddSecondsActive(SecondsActive(in.Channel.Settings))
	return nil
}

// GoogleAnalyticsBuilder writes the analytics account when one is configured.
type GoogleAnalyticsBuilder struct{}

func (GoogleAnalyticsBuilder) Build(_ context.Context, req *multisafepay.OrderRequest, in Input) error {
	if account := in.Channel.Settings.GoogleAnalyticsID; account != "" {
		req.AddGoogleAnalytics(multisafepay.GoogleAnalytics{Account: account})
	}
	return nil
}

// SecondChanceBuilder toggles the reminder email for abandoned payments.
type SecondChanceBuilder struct{}

func (SecondChanceBuilder) Build(_ context.Context, req *multisafepay.OrderRequest, in Input) error {
	req.AddSecondChance(multisafepay.SecondChance{SendEmail: in.Channel.Settings.SecondChance})
	return nil
}
