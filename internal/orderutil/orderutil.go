// Package orderutil resolves the order data the request builders need but the
// in-memory order may lack: addresses, the shopper locale and the country state.
package orderutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/repository"
)

// DefaultLocale is used whenever the order language cannot be resolved.
const DefaultLocale = "en_GB"

// AssociationOrderBillingAddress loads a transaction's order with its billing address.
const AssociationOrderBillingAddress = "order.billingAddress"

// OrderUtil looks up addresses and languages through the platform repositories.
type OrderUtil struct {
	addresses    repository.Repository[model.OrderAddress]
	transactions repository.Repository[model.OrderTransaction]
	languages    repository.Repository[model.Language]
}

// New creates an OrderUtil.
func New(
	addresses repository.Repository[model.OrderAddress],
	transactions repository.Repository[model.OrderTransaction],
	languages repository.Repository[model.Language],
) *OrderUtil {
	if addresses == nil || transactions == nil || languages == nil {
		panic("orderutil: repositories cannot be nil")
	}
	return &OrderUtil{addresses: addresses, transactions: transactions, languages: languages}
}

// BillingAddress returns the order's billing address. When the order was loaded
// without it, the address is looked up by id and then through the order
// transaction. A nil address with a nil error means none exists.
func (u *OrderUtil) BillingAddress(ctx context.Context, order *model.Order, transactionID string) (*model.OrderAddress, error) {
	if order == nil {
		return nil, nil
	}
	if order.BillingAddress != nil {
		return order.BillingAddress, nil
	}

	if order.BillingAddressID != "" {
		res, err := u.addresses.Search(ctx, repository.NewCriteria(order.BillingAddressID))
		if err != nil {
			return nil, fmt.Errorf("failed to search billing address %s: %w", order.BillingAddressID, err)
		}
		if address, ok := res.First(); ok {
			return &address, nil
		}
	}

	if transactionID == "" {
		return nil, nil
	}
	res, err := u.transactions.Search(ctx,
		repository.NewCriteria(transactionID).AddAssociation(AssociationOrderBillingAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to search order transaction %s: %w", transactionID, err)
	}
	tx, ok := res.First()
	if !ok || tx.Order == nil {
		return nil, nil
	}
	return tx.Order.BillingAddress, nil
}

// ShippingAddress returns the first delivery's address, or the billing address when
// the order has no usable delivery.
func (u *OrderUtil) ShippingAddress(ctx context.Context, order *model.Order, transactionID string) (*model.OrderAddress, error) {
	if order.HasDeliveries() && order.Deliveries[0].ShippingOrderAddress != nil {
		return order.Deliveries[0].ShippingOrderAddress, nil
	}
	return u.BillingAddress(ctx, order, transactionID)
}

// Locale returns the order language as a MultiSafepay locale ("nl_NL"), or
// DefaultLocale on any miss.
func (u *OrderUtil) Locale(ctx context.Context, languageID string) string {
	if languageID == "" {
		return DefaultLocale
	}
	res, err := u.languages.Search(ctx, repository.NewCriteria(languageID))
	if err != nil {
		return DefaultLocale
	}
	language, ok := res.First()
	if !ok {
		return DefaultLocale
	}
	return NormalizeLocale(language.LocaleCode)
}

// NormalizeLocale turns "nl-NL" into "nl_NL". Codes without a region fall back to
// DefaultLocale.
func NormalizeLocale(code string) string {
	lang, region, ok := strings.Cut(strings.ReplaceAll(strings.TrimSpace(code), "-", "_"), "_")
	if !ok || len(lang) != 2 || len(region) != 2 {
		return DefaultLocale
	}
	return strings.ToLower(lang) + "_" + strings.ToUpper(region)
}

// State returns the country state name, its short code when unnamed, or "".
func State(address *model.OrderAddress) string {
	if address == nil || address.CountryState == nil {
		return ""
	}
	if name := strings.TrimSpace(address.CountryState.Name); name != "" {
		return name
	}
	return strings.TrimSpace(address.CountryState.ShortCode)
}
