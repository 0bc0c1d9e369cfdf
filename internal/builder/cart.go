package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourorg/multisafepay-gateway/internal/builder/cartitem"
	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
)

// ShoppingCartBuilder concatenates the items of its sub-builders, in order, and
// declares a tax table for every rate they use.
type ShoppingCartBuilder struct {
	items []cartitem.ItemBuilder
}

func NewShoppingCartBuilder(items ...cartitem.ItemBuilder) *ShoppingCartBuilder {
	return &ShoppingCartBuilder{items: items}
}

func (b *ShoppingCartBuilder) Build(_ context.Context, req *multisafepay.OrderRequest, in Input) error {
	cart, err := b.Cart(in)
	if err != nil {
		return err
	}
	req.AddShoppingCart(cart)

	rates := make(map[string]decimal.Decimal)
	var selectors []string
	for _, item := range cart.Items {
		if _, seen := rates[item.TaxTableSelector]; seen {
			continue
		}
		rate, err := decimal.NewFromString(item.TaxTableSelector)
		if err != nil {
			return fmt.Errorf("item %s has a non-numeric tax table selector %q: %w", item.MerchantItemID, item.TaxTableSelector, err)
		}
		rates[item.TaxTableSelector] = rate
		selectors = append(selectors, item.TaxTableSelector)
	}
	if len(selectors) > 0 {
		req.AddCheckoutOptions(multisafepay.NewCheckoutOptions(rates, selectors))
	}
	return nil
}

// Cart returns the merged items of all sub-builders.
func (b *ShoppingCartBuilder) Cart(in Input) (multisafepay.ShoppingCart, error) {
	currency := strings.ToUpper(in.Order.CurrencyISO)
	var cart multisafepay.ShoppingCart
	for _, ib := range b.items {
		items, err := ib.Items(in.Order, currency)
		if err != nil {
			return multisafepay.ShoppingCart{}, err
		}
		cart.Items = append(cart.Items, items...)
	}
	return cart, nil
}
