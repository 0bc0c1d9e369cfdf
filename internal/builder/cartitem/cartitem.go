// Package cartitem turns order line items, deliveries and totals into MultiSafepay
// shopping cart items.
package cartitem

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
)

// Merchant item ids of generated items.
const (
	ShippingItemID = "msp-shipping"
	RoundingItemID = "msp-rounding"
)

const unitPricePrecision = 10

var hundred = decimal.NewFromInt(100)

// ItemBuilder produces the cart items for one concern.
type ItemBuilder interface {
	Items(order *model.Order, currency string) ([]multisafepay.Item, error)
}

// ItemBuilderFunc adapts a function to ItemBuilder.
type ItemBuilderFunc func(order *model.Order, currency string) ([]multisafepay.Item, error)

func (f ItemBuilderFunc) Items(order *model.Order, currency string) ([]multisafepay.Item, error) {
	return f(order, currency)
}

// Defaults returns products, shipping, discounts and the rounding adjustment, in
// that order.
func Defaults() []ItemBuilder {
	products, shipping, discounts := Products{}, Shipping{}, Discounts{}
	return []ItemBuilder{
		products,
		shipping,
		discounts,
		NewTaxAdjustment(products, shipping, discounts),
	}
}

// priceExclTax removes tax from gross prices; net and tax-free prices pass through.
func priceExclTax(order *model.Order, price, rate decimal.Decimal) decimal.Decimal {
	if order.TaxStatus == model.TaxStatusGross || order.TaxStatus == "" {
		price = price.Div(decimal.NewFromInt(1).Add(rate.Div(hundred)))
	}
	return price.Round(unitPricePrecision)
}

// effectiveRate is the rate items are taxed at; tax-free orders are untaxed.
func effectiveRate(order *model.Order, rate decimal.Decimal) decimal.Decimal {
	if order.TaxStatus == model.TaxStatusTaxFree {
		return decimal.Zero
	}
	return rate
}

// Selector names the tax table of a rate ("21", "9", "0", "5.5").
func Selector(rate decimal.Decimal) string {
	return rate.String()
}

// Precision returns the number of minor unit digits of a currency.
func Precision(currency string) int32 {
	switch strings.ToUpper(currency) {
	case "JPY", "KRW", "ISK", "CLP", "VND":
		return 0
	default:
		return 2
	}
}

func merchantItemID(li model.OrderLineItem) string {
	if li.ProductNumber != "" {
		return li.ProductNumber
	}
	return li.ID
}

func weight(li model.OrderLineItem) *multisafepay.Weight {
	if !li.Weight.IsPositive() {
		return nil
	}
	return &multisafepay.Weight{Unit: "KG", Value: li.Weight}
}
