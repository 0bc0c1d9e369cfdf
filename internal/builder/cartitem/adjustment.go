package cartitem

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
)

// TaxAdjustment compensates rounding so the cart total including tax equals the
// order total. It recomputes the items of its sources and emits one zero-rate item
// for the difference, or nothing when the totals already match.
type TaxAdjustment struct {
	sources []ItemBuilder
}

func NewTaxAdjustment(sources ...ItemBuilder) TaxAdjustment {
	return TaxAdjustment{sources: sources}
}

func (t TaxAdjustment) Items(order *model.Order, currency string) ([]multisafepay.Item, error) {
	var items []multisafepay.Item
	for _, source := range t.sources {
		produced, err := source.Items(order, currency)
		if err != nil {
			return nil, err
		}
		items = append(items, produced...)
	}

	precision := Precision(currency)
	total, err := TotalInclTax(items, precision)
	if err != nil {
		return nil, err
	}
	diff := order.AmountTotal.Round(precision).Sub(total)
	if diff.IsZero() {
		return nil, nil
	}
	return []multisafepay.Item{{
		Name:             "Rounding",
		UnitPrice:        diff,
		Quantity:         1,
		MerchantItemID:   RoundingItemID,
		TaxTableSelector: Selector(decimal.Zero),
	}}, nil
}

// TotalInclTax sums item lines including the tax of their selector rate, each line
// rounded to the currency precision.
func TotalInclTax(items []multisafepay.Item, precision int32) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		rate, err := decimal.NewFromString(item.TaxTableSelector)
		if err != nil {
			return decimal.Zero, fmt.Errorf("item %s has a non-numeric tax table selector %q: %w", item.MerchantItemID, item.TaxTableSelector, err)
		}
		line := item.UnitPrice.
			Mul(decimal.NewFromInt(int64(item.Quantity))).
			Mul(decimal.NewFromInt(1).Add(rate.Div(hundred)))
		total = total.Add(line.Round(precision))
	}
	return total, nil
}
