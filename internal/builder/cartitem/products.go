package cartitem

import (
	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
)

// Products emits one item per product or custom line item.
type Products struct{}

func (Products) Items(order *model.Order, _ string) ([]multisafepay.Item, error) {
	var items []multisafepay.Item
	for _, li := range order.LineItems {
		if li.Type != model.LineItemProduct && li.Type != model.LineItemCustom {
			continue
		}
		rate := effectiveRate(order, li.TaxRate)
		items = append(items, multisafepay.Item{
			Name:             li.Label,
			Description:      li.Description,
			UnitPrice:        priceExclTax(order, li.UnitPrice, rate),
			Quantity:         li.Quantity,
			MerchantItemID:   merchantItemID(li),
			TaxTableSelector: Selector(rate),
			Weight:           weight(li),
		})
	}
	return items, nil
}

// Discounts emits promotions and credits as items with a negative unit price.
type Discounts struct{}

func (Discounts) Items(order *model.Order, _ string) ([]multisafepay.Item, error) {
	var items []multisafepay.Item
	for _, li := range order.LineItems {
		if li.Type != model.LineItemPromotion && li.Type != model.LineItemCredit {
			continue
		}
		rate := effectiveRate(order, li.TaxRate)
		quantity := li.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, multisafepay.Item{
			Name:             li.Label,
			Description:      li.Description,
			UnitPrice:        priceExclTax(order, li.UnitPrice.Abs().Neg(), rate),
			Quantity:         quantity,
			MerchantItemID:   merchantItemID(li),
			TaxTableSelector: Selector(rate),
		})
	}
	return items, nil
}

// Shipping emits one item per delivery with shipping costs.
type Shipping struct{}

func (Shipping) Items(order *model.Order, _ string) ([]multisafepay.Item, error) {
	var items []multisafepay.Item
	for _, d := range order.Deliveries {
		if !d.ShippingCosts.IsPositive() {
			continue
		}
		rate := effectiveRate(order, d.ShippingTaxRate)
		items = append(items, multisafepay.Item{
			Name:             "Shipping",
			Description:      d.ShippingMethodName,
			UnitPrice:        priceExclTax(order, d.ShippingCosts, rate),
			Quantity:         1,
			MerchantItemID:   ShippingItemID,
			TaxTableSelector: Selector(rate),
		})
	}
	return items, nil
}
