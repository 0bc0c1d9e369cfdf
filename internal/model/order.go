// Package model holds the host platform entities handed to the payment handlers.
// The platform owns these records; this service only reads them and requests
// state transitions on order transactions.
package model

import (
	"github.com/shopspring/decimal"
)

// TaxStatus mirrors the platform's price display mode for an order.
type TaxStatus string

const (
	TaxStatusGross   TaxStatus = "gross"
	TaxStatusNet     TaxStatus = "net"
	TaxStatusTaxFree TaxStatus = "tax-free"
)

// LineItemType classifies an order line item.
type LineItemType string

const (
	LineItemProduct   LineItemType = "product"
	LineItemPromotion LineItemType = "promotion"
	LineItemCredit    LineItemType = "credit"
	LineItemCustom    LineItemType = "custom"
)

// Order is a snapshot of a placed storefront order.
type Order struct {
	ID               string          `json:"id"`
	OrderNumber      string          `json:"order_number"`
	SalesChannelID   string          `json:"sales_channel_id"`
	LanguageID       string          `json:"language_id"`
	CurrencyISO      string          `json:"currency"`
	AmountTotal      decimal.Decimal `json:"amount_total"`
	AmountNet        decimal.Decimal `json:"amount_net"`
	ShippingTotal    decimal.Decimal `json:"shipping_total"`
	TaxStatus        TaxStatus       `json:"tax_status"`
	BillingAddressID string          `json:"billing_address_id"`
	BillingAddress   *OrderAddress   `json:"billing_address,omitempty"`
	Deliveries       []OrderDelivery `json:"deliveries,omitempty"`
	LineItems        []OrderLineItem `json:"line_items,omitempty"`
	Customer         *OrderCustomer  `json:"customer,omitempty"`
}

// OrderDelivery is one shipment of an order.
type OrderDelivery struct {
	ID                   string          `json:"id"`
	ShippingMethodName   string          `json:"shipping_method_name"`
	ShippingCosts        decimal.Decimal `json:"shipping_costs"`
	ShippingTaxRate      decimal.Decimal `json:"shipping_tax_rate"`
	ShippingOrderAddress *OrderAddress   `json:"shipping_address,omitempty"`
}

// OrderLineItem is a single position of an order.
type OrderLineItem struct {
	ID            string          `json:"id"`
	Type          LineItemType    `json:"type"`
	Label         string          `json:"label"`
	Description   string          `json:"description,omitempty"`
	ProductNumber string          `json:"product_number,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Weight        decimal.Decimal `json:"weight"`
}

// OrderCustomer is the customer as recorded on the order.
type OrderCustomer struct {
	CustomerID     string `json:"customer_id"`
	CustomerNumber string `json:"customer_number"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Company        string `json:"company,omitempty"`
	Salutation     string `json:"salutation,omitempty"`
	Guest          bool   `json:"guest"`
}

// HasDeliveries reports whether the order carries at least one delivery.
func (o *Order) HasDeliveries() bool {
	return o != nil && len(o.Deliveries) > 0
}
