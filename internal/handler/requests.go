package handler

import (
	"github.com/shopspring/decimal"

	channelctx "github.com/yourorg/multisafepay-gateway/internal/context"
	"github.com/yourorg/multisafepay-gateway/internal/model"
)

// PaymentType is the platform's payment handler type.
type PaymentType string

const (
	PaymentTypeAsync     PaymentType = "async"
	PaymentTypeSync      PaymentType = "sync"
	PaymentTypeRecurring PaymentType = "recurring"
)

// PayRequest is one checkout attempt.
type PayRequest struct {
	Transaction model.PaymentTransaction
	FormData    map[string]string
	Channel     channelctx.SalesChannelContext
}

// Redirect sends the shopper to the MultiSafepay payment page.
type Redirect struct {
	URL string `json:"url"`
}

// FinalizeRequest is the shopper returning to the shop. TransactionID is the
// order id MultiSafepay reports back.
type FinalizeRequest struct {
	Transaction   model.PaymentTransaction
	TransactionID string
	Cancel        bool
	Channel       channelctx.SalesChannelContext
}

// SupportsRequest asks whether a payment method can be offered. Amount, Currency
// and BillingCountry feed the availability rules.
type SupportsRequest struct {
	Type            PaymentType
	PaymentMethodID string
	Channel         channelctx.SalesChannelContext
	Amount          decimal.Decimal
	Currency        string
	BillingCountry  string
}
