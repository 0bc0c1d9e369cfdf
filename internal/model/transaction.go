package model

import (
	"github.com/shopspring/decimal"
)

// TransactionState is the platform-owned state of an order transaction.
type TransactionState string

const (
	StateOpen       TransactionState = "open"
	StateInProgress TransactionState = "in_progress"
	StatePaid       TransactionState = "paid"
	StateFailed     TransactionState = "failed"
	StateCancelled  TransactionState = "cancelled"
)

// IsTerminal reports whether no further transition is expected from this state.
func (s TransactionState) IsTerminal() bool {
	return s == StateFailed || s == StateCancelled || s == StatePaid
}

// OrderTransaction is a payment attempt record for an order.
type OrderTransaction struct {
	ID              string           `json:"id" db:"id"`
	OrderID         string           `json:"order_id" db:"order_id"`
	PaymentMethodID string           `json:"payment_method_id" db:"payment_method_id"`
	State           TransactionState `json:"state" db:"state"`
	Amount          decimal.Decimal  `json:"amount" db:"amount"`
	Order           *Order           `json:"order,omitempty" db:"-"`
}

// EntityID implements repository.Entity.
func (t OrderTransaction) EntityID() string { return t.ID }

// Language is a storefront language with its locale code (e.g. "nl-NL").
type Language struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	LocaleCode string `json:"locale_code" db:"locale_code"`
}

// EntityID implements repository.Entity.
func (l Language) EntityID() string { return l.ID }

// PaymentMethod is the platform's payment method entity as installed by this service.
type PaymentMethod struct {
	ID                string            `json:"id" db:"id"`
	HandlerIdentifier string            `json:"handler_identifier" db:"handler_identifier"`
	Name              string            `json:"name" db:"name"`
	Active            bool              `json:"active" db:"active"`
	MediaPath         string            `json:"media_path,omitempty" db:"media_path"`
	CustomFields      map[string]string `json:"custom_fields,omitempty" db:"-"`
}

// EntityID implements repository.Entity.
func (p PaymentMethod) EntityID() string { return p.ID }

// PaymentTransaction is what the platform hands over for one checkout attempt: the
// order transaction, its order and the finalize URL the shopper returns to.
type PaymentTransaction struct {
	OrderTransaction OrderTransaction `json:"order_transaction"`
	Order            *Order           `json:"order"`
	ReturnURL        string           `json:"return_url"`
}

// OrderNumber returns the number of the transaction's order, or "".
func (p PaymentTransaction) OrderNumber() string {
	if p.Order == nil {
		return ""
	}
	return p.Order.OrderNumber
}
