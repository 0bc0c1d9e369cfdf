// Package multisafepay is the client side of the MultiSafepay JSON API: the order
// request model, the transaction and issuer managers and their HTTP implementation.
package multisafepay

import "context"

// Order statuses accepted by UpdateRequest.
const (
	StatusCancelled = "cancelled"
	StatusShipped   = "shipped"
	StatusCompleted = "completed"
)

// TransactionResponse is the data returned for a created or fetched order.
type TransactionResponse struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url,omitempty"`
	CancelURL  string `json:"cancel_url,omitempty"`
	Status     string `json:"status,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

// UpdateRequest patches an existing order.
type UpdateRequest struct {
	Status       string `json:"status,omitempty"`
	ExcludeOrder bool   `json:"exclude_order,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// Issuer is a selectable bank for gateways with an issuer picker.
type Issuer struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// TransactionManager creates and updates MultiSafepay orders.
type TransactionManager interface {
	Create(ctx context.Context, req *OrderRequest) (*TransactionResponse, error)
	Update(ctx context.Context, orderID string, req UpdateRequest) error
	Get(ctx context.Context, orderID string) (*TransactionResponse, error)
}

// IssuerManager lists the issuers of a gateway.
type IssuerManager interface {
	Issuers(ctx context.Context, gateway string) ([]Issuer, error)
}

// Manager is what a configured API key gives access to.
type Manager interface {
	TransactionManager
	IssuerManager
}
