// Package mock provides a func-field MultiSafepay manager for tests and the demo server.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
	"github.com/yourorg/multisafepay-gateway/internal/settings"
)

// Update is one recorded Update call.
type Update struct {
	OrderID string
	Request multisafepay.UpdateRequest
}

// Manager is a mock implementation of multisafepay.Manager.
// Each call uses the matching func field when set, otherwise a default success.
type Manager struct {
	CreateFunc  func(ctx context.Context, req *multisafepay.OrderRequest) (*multisafepay.TransactionResponse, error)
	UpdateFunc  func(ctx context.Context, orderID string, req multisafepay.UpdateRequest) error
	GetFunc     func(ctx context.Context, orderID string) (*multisafepay.TransactionResponse, error)
	IssuersFunc func(ctx context.Context, gateway string) ([]multisafepay.Issuer, error)

	// PaymentPageURL is used by the default Create; "{order}" is replaced by the order id.
	PaymentPageURL string

	mu      sync.Mutex
	created []*multisafepay.OrderRequest
	updates []Update
}

// NewManager creates a mock whose default Create returns a payment page URL.
func NewManager() *Manager {
	return &Manager{PaymentPageURL: "https://payv2.multisafepay.com/connect/{order}"}
}

func (m *Manager) Create(ctx context.Context, req *multisafepay.OrderRequest) (*multisafepay.TransactionResponse, error) {
	m.mu.Lock()
	m.created = append(m.created, req)
	m.mu.Unlock()

	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &multisafepay.TransactionResponse{
		OrderID:    req.OrderID,
		PaymentURL: strings.ReplaceAll(m.PaymentPageURL, "{order}", req.OrderID+"-"+uuid.NewString()[:8]),
		Status:     "initialized",
		Amount:     req.Amount,
		Currency:   req.Currency,
	}, nil
}

func (m *Manager) Update(ctx context.Context, orderID string, req multisafepay.UpdateRequest) error {
	m.mu.Lock()
	m.updates = append(m.updates, Update{OrderID: orderID, Request: req})
	m.mu.Unlock()

	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, orderID, req)
	}
	return nil
}

func (m *Manager) Get(ctx context.Context, orderID string) (*multisafepay.TransactionResponse, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, orderID)
	}
	return &multisafepay.TransactionResponse{OrderID: orderID, Status: "initialized"}, nil
}

func (m *Manager) Issuers(ctx context.Context, gateway string) ([]multisafepay.Issuer, error) {
	if m.IssuersFunc != nil {
		return m.IssuersFunc(ctx, gateway)
	}
	if !strings.EqualFold(gateway, "ideal") {
		return nil, fmt.Errorf("gateway %s has no issuers", gateway)
	}
	return []multisafepay.Issuer{
		{Code: "0031", Description: "ABN AMRO"},
		{Code: "0761", Description: "ASN Bank"},
		{Code: "0021", Description: "Rabobank"},
	}, nil
}

// Created returns the requests passed to Create, in call order.
func (m *Manager) Created() []*multisafepay.OrderRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*multisafepay.OrderRequest(nil), m.created...)
}

// Updates returns the recorded Update calls, in call order.
func (m *Manager) Updates() []Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Update(nil), m.updates...)
}

// Factory always hands out the same Manager, or Err when set.
type Factory struct {
	Client *Manager
	Err    error
}

func (f *Factory) Manager(settings.Settings) (multisafepay.Manager, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Client, nil
}

var _ multisafepay.Manager = (*Manager)(nil)
