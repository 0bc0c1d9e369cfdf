// Package transition moves platform order transactions into their terminal states.
package transition

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourorg/multisafepay-gateway/internal/logger"
	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/repository"
)

var (
	ErrTransactionNotFound = errors.New("order transaction not found")
	ErrIllegalTransition   = errors.New("illegal order transaction state transition")
)

// StateHandler requests fail and cancel transitions.
type StateHandler interface {
	Fail(ctx context.Context, transactionID string) error
	Cancel(ctx context.Context, transactionID string) error
}

// RepositoryStateHandler applies transitions by upserting the transaction state.
type RepositoryStateHandler struct {
	repo repository.Repository[model.OrderTransaction]
}

// NewStateHandler creates a RepositoryStateHandler.
func NewStateHandler(repo repository.Repository[model.OrderTransaction]) *RepositoryStateHandler {
	if repo == nil {
		panic("order transaction repository cannot be nil")
	}
	return &RepositoryStateHandler{repo: repo}
}

func (h *RepositoryStateHandler) Fail(ctx context.Context, transactionID string) error {
	return h.transition(ctx, transactionID, model.StateFailed)
}

func (h *RepositoryStateHandler) Cancel(ctx context.Context, transactionID string) error {
	return h.transition(ctx, transactionID, model.StateCancelled)
}

func (h *RepositoryStateHandler) transition(ctx context.Context, transactionID string, to model.TransactionState) error {
	res, err := h.repo.Search(ctx, repository.NewCriteria(transactionID))
	if err != nil {
		return fmt.Errorf("failed to load order transaction %s: %w", transactionID, err)
	}
	tx, ok := res.First()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, transactionID)
	}
	if tx.State == to {
		return nil
	}
	if tx.State.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, tx.State, to)
	}

	from := tx.State
	tx.State = to
	if err := h.repo.Upsert(ctx, []model.OrderTransaction{tx}); err != nil {
		return fmt.Errorf("failed to store order transaction %s: %w", transactionID, err)
	}
	logger.FromContext(ctx).Info().
		Str("transaction_id", transactionID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Order transaction state changed")
	return nil
}
