package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/orderutil"
	"github.com/yourorg/multisafepay-gateway/internal/repository"
)

var transactions = table{
	name:     "order_transactions",
	idExpr:   "id",
	filters:  map[string]string{"order_id": "order_id", "state": "state"},
	selectAs: `SELECT id, order_id, payment_method_id, state, amount FROM order_transactions`,
}

type orderRow struct {
	ID               string `db:"id"`
	OrderNumber      string `db:"order_number"`
	BillingAddressID string `db:"billing_address_id"`
}

// TransactionRepository stores order transactions. The order billing address
// association is loaded with a second query.
type TransactionRepository struct {
	db        *sqlx.DB
	addresses *AddressRepository
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db, addresses: NewAddressRepository(db)}
}

func (r *TransactionRepository) Search(ctx context.Context, c repository.Criteria) (repository.Result[model.OrderTransaction], error) {
	query, args, err := transactions.selectQuery(c)
	if err != nil {
		return repository.Result[model.OrderTransaction]{}, err
	}
	var rows []model.OrderTransaction
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return repository.Result[model.OrderTransaction]{}, fmt.Errorf("failed to search order transactions: %w", err)
	}
	if len(rows) > 0 && c.HasAssociation(orderutil.AssociationOrderBillingAddress) {
		if err := r.loadOrders(ctx, rows); err != nil {
			return repository.Result[model.OrderTransaction]{}, err
		}
	}
	return repository.Result[model.OrderTransaction]{Entities: rows}, nil
}

func (r *TransactionRepository) loadOrders(ctx context.Context, rows []model.OrderTransaction) error {
	ids := make([]string, 0, len(rows))
	for _, tx := range rows {
		ids = append(ids, tx.OrderID)
	}
	var orders []orderRow
	err := r.db.SelectContext(ctx, &orders,
		`SELECT id, order_number, billing_address_id FROM orders WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}

	var addressIDs []string
	for _, o := range orders {
		if o.BillingAddressID != "" {
			addressIDs = append(addressIDs, o.BillingAddressID)
		}
	}
	byAddressID := make(map[string]model.OrderAddress)
	if len(addressIDs) > 0 {
		found, err := r.addresses.Search(ctx, repository.NewCriteria(addressIDs...))
		if err != nil {
			return err
		}
		for _, a := range found.Entities {
			byAddressID[a.ID] = a
		}
	}

	byOrderID := make(map[string]*model.Order, len(orders))
	for _, o := range orders {
		order := &model.Order{ID: o.ID, OrderNumber: o.OrderNumber, BillingAddressID: o.BillingAddressID}
		if a, ok := byAddressID[o.BillingAddressID]; ok {
			order.BillingAddress = &a
		}
		byOrderID[o.ID] = order
	}
	for i := range rows {
		rows[i].Order = byOrderID[rows[i].OrderID]
	}
	return nil
}

func (r *TransactionRepository) Upsert(ctx context.Context, rows []model.OrderTransaction) error {
	query := `
		INSERT INTO order_transactions (id, order_id, payment_method_id, state, amount)
		VALUES (:id, :order_id, :payment_method_id, :state, :amount)
		ON CONFLICT (id) DO UPDATE SET
			payment_method_id = EXCLUDED.payment_method_id,
			state = EXCLUDED.state,
			amount = EXCLUDED.amount
	`
	return upsertAll(ctx, r.db, rows, func(tx *sqlx.Tx, t model.OrderTransaction) error {
		if _, err := tx.NamedExecContext(ctx, query, t); err != nil {
			return fmt.Errorf("failed to upsert order transaction %s: %w", t.ID, err)
		}
		return nil
	})
}
