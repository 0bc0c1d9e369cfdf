package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/repository"
)

var addresses = table{
	name:    "order_addresses",
	idExpr:  "id",
	filters: map[string]string{"order_id": "order_id"},
	selectAs: `SELECT id, order_id, first_name, last_name, company, street,
		additional_address_line1, additional_address_line2, zipcode, city, phone_number,
		country_iso, state_name, state_short_code
	FROM order_addresses`,
}

type addressRow struct {
	ID                     string `db:"id"`
	OrderID                string `db:"order_id"`
	FirstName              string `db:"first_name"`
	LastName               string `db:"last_name"`
	Company                string `db:"company"`
	Street                 string `db:"street"`
	AdditionalAddressLine1 string `db:"additional_address_line1"`
	AdditionalAddressLine2 string `db:"additional_address_line2"`
	ZipCode                string `db:"zipcode"`
	City                   string `db:"city"`
	PhoneNumber            string `db:"phone_number"`
	CountryISO             string `db:"country_iso"`
	StateName              string `db:"state_name"`
	StateShortCode         string `db:"state_short_code"`
}

func (r addressRow) model() model.OrderAddress {
	a := model.OrderAddress{
		ID:                     r.ID,
		OrderID:                r.OrderID,
		FirstName:              r.FirstName,
		LastName:               r.LastName,
		Company:                r.Company,
		Street:                 r.Street,
		AdditionalAddressLine1: r.AdditionalAddressLine1,
		AdditionalAddressLine2: r.AdditionalAddressLine2,
		ZipCode:                r.ZipCode,
		City:                   r.City,
		PhoneNumber:            r.PhoneNumber,
	}
	if r.CountryISO != "" {
		a.Country = &model.Country{ISO: r.CountryISO}
	}
	if r.StateName != "" || r.StateShortCode != "" {
		a.CountryState = &model.CountryState{Name: r.StateName, ShortCode: r.StateShortCode}
	}
	return a
}

// AddressRepository stores order addresses with their country and state inlined.
type AddressRepository struct {
	db *sqlx.DB
}

func NewAddressRepository(db *sqlx.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) Search(ctx context.Context, c repository.Criteria) (repository.Result[model.OrderAddress], error) {
	query, args, err := addresses.selectQuery(c)
	if err != nil {
		return repository.Result[model.OrderAddress]{}, err
	}
	var rows []addressRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return repository.Result[model.OrderAddress]{}, fmt.Errorf("failed to search order addresses: %w", err)
	}
	out := make([]model.OrderAddress, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return repository.Result[model.OrderAddress]{Entities: out}, nil
}

func (r *AddressRepository) Upsert(ctx context.Context, rows []model.OrderAddress) error {
	query := `
		INSERT INTO order_addresses (id, order_id, first_name, last_name, company, street,
			additional_address_line1, additional_address_line2, zipcode, city, phone_number,
			country_iso, state_name, state_short_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			order_id = EXCLUDED.order_id, first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name, company = EXCLUDED.company, street = EXCLUDED.street,
			additional_address_line1 = EXCLUDED.additional_address_line1,
			additional_address_line2 = EXCLUDED.additional_address_line2,
			zipcode = EXCLUDED.zipcode, city = EXCLUDED.city, phone_number = EXCLUDED.phone_number,
			country_iso = EXCLUDED.country_iso, state_name = EXCLUDED.state_name,
			state_short_code = EXCLUDED.state_short_code
	`
	return upsertAll(ctx, r.db, rows, func(tx *sqlx.Tx, a model.OrderAddress) error {
		var stateName, stateShortCode string
		if a.CountryState != nil {
			stateName, stateShortCode = a.CountryState.Name, a.CountryState.ShortCode
		}
		_, err := tx.ExecContext(ctx, query,
			a.ID, a.OrderID, a.FirstName, a.LastName, a.Company, a.Street,
			a.AdditionalAddressLine1, a.AdditionalAddressLine2, a.ZipCode, a.City, a.PhoneNumber,
			a.CountryISO(), stateName, stateShortCode,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert order address %s: %w", a.ID, err)
		}
		return nil
	})
}
