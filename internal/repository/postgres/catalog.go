package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/repository"
	"github.com/yourorg/multisafepay-gateway/internal/settings"
)

var (
	languages = table{
		name:     "languages",
		idExpr:   "id",
		selectAs: `SELECT id, name, locale_code FROM languages`,
	}
	paymentMethods = table{
		name:     "payment_methods",
		idExpr:   "id",
		filters:  map[string]string{"handler_identifier": "handler_identifier"},
		selectAs: `SELECT id, handler_identifier, name, active, media_path, custom_fields FROM payment_methods`,
	}
	pluginSettings = table{
		name:     "plugin_settings",
		idExpr:   "sales_channel_id || ':' || config_key",
		filters:  map[string]string{"sales_channel_id": "sales_channel_id", "config_key": "config_key"},
		selectAs: `SELECT sales_channel_id, config_key, config_value FROM plugin_settings`,
	}
)

// LanguageRepository reads storefront languages.
type LanguageRepository struct {
	db *sqlx.DB
}

func NewLanguageRepository(db *sqlx.DB) *LanguageRepository {
	return &LanguageRepository{db: db}
}

func (r *LanguageRepository) Search(ctx context.Context, c repository.Criteria) (repository.Result[model.Language], error) {
	query, args, err := languages.selectQuery(c)
	if err != nil {
		return repository.Result[model.Language]{}, err
	}
	var rows []model.Language
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return repository.Result[model.Language]{}, fmt.Errorf("failed to search languages: %w", err)
	}
	return repository.Result[model.Language]{Entities: rows}, nil
}

func (r *LanguageRepository) Upsert(ctx context.Context, rows []model.Language) error {
	query := `
		INSERT INTO languages (id, name, locale_code) VALUES (:id, :name, :locale_code)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, locale_code = EXCLUDED.locale_code
	`
	return upsertAll(ctx, r.db, rows, func(tx *sqlx.Tx, l model.Language) error {
		if _, err := tx.NamedExecContext(ctx, query, l); err != nil {
			return fmt.Errorf("failed to upsert language %s: %w", l.ID, err)
		}
		return nil
	})
}

type paymentMethodRow struct {
	ID                string `db:"id"`
	HandlerIdentifier string `db:"handler_identifier"`
	Name              string `db:"name"`
	Active            bool   `db:"active"`
	MediaPath         string `db:"media_path"`
	CustomFields      []byte `db:"custom_fields"`
}

// PaymentMethodRepository stores payment methods; custom fields are a JSONB object.
type PaymentMethodRepository struct {
	db *sqlx.DB
}

func NewPaymentMethodRepository(db *sqlx.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) Search(ctx context.Context, c repository.Criteria) (repository.Result[model.PaymentMethod], error) {
	query, args, err := paymentMethods.selectQuery(c)
	if err != nil {
		return repository.Result[model.PaymentMethod]{}, err
	}
	var rows []paymentMethodRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return repository.Result[model.PaymentMethod]{}, fmt.Errorf("failed to search payment methods: %w", err)
	}
	out := make([]model.PaymentMethod, 0, len(rows))
	for _, row := range rows {
		pm := model.PaymentMethod{
			ID:                row.ID,
			HandlerIdentifier: row.HandlerIdentifier,
			Name:              row.Name,
			Active:            row.Active,
			MediaPath:         row.MediaPath,
		}
		if len(row.CustomFields) > 0 {
			if err := json.Unmarshal(row.CustomFields, &pm.CustomFields); err != nil {
				return repository.Result[model.PaymentMethod]{}, fmt.Errorf("payment method %s has invalid custom fields: %w", row.ID, err)
			}
		}
		out = append(out, pm)
	}
	return repository.Result[model.PaymentMethod]{Entities: out}, nil
}

func (r *PaymentMethodRepository) Upsert(ctx context.Context, rows []model.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (id, handler_identifier, name, active, media_path, custom_fields)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			handler_identifier = EXCLUDED.handler_identifier, name = EXCLUDED.name,
			active = EXCLUDED.active, media_path = EXCLUDED.media_path,
			custom_fields = EXCLUDED.custom_fields
	`
	return upsertAll(ctx, r.db, rows, func(tx *sqlx.Tx, pm model.PaymentMethod) error {
		fields := pm.CustomFields
		if fields == nil {
			fields = map[string]string{}
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to encode custom fields of %s: %w", pm.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, pm.ID, pm.HandlerIdentifier, pm.Name, pm.Active, pm.MediaPath, raw); err != nil {
			return fmt.Errorf("failed to upsert payment method %s: %w", pm.ID, err)
		}
		return nil
	})
}

// SettingsRepository stores plugin configuration rows.
type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Search(ctx context.Context, c repository.Criteria) (repository.Result[settings.Row], error) {
	query, args, err := pluginSettings.selectQuery(c)
	if err != nil {
		return repository.Result[settings.Row]{}, err
	}
	var rows []settings.Row
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return repository.Result[settings.Row]{}, fmt.Errorf("failed to search plugin settings: %w", err)
	}
	return repository.Result[settings.Row]{Entities: rows}, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, rows []settings.Row) error {
	query := `
		INSERT INTO plugin_settings (sales_channel_id, config_key, config_value)
		VALUES (:sales_channel_id, :config_key, :config_value)
		ON CONFLICT (sales_channel_id, config_key) DO UPDATE SET config_value = EXCLUDED.config_value
	`
	return upsertAll(ctx, r.db, rows, func(tx *sqlx.Tx, row settings.Row) error {
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("failed to upsert setting %s: %w", row.EntityID(), err)
		}
		return nil
	})
}
