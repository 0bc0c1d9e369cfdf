// Package storage opens the repositories and token store selected by the
// configuration: PostgreSQL and Redis when their URLs are set, memory otherwise.
package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/yourorg/multisafepay-gateway/internal/config"
	"github.com/yourorg/multisafepay-gateway/internal/database"
	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/repository"
	"github.com/yourorg/multisafepay-gateway/internal/repository/postgres"
	"github.com/yourorg/multisafepay-gateway/internal/settings"
	"github.com/yourorg/multisafepay-gateway/internal/token"
)

// Stores bundles the platform repositories.
type Stores struct {
	Addresses      repository.Repository[model.OrderAddress]
	Transactions   repository.Repository[model.OrderTransaction]
	Languages      repository.Repository[model.Language]
	PaymentMethods repository.Repository[model.PaymentMethod]
	Settings       repository.Repository[settings.Row]
	Tokens         token.Store

	db    *sqlx.DB
	redis *redis.Client
}

// Close releases the database and Redis connections, if any.
func (s *Stores) Close() {
	database.ClosePostgres(s.db)
	database.CloseRedis(s.redis)
}

// Open connects the backends named in cfg and migrates the schema.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	s := Memory()

	if cfg.UsesPostgres() {
		db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			database.ClosePostgres(db)
			return nil, err
		}
		s.db = db
		s.Addresses = postgres.NewAddressRepository(db)
		s.Transactions = postgres.NewTransactionRepository(db)
		s.Languages = postgres.NewLanguageRepository(db)
		s.PaymentMethods = postgres.NewPaymentMethodRepository(db)
		s.Settings = postgres.NewSettingsRepository(db)
	} else {
		log.Warn().Msg("DATABASE_URL not set, using in-memory repositories")
	}

	if cfg.RedisURL != "" {
		client, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		s.redis = client
		s.Tokens = token.NewRedisStore(client)
	}
	return s, nil
}

// Memory returns empty in-memory stores.
func Memory() *Stores {
	return &Stores{
		Addresses:      repository.NewMemory[model.OrderAddress](addressFields),
		Transactions:   repository.NewMemory[model.OrderTransaction](transactionFields),
		Languages:      repository.NewMemory[model.Language](nil),
		PaymentMethods: repository.NewMemory[model.PaymentMethod](paymentMethodFields),
		Settings:       repository.NewMemory[settings.Row](settings.RowFields),
		Tokens:         token.NewMemoryStore(),
	}
}

func addressFields(a model.OrderAddress) map[string]string {
	return map[string]string{"order_id": a.OrderID}
}

func transactionFields(t model.OrderTransaction) map[string]string {
	return map[string]string{"order_id": t.OrderID, "state": string(t.State)}
}

func paymentMethodFields(pm model.PaymentMethod) map[string]string {
	return map[string]string{"handler_identifier": pm.HandlerIdentifier}
}
