package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/cors"

	"github.com/yourorg/multisafepay-gateway/internal/builder"
	"github.com/yourorg/multisafepay-gateway/internal/config"
	channelctx "github.com/yourorg/multisafepay-gateway/internal/context"
	"github.com/yourorg/multisafepay-gateway/internal/event"
	"github.com/yourorg/multisafepay-gateway/internal/handler"
	"github.com/yourorg/multisafepay-gateway/internal/logger"
	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/monitor"
	"github.com/yourorg/multisafepay-gateway/internal/orderutil"
	"github.com/yourorg/multisafepay-gateway/internal/paymentmethod"
	"github.com/yourorg/multisafepay-gateway/internal/policy"
	"github.com/yourorg/multisafepay-gateway/internal/reporting"
	"github.com/yourorg/multisafepay-gateway/internal/repository"
	"github.com/yourorg/multisafepay-gateway/internal/settings"
	"github.com/yourorg/multisafepay-gateway/internal/storage"
	"github.com/yourorg/multisafepay-gateway/internal/token"
	"github.com/yourorg/multisafepay-gateway/internal/transition"
)

// app holds the wired services behind the HTTP routes.
type app struct {
	cfg       *config.Config
	stores    *storage.Stores
	registry  *paymentmethod.Registry
	settings  *settings.Service
	channels  *channelctx.ContextBuilder
	payments  *handler.PaymentHandler
	installer *paymentmethod.Installer
	attempts  *reporting.AttemptLog
	reporter  *reporting.RetrospectiveReporter

	payContract      *monitor.ContractMonitor
	finalizeContract *monitor.ContractMonitor
}

func newApp(cfg *config.Config, stores *storage.Stores, sdk handler.ManagerFactory) (*app, error) {
	payContract, err := monitor.NewContractMonitor(monitor.SchemaPay)
	if err != nil {
		return nil, err
	}
	finalizeContract, err := monitor.NewContractMonitor(monitor.SchemaFinalize)
	if err != nil {
		return nil, err
	}
	enforcer, err := policy.NewAvailabilityEnforcer(policy.DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("failed to compile availability rules: %w", err)
	}

	registry := paymentmethod.DefaultRegistry()
	settingsSvc := settings.NewService(stores.Settings)
	orders := orderutil.New(stores.Addresses, stores.Transactions, stores.Languages)
	tokens := token.NewFactory(cfg.TokenSecret, stores.Tokens)

	events := event.NewDispatcher()
	events.Subscribe(event.DebugListener)

	attempts := reporting.NewAttemptLog(reporting.DefaultCapacity)

	return &app{
		cfg:       cfg,
		stores:    stores,
		registry:  registry,
		settings:  settingsSvc,
		channels:  channelctx.NewContextBuilder(settingsSvc),
		installer: paymentmethod.NewInstaller(stores.PaymentMethods, registry),
		attempts:  attempts,
		reporter:  reporting.NewRetrospectiveReporter(),
		payments: handler.NewPaymentHandler(handler.Deps{
			Registry:       registry,
			PaymentMethods: stores.PaymentMethods,
			Builder:        builder.NewOrderRequestBuilder(builder.DefaultBuilders(orders, tokens, cfg.ShopRootURL)...),
			Events:         events,
			SDK:            sdk,
			States:         transition.NewStateHandler(stores.Transactions),
			Policy:         enforcer,
			Attempts:       attempts,
		}),
		payContract:      payContract,
		finalizeContract: finalizeContract,
	}, nil
}

// bootstrap installs the payment methods and stores the API credentials from the
// environment as global settings.
func (a *app) bootstrap(ctx context.Context) error {
	n, err := a.installer.Sync(ctx, paymentmethod.SyncOptions{BatchMode: true})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Int("installed", n).Msg("Payment methods ready")

	if a.cfg.MSPAPIKey == "" {
		return nil
	}
	if err := a.settings.Set(ctx, "", settings.KeyAPIKey, a.cfg.MSPAPIKey); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	if err := a.settings.Set(ctx, "", settings.KeyEnvironment, a.cfg.MSPEnvironment); err != nil {
		return fmt.Errorf("failed to store environment: %w", err)
	}
	return nil
}

// remember mirrors the platform transaction into the transaction repository so
// state transitions can find it. A stored terminal state is never overwritten.
func (a *app) remember(ctx context.Context, tx model.PaymentTransaction) {
	ot := tx.OrderTransaction
	if ot.ID == "" {
		return
	}
	log := logger.FromContext(ctx)
	existing, err := a.stores.Transactions.Search(ctx, repository.NewCriteria(ot.ID))
	if err != nil {
		log.Warn().Err(err).Str("transaction_id", ot.ID).Msg("could not load order transaction")
		return
	}
	if stored, ok := existing.First(); ok && stored.State.IsTerminal() {
		log.Debug().Str("transaction_id", ot.ID).Str("state", string(stored.State)).Msg("keeping terminal transaction state")
		return
	}
	if ot.State == "" {
		ot.State = model.StateOpen
	}
	if ot.OrderID == "" && tx.Order != nil {
		ot.OrderID = tx.Order.ID
	}
	if err := a.stores.Transactions.Upsert(ctx, []model.OrderTransaction{ot}); err != nil {
		log.Warn().Err(err).Str("transaction_id", ot.ID).Msg("could not store order transaction")
	}
}

// httpHandler wraps the router with CORS.
func (a *app) httpHandler() http.Handler {
	return corsHandler(a.cfg.AllowedOrigins)(setupRouter(a))
}

func corsHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
