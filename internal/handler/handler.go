// Package handler is the payment handler the platform calls for MultiSafepay
// payment methods. Pay builds and sends an order request and redirects the shopper
// to the payment page; Finalize checks the shopper's return.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yourorg/multisafepay-gateway/internal/builder"
	channelctx "github.com/yourorg/multisafepay-gateway/internal/context"
	"github.com/yourorg/multisafepay-gateway/internal/event"
	"github.com/yourorg/multisafepay-gateway/internal/logger"
	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
	"github.com/yourorg/multisafepay-gateway/internal/paymentmethod"
	"github.com/yourorg/multisafepay-gateway/internal/policy"
	"github.com/yourorg/multisafepay-gateway/internal/reporting"
	"github.com/yourorg/multisafepay-gateway/internal/repository"
	"github.com/yourorg/multisafepay-gateway/internal/settings"
	"github.com/yourorg/multisafepay-gateway/internal/transition"
)

// ManagerFactory creates the MultiSafepay client for a sales channel's settings.
type ManagerFactory interface {
	Manager(cfg settings.Settings) (multisafepay.Manager, error)
}

// RequestBuilder builds the order request of an attempt.
type RequestBuilder interface {
	Build(ctx context.Context, in builder.Input, gateway builder.GatewayResolution, gatewayInfo multisafepay.GatewayInfo) (*multisafepay.OrderRequest, error)
}

// EventDispatcher lets listeners adjust a built request before it is sent.
type EventDispatcher interface {
	Dispatch(ctx context.Context, evt *event.FilterOrderRequestEvent) error
}

// Deps are the collaborators of a PaymentHandler. Policy and Attempts are optional.
type Deps struct {
	Registry       *paymentmethod.Registry
	PaymentMethods repository.Repository[model.PaymentMethod]
	Builder        RequestBuilder
	Events         EventDispatcher
	SDK            ManagerFactory
	States         transition.StateHandler
	Policy         *policy.AvailabilityEnforcer
	Attempts       *reporting.AttemptLog
}

// PaymentHandler implements pay, finalize, pre-transaction cancel and supports.
type PaymentHandler struct {
	registry *paymentmethod.Registry
	methods  repository.Repository[model.PaymentMethod]
	builder  RequestBuilder
	events   EventDispatcher
	sdk      ManagerFactory
	states   transition.StateHandler
	policy   *policy.AvailabilityEnforcer
	attempts *reporting.AttemptLog
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(d Deps) *PaymentHandler {
	if d.Registry == nil {
		panic("payment method registry cannot be nil")
	}
	if d.PaymentMethods == nil {
		panic("payment method repository cannot be nil")
	}
	if d.Builder == nil {
		panic("order request builder cannot be nil")
	}
	if d.Events == nil {
		panic("event dispatcher cannot be nil")
	}
	if d.SDK == nil {
		panic("MultiSafepay manager factory cannot be nil")
	}
	if d.States == nil {
		panic("transaction state handler cannot be nil")
	}
	return &PaymentHandler{
		registry: d.Registry,
		methods:  d.PaymentMethods,
		builder:  d.Builder,
		events:   d.Events,
		sdk:      d.SDK,
		states:   d.States,
		policy:   d.Policy,
		attempts: d.Attempts,
	}
}

// Pay resolves the gateway from the transaction's payment method and starts the
// payment. A nil Redirect with a nil error means MultiSafepay returned no payment
// URL.
func (h *PaymentHandler) Pay(ctx context.Context, req PayRequest) (*Redirect, error) {
	d, ok := h.descriptorFor(ctx, req.Transaction.OrderTransaction.PaymentMethodID)
	if !ok {
		return h.pay(ctx, req, paymentmethod.Descriptor{}, builder.GatewayResolution{}, multisafepay.GatewayInfo{})
	}
	return h.For(d).Pay(ctx, req)
}

func (h *PaymentHandler) pay(
	ctx context.Context,
	req PayRequest,
	d paymentmethod.Descriptor,
	gateway builder.GatewayResolution,
	gatewayInfo multisafepay.GatewayInfo,
) (*Redirect, error) {
	tracer := otel.Tracer("handler")
	ctx, span := tracer.Start(ctx, "PaymentHandler.Pay")
	defer span.End()

	start := time.Now()
	defer func() {
		payDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	tx := req.Transaction
	ctx = logger.With(ctx, map[string]string{
		"transaction_id": tx.OrderTransaction.ID,
		"order_number":   tx.OrderNumber(),
		"gateway":        gateway.Code,
		"trace_id":       req.Channel.Trace.TraceID,
	})
	log := logger.FromContext(ctx)
	span.SetAttributes(
		attribute.String("transaction.id", tx.OrderTransaction.ID),
		attribute.String("gateway.code", gateway.Code),
	)

	entry := h.entry(tx, req.Channel, gateway.Code)

	if gateway.Code == "" {
		log.Error().Str("payment_method_id", tx.OrderTransaction.PaymentMethodID).
			Str("descriptor", string(d.ID)).Msg(MessageGatewayNotDetermined)
		return nil, h.failPay(ctx, entry, span, errors.New(MessageGatewayNotDetermined))
	}

	orderReq, err := h.builder.Build(ctx, builder.NewInput(tx, req.FormData, req.Channel), gateway, gatewayInfo)
	if err != nil {
		log.Error().Err(err).Msg("MultiSafepay payment failed (unexpected error)")
		return nil, h.failPay(ctx, entry, span, err)
	}

	evt := &event.FilterOrderRequestEvent{Request: orderReq, Channel: req.Channel, Order: tx.Order}
	if err := h.events.Dispatch(ctx, evt); err != nil {
		log.Error().Err(err).Msg("MultiSafepay payment failed (unexpected error)")
		return nil, h.failPay(ctx, entry, span, err)
	}

	manager, err := h.sdk.Manager(req.Channel.Settings)
	if err != nil {
		log.Error().Err(err).Msg("MultiSafepay payment failed (unexpected error)")
		return nil, h.failPay(ctx, entry, span, err)
	}

	resp, err := manager.Create(ctx, evt.Request)
	if err != nil {
		var apiErr *multisafepay.APIError
		var clientErr *multisafepay.ClientError
		switch {
		case errors.As(err, &apiErr):
			log.Error().Str("message", apiErr.Info).Int("code", apiErr.Code).Int("status", apiErr.HTTPStatus).
				Msg("MultiSafepay payment failed (ApiException)")
		case errors.As(err, &clientErr):
			log.Error().Err(clientErr.Err).Str("op", clientErr.Op).Msg("MultiSafepay payment failed (client error)")
		default:
			log.Error().Err(err).Msg("MultiSafepay payment failed (unexpected error)")
		}
		return nil, h.failPay(ctx, entry, span, err)
	}

	if resp == nil || resp.PaymentURL == "" {
		log.Warn().Msg("MultiSafepay returned no payment url")
		entry.Outcome = reporting.OutcomeNoURL
		h.record(entry)
		return nil, nil
	}

	entry.Outcome = reporting.OutcomeRedirect
	h.record(entry)
	log.Debug().Str("payment_url", resp.PaymentURL).Msg("redirecting to MultiSafepay payment page")
	return &Redirect{URL: resp.PaymentURL}, nil
}

// failPay fails the transaction and wraps cause in a PaymentError.
func (h *PaymentHandler) failPay(ctx context.Context, entry reporting.LogEntry, span trace.Span, cause error) error {
	span.RecordError(cause)
	span.SetStatus(codes.Error, cause.Error())

	h.fail(ctx, entry.TransactionID)
	perr := &PaymentError{
		Kind:          KindAsyncProcessInterrupted,
		TransactionID: entry.TransactionID,
		Message:       cause.Error(),
		Err:           cause,
	}
	entry.Outcome = reporting.OutcomeFailed
	entry.ErrorKind = string(perr.Kind)
	entry.ErrorMessage = perr.Message
	h.record(entry)
	return perr
}

// fail moves the transaction to failed. A failing transition is logged; the
// original error is what the caller reports.
func (h *PaymentHandler) fail(ctx context.Context, transactionID string) {
	if err := h.states.Fail(ctx, transactionID); err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("transaction_id", transactionID).
			Msg("failed to mark order transaction as failed")
	}
}

// Finalize checks the order id MultiSafepay returned and whether the shopper
// cancelled.
func (h *PaymentHandler) Finalize(ctx context.Context, req FinalizeRequest) error {
	tracer := otel.Tracer("handler")
	ctx, span := tracer.Start(ctx, "PaymentHandler.Finalize")
	defer span.End()

	tx := req.Transaction
	ctx = logger.With(ctx, map[string]string{
		"transaction_id": tx.OrderTransaction.ID,
		"trace_id":       req.Channel.Trace.TraceID,
	})
	log := logger.FromContext(ctx)
	entry := h.entry(tx, req.Channel, "")

	expected := tx.OrderNumber()
	if req.TransactionID != expected {
		log.Error().Str("expected", expected).Str("received", req.TransactionID).Msg(MessageOrderMismatch)
		h.fail(ctx, tx.OrderTransaction.ID)
		span.SetStatus(codes.Error, MessageOrderMismatch)
		entry.Outcome = reporting.OutcomeMismatched
		entry.ErrorKind = string(KindAsyncFinalizeInterrupted)
		entry.ErrorMessage = MessageOrderMismatch
		h.record(entry)
		return &PaymentError{
			Kind:          KindAsyncFinalizeInterrupted,
			TransactionID: tx.OrderTransaction.ID,
			Message:       MessageOrderMismatch,
		}
	}

	if req.Cancel {
		if err := h.states.Cancel(ctx, tx.OrderTransaction.ID); err != nil {
			log.Error().Err(err).Msg("failed to mark order transaction as cancelled")
		}
		entry.Outcome = reporting.OutcomeCancelled
		entry.ErrorKind = string(KindCustomerCanceled)
		entry.ErrorMessage = MessageCanceled
		h.record(entry)
		return &PaymentError{
			Kind:          KindCustomerCanceled,
			TransactionID: tx.OrderTransaction.ID,
			Message:       MessageCanceled,
		}
	}

	entry.Outcome = reporting.OutcomeConfirmed
	h.record(entry)
	return nil
}

// CancelPreTransaction asks MultiSafepay to cancel the order of an abandoned attempt
// and exclude it from reporting. Failures are logged and otherwise ignored.
func (h *PaymentHandler) CancelPreTransaction(ctx context.Context, order *model.Order, channel channelctx.SalesChannelContext) {
	if order == nil || order.OrderNumber == "" {
		return
	}
	log := logger.FromContext(ctx)

	manager, err := h.sdk.Manager(channel.Settings)
	if err != nil {
		cancelFailuresTotal.Inc()
		log.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("could not cancel pre-transaction")
		return
	}
	err = manager.Update(ctx, order.OrderNumber, multisafepay.UpdateRequest{
		Status:       multisafepay.StatusCancelled,
		ExcludeOrder: true,
	})
	if err != nil {
		cancelFailuresTotal.Inc()
		log.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("could not cancel pre-transaction")
	}
}

// Supports reports whether the payment method is a MultiSafepay method handled
// asynchronously and allowed by the availability rules.
func (h *PaymentHandler) Supports(ctx context.Context, req SupportsRequest) (bool, error) {
	if req.Type != PaymentTypeAsync {
		return false, nil
	}
	d, ok := h.descriptorFor(ctx, req.PaymentMethodID)
	if !ok {
		return false, nil
	}
	if h.policy == nil {
		return true, nil
	}
	currency := req.Currency
	if currency == "" {
		currency = req.Channel.CurrencyISO
	}
	allowed, err := h.policy.Allows(d.ID, policy.Facts{
		Amount:         req.Amount,
		Currency:       currency,
		BillingCountry: req.BillingCountry,
		Guest:          req.Channel.IsGuest(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate availability of %s: %w", d.ID, err)
	}
	return allowed, nil
}

// Issuers lists the issuers of a gateway. Gateways without issuers return none.
func (h *PaymentHandler) Issuers(ctx context.Context, gateway paymentmethod.Gateway, channel channelctx.SalesChannelContext) ([]multisafepay.Issuer, error) {
	d, ok := h.registry.ByGateway(gateway)
	if !ok {
		return nil, fmt.Errorf("unknown gateway %q", gateway)
	}
	return h.For(d).Issuers(ctx, channel)
}

// descriptorFor resolves a payment method id to its descriptor through the installed
// handler identifier.
func (h *PaymentHandler) descriptorFor(ctx context.Context, paymentMethodID string) (paymentmethod.Descriptor, bool) {
	log := logger.FromContext(ctx)
	if paymentMethodID == "" {
		log.Warn().Msg("order transaction has no payment method")
		return paymentmethod.Descriptor{}, false
	}
	res, err := h.methods.Search(ctx, repository.NewCriteria(paymentMethodID))
	if err != nil {
		log.Warn().Err(err).Str("payment_method_id", paymentMethodID).Msg("failed to load payment method")
		return paymentmethod.Descriptor{}, false
	}
	method, ok := res.First()
	if !ok {
		log.Warn().Str("payment_method_id", paymentMethodID).Msg("payment method not found")
		return paymentmethod.Descriptor{}, false
	}
	d, ok := h.registry.ByHandler(method.HandlerIdentifier)
	if !ok {
		log.Warn().Str("handler_identifier", method.HandlerIdentifier).
			Msg("payment method handler is not a MultiSafepay gateway")
	}
	return d, ok
}

func (h *PaymentHandler) entry(tx model.PaymentTransaction, channel channelctx.SalesChannelContext, gateway string) reporting.LogEntry {
	e := reporting.LogEntry{
		TransactionID:  tx.OrderTransaction.ID,
		OrderNumber:    tx.OrderNumber(),
		SalesChannelID: channel.SalesChannelID,
		Gateway:        gateway,
	}
	if tx.Order != nil {
		money := multisafepay.NewMoney(tx.Order.AmountTotal, tx.Order.CurrencyISO)
		e.Amount = money.Amount
		e.Currency = money.Currency
	}
	return e
}

func (h *PaymentHandler) record(e reporting.LogEntry) {
	gateway := e.Gateway
	if gateway == "" {
		gateway = "unknown"
	}
	attemptsTotal.WithLabelValues(strings.ToUpper(gateway), string(e.Outcome)).Inc()
	if h.attempts != nil {
		h.attempts.Record(e)
	}
}
