// Package builder assembles MultiSafepay order requests from a platform order. The
// OrderRequestBuilder writes the mandatory fields and then runs an ordered list of
// section builders, each responsible for one part of the request.
package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	channelctx "github.com/yourorg/multisafepay-gateway/internal/context"
	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
)

// ErrMissingOrder is returned when the transaction carries no order.
var ErrMissingOrder = errors.New("payment transaction has no order")

// Input is everything a section builder may read. Builders never see each other's
// output other than through the request they write to.
type Input struct {
	Order       *model.Order
	Transaction model.PaymentTransaction
	FormData    map[string]string
	Channel     channelctx.SalesChannelContext
}

// NewInput derives the builder input from a payment transaction.
func NewInput(tx model.PaymentTransaction, formData map[string]string, channel channelctx.SalesChannelContext) Input {
	return Input{Order: tx.Order, Transaction: tx, FormData: formData, Channel: channel}
}

// FormValue returns a trimmed form value, or "".
func (in Input) FormValue(key string) string {
	if in.FormData == nil {
		return ""
	}
	return strings.TrimSpace(in.FormData[key])
}

// TransactionID is the id of the order transaction being paid.
func (in Input) TransactionID() string {
	return in.Transaction.OrderTransaction.ID
}

// SectionBuilder writes one part of an order request.
type SectionBuilder interface {
	Build(ctx context.Context, req *multisafepay.OrderRequest, in Input) error
}

// SectionBuilderFunc adapts a function to SectionBuilder.
type SectionBuilderFunc func(ctx context.Context, req *multisafepay.OrderRequest, in Input) error

func (f SectionBuilderFunc) Build(ctx context.Context, req *multisafepay.OrderRequest, in Input) error {
	return f(ctx, req, in)
}

// GatewayResolution is the gateway code and order type an attempt is sent with.
type GatewayResolution struct {
	Code string
	Type string
}

// OrderRequestBuilder runs section builders in declaration order.
type OrderRequestBuilder struct {
	builders []SectionBuilder
}

// NewOrderRequestBuilder creates a builder running the given section builders.
func NewOrderRequestBuilder(builders ...SectionBuilder) *OrderRequestBuilder {
	for i, b := range builders {
		if b == nil {
			panic(fmt.Sprintf("section builder %d cannot be nil", i))
		}
	}
	return &OrderRequestBuilder{builders: builders}
}

// Build creates the request for one attempt. The first section builder error aborts
// the build and is returned as is.
func (b *OrderRequestBuilder) Build(
	ctx context.Context,
	in Input,
	gateway GatewayResolution,
	gatewayInfo multisafepay.GatewayInfo,
) (*multisafepay.OrderRequest, error) {
	tracer := otel.Tracer("builder")
	ctx, span := tracer.Start(ctx, "OrderRequestBuilder.Build")
	defer span.End()

	start := time.Now()
	buildRequestsTotal.Inc()
	defer func() {
		buildDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	if in.Order == nil {
		in.Order = in.Transaction.Order
	}
	if in.Order == nil {
		buildFailuresTotal.WithLabelValues("order").Inc()
		span.SetStatus(codes.Error, ErrMissingOrder.Error())
		return nil, ErrMissingOrder
	}
	span.SetAttributes(
		attribute.String("order.number", in.Order.OrderNumber),
		attribute.String("gateway.code", gateway.Code),
	)

	req := multisafepay.NewOrderRequest().
		AddType(gateway.Type).
		AddOrderID(in.Order.OrderNumber).
		AddMoney(multisafepay.NewMoney(in.Order.AmountTotal, in.Order.CurrencyISO)).
		AddGatewayCode(gateway.Code)
	if !gatewayInfo.IsEmpty() {
		req.AddGatewayInfo(gatewayInfo)
	}

	for _, sb := range b.builders {
		if err := sb.Build(ctx, req, in); err != nil {
			buildFailuresTotal.WithLabelValues(builderName(sb)).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}
	return req, nil
}

// builderName is the type name used as metric label, e.g. "CustomerBuilder".
func builderName(sb SectionBuilder) string {
	name := fmt.Sprintf("%T", sb)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
