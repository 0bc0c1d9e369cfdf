package handler

import (
	"context"
	"fmt"

	"github.com/yourorg/multisafepay-gateway/internal/builder"
	channelctx "github.com/yourorg/multisafepay-gateway/internal/context"
	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
	"github.com/yourorg/multisafepay-gateway/internal/paymentmethod"
)

// Handler is the payment handler of one payment method.
type Handler struct {
	descriptor paymentmethod.Descriptor
	payments   *PaymentHandler
}

// For returns the handler of a descriptor.
func (h *PaymentHandler) For(d paymentmethod.Descriptor) *Handler {
	return &Handler{descriptor: d, payments: h}
}

// Handlers returns one handler per registered descriptor, keyed by handler
// identifier.
func (h *PaymentHandler) Handlers() map[string]*Handler {
	out := make(map[string]*Handler)
	for _, d := range h.registry.All() {
		out[d.HandlerIdentifier()] = h.For(d)
	}
	return out
}

// Descriptor returns the payment method the handler pays with.
func (g *Handler) Descriptor() paymentmethod.Descriptor { return g.descriptor }

// Pay starts a payment with this handler's gateway. Gender and issuer are taken
// from the form data when the gateway uses them; a selected issuer turns the order
// into a direct transaction.
func (g *Handler) Pay(ctx context.Context, req PayRequest) (*Redirect, error) {
	d := g.descriptor
	gateway := builder.GatewayResolution{
		Code: d.ResolveGatewayCode(req.Channel.Settings),
		Type: string(d.Type),
	}
	if gateway.Type == "" {
		gateway.Type = multisafepay.TypeRedirect
	}

	var info multisafepay.GatewayInfo
	in := builder.NewInput(req.Transaction, req.FormData, req.Channel)
	if d.RequiresGender {
		info.Gender = in.FormValue(builder.FormGender)
	}
	if d.HasIssuers {
		if issuer := in.FormValue(builder.FormIssuer); issuer != "" {
			info.IssuerID = issuer
			gateway.Type = multisafepay.TypeDirect
		}
	}
	return g.payments.pay(ctx, req, d, gateway, info)
}

// Finalize delegates to the PaymentHandler.
func (g *Handler) Finalize(ctx context.Context, req FinalizeRequest) error {
	return g.payments.Finalize(ctx, req)
}

// CancelPreTransaction delegates to the PaymentHandler.
func (g *Handler) CancelPreTransaction(ctx context.Context, order *model.Order, channel channelctx.SalesChannelContext) {
	g.payments.CancelPreTransaction(ctx, order, channel)
}

// Issuers lists the issuers shoppers can pick from. Gateways without issuers
// return none.
func (g *Handler) Issuers(ctx context.Context, channel channelctx.SalesChannelContext) ([]multisafepay.Issuer, error) {
	if !g.descriptor.HasIssuers {
		return nil, nil
	}
	manager, err := g.payments.sdk.Manager(channel.Settings)
	if err != nil {
		return nil, err
	}
	issuers, err := manager.Issuers(ctx, g.descriptor.ResolveGatewayCode(channel.Settings))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issuers for %s: %w", g.descriptor.ID, err)
	}
	return issuers, nil
}
