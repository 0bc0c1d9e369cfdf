package builder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/multisafepay-gateway/internal/builder"
	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
)

func TestOrderRequestBuilder_MandatoryFields(t *testing.T) {
	b := builder.NewOrderRequestBuilder()
	req, err := b.Build(context.Background(), testInput(testOrder()),
		builder.GatewayResolution{Code: "IDEAL", Type: multisafepay.TypeDirect},
		multisafepay.GatewayInfo{IssuerID: "0031"})
	require.NoError(t, err)

	assert.Equal(t, multisafepay.TypeDirect, req.Type)
	assert.Equal(t, "10001", req.OrderID)
	assert.Equal(t, int64(12100), req.Amount)
	assert.Equal(t, "EUR", req.Currency)
	assert.Equal(t, "IDEAL", req.Gateway)
	require.NotNil(t, req.GatewayInfo)
	assert.Equal(t, "0031", req.GatewayInfo.IssuerID)
	assert.NoError(t, req.Validate())
}

func TestOrderRequestBuilder_EmptyGatewayInfoIsOmitted(t *testing.T) {
	req, err := builder.NewOrderRequestBuilder().Build(context.Background(), testInput(testOrder()),
		builder.GatewayResolution{Code: "MISTERCASH", Type: multisafepay.TypeRedirect}, multisafepay.GatewayInfo{})
	require.NoError(t, err)
	assert.Nil(t, req.GatewayInfo)
	assert.False(t, req.Has(multisafepay.SectionGatewayInfo))
}

func TestOrderRequestBuilder_RunsBuildersInOrder(t *testing.T) {
	var calls []string
	record := func(name string) builder.SectionBuilder {
		return builder.SectionBuilderFunc(func(context.Context, *multisafepay.OrderRequest, builder.Input) error {
			calls = append(calls, name)
			return nil
		})
	}
	b := builder.NewOrderRequestBuilder(record("a"), record("b"), record("c"))
	_, err := b.Build(context.Background(), testInput(testOrder()), builder.GatewayResolution{Code: "VISA", Type: "redirect"}, multisafepay.GatewayInfo{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestOrderRequestBuilder_FirstErrorAborts(t *testing.T) {
	initialFailures := testutil.ToFloat64(builder.GetBuildFailuresTotal().WithLabelValues("SectionBuilderFunc"))

	boom := errors.New("boom")
	var ranAfter bool
	b := builder.NewOrderRequestBuilder(
		builder.SectionBuilderFunc(func(context.Context, *multisafepay.OrderRequest, builder.Input) error {
			return boom
		}),
		builder.SectionBuilderFunc(func(context.Context, *multisafepay.OrderRequest, builder.Input) error {
			ranAfter = true
			return nil
		}),
	)
	req, err := b.Build(context.Background(), testInput(testOrder()), builder.GatewayResolution{Code: "VISA", Type: "redirect"}, multisafepay.GatewayInfo{})
	assert.Nil(t, req)
	assert.Same(t, boom, err, "the builder error must be returned unmodified")
	assert.False(t, ranAfter)

	finalFailures := testutil.ToFloat64(builder.GetBuildFailuresTotal().WithLabelValues("SectionBuilderFunc"))
	assert.Equal(t, initialFailures+1, finalFailures)
}

func TestOrderRequestBuilder_InvalidArgumentPropagates(t *testing.T) {
	order := testOrder()
	order.BillingAddress.Country = nil
	b := builder.NewOrderRequestBuilder(builder.DefaultBuilders(newOrderUtil(), newTokens(), "https://shop.example")...)

	_, err := b.Build(context.Background(), testInput(order), builder.GatewayResolution{Code: "VISA", Type: "redirect"}, multisafepay.GatewayInfo{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, multisafepay.ErrInvalidArgument))
}

func TestOrderRequestBuilder_MissingOrder(t *testing.T) {
	in := testInput(testOrder())
	in.Order = nil
	in.Transaction.Order = nil
	_, err := builder.NewOrderRequestBuilder().Build(context.Background(), in, builder.GatewayResolution{}, multisafepay.GatewayInfo{})
	assert.ErrorIs(t, err, builder.ErrMissingOrder)
}

func TestOrderRequestBuilder_DefaultPipeline(t *testing.T) {
	b := builder.NewOrderRequestBuilder(builder.DefaultBuilders(newOrderUtil(), newTokens(), "https://shop.example")...)
	in := testInput(testOrder())
	in.Channel.Settings.GoogleAnalyticsID = "UA-1"

	req, err := b.Build(context.Background(), in, builder.GatewayResolution{Code: "VISA", Type: "redirect"}, multisafepay.GatewayInfo{})
	require.NoError(t, err)
	require.NoError(t, req.Validate(), "no section may be written twice")

	for _, section := range []string{
		multisafepay.SectionCustomer,
		multisafepay.SectionDelivery,
		multisafepay.SectionDescription,
		multisafepay.SectionPaymentOptions,
		multisafepay.SectionPlugin,
		multisafepay.SectionShoppingCart,
		multisafepay.SectionCheckoutOptions,
		multisafepay.SectionSecondsActive,
		multisafepay.SectionGoogleAnalytics,
		multisafepay.SectionSecondChance,
	} {
		assert.True(t, req.Has(section), "section %s", section)
	}
	assert.False(t, req.Has(multisafepay.SectionRecurringModel))
	assert.Equal(t, "Payment for order #10001", req.Description)
}

func TestOrderRequestBuilder_Metrics(t *testing.T) {
	initialRequests := testutil.ToFloat64(builder.GetBuildRequestsTotal())

	_, err := builder.NewOrderRequestBuilder().Build(context.Background(), testInput(testOrder()),
		builder.GatewayResolution{Code: "VISA", Type: "redirect"}, multisafepay.GatewayInfo{})
	require.NoError(t, err)

	assert.Equal(t, initialRequests+1, testutil.ToFloat64(builder.GetBuildRequestsTotal()))
	assert.Equal(t, 1, testutil.CollectAndCount(builder.GetBuildDurationSeconds()))
}

func TestNewOrderRequestBuilder_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { builder.NewOrderRequestBuilder(builder.DescriptionBuilder{}, nil) })
}
