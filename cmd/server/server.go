package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	channelctx "github.com/yourorg/multisafepay-gateway/internal/context"
	"github.com/yourorg/multisafepay-gateway/internal/handler"
	"github.com/yourorg/multisafepay-gateway/internal/logger"
	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/monitor"
	"github.com/yourorg/multisafepay-gateway/internal/paymentmethod"
)

const serviceName = "multisafepay-gateway"

type payBody struct {
	Channel     channelctx.ChannelInput  `json:"channel"`
	Transaction model.PaymentTransaction `json:"transaction"`
	FormData    map[string]string        `json:"form_data"`
}

type finalizeBody struct {
	Channel       channelctx.ChannelInput  `json:"channel"`
	Transaction   model.PaymentTransaction `json:"transaction"`
	TransactionID string                   `json:"transaction_id"`
	Cancel        bool                     `json:"cancel"`
}

type cancelBody struct {
	Channel channelctx.ChannelInput `json:"channel"`
	Order   model.Order             `json:"order"`
}

func setupRouter(a *app) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName), requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	payment := router.Group("/payment")
	payment.POST("/pay", a.pay)
	payment.POST("/finalize", a.finalize)
	payment.POST("/cancel", a.cancelPreTransaction)
	payment.GET("/supports", a.supports)
	payment.GET("/methods", a.methods)
	payment.GET("/issuers/:gateway", a.issuers)

	router.GET("/reports/attempts", a.report)
	return router
}

// requestLogger attaches a request-scoped logger and logs every request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		ctx := logger.With(c.Request.Context(), map[string]string{"request_id": requestID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		logger.FromContext(ctx).Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("HTTP Request")
	}
}

// bindValidated checks the body against the contract before decoding it into dst.
func bindValidated(c *gin.Context, contract *monitor.ContractMonitor, dst any) bool {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return false
	}
	valid, violations, err := contract.Validate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return false
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed: " + monitor.FormatErrors(violations)})
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return false
	}
	return true
}

func (a *app) channel(c *gin.Context, in channelctx.ChannelInput) (channelctx.SalesChannelContext, bool) {
	channel, err := a.channels.Build(c.Request.Context(), in)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error().Err(err).Str("sales_channel_id", in.SalesChannelID).Msg("could not build sales channel context")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return channelctx.SalesChannelContext{}, false
	}
	return channel, true
}

// writePaymentError renders handler errors; anything else is an internal error.
// The trace id lets the shop correlate the response with the gateway logs.
func writePaymentError(c *gin.Context, err error, trace channelctx.TraceContext) {
	var perr *handler.PaymentError
	if errors.As(err, &perr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          perr.Message,
			"kind":           perr.Kind,
			"transaction_id": perr.TransactionID,
			"trace_id":       trace.TraceID,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "trace_id": trace.TraceID})
}

func (a *app) pay(c *gin.Context) {
	var body payBody
	if !bindValidated(c, a.payContract, &body) {
		return
	}
	channel, ok := a.channel(c, body.Channel)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	a.remember(ctx, body.Transaction)

	redirect, err := a.payments.Pay(ctx, handler.PayRequest{
		Transaction: body.Transaction,
		FormData:    body.FormData,
		Channel:     channel,
	})
	if err != nil {
		writePaymentError(c, err, channel.Trace)
		return
	}
	if redirect == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, redirect)
}

func (a *app) finalize(c *gin.Context) {
	var body finalizeBody
	if !bindValidated(c, a.finalizeContract, &body) {
		return
	}
	channel, ok := a.channel(c, body.Channel)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	a.remember(ctx, body.Transaction)

	err := a.payments.Finalize(ctx, handler.FinalizeRequest{
		Transaction:   body.Transaction,
		TransactionID: body.TransactionID,
		Cancel:        body.Cancel,
		Channel:       channel,
	})
	if err != nil {
		writePaymentError(c, err, channel.Trace)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

func (a *app) cancelPreTransaction(c *gin.Context) {
	var body cancelBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if body.Order.OrderNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed: order.order_number is required"})
		return
	}
	channel, ok := a.channel(c, body.Channel)
	if !ok {
		return
	}
	a.payments.CancelPreTransaction(c.Request.Context(), &body.Order, channel)
	c.Status(http.StatusAccepted)
}

func (a *app) supports(c *gin.Context) {
	req := handler.SupportsRequest{
		Type:            handler.PaymentType(c.DefaultQuery("type", string(handler.PaymentTypeAsync))),
		PaymentMethodID: c.Query("payment_method_id"),
		Currency:        c.Query("currency"),
		BillingCountry:  c.Query("billing_country"),
	}
	if raw := c.Query("amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed: amount must be a decimal"})
			return
		}
		req.Amount = amount
	}
	guest, _ := strconv.ParseBool(c.Query("guest"))
	channel, ok := a.channel(c, channelctx.ChannelInput{
		SalesChannelID: c.Query("sales_channel_id"),
		CurrencyISO:    c.Query("currency"),
		CustomerID:     c.Query("customer_id"),
		Guest:          guest,
	})
	if !ok {
		return
	}
	req.Channel = channel

	supported, err := a.payments.Supports(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"supported": supported})
}

func (a *app) methods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": a.registry.All()})
}

func (a *app) issuers(c *gin.Context) {
	gateway := paymentmethod.Gateway(c.Param("gateway"))
	if _, ok := a.registry.ByGateway(gateway); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown gateway " + string(gateway)})
		return
	}
	channel, ok := a.channel(c, channelctx.ChannelInput{SalesChannelID: c.Query("sales_channel_id")})
	if !ok {
		return
	}
	issuers, err := a.payments.Issuers(c.Request.Context(), gateway, channel)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"issuers": issuers})
}

func (a *app) report(c *gin.Context) {
	report, err := a.reporter.GenerateRetrospective(a.attempts.Entries())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
