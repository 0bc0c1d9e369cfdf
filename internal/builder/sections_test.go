package builder_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/multisafepay-gateway/internal/builder"
	"github.com/yourorg/multisafepay-gateway/internal/builder/cartitem"
	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
	"github.com/yourorg/multisafepay-gateway/internal/settings"
	"github.com/yourorg/multisafepay-gateway/internal/token"
)

func TestCustomerBuilder(t *testing.T) {
	ctx := context.Background()

	t.Run("WithState", func(t *testing.T) {
		in := testInput(testOrder())
		in.FormData[builder.FormGender] = "mr"
		req := multisafepay.NewOrderRequest()

		require.NoError(t, builder.NewCustomerBuilder(newOrderUtil()).Build(ctx, req, in))
		require.NotNil(t, req.Customer)
		c := req.Customer
		assert.Equal(t, "NL", c.Country)
		assert.Equal(t, "Noord-Holland", c.State)
		assert.Equal(t, "Kraanspoor", c.Street)
		assert.Equal(t, "39C", c.HouseNumber)
		assert.Equal(t, "nl_NL", c.Locale)
		assert.Equal(t, "jan@example.com", c.Email)
		assert.Equal(t, "C-42", c.Reference)
		assert.Equal(t, "Jansen BV", c.Company)
		assert.Equal(t, "0201234567", c.Phone)
		assert.Equal(t, "10.0.0.1", c.IPAddress)
		assert.Equal(t, "test-agent", c.UserAgent)
		assert.Equal(t, "mr", c.Gender)
	})

	t.Run("WithoutState", func(t *testing.T) {
		order := testOrder()
		order.BillingAddress.CountryState = nil
		req := multisafepay.NewOrderRequest()

		require.NoError(t, builder.NewCustomerBuilder(newOrderUtil()).Build(ctx, req, testInput(order)))
		assert.Empty(t, req.Customer.State)
		assert.NotContains(t, mustJSON(t, req), `"state"`)
	})

	t.Run("MissingCountry", func(t *testing.T) {
		for _, country := range []*model.Country{nil, {ISO: ""}} {
			order := testOrder()
			order.BillingAddress.Country = country
			req := multisafepay.NewOrderRequest()

			err := builder.NewCustomerBuilder(newOrderUtil()).Build(ctx, req, testInput(order))
			require.Error(t, err)
			assert.True(t, errors.Is(err, multisafepay.ErrInvalidArgument))
			assert.Equal(t, "Country code should be 2 characters (ISO3166 alpha 2)", err.Error())
			assert.False(t, req.Has(multisafepay.SectionCustomer))
		}
	})

	t.Run("BillingAddressFromRepository", func(t *testing.T) {
		order := testOrder()
		stored := *order.BillingAddress
		order.BillingAddress = nil
		order.BillingAddressID = stored.ID
		req := multisafepay.NewOrderRequest()

		require.NoError(t, builder.NewCustomerBuilder(newOrderUtil(stored)).Build(ctx, req, testInput(order)))
		assert.Equal(t, "Amsterdam", req.Customer.City)
	})

	t.Run("UnknownLanguage", func(t *testing.T) {
		order := testOrder()
		order.LanguageID = "lang-unknown"
		req := multisafepay.NewOrderRequest()

		require.NoError(t, builder.NewCustomerBuilder(newOrderUtil()).Build(ctx, req, testInput(order)))
		assert.Equal(t, "en_GB", req.Customer.Locale)
	})

	t.Run("HouseNumberInAdditionalLine", func(t *testing.T) {
		order := testOrder()
		order.BillingAddress.Street = "Kraanspoor"
		order.BillingAddress.AdditionalAddressLine1 = "39C"
		order.BillingAddress.AdditionalAddressLine2 = "2nd floor"
		req := multisafepay.NewOrderRequest()

		require.NoError(t, builder.NewCustomerBuilder(newOrderUtil()).Build(ctx, req, testInput(order)))
		assert.Equal(t, "Kraanspoor", req.Customer.Street)
		assert.Equal(t, "39C", req.Customer.HouseNumber)
		assert.Equal(t, "2nd floor", req.Customer.Additional)
	})
}

func TestDeliveryBuilder(t *testing.T) {
	ctx := context.Background()

	t.Run("ShippingAddress", func(t *testing.T) {
		order := testOrder()
		shipping := billingAddress()
		shipping.ID = "addr-shipping"
		shipping.City = "Utrecht"
		shipping.Company = "Depot BV"
		order.Deliveries[0].ShippingOrderAddress = shipping
		req := multisafepay.NewOrderRequest()

		require.NoError(t, builder.NewDeliveryBuilder(newOrderUtil()).Build(ctx, req, testInput(order)))
		require.NotNil(t, req.Delivery)
		assert.Equal(t, "Utrecht", req.Delivery.City)
		assert.Equal(t, "Depot BV", req.Delivery.Company)
	})

	t.Run("NoDeliveriesFallsBackToBilling", func(t *testing.T) {
		for _, deliveries := range [][]model.OrderDelivery{nil, {}} {
			order := testOrder()
			order.Deliveries = deliveries
			req := multisafepay.NewOrderRequest()

			require.NoError(t, builder.NewDeliveryBuilder(newOrderUtil()).Build(ctx, req, testInput(order)))
			require.NotNil(t, req.Delivery)
			assert.Equal(t, "Amsterdam", req.Delivery.City)
			assert.Equal(t, "NL", req.Delivery.Country)
		}
	})

	t.Run("NoAddressAtAll", func(t *testing.T) {
		order := testOrder()
		order.Deliveries = nil
		order.BillingAddress = nil
		req := multisafepay.NewOrderRequest()

		require.NoError(t, builder.NewDeliveryBuilder(newOrderUtil()).Build(ctx, req, testInput(order)))
		assert.False(t, req.Has(multisafepay.SectionDelivery))
	})
}

func TestSecondsActive(t *testing.T) {
	tests := []struct {
		name  string
		value int
		unit  string
		want  int
	}{
		{"MinutesDefault", 0, settings.UnitMinutes, 30 * 60},
		{"Minutes", 15, settings.UnitMinutes, 15 * 60},
		{"HoursNegative", -4, settings.UnitHours, 30 * 3600},
		{"Hours", 2, settings.UnitHours, 2 * 3600},
		{"Days", 5, settings.UnitDays, 5 * 86400},
		{"UnknownUnitIsDays", 1, "9", 86400},
		{"Unset", 0, "", 30 * 86400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := settings.Settings{TimeActive: tt.value, TimeActiveLabel: tt.unit}
			assert.Equal(t, tt.want, builder.SecondsActive(cfg))

			in := testInput(testOrder())
			in.Channel.Settings = cfg
			req := multisafepay.NewOrderRequest()
			require.NoError(t, builder.SecondsActiveBuilder{}.Build(context.Background(), req, in))
			assert.Equal(t, tt.want, req.SecondsActive)
		})
	}
}

func TestRecurringBuilder(t *testing.T) {
	tests := []struct {
		name        string
		guest       bool
		saveToken   string
		activeToken string
		wantModel   bool
		wantID      bool
	}{
		{"GuestSaveToken", true, "true", "", false, false},
		{"CustomerSaveToken", false, "true", "", true, false},
		{"CustomerNoSave", false, "false", "", false, false},
		{"ActiveTokenCustomer", false, "", "tok-1", true, true},
		{"ActiveTokenGuest", true, "true", "tok-1", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := testOrder()
			order.Customer.Guest = tt.guest
			in := testInput(order)
			in.FormData[builder.FormSaveToken] = tt.saveToken
			in.FormData[builder.FormActiveToken] = tt.activeToken
			req := multisafepay.NewOrderRequest()

			require.NoError(t, builder.RecurringBuilder{}.Build(context.Background(), req, in))
			assert.Equal(t, tt.wantModel, req.Has(multisafepay.SectionRecurringModel))
			assert.Equal(t, tt.wantID, req.Has(multisafepay.SectionRecurringID))
			if tt.wantModel {
				assert.Equal(t, multisafepay.RecurringModelCardOnFile, req.RecurringModel)
			}
			if tt.wantID {
				assert.Equal(t, "tok-1", req.RecurringID)
			}
		})
	}
}

func TestShoppingCartBuilder_MergesSubBuilders(t *testing.T) {
	fixed := func(items ...multisafepay.Item) cartitem.ItemBuilder {
		return cartitem.ItemBuilderFunc(func(*model.Order, string) ([]multisafepay.Item, error) {
			return items, nil
		})
	}
	a := multisafepay.Item{Name: "A", UnitPrice: decimal.NewFromInt(10), Quantity: 1, MerchantItemID: "a", TaxTableSelector: "21"}
	b := multisafepay.Item{Name: "B", UnitPrice: decimal.NewFromInt(5), Quantity: 3, MerchantItemID: "b", TaxTableSelector: "9"}
	c := multisafepay.Item{Name: "C", UnitPrice: decimal.NewFromInt(-2), Quantity: 1, MerchantItemID: "c", TaxTableSelector: "21"}

	req := multisafepay.NewOrderRequest()
	sb := builder.NewShoppingCartBuilder(fixed(a, b), fixed(), fixed(c))
	require.NoError(t, sb.Build(context.Background(), req, testInput(testOrder())))

	require.NotNil(t, req.ShoppingCart)
	assert.Equal(t, []multisafepay.Item{a, b, c}, req.ShoppingCart.Items)

	require.NotNil(t, req.CheckoutOptions)
	tables := req.CheckoutOptions.TaxTables.Alternate
	require.Len(t, tables, 2)
	assert.Equal(t, "21", tables[0].Name)
	assert.Equal(t, "0.21", string(tables[0].Rules[0].Rate))
	assert.Equal(t, "9", tables[1].Name)
}

func TestShoppingCartBuilder_SubBuilderError(t *testing.T) {
	boom := errors.New("no prices")
	failing := cartitem.ItemBuilderFunc(func(*model.Order, string) ([]multisafepay.Item, error) {
		return nil, boom
	})
	req := multisafepay.NewOrderRequest()
	err := builder.NewShoppingCartBuilder(failing).Build(context.Background(), req, testInput(testOrder()))
	assert.ErrorIs(t, err, boom)
	assert.False(t, req.Has(multisafepay.SectionShoppingCart))
}

func TestShoppingCartBuilder_DefaultsMatchOrderTotal(t *testing.T) {
	req := multisafepay.NewOrderRequest()
	require.NoError(t, builder.NewShoppingCartBuilder(cartitem.Defaults()...).Build(context.Background(), req, testInput(testOrder())))

	items := req.ShoppingCart.Items
	require.Len(t, items, 2, "product and shipping, no rounding item")
	assert.Equal(t, "SW-1", items[0].MerchantItemID)
	assert.Equal(t, cartitem.ShippingItemID, items[1].MerchantItemID)

	total, err := cartitem.TotalInclTax(items, 2)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("121.00")), "got %s", total)
}

func TestPaymentOptionsBuilder(t *testing.T) {
	ctx := context.Background()

	t.Run("RotatesToken", func(t *testing.T) {
		tokens := newTokens()
		old, err := tokens.Generate(token.Claims{
			PaymentMethodID: "pm-ideal",
			TransactionID:   "tx-1",
			FinishURL:       "https://shop.example/checkout/finish",
		}, time.Hour)
		require.NoError(t, err)

		in := testInput(testOrder())
		in.Transaction.ReturnURL = "https://shop.example/payment/finalize-transaction?_sw_payment_token=" + old
		in.Channel.Settings.ShopRootURL = "https://shop.example"
		req := multisafepay.NewOrderRequest()

		require.NoError(t, builder.NewPaymentOptionsBuilder(tokens, "https://fallback.example").Build(ctx, req, in))
		opts := req.PaymentOptions
		require.NotNil(t, opts)
		assert.Equal(t, "https://shop.example/multisafepay/notification", opts.NotificationURL)
		assert.Equal(t, "POST", opts.NotificationMethod)
		assert.True(t, opts.CloseWindow)
		assert.Equal(t, opts.RedirectURL+"&cancel=1", opts.CancelURL)

		_, err = tokens.Parse(ctx, old)
		assert.ErrorIs(t, err, token.ErrTokenInvalidated)

		redirect, err := url.Parse(opts.RedirectURL)
		require.NoError(t, err)
		assert.Equal(t, "/payment/finalize-transaction", redirect.Path)
		fresh := redirect.Query().Get(token.QueryParam)
		require.NotEmpty(t, fresh)
		assert.NotEqual(t, old, fresh)

		claims, err := tokens.Parse(ctx, fresh)
		require.NoError(t, err)
		assert.Equal(t, "pm-ideal", claims.PaymentMethodID)
		assert.Equal(t, "tx-1", claims.TransactionID)
		assert.Equal(t, "https://shop.example/checkout/finish", claims.FinishURL)
	})

	t.Run("WithoutReturnURL", func(t *testing.T) {
		tokens := newTokens()
		in := testInput(testOrder())
		req := multisafepay.NewOrderRequest()

		require.NoError(t, builder.NewPaymentOptionsBuilder(tokens, "https://fallback.example/").Build(ctx, req, in))
		opts := req.PaymentOptions
		assert.Equal(t, "https://fallback.example/multisafepay/notification", opts.NotificationURL)
		assert.True(t, strings.HasPrefix(opts.RedirectURL, "https://fallback.example/payment/finalize-transaction?_sw_payment_token="))

		redirect, err := url.Parse(opts.RedirectURL)
		require.NoError(t, err)
		claims, err := tokens.Parse(ctx, redirect.Query().Get(token.QueryParam))
		require.NoError(t, err)
		assert.Equal(t, "tx-1", claims.TransactionID)
		assert.Equal(t, "pm-ideal", claims.PaymentMethodID)
	})

	t.Run("InvalidTokenInReturnURL", func(t *testing.T) {
		in := testInput(testOrder())
		in.Transaction.ReturnURL = "https://shop.example/payment/finalize-transaction?_sw_payment_token=garbage"
		req := multisafepay.NewOrderRequest()

		err := builder.NewPaymentOptionsBuilder(newTokens(), "https://shop.example").Build(ctx, req, in)
		assert.ErrorIs(t, err, token.ErrInvalidToken)
		assert.False(t, req.Has(multisafepay.SectionPaymentOptions))
	})

	t.Run("GenerateFailureKeepsOldToken", func(t *testing.T) {
		boom := errors.New("signing failed")
		tokens := new(mockTokens)
		tokens.On("Parse", mock.Anything, "old-token").Return(&token.Claims{PaymentMethodID: "pm-ideal", TransactionID: "tx-1"}, nil)
		tokens.On("Generate", mock.Anything, mock.Anything).Return("", boom)

		in := testInput(testOrder())
		in.Transaction.ReturnURL = "https://shop.example/payment/finalize-transaction?_sw_payment_token=old-token"
		req := multisafepay.NewOrderRequest()

		err := builder.NewPaymentOptionsBuilder(tokens, "https://shop.example").Build(ctx, req, in)
		assert.ErrorIs(t, err, boom)
		assert.False(t, req.Has(multisafepay.SectionPaymentOptions))
		tokens.AssertExpectations(t)
		tokens.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})
}

type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) Parse(ctx context.Context, raw string) (*token.Claims, error) {
	args := m.Called(ctx, raw)
	claims, _ := args.Get(0).(*token.Claims)
	return claims, args.Error(1)
}

func (m *mockTokens) Invalidate(ctx context.Context, raw string) error {
	return m.Called(ctx, raw).Error(0)
}

func (m *mockTokens) Generate(c token.Claims, ttl time.Duration) (string, error) {
	args := m.Called(c, ttl)
	return args.String(0), args.Error(1)
}

func TestSimpleSections(t *testing.T) {
	ctx := context.Background()
	in := testInput(testOrder())
	in.Channel.Settings.ApplicationName = "Storefront"
	in.Channel.Settings.ApplicationVersion = "6.5.0"
	in.Channel.Settings.PluginVersion = "3.1.0"
	in.Channel.Settings.ShopRootURL = "https://shop.example"
	in.Channel.Settings.SecondChance = true

	req := multisafepay.NewOrderRequest()
	for _, sb := range []builder.SectionBuilder{
		builder.DescriptionBuilder{},
		builder.PluginDetailsBuilder{},
		builder.GoogleAnalyticsBuilder{},
		builder.SecondChanceBuilder{},
	} {
		require.NoError(t, sb.Build(ctx, req, in))
	}

	assert.Equal(t, "Payment for order #10001", req.Description)
	assert.Equal(t, multisafepay.PluginDetails{
		Shop:          "Storefront",
		ShopVersion:   "6.5.0",
		PluginVersion: "3.1.0",
		ShopRootURL:   "https://shop.example",
	}, *req.Plugin)
	assert.False(t, req.Has(multisafepay.SectionGoogleAnalytics), "no account configured")
	require.NotNil(t, req.SecondChance)
	assert.True(t, req.SecondChance.SendEmail)
}
