package builder_test

import (
	"github.com/shopspring/decimal"

	"github.com/yourorg/multisafepay-gateway/internal/builder"
	channelctx "github.com/yourorg/multisafepay-gateway/internal/context"
	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/orderutil"
	"github.com/yourorg/multisafepay-gateway/internal/repository"
	"github.com/yourorg/multisafepay-gateway/internal/settings"
	"github.com/yourorg/multisafepay-gateway/internal/token"
)

func billingAddress() *model.OrderAddress {
	return &model.OrderAddress{
		ID:           "addr-billing",
		FirstName:    "Jan",
		LastName:     "Jansen",
		Company:      "Jansen BV",
		Street:       "Kraanspoor 39C",
		ZipCode:      "1033SC",
		City:         "Amsterdam",
		PhoneNumber:  "0201234567",
		Country:      &model.Country{ID: "c-nl", ISO: "nl"},
		CountryState: &model.CountryState{Name: "Noord-Holland", ShortCode: "NL-NH"},
	}
}

// testOrder costs 121.00: two shirts of 50.00 and 21.00 shipping, all 21% VAT
// included.
func testOrder() *model.Order {
	return &model.Order{
		ID:             "order-1",
		OrderNumber:    "10001",
		SalesChannelID: "sc1",
		LanguageID:     "lang-nl",
		CurrencyISO:    "eur",
		AmountTotal:    decimal.RequireFromString("121.00"),
		TaxStatus:      model.TaxStatusGross,
		BillingAddress: billingAddress(),
		Deliveries: []model.OrderDelivery{{
			ID:                 "delivery-1",
			ShippingMethodName: "Standard",
			ShippingCosts:      decimal.RequireFromString("21.00"),
			ShippingTaxRate:    decimal.NewFromInt(21),
		}},
		LineItems: []model.OrderLineItem{{
			ID:            "li-1",
			Type:          model.LineItemProduct,
			Label:         "Shirt",
			ProductNumber: "SW-1",
			Quantity:      2,
			UnitPrice:     decimal.RequireFromString("50.00"),
			TotalPrice:    decimal.RequireFromString("100.00"),
			TaxRate:       decimal.NewFromInt(21),
		}},
		Customer: &model.OrderCustomer{
			CustomerID:     "cust-1",
			CustomerNumber: "C-42",
			Email:          "jan@example.com",
			FirstName:      "Jan",
			LastName:       "Jansen",
		},
	}
}

func testInput(order *model.Order) builder.Input {
	tx := model.PaymentTransaction{
		OrderTransaction: model.OrderTransaction{
			ID:              "tx-1",
			OrderID:         order.ID,
			PaymentMethodID: "pm-ideal",
			State:           model.StateOpen,
		},
		Order: order,
	}
	channel := channelctx.SalesChannelContext{
		SalesChannelID: "sc1",
		LanguageID:     "lang-nl",
		CurrencyISO:    "EUR",
		CustomerID:     "cust-1",
		Request: channelctx.RequestInfo{
			IPAddress: "10.0.0.1",
			UserAgent: "test-agent",
			Referrer:  "https://shop.example/checkout",
		},
		Settings: settings.Defaults(),
	}
	return builder.NewInput(tx, map[string]string{}, channel)
}

func newOrderUtil(addresses ...model.OrderAddress) *orderutil.OrderUtil {
	return orderutil.New(
		repository.NewMemory[model.OrderAddress](nil, addresses...),
		repository.NewMemory[model.OrderTransaction](nil),
		repository.NewMemory[model.Language](nil, model.Language{ID: "lang-nl", LocaleCode: "nl-NL"}),
	)
}

func newTokens() *token.Factory {
	return token.NewFactory("test-secret", token.NewMemoryStore())
}
