package multisafepay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Order types.
const (
	TypeRedirect    = "redirect"
	TypeDirect      = "direct"
	TypePaymentLink = "paymentlink"
)

// RecurringModelCardOnFile stores the card for later shopper-initiated payments.
const RecurringModelCardOnFile = "cardOnFile"

// Money is an amount in minor units.
type Money struct {
	Amount   int64
	Currency string
}

// NewMoney converts a major-unit amount into cents, rounding half away from zero.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{
		Amount:   amount.Shift(2).Round(0).IntPart(),
		Currency: strings.ToUpper(currency),
	}
}

// Customer is the customer or delivery section.
type Customer struct {
	Address
	Locale      string `json:"locale,omitempty"`
	IPAddress   string `json:"ip_address,omitempty"`
	ForwardedIP string `json:"forwarded_ip,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Company     string `json:"company_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
	UserAgent   string `json:"user_agent,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

// GatewayInfo carries gateway specific fields such as the selected issuer.
type GatewayInfo struct {
	IssuerID string `json:"issuer_id,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Birthday string `json:"birthday,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// IsEmpty reports whether no field is set.
func (g GatewayInfo) IsEmpty() bool { return g == GatewayInfo{} }

type PaymentOptions struct {
	NotificationURL    string `json:"notification_url,omitempty"`
	NotificationMethod string `json:"notification_method,omitempty"`
	RedirectURL        string `json:"redirect_url,omitempty"`
	CancelURL          string `json:"cancel_url,omitempty"`
	CloseWindow        bool   `json:"close_window"`
}

type PluginDetails struct {
	Shop          string `json:"shop,omitempty"`
	ShopVersion   string `json:"shop_version,omitempty"`
	PluginVersion string `json:"plugin_version,omitempty"`
	ShopRootURL   string `json:"shop_root_url,omitempty"`
	Partner       string `json:"partner,omitempty"`
}

type GoogleAnalytics struct {
	Account string `json:"account"`
}

type SecondChance struct {
	SendEmail bool `json:"send_email"`
}

// Weight of a cart item.
type Weight struct {
	Unit  string          `json:"unit"`
	Value decimal.Decimal `json:"value"`
}

// Item is a shopping cart line. UnitPrice is in major units, excluding tax.
type Item struct {
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Quantity         int             `json:"quantity"`
	MerchantItemID   string          `json:"merchant_item_id"`
	TaxTableSelector string          `json:"tax_table_selector"`
	Weight           *Weight         `json:"weight,omitempty"`
}

// MarshalJSON writes money and weights as JSON numbers.
func (i Item) MarshalJSON() ([]byte, error) {
	type wire struct {
		Name             string      `json:"name"`
		Description      string      `json:"description,omitempty"`
		UnitPrice        json.Number `json:"unit_price"`
		Quantity         int         `json:"quantity"`
		MerchantItemID   string      `json:"merchant_item_id"`
		TaxTableSelector string      `json:"tax_table_selector"`
		Weight           *struct {
			Unit  string      `json:"unit"`
			Value json.Number `json:"value"`
		} `json:"weight,omitempty"`
	}
	w := wire{
		Name:             i.Name,
		Description:      i.Description,
		UnitPrice:        json.Number(i.UnitPrice.String()),
		Quantity:         i.Quantity,
		MerchantItemID:   i.MerchantItemID,
		TaxTableSelector: i.TaxTableSelector,
	}
	if i.Weight != nil {
		w.Weight = &struct {
			Unit  string      `json:"unit"`
			Value json.Number `json:"value"`
		}{Unit: i.Weight.Unit, Value: json.Number(i.Weight.Value.String())}
	}
	return json.Marshal(w)
}

type ShoppingCart struct {
	Items []Item `json:"items"`
}

// TaxRule is one rate inside a tax table.
type TaxRule struct {
	Rate json.Number `json:"rate"`
}

type TaxTable struct {
	Name  string    `json:"name"`
	Rules []TaxRule `json:"rules"`
}

type CheckoutOptions struct {
	TaxTables struct {
		Alternate []TaxTable `json:"alternate"`
	} `json:"tax_tables"`
}

// NewCheckoutOptions builds alternate tax tables named after their selector. Rates are
// percentages and are written as fractions.
func NewCheckoutOptions(ratesBySelector map[string]decimal.Decimal, selectors []string) *CheckoutOptions {
	opts := &CheckoutOptions{}
	for _, selector := range selectors {
		rate := ratesBySelector[selector].Div(decimal.NewFromInt(100))
		opts.TaxTables.Alternate = append(opts.TaxTables.Alternate, TaxTable{
			Name:  selector,
			Rules: []TaxRule{{Rate: json.Number(rate.String())}},
		})
	}
	return opts
}

// OrderRequest accumulates the sections of a MultiSafepay order. Every section is
// written at most once; repeated writes are recorded and reported by Validate.
type OrderRequest struct {
	Type            string           `json:"type"`
	OrderID         string           `json:"order_id"`
	Gateway         string           `json:"gateway,omitempty"`
	Currency        string           `json:"currency"`
	Amount          int64            `json:"amount"`
	Description     string           `json:"description,omitempty"`
	GatewayInfo     *GatewayInfo     `json:"gateway_info,omitempty"`
	Customer        *Customer        `json:"customer,omitempty"`
	Delivery        *Customer        `json:"delivery,omitempty"`
	PaymentOptions  *PaymentOptions  `json:"payment_options,omitempty"`
	Plugin          *PluginDetails   `json:"plugin,omitempty"`
	RecurringModel  string           `json:"recurring_model,omitempty"`
	RecurringID     string           `json:"recurring_id,omitempty"`
	ShoppingCart    *ShoppingCart    `json:"shopping_cart,omitempty"`
	CheckoutOptions *CheckoutOptions `json:"checkout_options,omitempty"`
	SecondsActive   int              `json:"seconds_active,omitempty"`
	GoogleAnalytics *GoogleAnalytics `json:"google_analytics,omitempty"`
	SecondChance    *SecondChance    `json:"second_chance,omitempty"`

	written map[string]bool
	errs    []error
}

// NewOrderRequest returns an empty request.
func NewOrderRequest() *OrderRequest {
	return &OrderRequest{written: make(map[string]bool)}
}

// Sections returns the names of the sections written so far.
func (r *OrderRequest) Sections() []string {
	var out []string
	for _, name := range sectionOrder {
		if r.written[name] {
			out = append(out, name)
		}
	}
	return out
}

// Has reports whether a section was written.
func (r *OrderRequest) Has(section string) bool { return r.written[section] }

// Section names as reported by Sections.
const (
	SectionType            = "type"
	SectionOrderID         = "order_id"
	SectionMoney           = "money"
	SectionGateway         = "gateway"
	SectionGatewayInfo     = "gateway_info"
	SectionCustomer        = "customer"
	SectionDelivery        = "delivery"
	SectionDescription     = "description"
	SectionPaymentOptions  = "payment_options"
	SectionPlugin          = "plugin"
	SectionRecurringModel  = "recurring_model"
	SectionRecurringID     = "recurring_id"
	SectionShoppingCart    = "shopping_cart"
	SectionCheckoutOptions = "checkout_options"
	SectionSecondsActive   = "seconds_active"
	SectionGoogleAnalytics = "google_analytics"
	SectionSecondChance    = "second_chance"
)

var sectionOrder = []string{
	SectionType, SectionOrderID, SectionMoney, SectionGateway, SectionGatewayInfo,
	SectionCustomer, SectionDelivery, SectionDescription, SectionPaymentOptions,
	SectionPlugin, SectionRecurringModel, SectionRecurringID, SectionShoppingCart,
	SectionCheckoutOptions, SectionSecondsActive, SectionGoogleAnalytics, SectionSecondChance,
}

func (r *OrderRequest) write(section string) *OrderRequest {
	if r.written == nil {
		r.written = make(map[string]bool)
	}
	if r.written[section] {
		r.errs = append(r.errs, fmt.Errorf("section %q written more than once", section))
	}
	r.written[section] = true
	return r
}

func (r *OrderRequest) AddType(t string) *OrderRequest {
	r.write(SectionType).Type = t
	return r
}

func (r *OrderRequest) AddOrderID(id string) *OrderRequest {
	r.write(SectionOrderID).OrderID = id
	return r
}

func (r *OrderRequest) AddMoney(m Money) *OrderRequest {
	r.write(SectionMoney)
	r.Amount = m.Amount
	r.Currency = m.Currency
	return r
}

func (r *OrderRequest) AddGatewayCode(code string) *OrderRequest {
	r.write(SectionGateway).Gateway = code
	return r
}

func (r *OrderRequest) AddGatewayInfo(info GatewayInfo) *OrderRequest {
	r.write(SectionGatewayInfo).GatewayInfo = &info
	return r
}

func (r *OrderRequest) AddCustomer(c Customer) *OrderRequest {
	r.write(SectionCustomer).Customer = &c
	return r
}

func (r *OrderRequest) AddDelivery(d Customer) *OrderRequest {
	r.write(SectionDelivery).Delivery = &d
	return r
}

func (r *OrderRequest) AddDescriptionText(text string) *OrderRequest {
	r.write(SectionDescription).Description = text
	return r
}

func (r *OrderRequest) AddPaymentOptions(o PaymentOptions) *OrderRequest {
	r.write(SectionPaymentOptions).PaymentOptions = &o
	return r
}

func (r *OrderRequest) AddPluginDetails(p PluginDetails) *OrderRequest {
	r.write(SectionPlugin).Plugin = &p
	return r
}

func (r *OrderRequest) AddRecurringModel(model string) *OrderRequest {
	r.write(SectionRecurringModel).RecurringModel = model
	return r
}

func (r *OrderRequest) AddRecurringID(id string) *OrderRequest {
	r.write(SectionRecurringID).RecurringID = id
	return r
}

func (r *OrderRequest) AddShoppingCart(cart ShoppingCart) *OrderRequest {
	r.write(SectionShoppingCart).ShoppingCart = &cart
	return r
}

func (r *OrderRequest) AddCheckoutOptions(o *CheckoutOptions) *OrderRequest {
	r.write(SectionCheckoutOptions).CheckoutOptions = o
	return r
}

func (r *OrderRequest) AddSecondsActive(seconds int) *OrderRequest {
	r.write(SectionSecondsActive).SecondsActive = seconds
	return r
}

func (r *OrderRequest) AddGoogleAnalytics(g GoogleAnalytics) *OrderRequest {
	r.write(SectionGoogleAnalytics).GoogleAnalytics = &g
	return r
}

func (r *OrderRequest) AddSecondChance(s SecondChance) *OrderRequest {
	r.write(SectionSecondChance).SecondChance = &s
	return r
}

// Validate reports repeated section writes and missing mandatory fields.
func (r *OrderRequest) Validate() error {
	errs := append([]error(nil), r.errs...)
	if r.Type == "" {
		errs = append(errs, invalidArgument("order type is required"))
	}
	if r.OrderID == "" {
		errs = append(errs, invalidArgument("order id is required"))
	}
	if len(r.Currency) != 3 {
		errs = append(errs, invalidArgument("currency should be 3 characters (ISO4217)"))
	}
	return errors.Join(errs...)
}
