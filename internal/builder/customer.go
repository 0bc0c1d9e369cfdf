package builder

import (
	"context"
	"strings"

	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
	"github.com/yourorg/multisafepay-gateway/internal/orderutil"
)

// Form data keys read by the section builders.
const (
	FormGender      = "gender"
	FormSaveToken   = "saveToken"
	FormActiveToken = "active_token"
	FormIssuer      = "issuer"
)

// AddressResolver finds the addresses of an order.
type AddressResolver interface {
	BillingAddress(ctx context.Context, order *model.Order, transactionID string) (*model.OrderAddress, error)
	ShippingAddress(ctx context.Context, order *model.Order, transactionID string) (*model.OrderAddress, error)
	Locale(ctx context.Context, languageID string) string
}

// CustomerBuilder writes the customer section from the billing address.
type CustomerBuilder struct {
	addresses AddressResolver
}

func NewCustomerBuilder(addresses AddressResolver) *CustomerBuilder {
	if addresses == nil {
		panic("address resolver cannot be nil")
	}
	return &CustomerBuilder{addresses: addresses}
}

func (b *CustomerBuilder) Build(ctx context.Context, req *multisafepay.OrderRequest, in Input) error {
	billing, err := b.addresses.BillingAddress(ctx, in.Order, in.TransactionID())
	if err != nil {
		return err
	}
	customer, err := customerFromAddress(billing)
	if err != nil {
		return err
	}

	customer.Locale = b.addresses.Locale(ctx, in.Order.LanguageID)
	customer.IPAddress = in.Channel.Request.IPAddress
	customer.ForwardedIP = in.Channel.Request.ForwardedIP
	customer.UserAgent = in.Channel.Request.UserAgent
	customer.Referrer = in.Channel.Request.Referrer
	customer.Gender = in.FormValue(FormGender)

	if oc := in.Order.Customer; oc != nil {
		customer.Email = oc.Email
		customer.Reference = oc.CustomerNumber
		if customer.FirstName == "" {
			customer.FirstName = oc.FirstName
			customer.LastName = oc.LastName
		}
		if customer.Company == "" {
			customer.Company = oc.Company
		}
	}
	if customer.Reference == "" {
		customer.Reference = in.Channel.CustomerID
	}

	req.AddCustomer(customer)
	return nil
}

// DeliveryBuilder writes the delivery section from the shipping address, falling
// back to the billing address. Orders without any address get no delivery section.
type DeliveryBuilder struct {
	addresses AddressResolver
}

func NewDeliveryBuilder(addresses AddressResolver) *DeliveryBuilder {
	if addresses == nil {
		panic("address resolver cannot be nil")
	}
	return &DeliveryBuilder{addresses: addresses}
}

func (b *DeliveryBuilder) Build(ctx context.Context, req *multisafepay.OrderRequest, in Input) error {
	shipping, err := b.addresses.ShippingAddress(ctx, in.Order, in.TransactionID())
	if err != nil {
		return err
	}
	if shipping == nil {
		return nil
	}
	delivery, err := customerFromAddress(shipping)
	if err != nil {
		return err
	}
	if oc := in.Order.Customer; oc != nil {
		delivery.Email = oc.Email
	}
	req.AddDelivery(delivery)
	return nil
}

// customerFromAddress maps the postal and contact fields of an address. A missing
// address fails the country check like an address without country.
func customerFromAddress(address *model.OrderAddress) (multisafepay.Customer, error) {
	var c multisafepay.Customer
	if err := c.AddCountryCode(address.CountryISO()); err != nil {
		return c, err
	}

	additional := strings.TrimSpace(address.AdditionalAddressLine1 + " " + address.AdditionalAddressLine2)
	c.Street, c.HouseNumber = orderutil.ParseStreet(address.Street, "")
	if c.HouseNumber == "" && address.AdditionalAddressLine1 != "" {
		// Some shops keep the house number in the first additional line.
		c.Street, c.HouseNumber = orderutil.ParseStreet(address.Street, address.AdditionalAddressLine1)
		additional = strings.TrimSpace(address.AdditionalAddressLine2)
	}
	c.Additional = additional
	c.ZipCode = address.ZipCode
	c.City = address.City
	c.AddState(orderutil.State(address))

	c.FirstName = address.FirstName
	c.LastName = address.LastName
	c.Company = address.Company
	c.Phone = address.PhoneNumber
	return c, nil
}
