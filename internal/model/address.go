package model

// Country is the address country; only the ISO code matters to the gateway.
type Country struct {
	ID  string `json:"id" db:"id"`
	ISO string `json:"iso" db:"iso"`
}

// CountryState is an optional region of a country.
type CountryState struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	ShortCode string `json:"short_code" db:"short_code"`
}

// OrderAddress is a billing or shipping address attached to an order.
type OrderAddress struct {
	ID                     string        `json:"id" db:"id"`
	OrderID                string        `json:"order_id,omitempty" db:"order_id"`
	FirstName              string        `json:"first_name" db:"first_name"`
	LastName               string        `json:"last_name" db:"last_name"`
	Company                string        `json:"company,omitempty" db:"company"`
	Street                 string        `json:"street" db:"street"`
	AdditionalAddressLine1 string        `json:"additional_address_line1,omitempty" db:"additional_address_line1"`
	AdditionalAddressLine2 string        `json:"additional_address_line2,omitempty" db:"additional_address_line2"`
	ZipCode                string        `json:"zipcode" db:"zipcode"`
	City                   string        `json:"city" db:"city"`
	PhoneNumber            string        `json:"phone_number,omitempty" db:"phone_number"`
	Country                *Country      `json:"country,omitempty"`
	CountryState           *CountryState `json:"country_state,omitempty"`
}

// EntityID implements repository.Entity.
func (a OrderAddress) EntityID() string { return a.ID }

// CountryISO returns the country code or an empty string.
func (a *OrderAddress) CountryISO() string {
	if a == nil || a.Country == nil {
		return ""
	}
	return a.Country.ISO
}
