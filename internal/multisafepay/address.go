package multisafepay

import "strings"

const countryCodeMessage = "Country code should be 2 characters (ISO3166 alpha 2)"

// Address is the postal part of a customer or delivery section.
type Address struct {
	Street      string `json:"address1,omitempty"`
	Additional  string `json:"address2,omitempty"`
	HouseNumber string `json:"house_number,omitempty"`
	ZipCode     string `json:"zip_code,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
}

// AddCountryCode sets the ISO 3166 alpha-2 country, upper-cased.
func (a *Address) AddCountryCode(code string) error {
	code = strings.TrimSpace(code)
	if len(code) != 2 {
		return invalidArgument(countryCodeMessage)
	}
	a.Country = strings.ToUpper(code)
	return nil
}

// AddState sets the state; empty values leave the field absent.
func (a *Address) AddState(state string) {
	if state = strings.TrimSpace(state); state != "" {
		a.State = state
	}
}
