package context

import (
	"github.com/yourorg/multisafepay-gateway/internal/settings"
)

// RequestInfo is what the storefront knows about the shopper's HTTP request.
type RequestInfo struct {
	IPAddress   string `json:"ip_address,omitempty"`
	ForwardedIP string `json:"forwarded_ip,omitempty"`
	UserAgent   string `json:"user_agent,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
}

// SalesChannelContext carries the storefront state a checkout attempt runs in.
type SalesChannelContext struct {
	Trace          TraceContext
	SalesChannelID string
	LanguageID     string
	CurrencyISO    string
	CustomerID     string
	Guest          bool
	Request        RequestInfo
	Settings       settings.Settings
}

// IsGuest reports whether the shopper checks out without an account.
func (c SalesChannelContext) IsGuest() bool {
	return c.Guest || c.CustomerID == ""
}
