package builder

import (
	"github.com/yourorg/multisafepay-gateway/internal/builder/cartitem"
)

// DefaultBuilders returns the section builders in the order they run for every
// attempt.
func DefaultBuilders(addresses AddressResolver, tokens TokenRotator, shopRootURL string) []SectionBuilder {
	return []SectionBuilder{
		NewCustomerBuilder(addresses),
		NewDeliveryBuilder(addresses),
		DescriptionBuilder{},
		NewPaymentOptionsBuilder(tokens, shopRootURL),
		PluginDetailsBuilder{},
		RecurringBuilder{},
		NewShoppingCartBuilder(cartitem.Defaults()...),
		SecondsActiveBuilder{},
		GoogleAnalyticsBuilder{},
		SecondChanceBuilder{},
	}
}
