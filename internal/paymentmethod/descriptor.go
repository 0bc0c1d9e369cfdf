// Package paymentmethod is the data table of MultiSafepay payment methods offered to
// the storefront, and the installer that registers them as platform entities.
package paymentmethod

import (
	"sort"
	"strings"

	"github.com/yourorg/multisafepay-gateway/internal/settings"
)

// Gateway identifies a payment method. Values are stable and used in URLs and
// settings keys.
type Gateway string

// Type is the MultiSafepay order type used for a gateway.
type Type string

const (
	TypeRedirect Type = "redirect"
	TypeDirect   Type = "direct"
)

// HandlerPrefix prefixes every handler identifier owned by this service.
const HandlerPrefix = "multisafepay.handler."

// Descriptor is the immutable description of one payment method.
type Descriptor struct {
	ID             Gateway `json:"id"`
	Name           string  `json:"name"`
	GatewayCode    string  `json:"gateway_code,omitempty"`
	Template       string  `json:"template,omitempty"`
	Media          string  `json:"media,omitempty"`
	Type           Type    `json:"type"`
	RequiresGender bool    `json:"requires_gender,omitempty"`
	HasIssuers     bool    `json:"has_issuers,omitempty"`
	Recurring      bool    `json:"recurring,omitempty"`
	Generic        bool    `json:"generic,omitempty"`
}

// HandlerIdentifier is the platform handler id the descriptor is installed under.
func (d Descriptor) HandlerIdentifier() string {
	return HandlerPrefix + string(d.ID)
}

// ResolveGatewayCode returns the code sent to MultiSafepay. Generic gateways read
// theirs from the channel settings and may resolve to "".
func (d Descriptor) ResolveGatewayCode(cfg settings.Settings) string {
	if d.Generic {
		return cfg.GenericGatewayCode(string(d.ID))
	}
	return d.GatewayCode
}

// Registry is a static lookup over descriptors.
type Registry struct {
	byHandler map[string]Descriptor
	byGateway map[Gateway]Descriptor
	ordered   []Descriptor
}

// NewRegistry indexes the given descriptors. Later duplicates replace earlier ones.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{
		byHandler: make(map[string]Descriptor, len(descriptors)),
		byGateway: make(map[Gateway]Descriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		if _, exists := r.byGateway[d.ID]; !exists {
			r.ordered = append(r.ordered, d)
		} else {
			for i := range r.ordered {
				if r.ordered[i].ID == d.ID {
					r.ordered[i] = d
				}
			}
		}
		r.byGateway[d.ID] = d
		r.byHandler[d.HandlerIdentifier()] = d
	}
	return r
}

// DefaultRegistry returns the registry over the built-in table.
func DefaultRegistry() *Registry {
	return NewRegistry(Descriptors()...)
}

// ByHandler looks a descriptor up by handler identifier.
func (r *Registry) ByHandler(handlerIdentifier string) (Descriptor, bool) {
	d, ok := r.byHandler[handlerIdentifier]
	return d, ok
}

// ByGateway looks a descriptor up by gateway id, case-insensitively.
func (r *Registry) ByGateway(id Gateway) (Descriptor, bool) {
	d, ok := r.byGateway[Gateway(strings.ToLower(string(id)))]
	return d, ok
}

// All returns the descriptors in registration order.
func (r *Registry) All() []Descriptor {
	return append([]Descriptor(nil), r.ordered...)
}

// Gateways returns the registered gateway ids, sorted.
func (r *Registry) Gateways() []Gateway {
	out := make([]Gateway, 0, len(r.byGateway))
	for id := range r.byGateway {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
