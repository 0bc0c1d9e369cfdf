// Package event dispatches the filter event that lets listeners adjust an order
// request after it has been built and before it is sent.
package event

import (
	"context"
	"fmt"
	"sync"

	channelctx "github.com/yourorg/multisafepay-gateway/internal/context"
	"github.com/yourorg/multisafepay-gateway/internal/logger"
	"github.com/yourorg/multisafepay-gateway/internal/model"
	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
)

// FilterOrderRequestEvent carries the request listeners may mutate in place.
type FilterOrderRequestEvent struct {
	Request *multisafepay.OrderRequest
	Channel channelctx.SalesChannelContext
	Order   *model.Order
}

// Listener handles a FilterOrderRequestEvent.
type Listener func(ctx context.Context, evt *FilterOrderRequestEvent) error

// Dispatcher calls listeners in subscription order.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Subscribe(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Dispatch stops at the first listener error.
func (d *Dispatcher) Dispatch(ctx context.Context, evt *FilterOrderRequestEvent) error {
	d.mu.RLock()
	listeners := append([]Listener(nil), d.listeners...)
	d.mu.RUnlock()

	for i, l := range listeners {
		if err := l(ctx, evt); err != nil {
			return fmt.Errorf("order request listener %d: %w", i, err)
		}
	}
	return nil
}

// DebugListener logs the built request sections for channels in debug mode.
func DebugListener(ctx context.Context, evt *FilterOrderRequestEvent) error {
	if !evt.Channel.Settings.DebugMode || evt.Request == nil {
		return nil
	}
	logger.FromContext(ctx).Info().
		Str("order_id", evt.Request.OrderID).
		Str("gateway", evt.Request.Gateway).
		Strs("sections", evt.Request.Sections()).
		Msg("MultiSafepay order request built")
	return nil
}
