package wallet

import (
	"context"
	"time"
)

// awaitChain blocks until the provider reports the wanted chain id, the
// timeout elapses, or ctx is cancelled. Confirmation is raced between the
// provider's chainChanged event (when available) and short-interval polling,
// because some hosts do not fire the event reliably; whichever confirms
// first wins. Event subscription, ticker and timer are all released on every
// exit path.
func awaitChain(ctx context.Context, p Provider, want int64, poll, timeout time.Duration,
	read func(context.Context, Provider) (int64, error)) bool {

	confirmed := make(chan struct{}, 1)
	if ep, ok := p.(ChainEventProvider); ok {
		unsubscribe := ep.SubscribeChainChanged(func(chainID int64) {
			if chainID == want {
				select {
				case confirmed <- struct{}{}:
				default:
				}
			}
		})
		defer unsubscribe()
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-confirmed:
			return true
		case <-timer.C:
			return false
		case <-ticker.C:
			if id, err := read(ctx, p); err == nil && id == want {
				return true
			}
		}
	}
}
