package wallet

import (
	"context"

	"go.uber.org/zap"

	"github.com/HabitChainLabs/HabitChainBackend/pkg/xzap"
)

// ResolveProvider resolves a connector to a usable EIP-1193 provider. The
// lookup is best-effort and side-effect free; the result is not cached
// because the host may replace the underlying object between calls.
//
// Resolution order, first success wins:
//  1. the connector's async provider accessor
//  2. the host-injected global wallet object
//  3. the connector's already-materialized provider field
//
// nil means "wallet not ready", not a fault.
func (r *Registry) ResolveProvider(ctx context.Context, conn *Connector) Provider {
	if conn == nil {
		return nil
	}
	logger := xzap.WithContext(ctx)

	if conn.GetProvider != nil {
		raw, err := conn.GetProvider(ctx)
		if err == nil {
			if p, cap := Detect(raw); cap == CapabilityEip1193 {
				return p
			} else if cap == CapabilityIncompatible {
				logger.Debug("connector accessor returned incompatible object",
					zap.String("connector", conn.ID))
			}
		} else {
			logger.Debug("connector provider accessor failed",
				zap.String("connector", conn.ID),
				zap.Error(err))
		}
	}

	if r.injected != nil {
		if p, cap := Detect(r.injected()); cap == CapabilityEip1193 {
			return p
		} else if cap == CapabilityIncompatible {
			logger.Debug("injected wallet object is incompatible")
		}
	}

	if p, cap := Detect(conn.RawProvider); cap == CapabilityEip1193 {
		return p
	} else if cap == CapabilityIncompatible {
		logger.Debug("connector raw provider is incompatible",
			zap.String("connector", conn.ID))
	}

	return nil
}

// ActiveProvider resolves the provider of the currently connected connector.
func (r *Registry) ActiveProvider(ctx context.Context) Provider {
	conn, _ := r.Active()
	return r.ResolveProvider(ctx, conn)
}
