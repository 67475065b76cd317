package checkin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/kv"
	"go.uber.org/zap"

	"github.com/HabitChainLabs/HabitChainBackend/pkg/xzap"
)

// Capabilities records which optional ledger functions the deployed contract
// actually has. Older deployments miss the lifetime counters.
type Capabilities struct {
	HasCheckinCount        bool `json:"has_checkin_count"`
	HasCheckinsUntilReward bool `json:"has_checkins_until_reward"`
}

const capabilityCacheTTL = 24 * 60 * 60 // seconds

func capabilityCacheKey(contract string) string {
	return fmt.Sprintf("habit:ledger:caps:%s", contract)
}

// probeCapabilities issues the optional calls once and tags the deployment.
// A rejecting call means the function is absent, not a fault.
func probeCapabilities(ctx context.Context, reader Reader, addr string) Capabilities {
	var caps Capabilities
	if _, err := reader.GetCheckinCount(ctx, addr); err == nil {
		caps.HasCheckinCount = true
	}
	if _, err := reader.GetCheckinsUntilReward(ctx, addr); err == nil {
		caps.HasCheckinsUntilReward = true
	}
	return caps
}

// loadCachedCapabilities returns the cached probe result, or nil when the
// cache misses or is unavailable.
func loadCachedCapabilities(ctx context.Context, store kv.Store, contract string) *Capabilities {
	if store == nil {
		return nil
	}
	raw, err := store.Get(capabilityCacheKey(contract))
	if err != nil || raw == "" {
		return nil
	}
	var caps Capabilities
	if err := json.Unmarshal([]byte(raw), &caps); err != nil {
		xzap.WithContext(ctx).Warn("failed on decode cached ledger capabilities",
			zap.Error(err))
		return nil
	}
	return &caps
}

func cacheCapabilities(ctx context.Context, store kv.Store, contract string, caps Capabilities) {
	if store == nil {
		return
	}
	raw, err := json.Marshal(caps)
	if err != nil {
		return
	}
	if err := store.Setex(capabilityCacheKey(contract), string(raw), capabilityCacheTTL); err != nil {
		xzap.WithContext(ctx).Warn("failed on cache ledger capabilities",
			zap.Error(err))
	}
}
