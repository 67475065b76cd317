package checkin

import (
	"fmt"
	"time"
)

const (
	// RewardCycle is how many check-ins earn one reward.
	RewardCycle = 5
	// CooldownWindow separates two consecutive check-ins.
	CooldownWindow = 5 * time.Hour
	// MaxDailyCheckins is the contract's daily allowance.
	MaxDailyCheckins = 2
)

// Status is the consolidated read model projected from on-chain reads plus
// derived math. It is never persisted.
type Status struct {
	IsSubscribed        bool  `json:"is_subscribed"`
	SubscriptionExpiry  int64 `json:"subscription_expiry"`
	IsInCooldown        bool  `json:"is_in_cooldown"`
	LastCheckin         int64 `json:"last_checkin"`
	CooldownRemaining   int64 `json:"cooldown_remaining"`
	LifetimeCheckins    int64 `json:"lifetime_checkins"`
	CheckinsUntilReward int64 `json:"checkins_until_reward"`
	DailyCheckins       int64 `json:"daily_checkins"`
	// RemainingToday comes straight from the contract, deliberately
	// unclamped: a value outside [0,2] is a contract bug and is surfaced
	// as-is.
	RemainingToday int64 `json:"remaining_today"`
}

// CheckinsUntilNextReward derives how many check-ins remain before the next
// reward given the lifetime count. A reward lands on every 5th check-in;
// exactly on a multiple of five the current reward was just granted, so five
// more are needed.
func CheckinsUntilNextReward(lifetime int64) int64 {
	if lifetime <= 0 {
		return RewardCycle
	}
	r := (RewardCycle - lifetime%RewardCycle) % RewardCycle
	if r == 0 {
		return RewardCycle
	}
	return r
}

// HoursUntilNext converts remaining cooldown seconds to whole hours, rounded
// up.
func HoursUntilNext(remainingSeconds int64) int64 {
	if remainingSeconds <= 0 {
		return 0
	}
	return (remainingSeconds + 3599) / 3600
}

// FormatCountdown renders a cooldown for display. Sub-minute remainders read
// "<1m"; zero or negative reads "0h 0m".
func FormatCountdown(remainingSeconds int64) string {
	if remainingSeconds <= 0 {
		return "0h 0m"
	}
	h := remainingSeconds / 3600
	m := (remainingSeconds % 3600) / 60
	if h == 0 && m == 0 {
		return "<1m"
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
