package wallet

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HabitChainLabs/HabitChainBackend/pkg/xzap"
)

// NativeCurrency describes the chain's native unit for the add-chain prompt.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ChainParams carries everything the add-chain path needs.
type ChainParams struct {
	ID          int64
	Name        string
	Currency    NativeCurrency
	RPCURLs     []string
	ExplorerURL string
}

// ChainState is the guard's observable state.
type ChainState int

const (
	ChainStateUnknown ChainState = iota
	ChainStateCorrect
	ChainStateWrong
	ChainStateSwitching
)

func (s ChainState) String() string {
	switch s {
	case ChainStateCorrect:
		return "correct"
	case ChainStateWrong:
		return "wrong"
	case ChainStateSwitching:
		return "switching"
	default:
		return "unknown"
	}
}

const (
	defaultPollInterval  = 500 * time.Millisecond
	defaultSwitchTimeout = 20 * time.Second
	defaultHealDelay     = 2 * time.Second
)

// ChainGuard tracks the active chain of the connected wallet and drives the
// idempotent switch-or-add-chain protocol against the resolved provider.
type ChainGuard struct {
	params   ChainParams
	registry *Registry

	mu          sync.Mutex
	current     int64 // 0 = unknown
	switching   bool
	healPending bool

	// knobs, overridable in tests
	PollInterval  time.Duration
	SwitchTimeout time.Duration
	HealDelay     time.Duration
}

func NewChainGuard(params ChainParams, registry *Registry) *ChainGuard {
	return &ChainGuard{
		params:        params,
		registry:      registry,
		PollInterval:  defaultPollInterval,
		SwitchTimeout: defaultSwitchTimeout,
		HealDelay:     defaultHealDelay,
	}
}

// TargetChainID returns the chain this guard converges to.
func (g *ChainGuard) TargetChainID() int64 {
	return g.params.ID
}

// CurrentChainID returns the last observed chain id, 0 when unknown.
func (g *ChainGuard) CurrentChainID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// IsOnCorrectChain reports whether the last observed chain matches the target.
func (g *ChainGuard) IsOnCorrectChain() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current == g.params.ID
}

// State derives the guard's state machine position.
func (g *ChainGuard) State() ChainState {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case g.switching:
		return ChainStateSwitching
	case g.current == 0:
		return ChainStateUnknown
	case g.current == g.params.ID:
		return ChainStateCorrect
	default:
		return ChainStateWrong
	}
}

// ObserveChainChanged feeds a wallet-originated chainChanged event into the
// guard. When the wallet lands on the wrong chain while connected, a single
// auto-heal attempt is scheduled after a short delay so connection state can
// settle without a prompt storm.
func (g *ChainGuard) ObserveChainChanged(ctx context.Context, chainID int64) {
	connected := g.registry.Connected()
	g.mu.Lock()
	g.current = chainID
	wrong := chainID != g.params.ID
	schedule := wrong && connected && !g.healPending && !g.switching
	if schedule {
		g.healPending = true
	}
	g.mu.Unlock()

	if !schedule {
		return
	}

	xzap.WithContext(ctx).Info("wrong chain detected, scheduling auto switch",
		zap.Int64("current", chainID),
		zap.Int64("target", g.params.ID))
	time.AfterFunc(g.HealDelay, func() {
		defer func() {
			g.mu.Lock()
			g.healPending = false
			g.mu.Unlock()
		}()
		g.EnsureCorrectChain(context.Background())
	})
}

// EnsureCorrectChain verifies the wallet chain and, when it differs from the
// target, drives one switch attempt. Returns true when the wallet is on the
// target chain afterwards. Calling it while already on the correct chain is
// a no-op and issues no wallet prompt. A false return is retryable, not
// fatal: the user may have cancelled or the host may simply be slow.
func (g *ChainGuard) EnsureCorrectChain(ctx context.Context) bool {
	logger := xzap.WithContext(ctx)

	provider := g.registry.ActiveProvider(ctx)
	if provider == nil {
		logger.Warn("cannot verify chain, wallet provider not resolvable")
		return false
	}

	if id, err := g.readChainID(ctx, provider); err == nil {
		g.setCurrent(id)
		if id == g.params.ID {
			return true
		}
	} else {
		logger.Debug("chain id read failed before switch", zap.Error(err))
	}

	g.mu.Lock()
	if g.switching {
		// a switch round trip is already outstanding
		g.mu.Unlock()
		return false
	}
	g.switching = true
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.switching = false
		g.mu.Unlock()
	}()

	if err := g.requestSwitch(ctx, provider); err != nil {
		switch {
		case IsUnrecognizedChain(err):
			// the wallet has never seen this chain: add it, then retry once
			if addErr := g.requestAddChain(ctx, provider); addErr != nil {
				logger.Info("add chain request failed", zap.Error(addErr))
				return false
			}
			if retryErr := g.requestSwitch(ctx, provider); retryErr != nil && IsUserRejected(retryErr) {
				logger.Info("chain switch rejected by user after add")
				return false
			}
		case IsUserRejected(err):
			logger.Info("chain switch rejected by user")
			return false
		default:
			// some hosts error yet still switch; fall through to confirmation
			logger.Warn("chain switch request errored, waiting for confirmation anyway",
				zap.Error(err))
		}
	}

	if !awaitChain(ctx, provider, g.params.ID, g.PollInterval, g.SwitchTimeout, g.readChainID) {
		logger.Warn("chain switch not confirmed before timeout",
			zap.Int64("target", g.params.ID),
			zap.Duration("timeout", g.SwitchTimeout))
		return false
	}

	g.setCurrent(g.params.ID)
	logger.Info("chain switch confirmed", zap.Int64("chain_id", g.params.ID))
	return true
}

func (g *ChainGuard) setCurrent(id int64) {
	g.mu.Lock()
	g.current = id
	g.mu.Unlock()
}

func (g *ChainGuard) readChainID(ctx context.Context, p Provider) (int64, error) {
	return ReadChainID(ctx, p)
}

func (g *ChainGuard) requestSwitch(ctx context.Context, p Provider) error {
	_, err := p.Request(ctx, "wallet_switchEthereumChain", map[string]interface{}{
		"chainId": HexChainID(g.params.ID),
	})
	return err
}

func (g *ChainGuard) requestAddChain(ctx context.Context, p Provider) error {
	_, err := p.Request(ctx, "wallet_addEthereumChain", map[string]interface{}{
		"chainId":   HexChainID(g.params.ID),
		"chainName": g.params.Name,
		"nativeCurrency": map[string]interface{}{
			"name":     g.params.Currency.Name,
			"symbol":   g.params.Currency.Symbol,
			"decimals": g.params.Currency.Decimals,
		},
		"rpcUrls":           g.params.RPCURLs,
		"blockExplorerUrls": []string{g.params.ExplorerURL},
	})
	return err
}
