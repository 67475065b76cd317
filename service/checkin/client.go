package checkin

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/mr"
	"github.com/zeromicro/go-zero/core/stores/kv"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"

	"github.com/HabitChainLabs/HabitChainBackend/pkg/xzap"
	"github.com/HabitChainLabs/HabitChainBackend/wallet"
)

// FeeNativeAmount is the exact fee attached to a paid check-in, in the
// chain's native unit.
const FeeNativeAmount = "0.1"

const (
	defaultStatusPollInterval  = 30 * time.Second
	defaultReceiptPollInterval = 2 * time.Second
	defaultReceiptTimeout      = 2 * time.Minute
	defaultSettleDelay         = 2 * time.Second
	defaultLagRefetchDelay     = 8 * time.Second
)

var (
	ErrChainMismatch      = errors.New("wallet is on the wrong chain, switch to the target chain manually")
	ErrUserRejected       = errors.New("transaction rejected by user")
	ErrSubmissionReverted = errors.New("checkin transaction reverted")
	ErrReceiptTimeout     = errors.New("timed out waiting for transaction confirmation")
)

// SubmissionStatus tracks an in-flight check-in write.
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionConfirmed SubmissionStatus = "confirmed"
	SubmissionFailed    SubmissionStatus = "failed"
)

// Submission is the transient record of one check-in write. It is discarded
// once confirmed and refetched, or surfaced once failed; never retried
// automatically.
type Submission struct {
	ID          string           `json:"id"`
	IPFSHash    string           `json:"ipfs_hash"`
	RequiresFee bool             `json:"requires_fee"`
	Status      SubmissionStatus `json:"status"`
	TxHash      string           `json:"tx_hash,omitempty"`
}

// HintFunc supplies the fallback lifetime count (e.g. the locally tracked
// history length) used when the deployed contract misses getCheckinCount.
type HintFunc func(ctx context.Context, addr string) int64

// Client is the payment/reward hook against the habit ledger: it projects
// the consolidated status view, runs the polling loops, and drives the
// check-in submission pipeline.
type Client struct {
	contract string
	chain    wallet.ChainParams
	ledger   Ledger
	registry *wallet.Registry
	guard    *wallet.ChainGuard
	store    kv.Store
	hint     HintFunc

	gen        atomic.Uint64
	mu         sync.Mutex
	status     *Status
	appliedGen uint64
	caps       *Capabilities
	countdown  int64

	// knobs, overridable in tests
	StatusPollInterval  time.Duration
	ReceiptPollInterval time.Duration
	ReceiptTimeout      time.Duration
	SettleDelay         time.Duration
	LagRefetchDelay     time.Duration
}

// NewClient wires the ledger client. store and hint may be nil.
func NewClient(contract string, chain wallet.ChainParams, ledger Ledger,
	registry *wallet.Registry, guard *wallet.ChainGuard, store kv.Store, hint HintFunc) *Client {
	return &Client{
		contract:            contract,
		chain:               chain,
		ledger:              ledger,
		registry:            registry,
		guard:               guard,
		store:               store,
		hint:                hint,
		StatusPollInterval:  defaultStatusPollInterval,
		ReceiptPollInterval: defaultReceiptPollInterval,
		ReceiptTimeout:      defaultReceiptTimeout,
		SettleDelay:         defaultSettleDelay,
		LagRefetchDelay:     defaultLagRefetchDelay,
	}
}

// FeeWei converts the native fee amount to wei.
func FeeWei() *big.Int {
	return decimal.RequireFromString(FeeNativeAmount).Shift(18).BigInt()
}

// capabilities returns the session capability view, probing the contract
// once and caching the result.
func (c *Client) capabilities(ctx context.Context, addr string) Capabilities {
	c.mu.Lock()
	if c.caps != nil {
		caps := *c.caps
		c.mu.Unlock()
		return caps
	}
	c.mu.Unlock()

	caps := loadCachedCapabilities(ctx, c.store, c.contract)
	if caps == nil {
		probed := probeCapabilities(ctx, c.ledger, addr)
		caps = &probed
		cacheCapabilities(ctx, c.store, c.contract, probed)
		xzap.WithContext(ctx).Info("ledger capabilities probed",
			zap.Bool("checkin_count", probed.HasCheckinCount),
			zap.Bool("checkins_until_reward", probed.HasCheckinsUntilReward))
	}

	c.mu.Lock()
	c.caps = caps
	result := *c.caps
	c.mu.Unlock()
	return result
}

// RefreshCapabilities drops the cached probe and re-checks the contract.
// Once a probe observes the optional functions present, the contract values
// win over the local hint.
func (c *Client) RefreshCapabilities(ctx context.Context, addr string) Capabilities {
	probed := probeCapabilities(ctx, c.ledger, addr)
	cacheCapabilities(ctx, c.store, c.contract, probed)
	c.mu.Lock()
	c.caps = &probed
	c.mu.Unlock()
	return probed
}

// FetchStatus reads the full on-chain status in one parallel batch. Each
// core field carries its own permissive fallback so that one missing or
// reverting contract function never aborts the whole fetch.
func (c *Client) FetchStatus(ctx context.Context, addr string) (*Status, error) {
	gen := c.gen.Add(1)
	logger := xzap.WithContext(ctx)

	st := &Status{RemainingToday: MaxDailyCheckins}
	_ = mr.Finish(
		func() error {
			v, err := c.ledger.IsSubscribed(ctx, addr)
			if err != nil {
				logger.Warn("failed on read isSubscribed", zap.Error(err))
				v = false
			}
			st.IsSubscribed = v
			return nil
		},
		func() error {
			v, err := c.ledger.GetSubscriptionExpiry(ctx, addr)
			if err != nil {
				logger.Warn("failed on read subscription expiry", zap.Error(err))
				v = 0
			}
			st.SubscriptionExpiry = v
			return nil
		},
		func() error {
			v, err := c.ledger.IsInCooldown(ctx, addr)
			if err != nil {
				logger.Warn("failed on read cooldown flag", zap.Error(err))
				v = false
			}
			st.IsInCooldown = v
			return nil
		},
		func() error {
			v, err := c.ledger.LastCheckin(ctx, addr)
			if err != nil {
				logger.Warn("failed on read last checkin", zap.Error(err))
				v = 0
			}
			st.LastCheckin = v
			return nil
		},
		func() error {
			v, err := c.ledger.GetCooldownRemaining(ctx, addr)
			if err != nil {
				logger.Warn("failed on read cooldown remaining", zap.Error(err))
				v = 0
			}
			st.CooldownRemaining = v
			return nil
		},
		func() error {
			v, err := c.ledger.GetDailyCheckinCount(ctx, addr)
			if err != nil {
				logger.Warn("failed on read daily count", zap.Error(err))
				v = 0
			}
			st.DailyCheckins = v
			return nil
		},
		func() error {
			v, err := c.ledger.GetRemainingCheckinsToday(ctx, addr)
			if err != nil {
				logger.Warn("failed on read remaining today", zap.Error(err))
				v = MaxDailyCheckins
			}
			st.RemainingToday = v
			return nil
		},
	)

	// optional fields: absent on older deployments
	caps := c.capabilities(ctx, addr)
	lifetimeFromContract := false
	if caps.HasCheckinCount {
		if v, err := c.ledger.GetCheckinCount(ctx, addr); err == nil {
			st.LifetimeCheckins = v
			lifetimeFromContract = true
		} else {
			logger.Warn("failed on read checkin count", zap.Error(err))
		}
	}
	if !lifetimeFromContract && c.hint != nil {
		st.LifetimeCheckins = c.hint(ctx, addr)
	}

	untilFromContract := false
	if caps.HasCheckinsUntilReward {
		if v, err := c.ledger.GetCheckinsUntilReward(ctx, addr); err == nil {
			st.CheckinsUntilReward = v
			untilFromContract = true
		} else {
			logger.Warn("failed on read checkins until reward", zap.Error(err))
		}
	}
	if !untilFromContract {
		st.CheckinsUntilReward = CheckinsUntilNextReward(st.LifetimeCheckins)
	}

	// the local countdown seeded from the last check-in takes precedence
	// over the contract's reported remaining seconds between polls
	if st.LastCheckin > 0 {
		local := st.LastCheckin + int64(CooldownWindow/time.Second) - time.Now().Unix()
		if local > 0 {
			st.CooldownRemaining = local
		}
	}

	// replace the snapshot atomically; a stale overlapping refetch must
	// never overwrite a newer one
	c.mu.Lock()
	if gen > c.appliedGen {
		c.status = st
		c.appliedGen = gen
		c.countdown = st.CooldownRemaining
	}
	c.mu.Unlock()

	return st, nil
}

// Snapshot returns a copy of the cached status with the live local countdown
// applied, or nil before the first fetch.
func (c *Client) Snapshot() *Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil {
		return nil
	}
	cp := *c.status
	if c.countdown > 0 {
		cp.CooldownRemaining = c.countdown
	}
	return &cp
}

// CheckCooldown is the advisory pre-check before a submission: eligible only
// when not in cooldown and the daily allowance is not spent. Each read
// defaults permissively on failure so a missing function never blocks an
// otherwise-eligible user; the contract remains the final authority.
func (c *Client) CheckCooldown(ctx context.Context, addr string) bool {
	logger := xzap.WithContext(ctx)

	inCooldown := false
	if v, err := c.ledger.IsInCooldown(ctx, addr); err == nil {
		inCooldown = v
	} else {
		logger.Warn("failed on cooldown pre-check read, assuming not in cooldown", zap.Error(err))
	}

	remaining := int64(MaxDailyCheckins)
	if v, err := c.ledger.GetRemainingCheckinsToday(ctx, addr); err == nil {
		remaining = v
	} else {
		logger.Warn("failed on remaining-today pre-check read, assuming full allowance", zap.Error(err))
	}

	return !inCooldown && remaining > 0
}

// SubmitCheckin drives the full submission pipeline: provider resolution,
// chain pre-flight with switch retry, the contract write (with the fee
// attached when required), confirmation wait, and the post-confirmation
// status refetch sequence. Failures terminate the pipeline at the step they
// occur; a transaction either was sent or it was not.
func (c *Client) SubmitCheckin(ctx context.Context, addr, contentHash string, requiresFee bool) (*Submission, error) {
	logger := xzap.WithContext(ctx)
	sub := &Submission{
		ID:          uuid.NewString(),
		IPFSHash:    contentHash,
		RequiresFee: requiresFee,
		Status:      SubmissionPending,
	}

	if !c.registry.Connected() {
		sub.Status = SubmissionFailed
		return sub, wallet.ErrWalletNotConnected
	}
	provider := c.registry.ActiveProvider(ctx)
	if provider == nil {
		sub.Status = SubmissionFailed
		return sub, wallet.ErrProviderNotFound
	}

	// chain pre-flight: verify, then switch-and-confirm when wrong
	chainID, err := wallet.ReadChainID(ctx, provider)
	if err != nil || chainID != c.chain.ID {
		if !c.guard.EnsureCorrectChain(ctx) {
			sub.Status = SubmissionFailed
			return sub, ErrChainMismatch
		}
	}

	data, err := PackSubmitCheckin(contentHash)
	if err != nil {
		sub.Status = SubmissionFailed
		return sub, err
	}

	params := map[string]interface{}{
		"from": addr,
		"to":   c.contract,
		"data": hexutil.Encode(data),
	}
	if requiresFee {
		params["value"] = hexutil.EncodeBig(FeeWei())
	}

	raw, err := provider.Request(ctx, "eth_sendTransaction", params)
	if err != nil {
		sub.Status = SubmissionFailed
		if wallet.IsUserRejected(err) {
			return sub, ErrUserRejected
		}
		return sub, errors.Wrap(err, "failed on send checkin transaction")
	}
	var txHash string
	if err := json.Unmarshal(raw, &txHash); err != nil {
		sub.Status = SubmissionFailed
		return sub, errors.Wrap(err, "failed on decode transaction hash")
	}
	sub.TxHash = txHash
	logger.Info("checkin transaction sent",
		zap.String("tx_hash", txHash),
		zap.Bool("requires_fee", requiresFee))

	receipt, err := c.waitReceipt(ctx, txHash)
	if err != nil {
		sub.Status = SubmissionFailed
		return sub, err
	}
	if receipt.Status == 0 {
		sub.Status = SubmissionFailed
		return sub, errors.Wrapf(ErrSubmissionReverted, "tx %s", txHash)
	}
	sub.Status = SubmissionConfirmed

	// settle, refetch, and schedule one more refetch for propagation lag
	time.Sleep(c.SettleDelay)
	if _, err := c.FetchStatus(ctx, addr); err != nil {
		logger.Warn("failed on post-submit status refetch", zap.Error(err))
	}
	time.AfterFunc(c.LagRefetchDelay, func() {
		if _, err := c.FetchStatus(context.Background(), addr); err != nil {
			xzap.WithContext(context.Background()).Warn("failed on delayed status refetch", zap.Error(err))
		}
	})

	return sub, nil
}

func (c *Client) waitReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	deadline := time.Now().Add(c.ReceiptTimeout)
	for {
		receipt, err := c.ledger.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ErrReceiptNotFound) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, errors.Wrapf(ErrReceiptTimeout, "tx %s", txHash)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.ReceiptPollInterval):
		}
	}
}

// Start launches the status polling loops for the connected session: a
// fixed-interval refetch and a per-second local countdown that triggers one
// refetch when it crosses zero.
func (c *Client) Start(ctx context.Context) {
	threading.GoSafe(func() { c.pollLoop(ctx) })
	threading.GoSafe(func() { c.countdownLoop(ctx) })
}

func (c *Client) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(c.StatusPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			xzap.WithContext(ctx).Info("status poll loop stopped")
			return
		case <-ticker.C:
			if _, addr := c.registry.Active(); addr != "" {
				if _, err := c.FetchStatus(ctx, addr); err != nil {
					xzap.WithContext(ctx).Warn("failed on status poll", zap.Error(err))
				}
			}
		}
	}
}

func (c *Client) countdownLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			expired := false
			if c.countdown > 0 {
				c.countdown--
				expired = c.countdown == 0
			}
			c.mu.Unlock()
			if expired {
				// leave cooldown display immediately instead of waiting
				// for the next poll
				if _, addr := c.registry.Active(); addr != "" {
					threading.GoSafe(func() {
						if _, err := c.FetchStatus(ctx, addr); err != nil {
							xzap.WithContext(ctx).Warn("failed on countdown refetch", zap.Error(err))
						}
					})
				}
			}
		}
	}
}
