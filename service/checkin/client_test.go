package checkin

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HabitChainLabs/HabitChainBackend/wallet"
)

const (
	testContract = "0x1111111111111111111111111111111111111111"
	testAccount  = "0x00000000000000000000000000000000000000a1"
	testTxHash   = "0xdeadbeef"
)

var testChain = wallet.ChainParams{
	ID:   84532,
	Name: "Base Sepolia",
	Currency: wallet.NativeCurrency{
		Name:     "Ether",
		Symbol:   "ETH",
		Decimals: 18,
	},
	RPCURLs:     []string{"https://sepolia.base.org"},
	ExplorerURL: "https://sepolia.basescan.org",
}

// fakeLedger serves canned contract values; optional functions revert unless
// enabled, matching how absent functions behave on old deployments.
type fakeLedger struct {
	mu sync.Mutex

	subscribed        bool
	expiry            int64
	inCooldown        bool
	last              int64
	cooldownRemaining int64
	daily             int64
	remaining         int64
	lifetime          int64
	untilReward       int64

	hasCount bool
	hasUntil bool
	failAll  bool

	receipts map[string]*Receipt
}

func (l *fakeLedger) intField(field func() int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAll {
		return 0, errors.New("execution reverted")
	}
	return field(), nil
}

func (l *fakeLedger) boolField(field func() bool) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAll {
		return false, errors.New("execution reverted")
	}
	return field(), nil
}

func (l *fakeLedger) IsSubscribed(_ context.Context, _ string) (bool, error) {
	return l.boolField(func() bool { return l.subscribed })
}

func (l *fakeLedger) GetSubscriptionExpiry(_ context.Context, _ string) (int64, error) {
	return l.intField(func() int64 { return l.expiry })
}

func (l *fakeLedger) IsInCooldown(_ context.Context, _ string) (bool, error) {
	return l.boolField(func() bool { return l.inCooldown })
}

func (l *fakeLedger) LastCheckin(_ context.Context, _ string) (int64, error) {
	return l.intField(func() int64 { return l.last })
}

func (l *fakeLedger) GetCooldownRemaining(_ context.Context, _ string) (int64, error) {
	return l.intField(func() int64 { return l.cooldownRemaining })
}

func (l *fakeLedger) GetDailyCheckinCount(_ context.Context, _ string) (int64, error) {
	return l.intField(func() int64 { return l.daily })
}

func (l *fakeLedger) GetRemainingCheckinsToday(_ context.Context, _ string) (int64, error) {
	return l.intField(func() int64 { return l.remaining })
}

func (l *fakeLedger) GetCheckinCount(_ context.Context, _ string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAll || !l.hasCount {
		return 0, errors.New("execution reverted")
	}
	return l.lifetime, nil
}

func (l *fakeLedger) GetCheckinsUntilReward(_ context.Context, _ string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAll || !l.hasUntil {
		return 0, errors.New("execution reverted")
	}
	return l.untilReward, nil
}

func (l *fakeLedger) TransactionReceipt(_ context.Context, txHash string) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.receipts[txHash]; ok {
		return r, nil
	}
	return nil, ErrReceiptNotFound
}

func (l *fakeLedger) setLifetime(v int64) {
	l.mu.Lock()
	l.lifetime = v
	l.mu.Unlock()
}

// txProvider fakes the wallet side of the submission pipeline.
type txProvider struct {
	mu           sync.Mutex
	chainID      int64
	rejectTx     bool
	rejectSwitch bool
	switchCalls  int
	sent         []map[string]interface{}
	onSend       func()
}

func (p *txProvider) Request(_ context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	switch method {
	case "eth_requestAccounts":
		return json.RawMessage(`["` + testAccount + `"]`), nil
	case "eth_chainId":
		p.mu.Lock()
		defer p.mu.Unlock()
		return json.RawMessage(fmt.Sprintf(`"0x%x"`, p.chainID)), nil
	case "wallet_switchEthereumChain":
		p.mu.Lock()
		defer p.mu.Unlock()
		p.switchCalls++
		if p.rejectSwitch {
			return nil, &wallet.ProviderError{Code: wallet.CodeUserRejected, Message: "user denied"}
		}
		if m, ok := params[0].(map[string]interface{}); ok {
			hex, _ := m["chainId"].(string)
			id, _ := strconv.ParseInt(strings.TrimPrefix(hex, "0x"), 16, 64)
			p.chainID = id
		}
		return json.RawMessage(`null`), nil
	case "wallet_addEthereumChain":
		return json.RawMessage(`null`), nil
	case "eth_sendTransaction":
		if p.rejectTx {
			return nil, &wallet.ProviderError{Code: wallet.CodeUserRejected, Message: "user denied"}
		}
		p.mu.Lock()
		if m, ok := params[0].(map[string]interface{}); ok {
			p.sent = append(p.sent, m)
		}
		onSend := p.onSend
		p.mu.Unlock()
		if onSend != nil {
			onSend()
		}
		return json.RawMessage(`"` + testTxHash + `"`), nil
	}
	return nil, errors.Errorf("unexpected method %s", method)
}

func newTestClient(t *testing.T, ledger *fakeLedger, provider *txProvider, hint HintFunc) *Client {
	t.Helper()
	conn := &wallet.Connector{ID: "io.metamask", Name: "MetaMask", Ready: true, RawProvider: provider}
	registry := wallet.NewRegistry([]*wallet.Connector{conn}, nil)
	_, err := registry.Connect(context.Background(), conn.ID)
	require.NoError(t, err)

	guard := wallet.NewChainGuard(testChain, registry)
	guard.PollInterval = 5 * time.Millisecond
	guard.SwitchTimeout = 200 * time.Millisecond

	c := NewClient(testContract, testChain, ledger, registry, guard, nil, hint)
	c.ReceiptPollInterval = 5 * time.Millisecond
	c.ReceiptTimeout = 100 * time.Millisecond
	c.SettleDelay = 0
	c.LagRefetchDelay = time.Hour
	return c
}

func TestFetchStatusHintFallback(t *testing.T) {
	ledger := &fakeLedger{subscribed: true, remaining: 2}
	provider := &txProvider{chainID: testChain.ID}
	c := newTestClient(t, ledger, provider, func(_ context.Context, _ string) int64 { return 7 })

	st, err := c.FetchStatus(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(7), st.LifetimeCheckins, "absent getCheckinCount falls back to the local hint")
	assert.Equal(t, int64(3), st.CheckinsUntilReward, "absent getCheckinsUntilReward is derived from lifetime")
	assert.True(t, st.IsSubscribed)
}

func TestFetchStatusContractValuesWin(t *testing.T) {
	ledger := &fakeLedger{hasCount: true, hasUntil: true, lifetime: 12, untilReward: 3, remaining: 1}
	provider := &txProvider{chainID: testChain.ID}
	c := newTestClient(t, ledger, provider, func(_ context.Context, _ string) int64 { return 99 })

	st, err := c.FetchStatus(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(12), st.LifetimeCheckins)
	assert.Equal(t, int64(3), st.CheckinsUntilReward)
}

func TestFetchStatusPermissiveDefaults(t *testing.T) {
	ledger := &fakeLedger{failAll: true}
	provider := &txProvider{chainID: testChain.ID}
	c := newTestClient(t, ledger, provider, nil)

	st, err := c.FetchStatus(context.Background(), testAccount)
	require.NoError(t, err, "a fully failing contract still yields a usable status")
	assert.False(t, st.IsSubscribed)
	assert.False(t, st.IsInCooldown)
	assert.Equal(t, int64(MaxDailyCheckins), st.RemainingToday)
	assert.Equal(t, int64(RewardCycle), st.CheckinsUntilReward)
}

func TestFetchStatusUnclampedRemaining(t *testing.T) {
	ledger := &fakeLedger{remaining: 5}
	provider := &txProvider{chainID: testChain.ID}
	c := newTestClient(t, ledger, provider, nil)

	st, err := c.FetchStatus(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(5), st.RemainingToday, "out-of-range contract values surface as-is")
}

func TestFetchStatusLocalCountdownSeed(t *testing.T) {
	ledger := &fakeLedger{
		last:              time.Now().Unix() - 3600,
		cooldownRemaining: 10,
		inCooldown:        true,
	}
	provider := &txProvider{chainID: testChain.ID}
	c := newTestClient(t, ledger, provider, nil)

	st, err := c.FetchStatus(context.Background(), testAccount)
	require.NoError(t, err)
	// 5h window minus the elapsed hour, regardless of the reported field
	assert.InDelta(t, 4*3600, st.CooldownRemaining, 5)
}

func TestSnapshot(t *testing.T) {
	ledger := &fakeLedger{remaining: 2}
	provider := &txProvider{chainID: testChain.ID}
	c := newTestClient(t, ledger, provider, nil)

	assert.Nil(t, c.Snapshot(), "no snapshot before the first fetch")

	_, err := c.FetchStatus(context.Background(), testAccount)
	require.NoError(t, err)
	snap := c.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, int64(2), snap.RemainingToday)
}

func TestCheckCooldown(t *testing.T) {
	provider := &txProvider{chainID: testChain.ID}

	c := newTestClient(t, &fakeLedger{remaining: 1}, provider, nil)
	assert.True(t, c.CheckCooldown(context.Background(), testAccount))

	c = newTestClient(t, &fakeLedger{inCooldown: true, remaining: 1}, provider, nil)
	assert.False(t, c.CheckCooldown(context.Background(), testAccount))

	c = newTestClient(t, &fakeLedger{remaining: 0}, provider, nil)
	assert.False(t, c.CheckCooldown(context.Background(), testAccount))

	// reads failing must not block an otherwise-eligible user
	c = newTestClient(t, &fakeLedger{failAll: true}, provider, nil)
	assert.True(t, c.CheckCooldown(context.Background(), testAccount))
}

func TestFeeWei(t *testing.T) {
	assert.Equal(t, "100000000000000000", FeeWei().String())
}

func TestSubmitCheckinNotConnected(t *testing.T) {
	ledger := &fakeLedger{}
	registry := wallet.NewRegistry(nil, nil)
	guard := wallet.NewChainGuard(testChain, registry)
	c := NewClient(testContract, testChain, ledger, registry, guard, nil, nil)

	sub, err := c.SubmitCheckin(context.Background(), testAccount, "QmHash", false)
	assert.ErrorIs(t, err, wallet.ErrWalletNotConnected)
	assert.Equal(t, SubmissionFailed, sub.Status)
}

func TestSubmitCheckinWrongChainSwitchesAndConfirms(t *testing.T) {
	ledger := &fakeLedger{
		hasCount:  true,
		lifetime:  4,
		remaining: 2,
		receipts:  map[string]*Receipt{testTxHash: {TxHash: testTxHash, Status: 1, BlockNumber: 100}},
	}
	provider := &txProvider{chainID: 1}
	provider.onSend = func() { ledger.setLifetime(5) }
	c := newTestClient(t, ledger, provider, nil)

	sub, err := c.SubmitCheckin(context.Background(), testAccount, "QmHash", true)
	require.NoError(t, err)
	assert.Equal(t, SubmissionConfirmed, sub.Status)
	assert.Equal(t, testTxHash, sub.TxHash)
	assert.Equal(t, 1, provider.switchCalls, "one switch round trip fixes the wrong chain")

	require.Len(t, provider.sent, 1)
	tx := provider.sent[0]
	assert.Equal(t, testAccount, tx["from"])
	assert.Equal(t, testContract, tx["to"])
	assert.Equal(t, "0x16345785d8a0000", tx["value"], "the 0.1 native fee is attached exactly")

	snap := c.Snapshot()
	require.NotNil(t, snap, "a confirmed submission refetches the status")
	assert.Equal(t, int64(5), snap.LifetimeCheckins)
	assert.Equal(t, int64(5), snap.CheckinsUntilReward, "the 5th check-in starts a fresh cycle")
}

func TestSubmitCheckinFreeOmitsValue(t *testing.T) {
	ledger := &fakeLedger{
		receipts: map[string]*Receipt{testTxHash: {TxHash: testTxHash, Status: 1, BlockNumber: 100}},
	}
	provider := &txProvider{chainID: testChain.ID}
	c := newTestClient(t, ledger, provider, nil)

	_, err := c.SubmitCheckin(context.Background(), testAccount, "QmHash", false)
	require.NoError(t, err)
	require.Len(t, provider.sent, 1)
	_, hasValue := provider.sent[0]["value"]
	assert.False(t, hasValue, "free check-ins carry no value field")
}

func TestSubmitCheckinUserRejected(t *testing.T) {
	ledger := &fakeLedger{}
	provider := &txProvider{chainID: testChain.ID, rejectTx: true}
	c := newTestClient(t, ledger, provider, nil)

	sub, err := c.SubmitCheckin(context.Background(), testAccount, "QmHash", false)
	assert.ErrorIs(t, err, ErrUserRejected)
	assert.Equal(t, SubmissionFailed, sub.Status)
	assert.Empty(t, sub.TxHash, "nothing was sent")
}

func TestSubmitCheckinChainMismatch(t *testing.T) {
	ledger := &fakeLedger{}
	provider := &txProvider{chainID: 1, rejectSwitch: true}
	c := newTestClient(t, ledger, provider, nil)

	sub, err := c.SubmitCheckin(context.Background(), testAccount, "QmHash", false)
	assert.ErrorIs(t, err, ErrChainMismatch)
	assert.Equal(t, SubmissionFailed, sub.Status)
	assert.Empty(t, provider.sent)
}

func TestSubmitCheckinReverted(t *testing.T) {
	ledger := &fakeLedger{
		receipts: map[string]*Receipt{testTxHash: {TxHash: testTxHash, Status: 0, BlockNumber: 100}},
	}
	provider := &txProvider{chainID: testChain.ID}
	c := newTestClient(t, ledger, provider, nil)

	sub, err := c.SubmitCheckin(context.Background(), testAccount, "QmHash", false)
	assert.ErrorIs(t, err, ErrSubmissionReverted)
	assert.Equal(t, SubmissionFailed, sub.Status)
}

func TestSubmitCheckinReceiptTimeout(t *testing.T) {
	ledger := &fakeLedger{}
	provider := &txProvider{chainID: testChain.ID}
	c := newTestClient(t, ledger, provider, nil)

	sub, err := c.SubmitCheckin(context.Background(), testAccount, "QmHash", false)
	assert.ErrorIs(t, err, ErrReceiptTimeout)
	assert.Equal(t, SubmissionFailed, sub.Status)
}

// gatedLedger stalls the first status batch until released, so a newer fetch
// can finish first.
type gatedLedger struct {
	*fakeLedger
	mu2     sync.Mutex
	calls   int
	started chan struct{}
	gate    chan struct{}
}

func (l *gatedLedger) GetRemainingCheckinsToday(_ context.Context, _ string) (int64, error) {
	l.mu2.Lock()
	l.calls++
	first := l.calls == 1
	l.mu2.Unlock()
	if first {
		close(l.started)
		<-l.gate
		return 7, nil
	}
	return 2, nil
}

func TestFetchStatusStaleRefetchDiscarded(t *testing.T) {
	ledger := &gatedLedger{
		fakeLedger: &fakeLedger{},
		started:    make(chan struct{}),
		gate:       make(chan struct{}),
	}
	provider := &txProvider{chainID: testChain.ID}
	conn := &wallet.Connector{ID: "io.metamask", Name: "MetaMask", Ready: true, RawProvider: provider}
	registry := wallet.NewRegistry([]*wallet.Connector{conn}, nil)
	_, err := registry.Connect(context.Background(), conn.ID)
	require.NoError(t, err)
	guard := wallet.NewChainGuard(testChain, registry)
	c := NewClient(testContract, testChain, ledger, registry, guard, nil, nil)

	stale := make(chan *Status, 1)
	go func() {
		st, _ := c.FetchStatus(context.Background(), testAccount)
		stale <- st
	}()
	<-ledger.started

	// a newer fetch completes while the first is still in flight
	st, err := c.FetchStatus(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.RemainingToday)

	close(ledger.gate)
	<-stale

	snap := c.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, int64(2), snap.RemainingToday,
		"an overlapping older fetch must never overwrite a newer snapshot")
}

func TestCapabilityProbe(t *testing.T) {
	ledger := &fakeLedger{hasCount: true}
	caps := probeCapabilities(context.Background(), ledger, testAccount)
	assert.True(t, caps.HasCheckinCount)
	assert.False(t, caps.HasCheckinsUntilReward)
}

func TestRefreshCapabilities(t *testing.T) {
	ledger := &fakeLedger{}
	provider := &txProvider{chainID: testChain.ID}
	c := newTestClient(t, ledger, provider, nil)

	caps := c.RefreshCapabilities(context.Background(), testAccount)
	assert.False(t, caps.HasCheckinCount)

	// an upgraded deployment is picked up on the next refresh
	ledger.mu.Lock()
	ledger.hasCount = true
	ledger.hasUntil = true
	ledger.mu.Unlock()
	caps = c.RefreshCapabilities(context.Background(), testAccount)
	assert.True(t, caps.HasCheckinCount)
	assert.True(t, caps.HasCheckinsUntilReward)
}
