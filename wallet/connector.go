package wallet

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/HabitChainLabs/HabitChainBackend/pkg/xzap"
)

// Connector is one way to reach a wallet. Connectors are enumerated by the
// wallet integration layer at startup and are immutable for the session; the
// core only classifies and selects among them.
type Connector struct {
	ID   string
	Name string
	// Ready reports whether the connector is immediately usable. Mobile and
	// embedded hosts under-report this.
	Ready bool
	// GetProvider is the connector's async provider accessor; may be nil.
	GetProvider func(ctx context.Context) (interface{}, error)
	// RawProvider is an already-materialized provider object; may be nil.
	RawProvider interface{}
}

var (
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrProviderNotFound   = errors.New("wallet provider not found")
	ErrNoAccounts         = errors.New("wallet returned no accounts")
)

// Registry owns the per-session connection state: the enumerated connectors,
// the host-injected provider lookup, the active connection, and the
// once-per-session auto-connect flag. Constructing a fresh Registry resets
// all of it, so tests can run independent instances.
type Registry struct {
	mu            sync.Mutex
	connectors    []*Connector
	injected      func() interface{}
	active        *Connector
	address       string
	autoConnected bool
}

// NewRegistry builds a registry over the enumerated connectors. injected
// looks up the host-injected global wallet object and may be nil.
func NewRegistry(connectors []*Connector, injected func() interface{}) *Registry {
	return &Registry{
		connectors: connectors,
		injected:   injected,
	}
}

// Register appends a connector enumerated after construction, e.g. one
// announced by an embedded host bridge.
func (r *Registry) Register(conn *Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.connectors {
		if c.ID == conn.ID {
			return
		}
	}
	r.connectors = append(r.connectors, conn)
}

// Connectors returns the full enumerated set.
func (r *Registry) Connectors() []*Connector {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Connector, len(r.connectors))
	copy(out, r.connectors)
	return out
}

// Connector looks a connector up by id.
func (r *Registry) Connector(id string) *Connector {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.connectors {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Active returns the connected connector and account address, or nil/"".
func (r *Registry) Active() (*Connector, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.address
}

// Connected reports whether a wallet connection is established.
func (r *Registry) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil && r.address != ""
}

// Connect resolves the connector's provider and requests accounts from it.
func (r *Registry) Connect(ctx context.Context, id string) (string, error) {
	conn := r.Connector(id)
	if conn == nil {
		return "", errors.Wrapf(ErrProviderNotFound, "unknown connector %q", id)
	}

	provider := r.ResolveProvider(ctx, conn)
	if provider == nil {
		return "", errors.Wrapf(ErrProviderNotFound, "connector %q", id)
	}

	raw, err := provider.Request(ctx, "eth_requestAccounts")
	if err != nil {
		return "", errors.Wrap(err, "failed on request accounts")
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return "", errors.Wrap(err, "failed on decode accounts")
	}
	if len(accounts) == 0 {
		return "", ErrNoAccounts
	}

	r.mu.Lock()
	r.active = conn
	r.address = accounts[0]
	r.mu.Unlock()

	xzap.WithContext(ctx).Info("wallet connected",
		zap.String("connector", conn.ID),
		zap.String("address", accounts[0]))
	return accounts[0], nil
}

// Disconnect drops the active connection. The auto-connect flag is
// deliberately not reset: auto-connect runs at most once per session.
func (r *Registry) Disconnect() {
	r.mu.Lock()
	r.active = nil
	r.address = ""
	r.mu.Unlock()
}

// AutoConnectEmbedded silently connects the embedded-wallet connector once
// per session. Inside an embedded host the wallet is expected to already be
// authorized, so failures only warn and never surface to the user.
func (r *Registry) AutoConnectEmbedded(ctx context.Context, embedded *Connector) {
	if embedded == nil {
		return
	}
	r.mu.Lock()
	if r.autoConnected || r.active != nil {
		r.mu.Unlock()
		return
	}
	r.autoConnected = true
	r.mu.Unlock()

	if _, err := r.Connect(ctx, embedded.ID); err != nil {
		xzap.WithContext(ctx).Warn("embedded wallet auto-connect failed",
			zap.String("connector", embedded.ID),
			zap.Error(err))
	}
}
