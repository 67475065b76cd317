package wallet

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedProvider struct {
	name string
}

func (namedProvider) Request(_ context.Context, _ string, _ ...interface{}) (json.RawMessage, error) {
	return json.RawMessage(`"0x1"`), nil
}

func TestResolveProviderOrder(t *testing.T) {
	fromAccessor := namedProvider{name: "accessor"}
	fromInjected := namedProvider{name: "injected"}
	fromRaw := namedProvider{name: "raw"}

	conn := &Connector{
		ID:          "io.metamask",
		GetProvider: func(_ context.Context) (interface{}, error) { return fromAccessor, nil },
		RawProvider: fromRaw,
	}
	r := NewRegistry([]*Connector{conn}, func() interface{} { return fromInjected })

	got := r.ResolveProvider(context.Background(), conn)
	require.NotNil(t, got)
	assert.Equal(t, fromAccessor, got, "the accessor wins when it succeeds")
}

func TestResolveProviderAccessorFailure(t *testing.T) {
	fromInjected := namedProvider{name: "injected"}
	conn := &Connector{
		ID:          "io.metamask",
		GetProvider: func(_ context.Context) (interface{}, error) { return nil, errors.New("not ready") },
	}
	r := NewRegistry([]*Connector{conn}, func() interface{} { return fromInjected })

	got := r.ResolveProvider(context.Background(), conn)
	assert.Equal(t, fromInjected, got, "a failed accessor falls through to the injected object")
}

func TestResolveProviderIncompatibleSkipped(t *testing.T) {
	fromRaw := namedProvider{name: "raw"}
	conn := &Connector{
		ID:          "injected",
		GetProvider: func(_ context.Context) (interface{}, error) { return struct{}{}, nil },
		RawProvider: fromRaw,
	}
	r := NewRegistry([]*Connector{conn}, func() interface{} { return "not a provider" })

	got := r.ResolveProvider(context.Background(), conn)
	assert.Equal(t, fromRaw, got, "incompatible objects are skipped, not fatal")
}

func TestResolveProviderNotFound(t *testing.T) {
	conn := &Connector{ID: "walletConnect"}
	r := NewRegistry([]*Connector{conn}, nil)

	assert.Nil(t, r.ResolveProvider(context.Background(), conn))
	assert.Nil(t, r.ResolveProvider(context.Background(), nil))
}

func TestActiveProviderRequiresConnection(t *testing.T) {
	r := NewRegistry(nil, nil)
	assert.Nil(t, r.ActiveProvider(context.Background()))
}
