package wallet

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChainID(t *testing.T) {
	id, err := ParseChainID(json.RawMessage(`"0x2105"`))
	require.NoError(t, err)
	assert.Equal(t, int64(8453), id)

	_, err = ParseChainID(json.RawMessage(`"not-hex"`))
	assert.Error(t, err)

	_, err = ParseChainID(json.RawMessage(`12`))
	assert.Error(t, err)
}

func TestHexChainID(t *testing.T) {
	assert.Equal(t, "0x2105", HexChainID(8453))
	assert.Equal(t, "0x1", HexChainID(1))
}

type echoProvider struct{}

func (echoProvider) Request(_ context.Context, _ string, _ ...interface{}) (json.RawMessage, error) {
	return json.RawMessage(`"0x1"`), nil
}

func TestDetect(t *testing.T) {
	p, cap := Detect(nil)
	assert.Nil(t, p)
	assert.Equal(t, CapabilityNotFound, cap)

	p, cap = Detect("not a provider")
	assert.Nil(t, p)
	assert.Equal(t, CapabilityIncompatible, cap)

	p, cap = Detect(echoProvider{})
	assert.NotNil(t, p)
	assert.Equal(t, CapabilityEip1193, cap)
}

func TestProviderErrorPredicates(t *testing.T) {
	rejected := errors.Wrap(&ProviderError{Code: CodeUserRejected, Message: "denied"}, "failed on switch")
	assert.True(t, IsUserRejected(rejected))
	assert.False(t, IsUnrecognizedChain(rejected))

	unknown := &ProviderError{Code: CodeUnrecognizedChain, Message: "unknown chain"}
	assert.True(t, IsUnrecognizedChain(unknown))
	assert.False(t, IsUserRejected(unknown))

	assert.False(t, IsUserRejected(errors.New("plain")))
}

type staticProvider struct {
	id int64
}

func (staticProvider) Request(_ context.Context, _ string, _ ...interface{}) (json.RawMessage, error) {
	return nil, errors.New("eth_chainId unsupported")
}

func (s staticProvider) StaticChainID() (int64, bool) {
	return s.id, s.id != 0
}

func TestReadChainIDStaticFallback(t *testing.T) {
	id, err := ReadChainID(context.Background(), staticProvider{id: 84532})
	require.NoError(t, err)
	assert.Equal(t, int64(84532), id)

	_, err = ReadChainID(context.Background(), staticProvider{})
	assert.Error(t, err)
}
