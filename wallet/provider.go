package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Provider is the EIP-1193 surface the rest of the system consumes. Every
// wallet interaction goes through Request; results come back as raw JSON so
// callers decode exactly what they asked for.
type Provider interface {
	Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
}

// ChainEventProvider is implemented by providers that push chainChanged
// events. Subscribe returns an unsubscribe function which must always be
// called when the watcher exits.
type ChainEventProvider interface {
	SubscribeChainChanged(fn func(chainID int64)) (unsubscribe func())
}

// StaticChainProvider is implemented by providers that expose the chain id
// only as a plain field instead of answering eth_chainId.
type StaticChainProvider interface {
	StaticChainID() (int64, bool)
}

// Capability tags what a raw wallet object turned out to be.
type Capability int

const (
	CapabilityNotFound Capability = iota
	CapabilityEip1193
	CapabilityIncompatible
)

func (c Capability) String() string {
	switch c {
	case CapabilityEip1193:
		return "eip1193"
	case CapabilityIncompatible:
		return "incompatible"
	default:
		return "not_found"
	}
}

// Detect classifies a raw object handed back by a connector or the host
// environment. Only Eip1193 objects are usable.
func Detect(v interface{}) (Provider, Capability) {
	if v == nil {
		return nil, CapabilityNotFound
	}
	if p, ok := v.(Provider); ok {
		return p, CapabilityEip1193
	}
	return nil, CapabilityIncompatible
}

// ProviderError mirrors the EIP-1193 error shape.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

const (
	// CodeUserRejected is returned when the user dismisses a wallet prompt.
	CodeUserRejected = 4001
	// CodeUnrecognizedChain is returned by wallet_switchEthereumChain when
	// the wallet has never seen the target chain.
	CodeUnrecognizedChain = 4902
)

func IsUserRejected(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == CodeUserRejected
}

func IsUnrecognizedChain(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == CodeUnrecognizedChain
}

// ParseChainID decodes an eth_chainId result, which arrives as a quoted hex
// string.
func ParseChainID(raw json.RawMessage) (int64, error) {
	var hexID string
	if err := json.Unmarshal(raw, &hexID); err != nil {
		return 0, errors.Wrap(err, "failed on decode chain id result")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(hexID, "0x"), 16, 64)
	if err != nil {
		return 0, errors.Wrap(err, "failed on parse chain id hex")
	}
	return id, nil
}

// ReadChainID asks a provider for its chain id, falling back to the plain
// field some providers carry instead of answering eth_chainId.
func ReadChainID(ctx context.Context, p Provider) (int64, error) {
	raw, err := p.Request(ctx, "eth_chainId")
	if err == nil {
		return ParseChainID(raw)
	}
	if sc, ok := p.(StaticChainProvider); ok {
		if id, ok := sc.StaticChainID(); ok {
			return id, nil
		}
	}
	return 0, err
}

// HexChainID renders a chain id the way wallet_switchEthereumChain wants it.
func HexChainID(id int64) string {
	return "0x" + strconv.FormatInt(id, 16)
}
