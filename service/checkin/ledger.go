package checkin

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// ledgerABI is the habit ledger's exposed interface. getCheckinCount and
// getCheckinsUntilReward are absent on older deployments; callers degrade
// through the capability probe.
const ledgerABI = `[
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"isSubscribed","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"getSubscriptionExpiry","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"isInCooldown","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"lastCheckin","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"getCooldownRemaining","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"getDailyCheckinCount","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"getRemainingCheckinsToday","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"getCheckinCount","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"getCheckinsUntilReward","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"string","name":"ipfsHash","type":"string"}],"name":"submitCheckin","outputs":[],"stateMutability":"payable","type":"function"}
]`

var parsedLedgerABI abi.ABI

func init() {
	var err error
	parsedLedgerABI, err = abi.JSON(strings.NewReader(ledgerABI))
	if err != nil {
		panic(err)
	}
}

// PackSubmitCheckin encodes the submitCheckin calldata.
func PackSubmitCheckin(contentHash string) ([]byte, error) {
	data, err := parsedLedgerABI.Pack("submitCheckin", contentHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed on pack submitCheckin calldata")
	}
	return data, nil
}

// Reader is the on-chain read surface of the habit ledger.
type Reader interface {
	IsSubscribed(ctx context.Context, addr string) (bool, error)
	GetSubscriptionExpiry(ctx context.Context, addr string) (int64, error)
	IsInCooldown(ctx context.Context, addr string) (bool, error)
	LastCheckin(ctx context.Context, addr string) (int64, error)
	GetCooldownRemaining(ctx context.Context, addr string) (int64, error)
	GetDailyCheckinCount(ctx context.Context, addr string) (int64, error)
	GetRemainingCheckinsToday(ctx context.Context, addr string) (int64, error)
	GetCheckinCount(ctx context.Context, addr string) (int64, error)
	GetCheckinsUntilReward(ctx context.Context, addr string) (int64, error)
}

// Receipt is the confirmation record of a submitted transaction.
type Receipt struct {
	TxHash      string
	Status      uint64
	BlockNumber int64
}

// ReceiptWaiter looks up transaction receipts. ErrReceiptNotFound means the
// transaction is still pending.
type ReceiptWaiter interface {
	TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error)
}

var ErrReceiptNotFound = errors.New("transaction receipt not found")

// Ledger is the full on-chain surface the client needs.
type Ledger interface {
	Reader
	ReceiptWaiter
}

// RPCLedger reads the ledger contract through a JSON-RPC endpoint.
type RPCLedger struct {
	client   *ethclient.Client
	contract common.Address
}

func NewRPCLedger(ctx context.Context, rawURL, contractAddr string) (*RPCLedger, error) {
	client, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed on dial rpc endpoint")
	}
	return &RPCLedger{
		client:   client,
		contract: common.HexToAddress(contractAddr),
	}, nil
}

func (l *RPCLedger) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsedLedgerABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed on pack %s call", method)
	}
	out, err := l.client.CallContract(ctx, ethereum.CallMsg{To: &l.contract, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed on call %s", method)
	}
	values, err := parsedLedgerABI.Unpack(method, out)
	if err != nil {
		return nil, errors.Wrapf(err, "failed on unpack %s result", method)
	}
	return values, nil
}

func (l *RPCLedger) callBool(ctx context.Context, method, addr string) (bool, error) {
	values, err := l.call(ctx, method, common.HexToAddress(addr))
	if err != nil {
		return false, err
	}
	v, ok := values[0].(bool)
	if !ok {
		return false, errors.Errorf("unexpected %s result type", method)
	}
	return v, nil
}

func (l *RPCLedger) callInt(ctx context.Context, method, addr string) (int64, error) {
	values, err := l.call(ctx, method, common.HexToAddress(addr))
	if err != nil {
		return 0, err
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return 0, errors.Errorf("unexpected %s result type", method)
	}
	return v.Int64(), nil
}

func (l *RPCLedger) IsSubscribed(ctx context.Context, addr string) (bool, error) {
	return l.callBool(ctx, "isSubscribed", addr)
}

func (l *RPCLedger) GetSubscriptionExpiry(ctx context.Context, addr string) (int64, error) {
	return l.callInt(ctx, "getSubscriptionExpiry", addr)
}

func (l *RPCLedger) IsInCooldown(ctx context.Context, addr string) (bool, error) {
	return l.callBool(ctx, "isInCooldown", addr)
}

func (l *RPCLedger) LastCheckin(ctx context.Context, addr string) (int64, error) {
	return l.callInt(ctx, "lastCheckin", addr)
}

func (l *RPCLedger) GetCooldownRemaining(ctx context.Context, addr string) (int64, error) {
	return l.callInt(ctx, "getCooldownRemaining", addr)
}

func (l *RPCLedger) GetDailyCheckinCount(ctx context.Context, addr string) (int64, error) {
	return l.callInt(ctx, "getDailyCheckinCount", addr)
}

func (l *RPCLedger) GetRemainingCheckinsToday(ctx context.Context, addr string) (int64, error) {
	return l.callInt(ctx, "getRemainingCheckinsToday", addr)
}

func (l *RPCLedger) GetCheckinCount(ctx context.Context, addr string) (int64, error) {
	return l.callInt(ctx, "getCheckinCount", addr)
}

func (l *RPCLedger) GetCheckinsUntilReward(ctx context.Context, addr string) (int64, error) {
	return l.callInt(ctx, "getCheckinsUntilReward", addr)
}

func (l *RPCLedger) TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	receipt, err := l.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, errors.Wrap(err, "failed on get transaction receipt")
	}
	return &Receipt{
		TxHash:      txHash,
		Status:      receipt.Status,
		BlockNumber: receipt.BlockNumber.Int64(),
	}, nil
}
