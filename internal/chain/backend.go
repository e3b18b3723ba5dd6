package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"tuli_go/internal/domain"
	"tuli_go/internal/signer"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Backend is the subset of the Ethereum RPC the client needs.
// *ethclient.Client satisfies it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Dial connects to a JSON-RPC endpoint.
func Dial(ctx context.Context, endpoint string) (*ethclient.Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, &domain.ConfigError{Field: "network.rpc_url", Err: errors.New("rpc endpoint required")}
	}
	client, err := ethclient.DialContext(ctx, trimmed)
	if err != nil {
		return nil, domain.NewNetworkError("dial", err)
	}
	return client, nil
}

// Call is a packed, not yet submitted contract invocation.
type Call struct {
	To     common.Address
	Method string
	Data   []byte
}

// Transactor estimates and submits calls on behalf of a signer.
type Transactor struct {
	backend Backend
	signer  signer.Signer
}

func NewTransactor(backend Backend, s signer.Signer) *Transactor {
	return &Transactor{backend: backend, signer: s}
}

func (t *Transactor) From() common.Address {
	return t.signer.Address()
}

// Estimate asks the node for the gas a call would use.
func (t *Transactor) Estimate(ctx context.Context, call Call) (uint64, error) {
	to := call.To
	gas, err := t.backend.EstimateGas(ctx, ethereum.CallMsg{
		From: t.signer.Address(),
		To:   &to,
		Data: call.Data,
	})
	if err != nil {
		return 0, mapCallError("estimate "+call.Method, err)
	}
	return gas, nil
}

// Send signs call with an explicit gas limit and submits it.
func (t *Transactor) Send(ctx context.Context, call Call, gasLimit uint64) (*types.Transaction, error) {
	op := "send " + call.Method
	from := t.signer.Address()

	nonce, err := t.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, domain.NewNetworkError(op+": nonce", err)
	}
	gasPrice, err := t.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, domain.NewNetworkError(op+": gas price", err)
	}
	// Transactions are signed for the chain the node reports, which can
	// differ from the typed-message domain chain id.
	chainID, err := t.backend.ChainID(ctx)
	if err != nil {
		return nil, domain.NewNetworkError(op+": chain id", err)
	}

	to := call.To
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Data:     call.Data,
	})
	signed, err := t.signer.SignTx(tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("%s: sign: %w", op, err)
	}
	if err := t.backend.SendTransaction(ctx, signed); err != nil {
		return nil, mapCallError(op, err)
	}
	return signed, nil
}

var notFoundMarkers = []string{"nonexistent token", "does not exist"}

// mapCallError classifies ledger failures. Reverts naming a missing token
// become ErrMediaNotFound; other reverts are fatal; the rest are transport
// errors and retriable.
func mapCallError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range notFoundMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%s: %w: %w", op, domain.ErrMediaNotFound, err)
		}
	}
	if strings.Contains(msg, "execution reverted") || strings.Contains(msg, "revert") {
		return domain.NewFatalNetworkError(op, err)
	}
	return domain.NewNetworkError(op, err)
}
