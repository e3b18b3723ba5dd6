package chain

import (
	"context"
	"math/big"

	"tuli_go/internal/domain"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Market binds the auction (market) contract. It is read-only from the
// client's side; all market writes go through the media contract.
type Market struct {
	contract
}

func NewMarket(address common.Address, backend Backend) *Market {
	return &Market{contract{address: address, abi: marketABI, backend: backend}}
}

func (m *Market) Address() common.Address { return m.address }

func (m *Market) BidForTokenBidder(ctx context.Context, tokenID *big.Int, bidder common.Address) (domain.Bid, error) {
	out, err := m.call(ctx, "bidForTokenBidder", tokenID, bidder)
	if err != nil {
		return domain.Bid{}, err
	}
	t := *abi.ConvertType(out[0], new(BidTuple)).(*BidTuple)
	return t.Domain()
}

func (m *Market) CurrentAskForToken(ctx context.Context, tokenID *big.Int) (domain.Ask, error) {
	out, err := m.call(ctx, "currentAskForToken", tokenID)
	if err != nil {
		return domain.Ask{}, err
	}
	t := *abi.ConvertType(out[0], new(AskTuple)).(*AskTuple)
	return t.Domain(), nil
}

func (m *Market) BidSharesForToken(ctx context.Context, tokenID *big.Int) (domain.BidShares, error) {
	out, err := m.call(ctx, "bidSharesForToken", tokenID)
	if err != nil {
		return domain.BidShares{}, err
	}
	t := *abi.ConvertType(out[0], new(BidSharesTuple)).(*BidSharesTuple)
	return t.Domain()
}
