package chain

import (
	"fmt"
	"math/big"

	"tuli_go/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

// ABI tuple mirrors. Field order follows the contract structs so that
// abi.ConvertType can copy unpacked values positionally.

type D256 struct {
	Value *big.Int `abi:"value"`
}

type MediaDataTuple struct {
	TokenURI     string   `abi:"tokenURI"`
	MetadataURI  string   `abi:"metadataURI"`
	ContentHash  [32]byte `abi:"contentHash"`
	MetadataHash [32]byte `abi:"metadataHash"`
}

type BidSharesTuple struct {
	PrevOwner D256 `abi:"prevOwner"`
	Creator   D256 `abi:"creator"`
	Owner     D256 `abi:"owner"`
}

type AskTuple struct {
	Amount   *big.Int       `abi:"amount"`
	Currency common.Address `abi:"currency"`
}

type BidTuple struct {
	Amount      *big.Int       `abi:"amount"`
	Currency    common.Address `abi:"currency"`
	Bidder      common.Address `abi:"bidder"`
	Recipient   common.Address `abi:"recipient"`
	SellOnShare D256           `abi:"sellOnShare"`
}

type SigTuple struct {
	Deadline *big.Int `abi:"deadline"`
	V        uint8    `abi:"v"`
	R        [32]byte `abi:"r"`
	S        [32]byte `abi:"s"`
}

func d256(d domain.Decimal) D256 { return D256{Value: d.Value()} }

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func NewMediaDataTuple(md domain.MediaData) MediaDataTuple {
	return MediaDataTuple{
		TokenURI:     md.TokenURI,
		MetadataURI:  md.MetadataURI,
		ContentHash:  md.ContentHash,
		MetadataHash: md.MetadataHash,
	}
}

func (t MediaDataTuple) Domain() domain.MediaData {
	return domain.MediaData{
		TokenURI:     t.TokenURI,
		MetadataURI:  t.MetadataURI,
		ContentHash:  t.ContentHash,
		MetadataHash: t.MetadataHash,
	}
}

func NewBidSharesTuple(s domain.BidShares) BidSharesTuple {
	return BidSharesTuple{
		PrevOwner: d256(s.PrevOwner),
		Creator:   d256(s.Creator),
		Owner:     d256(s.Owner),
	}
}

// Domain converts the on-ledger shares back into Decimals.
func (t BidSharesTuple) Domain() (domain.BidShares, error) {
	prev, err := domain.FromRaw(t.PrevOwner.Value)
	if err != nil {
		return domain.BidShares{}, fmt.Errorf("prevOwner share: %w", err)
	}
	creator, err := domain.FromRaw(t.Creator.Value)
	if err != nil {
		return domain.BidShares{}, fmt.Errorf("creator share: %w", err)
	}
	owner, err := domain.FromRaw(t.Owner.Value)
	if err != nil {
		return domain.BidShares{}, fmt.Errorf("owner share: %w", err)
	}
	return domain.BidShares{Creator: creator, Owner: owner, PrevOwner: prev}, nil
}

func NewAskTuple(a domain.Ask) AskTuple {
	return AskTuple{Amount: nonNil(a.Amount), Currency: a.Currency}
}

func (t AskTuple) Domain() domain.Ask {
	return domain.Ask{Currency: t.Currency, Amount: nonNil(t.Amount)}
}

func NewBidTuple(b domain.Bid) BidTuple {
	return BidTuple{
		Amount:      nonNil(b.Amount),
		Currency:    b.Currency,
		Bidder:      b.Bidder,
		Recipient:   b.Recipient,
		SellOnShare: d256(b.SellOnShare),
	}
}

func (t BidTuple) Domain() (domain.Bid, error) {
	share, err := domain.FromRaw(t.SellOnShare.Value)
	if err != nil {
		return domain.Bid{}, fmt.Errorf("sellOnShare: %w", err)
	}
	return domain.Bid{
		Currency:    t.Currency,
		Amount:      nonNil(t.Amount),
		Bidder:      t.Bidder,
		Recipient:   t.Recipient,
		SellOnShare: share,
	}, nil
}

func NewSigTuple(sig domain.EIP712Signature) SigTuple {
	return SigTuple{Deadline: nonNil(sig.Deadline), V: sig.V, R: sig.R, S: sig.S}
}

func (t SigTuple) Domain() domain.EIP712Signature {
	return domain.EIP712Signature{Deadline: nonNil(t.Deadline), V: t.V, R: t.R, S: t.S}
}
