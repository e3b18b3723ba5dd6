package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MediaData is the content description recorded at mint time.
type MediaData struct {
	TokenURI     string
	MetadataURI  string
	ContentHash  [32]byte
	MetadataHash [32]byte
}

// BidShares is the split of sale proceeds. Each share is a percentage at
// protocol precision and the three must sum to exactly 100.
type BidShares struct {
	Creator   Decimal
	Owner     Decimal
	PrevOwner Decimal
}

// Ask is a standing sell order.
type Ask struct {
	Currency common.Address
	Amount   *big.Int // smallest currency unit
}

// Bid is a standing buy offer. SellOnShare is the percentage of the next
// sale returned to the current owner.
type Bid struct {
	Currency    common.Address
	Amount      *big.Int
	Bidder      common.Address
	Recipient   common.Address
	SellOnShare Decimal
}

// EIP712Signature is a typed-message signature consumed by the ledger.
type EIP712Signature struct {
	Deadline *big.Int // unix seconds
	V        uint8
	R        [32]byte
	S        [32]byte
}

// MediaRecord is the ledger state the content verifier needs.
type MediaRecord struct {
	ID           *big.Int
	TokenURI     string
	MetadataURI  string
	ContentHash  [32]byte
	MetadataHash [32]byte
}

// ConstructMediaData validates URIs and hex digests and builds a MediaData.
func ConstructMediaData(tokenURI, metadataURI, contentHash, metadataHash string) (MediaData, error) {
	if err := ValidateURI(tokenURI); err != nil {
		return MediaData{}, err
	}
	if err := ValidateURI(metadataURI); err != nil {
		return MediaData{}, err
	}
	ch, err := ParseBytes32(contentHash)
	if err != nil {
		return MediaData{}, err
	}
	mh, err := ParseBytes32(metadataHash)
	if err != nil {
		return MediaData{}, err
	}
	return MediaData{
		TokenURI:     tokenURI,
		MetadataURI:  metadataURI,
		ContentHash:  ch,
		MetadataHash: mh,
	}, nil
}

// ConstructBidShares builds BidShares from human percentages and validates the sum.
func ConstructBidShares(creator, owner, prevOwner float64) (BidShares, error) {
	c, err := FromNumber(creator)
	if err != nil {
		return BidShares{}, err
	}
	o, err := FromNumber(owner)
	if err != nil {
		return BidShares{}, err
	}
	p, err := FromNumber(prevOwner)
	if err != nil {
		return BidShares{}, err
	}
	shares := BidShares{Creator: c, Owner: o, PrevOwner: p}
	if err := ValidateBidShares(shares); err != nil {
		return BidShares{}, err
	}
	return shares, nil
}

// ConstructAsk validates the currency address and builds an Ask.
func ConstructAsk(currency string, amount *big.Int) (Ask, error) {
	cur, err := ParseAddress("currency", currency)
	if err != nil {
		return Ask{}, err
	}
	if amount == nil || amount.Sign() < 0 {
		return Ask{}, Invariantf("amount", "ask amount must be a non-negative integer")
	}
	return Ask{Currency: cur, Amount: new(big.Int).Set(amount)}, nil
}

// ConstructBid validates addresses and the sell-on share and builds a Bid.
func ConstructBid(currency string, amount *big.Int, bidder, recipient string, sellOnShare float64) (Bid, error) {
	cur, err := ParseAddress("currency", currency)
	if err != nil {
		return Bid{}, err
	}
	b, err := ParseAddress("bidder", bidder)
	if err != nil {
		return Bid{}, err
	}
	r, err := ParseAddress("recipient", recipient)
	if err != nil {
		return Bid{}, err
	}
	share, err := FromNumber(sellOnShare)
	if err != nil {
		return Bid{}, err
	}
	bid := Bid{
		Currency:    cur,
		Amount:      amount,
		Bidder:      b,
		Recipient:   r,
		SellOnShare: share,
	}
	if err := ValidateBid(bid); err != nil {
		return Bid{}, err
	}
	bid.Amount = new(big.Int).Set(amount)
	return bid, nil
}

// ValidateBid checks a Bid built by hand: a non-negative amount and a
// sell-on share in [0,100].
func ValidateBid(bid Bid) error {
	if bid.Amount == nil || bid.Amount.Sign() < 0 {
		return Invariantf("amount", "bid amount must be a non-negative integer")
	}
	return validatePercentage("sellOnShare", bid.SellOnShare)
}
