package domain

import (
	"math/big"

	"github.com/holiman/uint256"
)

var hundredInt = uint256.NewInt(100)

// ValidateBidShares requires creator + owner + prevOwner == 100 exactly, in
// scaled-integer space. The error reports both sums as raw integers so they
// line up with ledger revert values.
func ValidateBidShares(shares BidShares) error {
	for _, s := range []struct {
		field string
		value Decimal
	}{
		{"creator", shares.Creator},
		{"owner", shares.Owner},
		{"prevOwner", shares.PrevOwner},
	} {
		if err := validatePercentage(s.field, s.value); err != nil {
			return err
		}
	}

	sum, err := shares.Creator.Add(shares.Owner)
	if err != nil {
		return err
	}
	sum, err = sum.Add(shares.PrevOwner)
	if err != nil {
		return err
	}
	if !sum.Equal(Hundred) {
		return Invariantf("bidShares", "The BidShares sum to %s, but they must sum to %s",
			sum.RawString(), Hundred.RawString())
	}
	return nil
}

func validatePercentage(field string, d Decimal) error {
	c, err := d.Cmp(Hundred)
	if err != nil {
		return err
	}
	if c > 0 {
		return Invariantf(field, "%s share %s exceeds 100", field, d.String())
	}
	return nil
}

// SplitShare is the ledger's entitlement formula: amount * share / 10^18 / 100,
// each division flooring. The intermediate product is computed in 512 bits.
// Shares not at scale Precision report false.
func SplitShare(share Decimal, amount *uint256.Int) (*uint256.Int, bool) {
	if share.offset != 0 {
		return nil, false
	}
	scaled, overflow := new(uint256.Int).MulDivOverflow(amount, &share.raw, scaleFactor)
	if overflow {
		return nil, false
	}
	return scaled.Div(scaled, hundredInt), true
}

// SplitsEvenly reports whether amount splits across the three shares with no
// remainder. A zero or negative amount never splits.
func SplitsEvenly(amount *big.Int, shares BidShares) bool {
	if amount == nil || amount.Sign() <= 0 {
		return false
	}
	a, overflow := uint256.FromBig(amount)
	if overflow {
		return false
	}

	total := new(uint256.Int)
	for _, share := range []Decimal{shares.Creator, shares.PrevOwner, shares.Owner} {
		part, ok := SplitShare(share, a)
		if !ok {
			return false
		}
		if _, carry := total.AddOverflow(total, part); carry {
			return false
		}
	}
	return total.Eq(a)
}

// ValidSellOnShare reports whether the bid's sell-on share fits in the
// headroom left by the previous owner share: sellOnShare + prevOwner <= 100.
func ValidSellOnShare(bid Bid, shares BidShares) bool {
	sum, err := bid.SellOnShare.Add(shares.PrevOwner)
	if err != nil {
		return false
	}
	c, err := sum.Cmp(Hundred)
	return err == nil && c <= 0
}
