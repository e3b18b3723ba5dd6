package domain

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func shares(t *testing.T, creator, owner, prev float64) BidShares {
	t.Helper()
	return BidShares{
		Creator:   MustDecimal(creator),
		Owner:     MustDecimal(owner),
		PrevOwner: MustDecimal(prev),
	}
}

func mustRawScale(t *testing.T, v int64, scale uint8) Decimal {
	t.Helper()
	d, err := FromRawScale(big.NewInt(v), scale)
	if err != nil {
		t.Fatalf("FromRawScale: %v", err)
	}
	return d
}

func TestValidateBidShares(t *testing.T) {
	t.Run("sums to 100", func(t *testing.T) {
		if err := ValidateBidShares(shares(t, 10, 90, 0)); err != nil {
			t.Errorf("expected valid shares, got %v", err)
		}
	})

	t.Run("precise shares sum to 100", func(t *testing.T) {
		if err := ValidateBidShares(shares(t, 33.3333, 33.3333, 33.3334)); err != nil {
			t.Errorf("expected valid shares, got %v", err)
		}
	})

	t.Run("reports actual and required sums", func(t *testing.T) {
		err := ValidateBidShares(shares(t, 10, 70, 10))
		if err == nil {
			t.Fatal("expected error")
		}
		want := "invariant failed: The BidShares sum to 90000000000000000000, but they must sum to 100000000000000000000"
		if err.Error() != want {
			t.Errorf("error = %q, want %q", err.Error(), want)
		}
		if !errors.Is(err, ErrInvariant) {
			t.Error("expected ErrInvariant")
		}
	})

	t.Run("share above 100", func(t *testing.T) {
		if err := ValidateBidShares(shares(t, 101, 0, 0)); !errors.Is(err, ErrInvariant) {
			t.Errorf("expected invariant error, got %v", err)
		}
	})

	t.Run("omitted share is zero", func(t *testing.T) {
		s := BidShares{Creator: MustDecimal(10), Owner: MustDecimal(90)}
		if err := ValidateBidShares(s); err != nil {
			t.Errorf("expected valid shares, got %v", err)
		}
	})

	t.Run("foreign scale share", func(t *testing.T) {
		s := shares(t, 10, 90, 0)
		s.PrevOwner = mustRawScale(t, 0, 0)
		if err := ValidateBidShares(s); !errors.Is(err, ErrScaleMismatch) {
			t.Errorf("expected ErrScaleMismatch, got %v", err)
		}
	})
}

func TestSplitsEvenly(t *testing.T) {
	hundredEth := MustDecimal(100).Value()
	ninetyNineEth := MustDecimal(99).Value()

	tests := []struct {
		name   string
		amount *big.Int
		shares BidShares
		want   bool
	}{
		{"100 units at 10/90/0", hundredEth, shares(t, 10, 90, 0), true},
		{"99 units at 10/90/0", ninetyNineEth, shares(t, 10, 90, 0), true},
		{"200 cents at thirds", big.NewInt(200), shares(t, 33.3333, 33.3333, 33.3334), false},
		{"100 at 50/50/0", big.NewInt(100), shares(t, 50, 50, 0), true},
		{"101 at 50/50/0", big.NewInt(101), shares(t, 50, 50, 0), false},
		{"zero amount", big.NewInt(0), shares(t, 10, 90, 0), false},
		{"nil amount", nil, shares(t, 10, 90, 0), false},
		{"negative amount", big.NewInt(-100), shares(t, 10, 90, 0), false},
		{"omitted prevOwner", hundredEth, BidShares{Creator: MustDecimal(10), Owner: MustDecimal(90)}, true},
		{"foreign scale share", hundredEth, BidShares{Creator: MustDecimal(10), Owner: MustDecimal(90), PrevOwner: mustRawScale(t, 0, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitsEvenly(tt.amount, tt.shares); got != tt.want {
				t.Errorf("SplitsEvenly = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitShare_LargeAmount(t *testing.T) {
	// 2^200 * 10e18 overflows 256 bits before the division; the 512-bit
	// intermediate must still produce the exact tenth.
	amount := new(big.Int).Lsh(big.NewInt(10), 200)
	a := uint256.MustFromBig(amount)

	part, ok := SplitShare(MustDecimal(10), a)
	if !ok {
		t.Fatal("unexpected overflow")
	}
	want := new(big.Int).Lsh(big.NewInt(1), 200)
	if part.ToBig().Cmp(want) != 0 {
		t.Errorf("part = %s, want %s", part.ToBig(), want)
	}
}

func TestValidSellOnShare(t *testing.T) {
	s := shares(t, 0, 90, 10)

	ok := Bid{SellOnShare: MustDecimal(90)}
	if !ValidSellOnShare(ok, s) {
		t.Error("90 + 10 should fit")
	}

	over := Bid{SellOnShare: MustDecimal(90.1)}
	if ValidSellOnShare(over, s) {
		t.Error("90.1 + 10 should not fit")
	}

	omitted := Bid{Amount: big.NewInt(100)}
	if !ValidSellOnShare(omitted, shares(t, 10, 90, 0)) {
		t.Error("a bid without a sell-on share should fit")
	}
}
