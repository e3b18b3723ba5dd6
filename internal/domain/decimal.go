package domain

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Precision is the number of fractional digits every protocol Decimal carries.
const Precision = 18

// Decimal is an immutable fixed-point number: a raw integer plus its scale.
// Protocol values always use scale Precision, so 10% is stored as 10 * 10^18.
// The zero value is protocol zero at scale Precision.
//
// Construction from human-readable numbers truncates toward zero on the 18th
// fractional digit. Arithmetic never goes through floating point.
type Decimal struct {
	raw uint256.Int
	// offset is scale - Precision.
	offset int8
}

// maxScale bounds the scale so 10^scale fits in 256 bits.
const maxScale = 77

var (
	scaleFactor = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Precision))

	// Hundred is 100 at protocol precision, the required BidShares sum.
	Hundred = MustDecimal(100)
)

// FromNumber scales n by 10^18. Digits past the 18th fractional digit are
// dropped. Negative and non-finite inputs are rejected.
func FromNumber(n float64) (Decimal, error) {
	if n != n || n > 1e59 || n < -1e59 {
		return Decimal{}, fmt.Errorf("decimal: %v is not representable", n)
	}
	return fromShopspring(decimal.NewFromFloat(n))
}

// FromString parses a human-readable number such as "33.3333".
func FromString(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("decimal: %w", err)
	}
	return fromShopspring(d)
}

// FromRaw wraps an already scaled ledger value.
func FromRaw(v *big.Int) (Decimal, error) {
	return FromRawScale(v, Precision)
}

// FromRawScale wraps a raw integer carrying scale fractional digits.
// Only scale Precision combines with protocol values.
func FromRawScale(v *big.Int, scale uint8) (Decimal, error) {
	if scale > maxScale {
		return Decimal{}, fmt.Errorf("decimal: scale %d exceeds %d", scale, maxScale)
	}
	offset := int8(int(scale) - Precision)
	if v == nil {
		return Decimal{offset: offset}, nil
	}
	if v.Sign() < 0 {
		return Decimal{}, fmt.Errorf("decimal: negative raw value %s", v.String())
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return Decimal{}, fmt.Errorf("decimal: raw value %s overflows 256 bits", v.String())
	}
	return Decimal{raw: *u, offset: offset}, nil
}

// MustDecimal is FromNumber for constants; it panics on invalid input.
func MustDecimal(n float64) Decimal {
	d, err := FromNumber(n)
	if err != nil {
		panic(err)
	}
	return d
}

func fromShopspring(d decimal.Decimal) (Decimal, error) {
	if d.IsNegative() {
		return Decimal{}, fmt.Errorf("decimal: negative value %s", d.String())
	}
	scaled := d.Shift(Precision).Truncate(0).BigInt()
	return FromRaw(scaled)
}

// Value returns the raw scaled integer for on-chain calls.
func (d Decimal) Value() *big.Int {
	return d.raw.ToBig()
}

// Raw returns a copy of the raw scaled integer.
func (d Decimal) Raw() *uint256.Int {
	return d.raw.Clone()
}

// Scale returns the number of fractional digits.
func (d Decimal) Scale() uint8 {
	return uint8(Precision + int(d.offset))
}

// IsZero reports whether the raw value is zero.
func (d Decimal) IsZero() bool {
	return d.raw.IsZero()
}

// Cmp compares two Decimals of equal scale.
func (d Decimal) Cmp(o Decimal) (int, error) {
	if d.offset != o.offset {
		return 0, fmt.Errorf("%w: %d vs %d", ErrScaleMismatch, d.Scale(), o.Scale())
	}
	return d.raw.Cmp(&o.raw), nil
}

// Equal reports whether both Decimals have the same scale and raw value.
func (d Decimal) Equal(o Decimal) bool {
	c, err := d.Cmp(o)
	return err == nil && c == 0
}

// Add returns d + o. Overflow of 256 bits is an error.
func (d Decimal) Add(o Decimal) (Decimal, error) {
	if d.offset != o.offset {
		return Decimal{}, fmt.Errorf("%w: %d vs %d", ErrScaleMismatch, d.Scale(), o.Scale())
	}
	var sum uint256.Int
	if _, overflow := sum.AddOverflow(&d.raw, &o.raw); overflow {
		return Decimal{}, fmt.Errorf("decimal: addition overflow")
	}
	return Decimal{raw: sum, offset: d.offset}, nil
}

// Sub returns d - o. Results below zero are an error.
func (d Decimal) Sub(o Decimal) (Decimal, error) {
	if d.offset != o.offset {
		return Decimal{}, fmt.Errorf("%w: %d vs %d", ErrScaleMismatch, d.Scale(), o.Scale())
	}
	var diff uint256.Int
	if _, underflow := diff.SubOverflow(&d.raw, &o.raw); underflow {
		return Decimal{}, fmt.Errorf("decimal: subtraction underflow")
	}
	return Decimal{raw: diff, offset: d.offset}, nil
}

// String renders the human-readable value, e.g. "33.3333".
func (d Decimal) String() string {
	return decimal.NewFromBigInt(d.raw.ToBig(), -int32(d.Scale())).String()
}

// RawString renders the raw scaled integer, e.g. "100000000000000000000".
func (d Decimal) RawString() string {
	return d.raw.Dec()
}
