package domain

import (
	"errors"
	"math/big"
	"testing"
)

func TestFromNumber(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		raw  string
	}{
		{"integer", 100, "100000000000000000000"},
		{"zero", 0, "0"},
		{"fraction", 33.3333, "33333300000000000000"},
		{"tiny", 0.000000000000000001, "1"},
		{"sell on share", 90.1, "90100000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FromNumber(tt.in)
			if err != nil {
				t.Fatalf("FromNumber(%v) failed: %v", tt.in, err)
			}
			if d.RawString() != tt.raw {
				t.Errorf("raw = %s, want %s", d.RawString(), tt.raw)
			}
			if d.Scale() != Precision {
				t.Errorf("scale = %d, want %d", d.Scale(), Precision)
			}
		})
	}
}

func TestFromString_TruncatesTowardZero(t *testing.T) {
	d, err := FromString("1.0000000000000000019")
	if err != nil {
		t.Fatalf("FromString failed: %v", err)
	}
	if d.RawString() != "1000000000000000001" {
		t.Errorf("raw = %s, want 1000000000000000001", d.RawString())
	}
}

func TestFromNumber_Rejects(t *testing.T) {
	if _, err := FromNumber(-1); err == nil {
		t.Error("expected negative input to fail")
	}
	if _, err := FromString("not a number"); err == nil {
		t.Error("expected parse failure")
	}
	if _, err := FromRaw(big.NewInt(-5)); err == nil {
		t.Error("expected negative raw to fail")
	}
	overflow := new(big.Int).Lsh(big.NewInt(1), 256)
	if _, err := FromRaw(overflow); err == nil {
		t.Error("expected 2^256 to overflow")
	}
}

func TestDecimal_ZeroValue(t *testing.T) {
	var zero Decimal
	if zero.Scale() != Precision {
		t.Errorf("zero value scale = %d, want %d", zero.Scale(), Precision)
	}
	if !zero.Equal(MustDecimal(0)) {
		t.Error("zero value should equal MustDecimal(0)")
	}
	sum, err := MustDecimal(10).Add(zero)
	if err != nil || !sum.Equal(MustDecimal(10)) {
		t.Errorf("10 + zero = %v, %v", sum, err)
	}
}

func TestDecimal_ScaleMismatch(t *testing.T) {
	a := MustDecimal(10)
	unscaled, err := FromRawScale(big.NewInt(10), 0)
	if err != nil {
		t.Fatalf("FromRawScale: %v", err)
	}
	if unscaled.Scale() != 0 {
		t.Errorf("scale = %d, want 0", unscaled.Scale())
	}
	if _, err := FromRawScale(big.NewInt(1), maxScale+1); err == nil {
		t.Error("expected scale above 77 to fail")
	}

	if _, err := a.Cmp(unscaled); !errors.Is(err, ErrScaleMismatch) {
		t.Errorf("Cmp error = %v, want ErrScaleMismatch", err)
	}
	if _, err := a.Add(unscaled); !errors.Is(err, ErrScaleMismatch) {
		t.Errorf("Add error = %v, want ErrScaleMismatch", err)
	}
	if a.Equal(unscaled) {
		t.Error("Equal should be false across scales")
	}
}

func TestDecimal_Arithmetic(t *testing.T) {
	a := MustDecimal(33.3333)
	b := MustDecimal(66.6667)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !sum.Equal(Hundred) {
		t.Errorf("sum = %s, want 100", sum.String())
	}

	diff, err := Hundred.Sub(a)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if diff.String() != "66.6667" {
		t.Errorf("diff = %s, want 66.6667", diff.String())
	}

	if _, err := a.Sub(Hundred); err == nil {
		t.Error("expected underflow")
	}

	c, err := a.Cmp(b)
	if err != nil || c != -1 {
		t.Errorf("Cmp = %d, %v; want -1, nil", c, err)
	}
}

func TestDecimal_RawRoundTrip(t *testing.T) {
	d := MustDecimal(10)
	back, err := FromRaw(d.Value())
	if err != nil {
		t.Fatalf("FromRaw failed: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip = %s, want %s", back.RawString(), d.RawString())
	}

	// Value must hand out a copy.
	v := d.Value()
	v.SetInt64(0)
	if d.IsZero() {
		t.Error("mutating Value() leaked into the Decimal")
	}
}
