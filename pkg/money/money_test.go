package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFromRupeeFloatRoundsToPaise(t *testing.T) {
	t.Parallel()

	cases := []struct {
		rupees float64
		want   Paise
	}{
		{100, 10000},
		{99.99, 9999},
		{0.005, 1},
		{0, 0},
		{1234.56, 123456},
	}
	for _, tc := range cases {
		if got := FromRupeeFloat(tc.rupees); got != tc.want {
			t.Fatalf("FromRupeeFloat(%v) = %d, want %d", tc.rupees, got, tc.want)
		}
	}
}

func TestRupeesRoundTrip(t *testing.T) {
	t.Parallel()

	p := FromRupees(decimal.RequireFromString("249.50"))
	if p != 24950 {
		t.Fatalf("unexpected paise %d", p)
	}
	if got := p.Rupees().StringFixed(2); got != "249.50" {
		t.Fatalf("unexpected rupees %s", got)
	}
}

func TestMul(t *testing.T) {
	t.Parallel()

	if got := Paise(10000).Mul(3); got != 30000 {
		t.Fatalf("unexpected line total %d", got)
	}
}
