package dividends

import (
	"math"
	"testing"
)

func TestNumberFromMixedString(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"5.40", 5.40, true},
		{"$1,234.56", 1234.56, true},
		{"€ 1.234,56", 1.23456, true},
		{"-12.5 USD", -12.5, true},
		{"0", 0, true},
		{"", 0, false},
		{"€", 0, false},
		{"Not available", 0, false},
		{"1.2.3", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := NumberFromMixedString(tt.input)
		if ok != tt.wantOK {
			t.Errorf("NumberFromMixedString(%q) ok = %v, expected %v", tt.input, ok, tt.wantOK)
			continue
		}
		if ok && math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NumberFromMixedString(%q) = %v, expected %v", tt.input, got, tt.want)
		}
	}
}

func TestNumberFromMixedString_Idempotent(t *testing.T) {
	n, _ := NumberFromMixedString("5.40")
	again, ok := NumberFromMixedString(FormatMoney("", n))
	if !ok || again != n {
		t.Errorf("expected %v, got %v (ok=%v)", n, again, ok)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		symbol string
		amount float64
		want   string
	}{
		{"€", 11.5, "€ 11.50"},
		{"", 5.75, "5.75"},
		{"$", 0, "$ 0.00"},
		{"CA$", 1234.567, "CA$ 1234.57"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.symbol, tt.amount); got != tt.want {
			t.Errorf("FormatMoney(%q, %v) = %q, expected %q", tt.symbol, tt.amount, got, tt.want)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(0.1 + 0.2); got != 0.3 {
		t.Errorf("expected 0.3, got %v", got)
	}
	if got := Round2(10.0 / 3.0); got != 3.33 {
		t.Errorf("expected 3.33, got %v", got)
	}
}
