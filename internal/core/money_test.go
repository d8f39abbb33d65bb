package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.005", true}, // no rounding at parse time
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"1e50000000", "", false},
		{"1e-50000000", "", false},
		{"1000000000000", "", false},
		{"999999999999.99", "999999999999.99", true},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCoerceAmount(t *testing.T) {
	if !CoerceAmount("12,5").Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("expected comma decimal to parse")
	}
	if !CoerceAmount("n/a").IsZero() {
		t.Fatalf("expected unparseable amount to coerce to zero")
	}
	for _, in := range []string{"1e50000000", "-1e50000000", "1e-50000000", "1000000000000"} {
		if !CoerceAmount(in).IsZero() {
			t.Fatalf("CoerceAmount(%s) should coerce to zero", in)
		}
	}
}

func TestAmountInRange(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"15", true},
		{"0.01", true},
		{"-2.5", true},
		{"999999999999.99", true},
		{"1000000000000", false},
		{"1e12", false},
		{"1e50000000", false},
		{"1e-50000000", false},
		{"0.0000000000001", false},
	}
	for _, tc := range cases {
		if got := AmountInRange(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Errorf("AmountInRange(%s) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"45":     "$45.00",
		"0":      "$0.00",
		"1.005":  "$1.01",
		"0.1":    "$0.10",
		"-2.5":   "-$2.50",
		"1234.5": "$1234.50",
	}
	for in, want := range cases {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatAmount(%s) = %q, want %q", in, got, want)
		}
	}
}
