package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseMinor(t *testing.T) {
	cases := []struct {
		input string
		want  int64
		err   error
	}{
		{"50.00", 5000, nil},
		{"50", 5000, nil},
		{"0.05", 5, nil},
		{"0.5", 50, nil},
		{"-12.34", -1234, nil},
		{"+7", 700, nil},
		{".25", 25, nil},
		{"1.234", 0, ErrTooManyDecimals},
		{"", 0, ErrInvalidAmount},
		{"abc", 0, ErrInvalidAmount},
		{"1.x", 0, ErrInvalidAmount},
		{"92233720368547757.99", 9223372036854775799, nil},
		{"92233720368547758.00", 0, ErrInvalidAmount},
		{"99999999999999999999", 0, ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ParseMinor(tc.input)
		if err != tc.err {
			t.Fatalf("ParseMinor(%q) error = %v, want %v", tc.input, err, tc.err)
		}
		if got != tc.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestFormatMinor(t *testing.T) {
	cases := []struct {
		input int64
		want  string
	}{
		{5000, "50.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-1234, "-12.34"},
		{100000000, "1000000.00"},
	}
	for _, tc := range cases {
		if got := FormatMinor(tc.input); got != tc.want {
			t.Fatalf("FormatMinor(%d) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestFeeMinor(t *testing.T) {
	cases := []struct {
		amount int64
		want   int64
	}{
		{5000, 5},     // 50.00 -> 0.05
		{100000, 100}, // 1000.00 -> 1.00
		{1500, 2},     // 15.00 -> 0.015 rounds up
		{1400, 1}, // 14.00 -> 0.014 rounds down
		{100, 0},  // 1.00 -> 0.001 rounds to zero
		{499, 0},
		{500, 1}, // 5.00 -> 0.005 rounds up
	}
	for _, tc := range cases {
		if got := FeeMinor(tc.amount); got != tc.want {
			t.Fatalf("FeeMinor(%d) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestShareMinor(t *testing.T) {
	if got := ShareMinor(100000, 7000, 10000); got != 70000 {
		t.Fatalf("expected 70000, got %d", got)
	}
	if got := ShareMinor(101, 5000, 10000); got != 50 {
		t.Fatalf("expected 50 (floored), got %d", got)
	}
	if got := ShareMinor(10, 50, 1000); got != 0 {
		t.Fatalf("expected 0 for a sub-cent share, got %d", got)
	}
	if got := ShareMinor(100, 0, 10000); got != 0 {
		t.Fatalf("expected 0 for zero holding, got %d", got)
	}
	if got := ShareMinor(100, 5000, 0); got != 0 {
		t.Fatalf("expected 0 for zero supply, got %d", got)
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(7000, 10000); got != "70.0000" {
		t.Fatalf("expected 70.0000, got %s", got)
	}
	if got := Percentage(1, 30000); got != "0.0033" {
		t.Fatalf("expected 0.0033, got %s", got)
	}
	if got := Percentage(5000, 0); got != "0.0000" {
		t.Fatalf("expected 0.0000 for zero supply, got %s", got)
	}
}

func TestConvertMinor(t *testing.T) {
	rate := decimal.RequireFromString("470.5")
	if got := ConvertMinor(10000, rate); got != 4705000 {
		t.Fatalf("expected 4705000, got %d", got)
	}
	one := decimal.NewFromInt(1)
	if got := ConvertMinor(12345, one); got != 12345 {
		t.Fatalf("expected identity conversion, got %d", got)
	}
}

func TestValueToInt64(t *testing.T) {
	cases := []struct {
		input any
		want  int64
	}{
		{nil, 0},
		{int64(42), 42},
		{int32(7), 7},
		{12, 12},
		{[]byte("99"), 99},
		{"100", 100},
	}
	for _, tc := range cases {
		if got := ValueToInt64(tc.input); got != tc.want {
			t.Fatalf("ValueToInt64(%#v) = %d, want %d", tc.input, got, tc.want)
		}
	}
}
