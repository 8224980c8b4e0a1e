package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// FeeRate is the fixed 0.1% carved out of every fee-bearing COIN movement.
var FeeRate = decimal.New(1, -3)

func ParseMinor(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	sign := int64(1)
	switch trimmed[0] {
	case '-':
		sign = -1
		trimmed = trimmed[1:]
	case '+':
		trimmed = trimmed[1:]
	}
	parts := strings.SplitN(trimmed, ".", 2)
	wholePart := parts[0]
	if wholePart == "" {
		wholePart = "0"
	}
	if !isDigits(wholePart) {
		return 0, ErrInvalidAmount
	}
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > 2 {
		return 0, ErrTooManyDecimals
	}
	if fracPart != "" && !isDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Reject amounts whose minor-unit value would not fit in int64.
	if whole > (math.MaxInt64-99)/100 {
		return 0, ErrInvalidAmount
	}
	frac := int64(0)
	if len(fracPart) == 1 {
		frac = int64(fracPart[0]-'0') * 10
	} else if len(fracPart) == 2 {
		value, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		frac = value
	}
	minor := whole*100 + frac
	return sign * minor, nil
}

func FormatMinor(value int64) string {
	negative := value < 0
	if negative {
		value = -value
	}
	whole := value / 100
	frac := value % 100
	formatted := fmt.Sprintf("%d.%02d", whole, frac)
	if negative {
		return "-" + formatted
	}
	return formatted
}

// FeeMinor computes round(amount * FeeRate, 2) in minor units, rounding half up.
func FeeMinor(amountMinor int64) int64 {
	return decimal.NewFromInt(amountMinor).Mul(FeeRate).Round(0).IntPart()
}

// ShareMinor computes floor(pool * holding / supply) in minor units. Flooring
// keeps the sum of shares at or below the pool, so a caller splitting a whole
// pool is left with a non-negative remainder to assign.
func ShareMinor(poolMinor, holdingMinor, supplyMinor int64) int64 {
	if supplyMinor <= 0 {
		return 0
	}
	return decimal.NewFromInt(poolMinor).
		Mul(decimal.NewFromInt(holdingMinor)).
		Div(decimal.NewFromInt(supplyMinor)).
		Floor().IntPart()
}

// Percentage renders holding/supply as a percentage string with 4 fraction digits.
func Percentage(holdingMinor, supplyMinor int64) string {
	if supplyMinor <= 0 {
		return "0.0000"
	}
	return decimal.NewFromInt(holdingMinor).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(supplyMinor)).
		StringFixed(4)
}

// ConvertMinor applies a display-currency rate to a COIN amount, half-up to 2 places.
func ConvertMinor(amountMinor int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amountMinor).Mul(rate).Round(0).IntPart()
}

func ValueToInt64(value interface{}) int64 {
	switch v := value.(type) {
	case nil:
		return 0
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case uint64:
		return int64(v)
	case uint32:
		return int64(v)
	case []byte:
		parsed, _ := strconv.ParseInt(string(v), 10, 64)
		return parsed
	case string:
		parsed, _ := strconv.ParseInt(v, 10, 64)
		return parsed
	default:
		parsed, _ := strconv.ParseInt(fmt.Sprint(v), 10, 64)
		return parsed
	}
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
