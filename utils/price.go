package utils

import (
	"encoding/json"
	"strconv"
)

// NormalizePrice converts the heterogeneous price representation used
// across the catalog (a plain number or a currency-prefixed string like
// "৳120") into whole currency units. Strings are reduced to their digit
// run and parsed base-10; anything unparseable degrades to 0 rather
// than erroring. Fractional parts of string prices are therefore folded
// into the digit run ("12.99" -> 1299), matching the storefront's
// historical behaviour.
func NormalizePrice(price interface{}) int64 {
	switch v := price.(type) {
	case nil:
		return 0
	case int:
		return clampNonNegative(int64(v))
	case int32:
		return clampNonNegative(int64(v))
	case int64:
		return clampNonNegative(v)
	case float32:
		return clampNonNegative(int64(v))
	case float64:
		return clampNonNegative(int64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return clampNonNegative(int64(f))
	case string:
		return parseDigits(v)
	default:
		return 0
	}
}

func parseDigits(s string) int64 {
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) == 0 {
		return 0
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		// Digit run overflows int64; treat like any other malformed price.
		return 0
	}
	return n
}

func clampNonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
