package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name  string
		price interface{}
		want  int64
	}{
		{"currency prefixed string", "৳123", 123},
		{"plain digit string", "123", 123},
		{"numeric", 123.0, 123},
		{"int", 123, 123},
		{"int64", int64(123), 123},
		{"json number", json.Number("123"), 123},
		{"no digits", "abc", 0},
		{"empty string", "", 0},
		{"nil", nil, 0},
		{"negative numeric", -5.0, 0},
		{"thousands separator", "৳1,250", 1250},
		// Known fidelity limitation: the digit strip folds the
		// fractional part into the integer run.
		{"fractional string", "12.99", 1299},
		{"fractional numeric truncates", 49.99, 49},
		{"unsupported type", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePrice(tt.price))
		})
	}
}
