package utils

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	assert.Equal(t, 35, ParseValue(" 35 "))
	assert.Equal(t, 31.5, ParseValue("31.5"))
	assert.Equal(t, "Male", ParseValue(" Male"))
	assert.Equal(t, "", ParseValue(""))
	assert.Equal(t, "NaN", ParseValue("NaN"))
	assert.Equal(t, "-Inf", ParseValue(" -Inf "))
	assert.Equal(t, "Infinity", ParseValue("Infinity"))
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name    string
		in      interface{}
		want    float64
		wantErr bool
	}{
		{"int", 35, 35, false},
		{"int64", int64(2), 2, false},
		{"float", 31.5, 31.5, false},
		{"string", " 35.9 ", 35.9, false},
		{"json number", json.Number("12"), 12, false},
		{"nil", nil, 0, true},
		{"word", "abc", 0, true},
		{"nan string", "NaN", 0, true},
		{"inf", math.Inf(1), 0, true},
		{"bool", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToFloat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "northeast", Normalize("  NorthEast "))
	assert.Equal(t, "1", Normalize(1))
	assert.Equal(t, "", Normalize(nil))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "31.5", Stringify(31.5))
	assert.Equal(t, "7", Stringify(7))
	assert.Equal(t, "x", Stringify("x"))
}
