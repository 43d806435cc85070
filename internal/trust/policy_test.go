package trust

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/apperr"
)

func TestNormalizeSeverityFallback(t *testing.T) {
	assert.Equal(t, 5, NormalizeSeverity("not a number", 5))
	assert.Equal(t, 7, NormalizeSeverity(math.NaN(), 7))
	assert.Equal(t, 3, NormalizeSeverity(nil, 3))
	assert.Equal(t, 4, NormalizeSeverity(math.Inf(1), 4))
	assert.Equal(t, 2, NormalizeSeverity("", 2))
	assert.Equal(t, 6, NormalizeSeverity(true, 6))
	assert.Equal(t, 8, NormalizeSeverity([]int{1}, 8))
}

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int
	}{
		{"floors fractions", 1.9, 1},
		{"zero clamps up", 0, 1},
		{"negative clamps up", -5, 1},
		{"large clamps down", 150, 99},
		{"numeric string", "10", 10},
		{"fractional string", "42.8", 42},
		{"padded string", "  12 ", 12},
		{"exponent string", "1e3", 99},
		{"json number", json.Number("33"), 33},
		{"int64", int64(50), 50},
		{"float32", float32(98.99), 98},
		{"upper bound", 99, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSeverityDefault(tt.raw))
		})
	}
}

func TestApplyDeduction(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		severity any
		want     Deduction
	}{
		{"plain", 100, 5, Deduction{Deduction: 10, NextScore: 90}},
		{"clamped at zero", 5, 5, Deduction{Deduction: 10, NextScore: 0}},
		{"severity floored", 80, 1.8, Deduction{Deduction: 2, NextScore: 78}},
		{"severity clamped", 80, "200", Deduction{Deduction: 198, NextScore: 0}},
		{"invalid current", math.NaN(), 10, Deduction{Deduction: 20, NextScore: 0}},
		{"missing severity", 50, nil, Deduction{Deduction: 2, NextScore: 48}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyDeduction(tt.current, tt.severity))
		})
	}
}

func TestApplyDeductionNeverIncreases(t *testing.T) {
	for score := 0; score <= MaxScore; score += 7 {
		for _, sev := range []any{-3, 0, 1, 17.5, "99", "x", nil} {
			d := ApplyDeduction(float64(score), sev)
			assert.LessOrEqual(t, d.NextScore, score)
			assert.GreaterOrEqual(t, d.NextScore, MinScore)
			assert.GreaterOrEqual(t, d.Deduction, 2)
		}
	}
}

func TestApplyAdjustment(t *testing.T) {
	intp := func(v int) *int { return &v }

	tests := []struct {
		name    string
		current int
		adj     Adjustment
		want    int
	}{
		{"raise", 40, Adjustment{Delta: intp(15)}, 55},
		{"lower", 40, Adjustment{Delta: intp(-15)}, 25},
		{"raise past max", 95, Adjustment{Delta: intp(20)}, 100},
		{"lower past min", 5, Adjustment{Delta: intp(-20)}, 0},
		{"huge delta", 50, Adjustment{Delta: intp(math.MaxInt)}, 100},
		{"huge negative delta", 50, Adjustment{Delta: intp(math.MinInt)}, 0},
		{"set", 10, Adjustment{SetTo: intp(70)}, 70},
		{"set above max", 10, Adjustment{SetTo: intp(250)}, 100},
		{"set below min", 10, Adjustment{SetTo: intp(-1)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyAdjustment(tt.current, tt.adj)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyAdjustmentRequiresExactlyOne(t *testing.T) {
	v := 10

	_, err := ApplyAdjustment(50, Adjustment{})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = ApplyAdjustment(50, Adjustment{Delta: &v, SetTo: &v})
	assert.ErrorIs(t, err, ErrInvalidAdjustment)
}
