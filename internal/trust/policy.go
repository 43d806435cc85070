// Package trust turns report severities into trust-score deductions and keeps
// every score inside [MinScore, MaxScore].
//
// NormalizeSeverity and ApplyDeduction are total: any input, including
// garbage coming straight from a JSON body, produces a value rather than an
// error. Callers at the API edge can hand them the raw decoded field.
package trust

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/apperr"
)

const (
	MinScore     = 0
	MaxScore     = 100
	DefaultScore = MaxScore

	MinSeverity     = 1
	MaxSeverity     = 99
	DefaultSeverity = MinSeverity

	// deductionPerSeverity is the number of points a single severity unit costs
	deductionPerSeverity = 2
)

var ErrInvalidAdjustment = fmt.Errorf("%w: exactly one of delta or set_to is required", apperr.ErrValidation)

// Deduction is the outcome of a report-triggered trust deduction
type Deduction struct {
	Deduction int `json:"deduction"`
	NextScore int `json:"next_score"`
}

// Adjustment is a manual admin change. Exactly one field must be set.
type Adjustment struct {
	Delta *int `json:"delta,omitempty"`
	SetTo *int `json:"set_to,omitempty"`
}

// NormalizeSeverity coerces raw into an integer severity in [1, 99].
// Numbers and numeric strings are floored and clamped; anything that is not
// a finite number (nil, NaN, "abc", booleans, "") returns fallback unchanged.
func NormalizeSeverity(raw any, fallback int) int {
	v, ok := toNumber(raw)
	if !ok {
		return fallback
	}

	v = math.Floor(v)
	if v < MinSeverity {
		return MinSeverity
	}
	if v > MaxSeverity {
		return MaxSeverity
	}
	return int(v)
}

// NormalizeSeverityDefault is NormalizeSeverity with the default fallback of 1
func NormalizeSeverityDefault(raw any) int {
	return NormalizeSeverity(raw, DefaultSeverity)
}

// ApplyDeduction computes the score after a report of rawSeverity.
// A non-finite current score is treated as 0. The result never drops below 0.
func ApplyDeduction(current float64, rawSeverity any) Deduction {
	if math.IsNaN(current) || math.IsInf(current, 0) {
		current = 0
	}
	score := int(math.Floor(math.Max(MinScore, math.Min(MaxScore, current))))

	deduction := NormalizeSeverityDefault(rawSeverity) * deductionPerSeverity
	next := score - deduction
	if next < MinScore {
		next = MinScore
	}

	return Deduction{Deduction: deduction, NextScore: next}
}

// ApplyAdjustment applies a manual delta or absolute value and clamps the
// result to [0, 100] in either direction.
func ApplyAdjustment(current int, adj Adjustment) (int, error) {
	if (adj.Delta == nil) == (adj.SetTo == nil) {
		return 0, ErrInvalidAdjustment
	}

	if adj.SetTo != nil {
		return Clamp(*adj.SetTo), nil
	}

	// clamping the delta first keeps current+delta from overflowing
	delta := *adj.Delta
	if delta > MaxScore {
		delta = MaxScore
	} else if delta < -MaxScore {
		delta = -MaxScore
	}
	return Clamp(Clamp(current) + delta), nil
}

// Clamp limits score to [MinScore, MaxScore]
func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

func toNumber(raw any) (float64, bool) {
	var v float64

	switch n := raw.(type) {
	case nil:
		return 0, false
	case int:
		v = float64(n)
	case int8:
		v = float64(n)
	case int16:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint:
		v = float64(n)
	case uint8:
		v = float64(n)
	case uint16:
		v = float64(n)
	case uint32:
		v = float64(n)
	case uint64:
		v = float64(n)
	case float32:
		v = float64(n)
	case float64:
		v = n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = f
	case *int:
		if n == nil {
			return 0, false
		}
		v = float64(*n)
	case *float64:
		if n == nil {
			return 0, false
		}
		v = *n
	case *string:
		if n == nil {
			return 0, false
		}
		return toNumber(*n)
	default:
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
