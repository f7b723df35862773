package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Weight is a test weight in millionths of a percentage point.
// Fixed-point storage keeps per-course sums exact: 33.33 + 33.33 + 33.34
// is exactly FullWeight, which float64 summation does not guarantee, and
// 33.333 * 3 is exactly 99.999.
type Weight int64

// FullWeight is the required per-course weight total (100 percentage points).
const FullWeight Weight = 100 * weightScale

// WeightDecimals is the number of decimal places a Weight holds exactly.
const WeightDecimals = 6

const weightScale = 1_000_000

// maxWeightPercent bounds parsed weights so sums of many tests stay in int64.
var maxWeightPercent = decimal.NewFromInt(1_000_000_000)

// ErrWeightPrecision indicates a weight with more than WeightDecimals decimal
// places. ParseWeight still returns the nearest Weight alongside it.
var ErrWeightPrecision = errors.New("weight has more than six decimal places")

// ParseWeight parses a decimal percentage such as "40", "33.5" or "33.333".
//
// A value finer than a millionth of a point is returned rounded together
// with ErrWeightPrecision; callers that can tolerate it keep the row and
// treat its course as not summing to exactly 100.
func ParseWeight(s string) (Weight, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse weight %q: %w", s, err)
	}
	if d.Abs().GreaterThan(maxWeightPercent) {
		return 0, fmt.Errorf("weight %s out of range", s)
	}

	scaled := d.Shift(WeightDecimals)
	if !scaled.IsInteger() {
		return Weight(scaled.Round(0).IntPart()), fmt.Errorf("%w: %s", ErrWeightPrecision, strings.TrimSpace(s))
	}
	return Weight(scaled.IntPart()), nil
}

// WeightFromFloat converts a percentage to fixed point using the shortest
// decimal form of f, so 0.1 is exactly 100000 millionths.
func WeightFromFloat(f float64) (Weight, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("weight %v is not finite", f)
	}
	return ParseWeight(strconv.FormatFloat(f, 'f', -1, 64))
}

// Percent returns the weight as percentage points.
func (w Weight) Percent() float64 { return float64(w) / weightScale }

// Fraction returns the weight as a fraction of the full course (weight/100).
func (w Weight) Fraction() float64 { return w.Percent() / 100 }

// String formats the weight with the minimum number of decimals.
func (w Weight) String() string {
	return decimal.New(int64(w), -WeightDecimals).String()
}

// MarshalJSON encodes the weight as percentage points.
func (w Weight) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Percent())
}

// UnmarshalJSON decodes percentage points.
func (w *Weight) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	parsed, err := WeightFromFloat(f)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
