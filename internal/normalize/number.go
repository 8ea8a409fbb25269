package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number coerces v to a finite float64. JSON numbers, numeric strings and
// booleans convert; everything else, NaN and infinities become 0.
func Number(v any) float64 {
	n, _ := numberValue(v)
	return n
}

// Integer reports v as an int when it is a whole number or a numeric string.
// Null, booleans, blank strings and labels such as "C1" are not integers.
func Integer(v any) (int, bool) {
	switch val := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		if strings.TrimSpace(val) == "" {
			return 0, false
		}
	}
	n, ok := numberValue(v)
	if !ok || n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

func numberValue(v any) (float64, bool) {
	var n float64
	switch val := v.(type) {
	case float64:
		n = val
	case float32:
		n = float64(val)
	case int:
		n = float64(val)
	case int64:
		n = float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		n = f
	case bool:
		if val {
			n = 1
		}
	case nil:
		return 0, true
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Clamp bounds x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}

// ClampInt bounds x to [lo, hi]
func ClampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
