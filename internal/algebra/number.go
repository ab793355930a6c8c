package algebra

import (
	"math"
	"strconv"
)

// formatPrecision is the number of decimal places kept when rendering a
// non-integral number. It hides float noise such as 0.30000000000000004.
const formatPrecision = 1e10

// FormatNumber renders a float in canonical text form.
//
// Integral values print without a decimal point ("14", "-3"). Everything else
// is rounded to ten decimal places with trailing zeros trimmed ("2.6666666667",
// "0.5"). Negative zero prints as "0".
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if isWhole(f) {
		return formatWhole(f)
	}
	r := math.Round(f*formatPrecision) / formatPrecision
	if isWhole(r) {
		return formatWhole(r)
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// IsInteger reports whether f is finite and has no fractional part.
func IsInteger(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)
}

func isWhole(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < 1e15
}

func formatWhole(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatInt(int64(f), 10)
}
