package value

import "strconv"

// formatNumber renders a Number the way `print` and string-concatenation
// with a number (spec.md §8: "v="+1 -> "v=1") do: decimal, without a
// trailing ".0" when the value is integral, and without superfluous trailing
// zeros otherwise.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
