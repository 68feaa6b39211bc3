package common

import (
	"strconv"
	"strings"
)

// JoinFloats renders values comma-separated with a decimal point and the
// shortest exact representation, independent of locale.
func JoinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
