package dataprep

import (
	"strconv"
	"strings"

	"github.com/RajatSharma-ops/Biased-AI/pkg/stats"
)

// UnknownCategory replaces missing categorical values.
const UnknownCategory = "Unknown"

// parseNumeric parses every non-missing value of col. ok is false when some
// present value is not a number or when nothing is present at all.
func parseNumeric(col []string) (vals []float64, present []bool, ok bool) {
	vals = make([]float64, len(col))
	present = make([]bool, len(col))
	found := false
	for i, v := range col {
		if IsMissing(v) {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, nil, false
		}
		vals[i], present[i], found = f, true, true
	}
	return vals, present, found
}

// IsNumericColumn reports whether every present value of col parses as a float.
func IsNumericColumn(col []string) bool {
	_, _, ok := parseNumeric(col)
	return ok
}

// ImputeMean parses col as numbers and fills missing entries with the mean of
// the present ones. It returns the filled column and the mean used.
func ImputeMean(col []string) ([]float64, float64) {
	vals, present, ok := parseNumeric(col)
	if !ok {
		return make([]float64, len(col)), 0
	}
	var seen []float64
	for i, p := range present {
		if p {
			seen = append(seen, vals[i])
		}
	}
	mean := stats.Mean(seen)
	for i, p := range present {
		if !p {
			vals[i] = mean
		}
	}
	return vals, mean
}

// ImputeConstant returns a copy of col with missing values replaced by constant.
func ImputeConstant(col []string, constant string) []string {
	out := make([]string, len(col))
	for i, v := range col {
		if IsMissing(v) {
			out[i] = constant
		} else {
			out[i] = strings.TrimSpace(v)
		}
	}
	return out
}
