package dataprep

import (
	"strings"

	"github.com/RajatSharma-ops/Biased-AI/pkg/data"
)

// missingTokens are matched exactly after trimming, so a category spelled
// "none" or "na" in lower case stays a real value.
var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {},
	"null": {}, "NULL": {}, "None": {},
}

// IsMissing reports whether a raw cell counts as a missing value.
func IsMissing(v string) bool {
	_, ok := missingTokens[strings.TrimSpace(v)]
	return ok
}

// MissingRatio is the fraction of missing cells in col.
func MissingRatio(col []string) float64 {
	if len(col) == 0 {
		return 0
	}
	n := 0
	for _, v := range col {
		if IsMissing(v) {
			n++
		}
	}
	return float64(n) / float64(len(col))
}

// DropIncomplete returns a table holding only the rows where every listed
// column is present, in original order, and the number of rows dropped.
// The input table is not modified.
func DropIncomplete(t *data.Table, cols ...int) (*data.Table, int) {
	out := &data.Table{Header: t.Header, Rows: make([][]string, 0, len(t.Rows))}
	for _, row := range t.Rows {
		keep := true
		for _, c := range cols {
			if IsMissing(row[c]) {
				keep = false
				break
			}
		}
		if keep {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, len(t.Rows) - len(out.Rows)
}
