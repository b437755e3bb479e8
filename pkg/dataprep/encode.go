package dataprep

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/RajatSharma-ops/Biased-AI/pkg/data"
)

// Encoding methods for categorical feature columns.
const (
	EncodingOneHot = "onehot"
	EncodingLabel  = "label"
)

type columnKind int

const (
	kindNumeric columnKind = iota
	kindCategorical
)

// columnEncoder holds what was learned about one feature column.
type columnEncoder struct {
	name       string
	index      int
	kind       columnKind
	mean       float64
	categories []string
	catIndex   map[string]int
}

// Encoder turns the feature columns of a table into a numeric matrix.
// Numeric columns pass through with mean imputation; categorical columns are
// one-hot or label encoded with categories in first-seen order.
type Encoder struct {
	Method     string
	MaxMissing float64

	columns []columnEncoder
	dropped []string
}

func NewEncoder(method string, maxMissing float64) *Encoder {
	if method == "" {
		method = EncodingOneHot
	}
	return &Encoder{Method: method, MaxMissing: maxMissing}
}

// Fit learns column kinds, means and category sets for the given feature
// column indices of t.
func (e *Encoder) Fit(t *data.Table, featureCols []int) error {
	if e.Method != EncodingOneHot && e.Method != EncodingLabel {
		return fmt.Errorf("dataprep: unknown encoding %q", e.Method)
	}
	e.columns = e.columns[:0]
	e.dropped = nil
	for _, j := range featureCols {
		col := t.Column(j)
		name := t.Header[j]
		if e.MaxMissing > 0 && MissingRatio(col) > e.MaxMissing {
			e.dropped = append(e.dropped, name)
			continue
		}
		if IsNumericColumn(col) {
			_, mean := ImputeMean(col)
			e.columns = append(e.columns, columnEncoder{name: name, index: j, kind: kindNumeric, mean: mean})
			continue
		}
		if MissingRatio(col) == 1 {
			e.dropped = append(e.dropped, name)
			continue
		}
		ce := columnEncoder{name: name, index: j, kind: kindCategorical, catIndex: map[string]int{}}
		for _, v := range ImputeConstant(col, UnknownCategory) {
			if _, ok := ce.catIndex[v]; !ok {
				ce.catIndex[v] = len(ce.categories)
				ce.categories = append(ce.categories, v)
			}
		}
		e.columns = append(e.columns, ce)
	}
	return nil
}

// FeatureNames lists the output columns, one-hot columns as name=category.
func (e *Encoder) FeatureNames() []string {
	var names []string
	for _, c := range e.columns {
		if c.kind == kindCategorical && e.Method == EncodingOneHot {
			for _, cat := range c.categories {
				names = append(names, c.name+"="+cat)
			}
			continue
		}
		names = append(names, c.name)
	}
	return names
}

// Dropped lists feature columns skipped for having too many missing values.
func (e *Encoder) Dropped() []string { return e.dropped }

// Transform encodes every row of t. Categories not seen during Fit encode as
// an all-zero one-hot block or label -1.
func (e *Encoder) Transform(t *data.Table) [][]float64 {
	width := len(e.FeatureNames())
	out := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		vec := make([]float64, 0, width)
		for _, c := range e.columns {
			raw := row[c.index]
			switch {
			case c.kind == kindNumeric:
				v := c.mean
				if !IsMissing(raw) {
					if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
						v = f
					}
				}
				vec = append(vec, v)
			case e.Method == EncodingOneHot:
				block := make([]float64, len(c.categories))
				if k, ok := c.catIndex[categoryOf(raw)]; ok {
					block[k] = 1
				}
				vec = append(vec, block...)
			default:
				k, ok := c.catIndex[categoryOf(raw)]
				if !ok {
					k = -1
				}
				vec = append(vec, float64(k))
			}
		}
		out[i] = vec
	}
	return out
}

func categoryOf(raw string) string {
	if IsMissing(raw) {
		return UnknownCategory
	}
	return strings.TrimSpace(raw)
}

// LabelEncode maps labels to integers in sorted order: numerically when every
// label parses as a number, lexically otherwise. classes[k] is the label
// encoded as k.
func LabelEncode(col []string) (y []int, classes []string) {
	seen := map[string]struct{}{}
	for _, v := range col {
		seen[strings.TrimSpace(v)] = struct{}{}
	}
	for v := range seen {
		classes = append(classes, v)
	}
	numeric := true
	nums := make(map[string]float64, len(classes))
	for _, v := range classes {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[v] = f
	}
	sort.Slice(classes, func(a, b int) bool {
		if numeric && nums[classes[a]] != nums[classes[b]] {
			return nums[classes[a]] < nums[classes[b]]
		}
		return classes[a] < classes[b]
	})
	index := make(map[string]int, len(classes))
	for k, v := range classes {
		index[v] = k
	}
	y = make([]int, len(col))
	for i, v := range col {
		y[i] = index[strings.TrimSpace(v)]
	}
	return y, classes
}

var positiveNames = []string{"1", "true", "yes", "y", "positive"}

// PositiveClass picks the label index treated as the favourable outcome.
// An explicit label wins; otherwise the first conventional positive name
// present, otherwise the last class in sorted order.
func PositiveClass(classes []string, explicit string) (int, error) {
	if explicit != "" {
		for k, c := range classes {
			if c == strings.TrimSpace(explicit) {
				return k, nil
			}
		}
		return 0, &LabelNotFoundError{Label: explicit, Labels: classes}
	}
	for _, name := range positiveNames {
		for k, c := range classes {
			if strings.EqualFold(c, name) {
				return k, nil
			}
			if f, err := strconv.ParseFloat(c, 64); err == nil && name == "1" && f == 1 {
				return k, nil
			}
		}
	}
	return len(classes) - 1, nil
}
