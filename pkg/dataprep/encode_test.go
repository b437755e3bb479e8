package dataprep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RajatSharma-ops/Biased-AI/pkg/data"
)

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "  ", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", " None "} {
		assert.True(t, IsMissing(v), "%q", v)
	}
	for _, v := range []string{"0", "no", "-", "unknown", "none", "NONE", "na", "Na", "Null"} {
		assert.False(t, IsMissing(v), "%q", v)
	}
}

func TestMissingRatio(t *testing.T) {
	assert.Equal(t, 0.0, MissingRatio(nil))
	assert.Equal(t, 0.5, MissingRatio([]string{"1", "", "NA", "4"}))
}

func TestDropIncomplete(t *testing.T) {
	tbl := &data.Table{
		Header: []string{"x", "y", "a"},
		Rows:   [][]string{{"1", "yes", "F"}, {"", "no", "M"}, {"3", "NA", "F"}, {"4", "no", ""}},
	}
	kept, dropped := DropIncomplete(tbl, 1, 2)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, [][]string{{"1", "yes", "F"}, {"", "no", "M"}}, kept.Rows)
	assert.Len(t, tbl.Rows, 4, "input is untouched")
}

func TestImputeMean(t *testing.T) {
	vals, mean := ImputeMean([]string{"1", "", "3", "NA"})
	assert.Equal(t, 2.0, mean)
	assert.Equal(t, []float64{1, 2, 3, 2}, vals)

	assert.True(t, IsNumericColumn([]string{"1.5", "", "-2"}))
	assert.False(t, IsNumericColumn([]string{"1", "x"}))
	assert.False(t, IsNumericColumn([]string{"", "NA"}))
}

func TestImputeConstant(t *testing.T) {
	assert.Equal(t, []string{"a", UnknownCategory, "b"}, ImputeConstant([]string{" a", "null", "b"}, UnknownCategory))
}

func encoderTable() *data.Table {
	return &data.Table{
		Header: []string{"age", "city", "notes"},
		Rows: [][]string{
			{"20", "Paris", ""},
			{"", "Lyon", ""},
			{"40", "", "x"},
			{"30", "Paris", ""},
		},
	}
}

func TestEncoder_OneHot(t *testing.T) {
	tbl := encoderTable()
	enc := NewEncoder(EncodingOneHot, 0.5)
	require.NoError(t, enc.Fit(tbl, []int{0, 1, 2}))

	assert.Equal(t, []string{"notes"}, enc.Dropped())
	assert.Equal(t, []string{"age", "city=Paris", "city=Lyon", "city=Unknown"}, enc.FeatureNames())
	assert.Equal(t, [][]float64{
		{20, 1, 0, 0},
		{30, 0, 1, 0},
		{40, 0, 0, 1},
		{30, 1, 0, 0},
	}, enc.Transform(tbl))

	unseen := &data.Table{Header: tbl.Header, Rows: [][]string{{"10", "Nice", ""}}}
	assert.Equal(t, [][]float64{{10, 0, 0, 0}}, enc.Transform(unseen))
}

func TestEncoder_Label(t *testing.T) {
	tbl := encoderTable()
	enc := NewEncoder(EncodingLabel, 0.5)
	require.NoError(t, enc.Fit(tbl, []int{0, 1}))

	assert.Equal(t, []string{"age", "city"}, enc.FeatureNames())
	X := enc.Transform(tbl)
	assert.Equal(t, []float64{0, 1, 2, 0}, []float64{X[0][1], X[1][1], X[2][1], X[3][1]})

	unseen := &data.Table{Header: tbl.Header, Rows: [][]string{{"10", "Nice", ""}}}
	assert.Equal(t, -1.0, enc.Transform(unseen)[0][1])
}

func TestEncoder_UnknownMethod(t *testing.T) {
	err := NewEncoder("freq", 0).Fit(encoderTable(), []int{0})
	assert.ErrorContains(t, err, "unknown encoding")
}

func TestLabelEncode(t *testing.T) {
	tests := []struct {
		name    string
		col     []string
		y       []int
		classes []string
	}{
		{"lexical", []string{"yes", "no", "yes"}, []int{1, 0, 1}, []string{"no", "yes"}},
		{"numeric", []string{"10", "9", "10"}, []int{1, 0, 1}, []string{"9", "10"}},
		{"trimmed", []string{" a", "b "}, []int{0, 1}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, classes := LabelEncode(tt.col)
			assert.Equal(t, tt.y, y)
			assert.Equal(t, tt.classes, classes)
		})
	}
}

func TestPositiveClass(t *testing.T) {
	tests := []struct {
		name     string
		classes  []string
		explicit string
		want     int
	}{
		{"explicit", []string{"approved", "denied"}, "denied", 1},
		{"numeric one", []string{"0", "1"}, "", 1},
		{"float one", []string{"0.0", "1.0"}, "", 1},
		{"yes", []string{"no", "yes"}, "", 1},
		{"case folded", []string{"FALSE", "TRUE"}, "", 1},
		{"fallback to last", []string{"high", "low", "mid"}, "", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PositiveClass(tt.classes, tt.explicit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := PositiveClass([]string{"no", "yes"}, "maybe")
	var notFound *LabelNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "maybe", notFound.Label)
}
