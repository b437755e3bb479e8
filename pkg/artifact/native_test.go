package artifact

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Rate  float32 `json:"rate"`
	Count uint8   `json:"count"`
}

type record struct {
	Name     string            `json:"name"`
	Skip     string            `json:"-"`
	Inner    inner             `json:"inner"`
	Ptr      *inner            `json:"ptr"`
	Tags     []string          `json:"tags"`
	Labels   map[string]int    `json:"labels"`
	When     time.Time         `json:"when"`
	Took     time.Duration     `json:"took"`
	Err      error             `json:"err"`
	Raw      []byte            `json:"raw"`
	Untagged bool
	hidden   int
}

type custom struct{}

func (custom) Native() any { return []any{"custom"} }

func TestToNative_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"int", 3, int64(3)},
		{"int8", int8(-2), int64(-2)},
		{"uint", uint(7), int64(7)},
		{"huge uint", uint64(math.MaxUint64), float64(math.MaxUint64)},
		{"float32", float32(0.1), 0.1},
		{"float64", 2.5, 2.5},
		{"NaN", math.NaN(), "NaN"},
		{"+Inf", math.Inf(1), "+Inf"},
		{"-Inf", math.Inf(-1), "-Inf"},
		{"string", "x", "x"},
		{"bytes", []byte("ab"), "ab"},
		{"duration", 1500 * time.Millisecond, 1.5},
		{"error", errors.New("boom"), "boom"},
		{"nil slice", []int(nil), []any{}},
		{"array", [2]int{1, 2}, []any{int64(1), int64(2)}},
		{"nil pointer", (*inner)(nil), nil},
		{"nativer", custom{}, []any{"custom"}},
		{"complex", complex(1, 2), "(1+2i)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToNative(tt.in))
		})
	}
}

func TestToNative_Struct(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := record{
		Name:   "audit",
		Skip:   "secret",
		Inner:  inner{Rate: 0.5, Count: 3},
		Tags:   []string{"a", "b"},
		Labels: map[string]int{"z": 1, "a": 2},
		When:   when,
		Took:   2 * time.Second,
		Err:    errors.New("bad"),
		Raw:    []byte("hi"),
	}

	out, ok := ToNative(r).(*OrderedMap)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "inner", "ptr", "tags", "labels", "when", "took", "err", "raw", "Untagged"}, out.Keys())

	labels, _ := out.Get("labels")
	assert.Equal(t, []string{"a", "z"}, labels.(*OrderedMap).Keys(), "map keys are sorted")
	ptr, _ := out.Get("ptr")
	assert.Nil(t, ptr)
	ts, _ := out.Get("when")
	assert.Equal(t, "2024-03-01T12:00:00Z", ts)

	body, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "audit",
		"inner": {"rate": 0.5, "count": 3},
		"ptr": null,
		"tags": ["a", "b"],
		"labels": {"a": 2, "z": 1},
		"when": "2024-03-01T12:00:00Z",
		"took": 2,
		"err": "bad",
		"raw": "hi",
		"Untagged": false
	}`, string(body))
}

func TestToNative_Idempotent(t *testing.T) {
	in := map[string]any{
		"metrics": struct {
			Disparity float64 `json:"disparity"`
		}{math.NaN()},
		"groups": []any{1, "x", nil},
	}
	once := ToNative(in)
	twice := ToNative(once)
	assert.Equal(t, once, twice)

	a, err := json.Marshal(once)
	require.NoError(t, err)
	b, err := json.Marshal(twice)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestToNative_PreservesOrderedMap(t *testing.T) {
	m := NewOrderedMap()
	m.Set("second", 2)
	m.Set("first", int8(1))
	m.Set("second", 3)

	out := ToNative(m).(*OrderedMap)
	assert.Equal(t, []string{"second", "first"}, out.Keys())
	v, _ := out.Get("first")
	assert.Equal(t, int64(1), v)
	assert.Equal(t, 2, out.Len())

	body, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, `{"second":3,"first":1}`, string(body))
}

func TestToNative_DeepNestingDoesNotPanic(t *testing.T) {
	var v any = "leaf"
	for i := 0; i < 200; i++ {
		v = []any{v}
	}
	assert.NotPanics(t, func() { ToNative(v) })
}
