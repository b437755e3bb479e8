package dataprep

import (
	"github.com/RajatSharma-ops/Biased-AI/pkg/data"
	"github.com/RajatSharma-ops/Biased-AI/pkg/loader"
)

// Defaults used by Preprocess.
const (
	DefaultTestRatio  = 0.2
	DefaultSeed       = 42
	DefaultMinRows    = 10
	DefaultMaxMissing = 0.5
)

// Options configures preprocessing.
type Options struct {
	TestRatio          float64
	Seed               int64
	MinRows            int
	Encoding           string
	MaxMissing         float64
	PositiveLabel      string
	SensitiveAsFeature bool
}

// Option functional config
type Option func(*Options)

func WithTestRatio(r float64) Option    { return func(o *Options) { o.TestRatio = r } }
func WithSeed(seed int64) Option        { return func(o *Options) { o.Seed = seed } }
func WithMinRows(n int) Option          { return func(o *Options) { o.MinRows = n } }
func WithEncoding(method string) Option { return func(o *Options) { o.Encoding = method } }
func WithMaxMissing(r float64) Option   { return func(o *Options) { o.MaxMissing = r } }
func WithPositiveLabel(l string) Option { return func(o *Options) { o.PositiveLabel = l } }
func WithSensitiveAsFeature(b bool) Option {
	return func(o *Options) { o.SensitiveAsFeature = b }
}

func newOptions(opts []Option) Options {
	o := Options{
		TestRatio:  DefaultTestRatio,
		Seed:       DefaultSeed,
		MinRows:    DefaultMinRows,
		Encoding:   EncodingOneHot,
		MaxMissing: DefaultMaxMissing,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.TestRatio <= 0 || o.TestRatio >= 1 {
		o.TestRatio = DefaultTestRatio
	}
	return o
}

// Frame is the encoded dataset: features X, encoded labels Y and the raw
// sensitive attribute A, row-aligned.
type Frame struct {
	X            [][]float64
	Y            []int
	A            []string
	FeatureNames []string
	Classes      []string // Classes[k] is the original label encoded as k
	Positive     int      // index into Classes of the favourable outcome
	Dropped      int      // rows dropped for a missing target or sensitive value
	DroppedCols  []string // feature columns dropped for missingness
}

// Split is a train/test partition of a Frame. TrainIdx and TestIdx index the
// retained rows of the frame and apply identically to X, Y and A.
type Split struct {
	XTrain, XTest [][]float64
	YTrain, YTest []int
	ATrain, ATest []string

	TrainIdx, TestIdx []int
	Stratified        bool

	FeatureNames []string
	Classes      []string
	Positive     int
	Retained     int
	Dropped      int
}

// Preprocess reads the file at path and returns the encoded train/test split.
func Preprocess(path, targetCol, sensitiveCol string, opts ...Option) (*Split, error) {
	t, err := data.ReadTable(path)
	if err != nil {
		return nil, err
	}
	return PreprocessTable(t, targetCol, sensitiveCol, opts...)
}

// PreprocessTable is Preprocess over an already loaded table.
func PreprocessTable(t *data.Table, targetCol, sensitiveCol string, opts ...Option) (*Split, error) {
	o := newOptions(opts)
	f, err := encodeFrame(t, targetCol, sensitiveCol, o)
	if err != nil {
		return nil, err
	}
	return SplitFrame(f, o.TestRatio, o.Seed), nil
}

// Encode validates the columns, drops incomplete rows and encodes t.
func Encode(t *data.Table, targetCol, sensitiveCol string, opts ...Option) (*Frame, error) {
	return encodeFrame(t, targetCol, sensitiveCol, newOptions(opts))
}

func encodeFrame(t *data.Table, targetCol, sensitiveCol string, o Options) (*Frame, error) {
	ti := t.ColumnIndex(targetCol)
	if targetCol == "" || ti < 0 {
		return nil, &ColumnNotFoundError{Role: "target", Column: targetCol, Available: t.Header}
	}
	si := t.ColumnIndex(sensitiveCol)
	if sensitiveCol == "" || si < 0 {
		return nil, &ColumnNotFoundError{Role: "sensitive", Column: sensitiveCol, Available: t.Header}
	}

	kept, dropped := DropIncomplete(t, ti, si)
	if len(kept.Rows) < o.MinRows || len(kept.Rows) < 2 {
		return nil, &EmptyDatasetError{Rows: len(kept.Rows), Dropped: dropped, MinRows: max(o.MinRows, 2)}
	}

	var featureCols []int
	for j := range kept.Header {
		if j == ti || (j == si && !o.SensitiveAsFeature) {
			continue
		}
		featureCols = append(featureCols, j)
	}
	enc := NewEncoder(o.Encoding, o.MaxMissing)
	if err := enc.Fit(kept, featureCols); err != nil {
		return nil, err
	}

	y, classes := LabelEncode(kept.Column(ti))
	positive, err := PositiveClass(classes, o.PositiveLabel)
	if err != nil {
		return nil, err
	}

	return &Frame{
		X:            enc.Transform(kept),
		Y:            y,
		A:            kept.Column(si),
		FeatureNames: enc.FeatureNames(),
		Classes:      classes,
		Positive:     positive,
		Dropped:      dropped,
		DroppedCols:  enc.Dropped(),
	}, nil
}

// SplitFrame partitions f with a seeded split, stratified by label when the
// class counts allow it.
func SplitFrame(f *Frame, testRatio float64, seed int64) *Split {
	p := loader.StratifiedSplit(f.Y, testRatio, seed)
	return &Split{
		XTrain:       loader.TakeRows(f.X, p.Train),
		XTest:        loader.TakeRows(f.X, p.Test),
		YTrain:       loader.TakeRows(f.Y, p.Train),
		YTest:        loader.TakeRows(f.Y, p.Test),
		ATrain:       loader.TakeRows(f.A, p.Train),
		ATest:        loader.TakeRows(f.A, p.Test),
		TrainIdx:     p.Train,
		TestIdx:      p.Test,
		Stratified:   p.Stratified,
		FeatureNames: f.FeatureNames,
		Classes:      f.Classes,
		Positive:     f.Positive,
		Retained:     len(f.Y),
		Dropped:      f.Dropped,
	}
}
