package model

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Names of the built-in model types.
const (
	LogisticRegressionName = "logistic_regression"
	DecisionTreeName       = "decision_tree"
	RandomForestName       = "random_forest"
	KNNName                = "knn"
)

// Spec names a model type and builds an unfitted instance for a seed.
type Spec struct {
	Name string
	New  func(seed int64) Classifier
}

// DefaultSpecs is the fixed set of model types trained for every audit.
var DefaultSpecs = []Spec{
	{Name: LogisticRegressionName, New: func(seed int64) Classifier {
		return NewLogisticRegression(WithLogisticRandomState(seed))
	}},
	{Name: DecisionTreeName, New: func(seed int64) Classifier {
		return NewDecisionTreeClassifier(WithRandomState(seed))
	}},
	{Name: RandomForestName, New: func(seed int64) Classifier {
		return NewRandomForest(WithForestRandomState(seed))
	}},
	{Name: KNNName, New: func(int64) Classifier {
		return NewKNN(5)
	}},
}

// ModelNames lists the names of DefaultSpecs in order.
func ModelNames() []string {
	names := make([]string, len(DefaultSpecs))
	for i, s := range DefaultSpecs {
		names[i] = s.Name
	}
	return names
}

// Registry maps model names to fitted classifiers. It is built once per
// audit and never shared.
type Registry struct {
	names    []string
	models   map[string]Classifier
	failures []*TrainingError
}

// Get returns the fitted model called name.
func (r *Registry) Get(name string) (Classifier, error) {
	if m, ok := r.models[name]; ok {
		return m, nil
	}
	return nil, &UnknownModelNameError{Name: name, Available: r.Names()}
}

// Names lists trained models in spec order.
func (r *Registry) Names() []string { return append([]string(nil), r.names...) }

// Failures lists the model types dropped from the registry.
func (r *Registry) Failures() []*TrainingError { return r.failures }

func (r *Registry) Len() int { return len(r.names) }

// TrainOptions configures TrainModels.
type TrainOptions struct {
	Seed        int64
	Specs       []Spec
	Concurrency int
	Logger      *slog.Logger
}

// TrainOption functional config for TrainModels
type TrainOption func(*TrainOptions)

func WithSeed(seed int64) TrainOption       { return func(o *TrainOptions) { o.Seed = seed } }
func WithSpecs(specs ...Spec) TrainOption   { return func(o *TrainOptions) { o.Specs = specs } }
func WithConcurrency(n int) TrainOption     { return func(o *TrainOptions) { o.Concurrency = n } }
func WithLogger(l *slog.Logger) TrainOption { return func(o *TrainOptions) { o.Logger = l } }

type trainResult struct {
	model Classifier
	err   *TrainingError
}

// TrainModels fits every spec on (X, y) concurrently. A model that fails is
// logged and left out; only an empty registry is an error. If ctx ends first
// the batch is abandoned and ctx.Err() returned.
func TrainModels(ctx context.Context, X [][]float64, y []int, opts ...TrainOption) (*Registry, error) {
	o := TrainOptions{Specs: DefaultSpecs, Concurrency: runtime.GOMAXPROCS(0)}
	for _, fn := range opts {
		fn(&o)
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]trainResult, len(o.Specs))
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		var g errgroup.Group
		g.SetLimit(max(o.Concurrency, 1))
		for i, spec := range o.Specs {
			i, spec := i, spec
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				start := time.Now()
				m, err := fitOne(spec, o.Seed, X, y)
				if err != nil {
					results[i] = trainResult{err: &TrainingError{Model: spec.Name, Err: err}}
					return nil
				}
				logger.Debug("model trained", "model", spec.Name, "duration", time.Since(start))
				results[i] = trainResult{model: m}
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-finished:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reg := &Registry{models: map[string]Classifier{}}
	for i, spec := range o.Specs {
		res := results[i]
		if res.err != nil {
			logger.Warn("model dropped from registry", "model", spec.Name, "error", res.err.Err)
			reg.failures = append(reg.failures, res.err)
			continue
		}
		reg.names = append(reg.names, spec.Name)
		reg.models[spec.Name] = res.model
	}
	if reg.Len() == 0 {
		return nil, &NoModelTrainedError{Failures: reg.failures}
	}
	return reg, nil
}

// fitOne builds and fits a model, turning a numerical panic into an error.
func fitOne(spec Spec, seed int64, X [][]float64, y []int) (m Classifier, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("panic during fit: %v", r)
		}
	}()
	m = spec.New(seed)
	if err := m.Fit(X, y); err != nil {
		return nil, err
	}
	return m, nil
}
