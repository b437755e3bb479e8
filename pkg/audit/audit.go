// Package audit runs the bias evaluation pipeline for one request:
// preprocess, train the model registry, evaluate the chosen model, then
// hand the results to the chart and report writers.
//
// Every Run owns its data, encoders and models; nothing is cached between
// runs, so an Auditor may serve concurrent requests.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RajatSharma-ops/Biased-AI/pkg/dataprep"
	"github.com/RajatSharma-ops/Biased-AI/pkg/fairness"
	"github.com/RajatSharma-ops/Biased-AI/pkg/model"
	"github.com/RajatSharma-ops/Biased-AI/pkg/report"
)

// Request names the dataset, the columns and the model to audit.
type Request struct {
	Path          string
	TargetCol     string
	SensitiveCol  string
	ModelName     string
	PositiveLabel string // overrides Options.PositiveLabel when set
	// Cleanup removes Path once the run ends, whatever the result.
	Cleanup bool
}

// Validate checks that every required field is present.
func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Path) == "" {
		missing = append(missing, "path")
	}
	if strings.TrimSpace(r.TargetCol) == "" {
		missing = append(missing, "target_col")
	}
	if strings.TrimSpace(r.SensitiveCol) == "" {
		missing = append(missing, "sensitive_col")
	}
	if strings.TrimSpace(r.ModelName) == "" {
		missing = append(missing, "model_name")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Options configures an Auditor. Seed is used as given, zero included; the
// other zero values fall back to the dataprep and model defaults. An empty
// ChartDir or ReportDir skips that artifact.
type Options struct {
	Seed          int64
	TestRatio     float64
	MinRows       int
	MaxMissing    float64
	Encoding      string
	PositiveLabel string
	Timeout       time.Duration
	ChartDir      string
	ReportDir     string
	Specs         []model.Spec
}

// Outcome is everything a caller needs to present an audit.
type Outcome struct {
	ID              string                  `json:"id"`
	ModelName       string                  `json:"model_name"`
	TargetColumn    string                  `json:"target_column"`
	SensitiveColumn string                  `json:"sensitive_column"`
	PositiveLabel   string                  `json:"positive_label"`
	Metrics         fairness.OverallMetrics `json:"metrics"`
	GroupRates      *fairness.GroupRates    `json:"group_rates"`
	Predictions     []string                `json:"predictions"`
	SensitiveTest   []string                `json:"sensitive_test"`
	Available       []string                `json:"available_models"`
	Failures        []string                `json:"training_failures"`
	Stratified      bool                    `json:"stratified"`
	TrainRows       int                     `json:"train_rows"`
	TestRows        int                     `json:"test_rows"`
	DroppedRows     int                     `json:"dropped_rows"`
	ChartPath       string                  `json:"chart_path,omitempty"`
	ReportPath      string                  `json:"report_path,omitempty"`
}

// Auditor runs audits with fixed options.
type Auditor struct {
	opts   Options
	logger *slog.Logger
	newID  func() string
}

// New returns an Auditor. A nil logger means slog.Default().
func New(opts Options, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Specs) == 0 {
		opts.Specs = model.DefaultSpecs
	}
	return &Auditor{
		opts:   opts,
		logger: logger,
		newID:  func() string { return uuid.NewString()[:8] },
	}
}

// Run executes the pipeline for req on its own goroutine. When ctx ends or
// the configured timeout passes, Run returns the context error at once and
// the abandoned work finishes in the background without touching shared
// state.
func (a *Auditor) Run(ctx context.Context, req Request) (out *Outcome, err error) {
	start := time.Now()
	logger := a.logger.With("model", req.ModelName, "target", req.TargetCol, "sensitive", req.SensitiveCol)
	defer func() {
		kind := Kind(err)
		runsTotal.WithLabelValues(kind).Inc()
		runDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			logger.Error("audit failed", "kind", kind, "error", err, "duration", time.Since(start))
		}
	}()
	if req.Cleanup && req.Path != "" {
		defer func() {
			if rmErr := os.Remove(req.Path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				logger.Warn("removing upload", "path", req.Path, "error", rmErr)
			}
		}()
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	type result struct {
		out *Outcome
		err error
	}
	done := make(chan result, 1)
	go func() {
		o, err := a.run(ctx, req, logger)
		done <- result{o, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.out, r.err
	}
}

func (a *Auditor) run(ctx context.Context, req Request, logger *slog.Logger) (*Outcome, error) {
	positive := a.opts.PositiveLabel
	if req.PositiveLabel != "" {
		positive = req.PositiveLabel
	}
	opts := []dataprep.Option{
		dataprep.WithSeed(a.opts.Seed),
		dataprep.WithPositiveLabel(positive),
	}
	if a.opts.TestRatio > 0 {
		opts = append(opts, dataprep.WithTestRatio(a.opts.TestRatio))
	}
	if a.opts.MinRows > 0 {
		opts = append(opts, dataprep.WithMinRows(a.opts.MinRows))
	}
	if a.opts.MaxMissing > 0 {
		opts = append(opts, dataprep.WithMaxMissing(a.opts.MaxMissing))
	}
	if a.opts.Encoding != "" {
		opts = append(opts, dataprep.WithEncoding(a.opts.Encoding))
	}

	split, err := dataprep.Preprocess(req.Path, req.TargetCol, req.SensitiveCol, opts...)
	if err != nil {
		return nil, fmt.Errorf("audit: preprocess: %w", err)
	}
	logger.Info("dataset prepared",
		"train_rows", len(split.XTrain), "test_rows", len(split.XTest),
		"dropped_rows", split.Dropped, "features", len(split.FeatureNames), "stratified", split.Stratified)

	reg, err := model.TrainModels(ctx, split.XTrain, split.YTrain,
		model.WithSeed(a.opts.Seed), model.WithSpecs(a.opts.Specs...), model.WithLogger(logger))
	if err != nil {
		var noModel *model.NoModelTrainedError
		if errors.As(err, &noModel) {
			for _, f := range noModel.Failures {
				modelFailures.WithLabelValues(f.Model).Inc()
			}
		}
		return nil, fmt.Errorf("audit: train: %w", err)
	}
	failures := make([]string, 0, len(reg.Failures()))
	for _, f := range reg.Failures() {
		modelFailures.WithLabelValues(f.Model).Inc()
		failures = append(failures, f.Error())
	}

	m, err := reg.Get(req.ModelName)
	if err != nil {
		return nil, err
	}
	ev, err := fairness.Evaluate(m, split.XTest, split.YTest, split.ATest, split.Positive)
	if err != nil {
		return nil, fmt.Errorf("audit: evaluate %s: %w", req.ModelName, err)
	}
	disparityObserved.WithLabelValues(req.ModelName).Observe(ev.Overall.Disparity)

	predicted := make([]string, len(ev.Predictions))
	for i, p := range ev.Predictions {
		predicted[i] = split.Classes[p]
	}
	out := &Outcome{
		ID:              a.newID(),
		ModelName:       req.ModelName,
		TargetColumn:    req.TargetCol,
		SensitiveColumn: req.SensitiveCol,
		PositiveLabel:   split.Classes[split.Positive],
		Metrics:         ev.Overall,
		GroupRates:      ev.Groups,
		Predictions:     predicted,
		SensitiveTest:   split.ATest,
		Available:       reg.Names(),
		Failures:        failures,
		Stratified:      split.Stratified,
		TrainRows:       len(split.XTrain),
		TestRows:        len(split.XTest),
		DroppedRows:     split.Dropped,
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.writeArtifacts(out, ev, logger)
	logger.Info("audit complete", "id", out.ID,
		"accuracy", out.Metrics.Accuracy, "disparity", out.Metrics.Disparity)
	return out, nil
}

// writeArtifacts renders the chart and the report. Either may fail without
// failing the audit; the outcome then carries no path for it.
func (a *Auditor) writeArtifacts(out *Outcome, ev *fairness.Evaluation, logger *slog.Logger) {
	if a.opts.ChartDir != "" {
		path := filepath.Join(a.opts.ChartDir, "chart_"+out.ID+".png")
		title := fmt.Sprintf("Selection rate by %s (%s)", out.SensitiveColumn, out.ModelName)
		if err := report.SelectionRateChart(ev.Groups, title, path); err != nil {
			logger.Warn("chart not written", "error", err)
		} else {
			out.ChartPath = path
		}
	}
	if a.opts.ReportDir != "" {
		path := filepath.Join(a.opts.ReportDir, "report_"+out.ID+".json")
		var chart string
		if out.ChartPath != "" {
			chart = filepath.Base(out.ChartPath)
		}
		r := report.Report{
			GeneratedAt:     time.Now().UTC(),
			Model:           out.ModelName,
			SensitiveColumn: out.SensitiveColumn,
			TargetColumn:    out.TargetColumn,
			PositiveLabel:   out.PositiveLabel,
			Metrics:         ev.Overall,
			GroupRates:      ev.Groups,
			SensitiveSeries: out.SensitiveTest,
			Predictions:     out.Predictions,
			Chart:           chart,
		}
		if err := report.Write(path, r); err != nil {
			logger.Warn("report not written", "error", err)
		} else {
			out.ReportPath = path
		}
	}
}
