// Package fairness evaluates a fitted classifier on a test split and breaks
// its outcomes down by the groups of a sensitive attribute.
package fairness

import (
	"fmt"

	"github.com/RajatSharma-ops/Biased-AI/pkg/model"
)

// OverallMetrics are test-set performance figures plus fairness summaries
// taken from the group rates.
type OverallMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	// Disparity is max - min selection rate across groups.
	Disparity            float64 `json:"disparity"`
	EqualOpportunityDiff float64 `json:"equal_opportunity_diff"`
	EqualizedOddsDiff    float64 `json:"equalized_odds_diff"`
	DisparateImpact      float64 `json:"disparate_impact"`
	Support              int     `json:"support"`
}

// Evaluation is the result of Evaluate. Predictions are aligned 1:1 with the
// test rows and their sensitive values.
type Evaluation struct {
	Overall     OverallMetrics `json:"metrics"`
	Groups      *GroupRates    `json:"group_rates"`
	Predictions []int          `json:"predictions"`
}

// Evaluate predicts X with m and computes overall and per-group metrics.
// positive is the label treated as the favourable (selected) outcome; other
// labels count as negative.
func Evaluate(m model.Classifier, X [][]float64, y []int, A []string, positive int) (*Evaluation, error) {
	if m == nil {
		return nil, &EvaluationError{Reason: "model is nil"}
	}
	if len(X) != len(y) || len(X) != len(A) {
		return nil, &EvaluationError{Reason: fmt.Sprintf("length mismatch: X_test=%d y_test=%d A_test=%d", len(X), len(y), len(A))}
	}
	if len(X) == 0 {
		return nil, &EvaluationError{Reason: "empty test set"}
	}
	want := m.NumFeatures()
	for i, row := range X {
		if len(row) != want {
			return nil, &FeatureMismatchError{Expected: want, Got: len(row), Row: i}
		}
	}

	pred := m.Predict(X)
	if len(pred) != len(y) {
		return nil, &EvaluationError{Reason: fmt.Sprintf("model returned %d predictions for %d rows", len(pred), len(y))}
	}
	return Summarize(y, pred, A, positive)
}

// Summarize computes the metrics for given predictions without a model.
func Summarize(y, pred []int, A []string, positive int) (*Evaluation, error) {
	if len(y) != len(pred) || len(y) != len(A) {
		return nil, &EvaluationError{Reason: fmt.Sprintf("length mismatch: y=%d predictions=%d A=%d", len(y), len(pred), len(A))}
	}

	var order []string
	perGroup := map[string]model.Confusion{}
	var total model.Confusion
	for i := range y {
		c := model.BinaryConfusion(y[i:i+1], pred[i:i+1], positive)
		if _, ok := perGroup[A[i]]; !ok {
			order = append(order, A[i])
		}
		perGroup[A[i]] = perGroup[A[i]].Add(c)
		total = total.Add(c)
	}

	groups := NewGroupRates()
	for _, k := range order {
		groups.Set(k, ratesFrom(perGroup[k]))
	}

	return &Evaluation{
		Overall:     overall(total, y, pred, groups),
		Groups:      groups,
		Predictions: pred,
	}, nil
}

func overall(c model.Confusion, y, pred []int, groups *GroupRates) OverallMetrics {
	return OverallMetrics{
		Accuracy:             model.AccuracyInt(y, pred),
		Precision:            c.Precision(),
		Recall:               c.Recall(),
		F1:                   c.F1(),
		Disparity:            groups.Disparity(),
		EqualOpportunityDiff: groups.EqualOpportunityDiff(),
		EqualizedOddsDiff:    groups.EqualizedOddsDiff(),
		DisparateImpact:      groups.DisparateImpact(),
		Support:              len(y),
	}
}

// Refresh recomputes the fairness summaries of e from its current group rates.
func (e *Evaluation) Refresh() {
	e.Overall.Disparity = e.Groups.Disparity()
	e.Overall.EqualOpportunityDiff = e.Groups.EqualOpportunityDiff()
	e.Overall.EqualizedOddsDiff = e.Groups.EqualizedOddsDiff()
	e.Overall.DisparateImpact = e.Groups.DisparateImpact()
}
