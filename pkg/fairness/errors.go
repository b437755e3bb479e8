package fairness

import (
	"errors"
	"fmt"
)

// ErrEvaluation matches every evaluator failure with errors.Is.
var ErrEvaluation = errors.New("fairness: evaluation failed")

// EvaluationError reports which precondition of Evaluate failed.
type EvaluationError struct {
	Reason string
}

func (e *EvaluationError) Error() string { return "fairness: " + e.Reason }

func (e *EvaluationError) Is(target error) bool { return target == ErrEvaluation }

// FeatureMismatchError is the EvaluationError raised when the test features
// do not have the width the model was fitted on.
type FeatureMismatchError struct {
	Expected int
	Got      int
	Row      int
}

func (e *FeatureMismatchError) Error() string {
	return fmt.Sprintf("fairness: model expects %d features, X_test row %d has %d", e.Expected, e.Row, e.Got)
}

// Unwrap exposes the general evaluation error, so errors.As with
// *EvaluationError and errors.Is with ErrEvaluation both match.
func (e *FeatureMismatchError) Unwrap() error {
	return &EvaluationError{Reason: "feature mismatch"}
}
