package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSingleClass means the training labels hold one class only, so no
	// decision boundary exists.
	ErrSingleClass = errors.New("training labels contain a single class")
	// ErrNotConverged means optimisation produced a non-finite loss.
	ErrNotConverged = errors.New("model did not converge")
)

// TrainingError wraps the failure of one model type.
type TrainingError struct {
	Model string
	Err   error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("model: training %s: %v", e.Model, e.Err)
}

func (e *TrainingError) Unwrap() error { return e.Err }

// NoModelTrainedError is returned when every model type failed to train.
type NoModelTrainedError struct {
	Failures []*TrainingError
}

func (e *NoModelTrainedError) Error() string {
	if len(e.Failures) == 0 {
		return "model: no model trained"
	}
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Model + ": " + f.Err.Error()
	}
	return "model: no model trained (" + strings.Join(msgs, "; ") + ")"
}

// Unwrap exposes the individual training failures to errors.Is/As.
func (e *NoModelTrainedError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}

// UnknownModelNameError reports a lookup of a model absent from a registry,
// either never defined or dropped after a training failure.
type UnknownModelNameError struct {
	Name      string
	Available []string
}

func (e *UnknownModelNameError) Error() string {
	return fmt.Sprintf("model: %q not available (trained: %s)", e.Name, strings.Join(e.Available, ", "))
}
