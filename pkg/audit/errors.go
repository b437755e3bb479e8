package audit

import (
	"context"
	"errors"
	"strings"

	"github.com/RajatSharma-ops/Biased-AI/pkg/dataprep"
	"github.com/RajatSharma-ops/Biased-AI/pkg/fairness"
	"github.com/RajatSharma-ops/Biased-AI/pkg/model"
)

// ValidationError reports missing or malformed request fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "audit: missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

// Error kinds reported by Kind.
const (
	KindOK              = "ok"
	KindInvalidRequest  = "invalid_request"
	KindColumnNotFound  = "column_not_found"
	KindLabelNotFound   = "label_not_found"
	KindEmptyDataset    = "empty_dataset"
	KindNoModelTrained  = "no_model_trained"
	KindUnknownModel    = "unknown_model"
	KindFeatureMismatch = "feature_mismatch"
	KindEvaluation      = "evaluation"
	KindTimeout         = "timeout"
	KindCanceled        = "canceled"
	KindInternal        = "internal"
)

// Kind classifies err into one of the Kind* constants, so callers can turn
// pipeline errors into user-facing messages without type switches.
func Kind(err error) string {
	var (
		validation *ValidationError
		column     *dataprep.ColumnNotFoundError
		label      *dataprep.LabelNotFoundError
		empty      *dataprep.EmptyDatasetError
		noModel    *model.NoModelTrainedError
		unknown    *model.UnknownModelNameError
		mismatch   *fairness.FeatureMismatchError
	)
	switch {
	case err == nil:
		return KindOK
	case errors.As(err, &validation):
		return KindInvalidRequest
	case errors.As(err, &column):
		return KindColumnNotFound
	case errors.As(err, &label):
		return KindLabelNotFound
	case errors.As(err, &empty):
		return KindEmptyDataset
	case errors.As(err, &noModel):
		return KindNoModelTrained
	case errors.As(err, &unknown):
		return KindUnknownModel
	case errors.As(err, &mismatch):
		return KindFeatureMismatch
	case errors.Is(err, fairness.ErrEvaluation):
		return KindEvaluation
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	return KindInternal
}
