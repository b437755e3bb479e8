package audit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RajatSharma-ops/Biased-AI/pkg/dataprep"
	"github.com/RajatSharma-ops/Biased-AI/pkg/fairness"
	"github.com/RajatSharma-ops/Biased-AI/pkg/logging"
	"github.com/RajatSharma-ops/Biased-AI/pkg/model"
	"github.com/RajatSharma-ops/Biased-AI/pkg/report"
)

// writeDataset writes n applicants where group "A" is hired more often.
func writeDataset(t *testing.T, n int) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("experience,degree,group,hired\n")
	for i := 0; i < n; i++ {
		group := "A"
		if i%2 == 1 {
			group = "B"
		}
		exp := i % 15
		hired := "no"
		if exp > 9 || (group == "A" && exp > 5) {
			hired = "yes"
		}
		fmt.Fprintf(&sb, "%d,%s,%s,%s\n", exp, []string{"bsc", "msc"}[i%2], group, hired)
	}
	path := filepath.Join(t.TempDir(), "applicants.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

type blockingModel struct{ release chan struct{} }

func (m blockingModel) Fit([][]float64, []int) error { <-m.release; return nil }
func (m blockingModel) Predict(X [][]float64) []int  { return make([]int, len(X)) }
func (m blockingModel) NumFeatures() int             { return 0 }
func (m blockingModel) Classes() []int               { return nil }

func TestRun_Success(t *testing.T) {
	dir := t.TempDir()
	a := New(Options{
		ChartDir:  filepath.Join(dir, "charts"),
		ReportDir: filepath.Join(dir, "reports"),
	}, logging.Discard())

	out, err := a.Run(context.Background(), Request{
		Path:         writeDataset(t, 120),
		TargetCol:    "hired",
		SensitiveCol: "group",
		ModelName:    model.DecisionTreeName,
	})
	require.NoError(t, err)

	assert.Len(t, out.ID, 8)
	assert.Equal(t, "yes", out.PositiveLabel)
	assert.Equal(t, model.ModelNames(), out.Available)
	assert.Empty(t, out.Failures)
	assert.Equal(t, 120, out.TrainRows+out.TestRows)
	assert.InDelta(t, 24, out.TestRows, 2)
	assert.Len(t, out.Predictions, out.TestRows)
	assert.Len(t, out.SensitiveTest, out.TestRows)
	assert.ElementsMatch(t, []string{"A", "B"}, out.GroupRates.Groups())
	assert.Equal(t, out.GroupRates.Disparity(), out.Metrics.Disparity)
	for _, p := range out.Predictions {
		assert.Contains(t, []string{"yes", "no"}, p)
	}

	require.NotEmpty(t, out.ChartPath)
	assert.FileExists(t, out.ChartPath)
	assert.Equal(t, "chart_"+out.ID+".png", filepath.Base(out.ChartPath))

	require.NotEmpty(t, out.ReportPath)
	saved, err := report.Read(out.ReportPath)
	require.NoError(t, err)
	assert.Equal(t, model.DecisionTreeName, saved["model"])
	assert.Equal(t, "group", saved["sensitive_column"])
	assert.Equal(t, filepath.Base(out.ChartPath), saved["chart"])
	assert.Len(t, saved["sensitive_series"], out.TestRows)
	labels := make([]any, len(out.Predictions))
	for i, p := range out.Predictions {
		labels[i] = p
	}
	assert.Equal(t, labels, saved["predictions"], "predictions are stored as labels")
}

func TestRun_Deterministic(t *testing.T) {
	path := writeDataset(t, 80)
	a := New(Options{}, logging.Discard())
	req := Request{Path: path, TargetCol: "hired", SensitiveCol: "group", ModelName: model.RandomForestName}

	first, err := a.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := a.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Predictions, second.Predictions)
	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Empty(t, first.ChartPath, "no chart dir configured")
	assert.Empty(t, first.ReportPath)
}

func TestRun_SeedPassedThrough(t *testing.T) {
	for _, seed := range []int64{0, 7} {
		var got []int64
		knn := model.DefaultSpecs[len(model.DefaultSpecs)-1]
		a := New(Options{Seed: seed, Specs: []model.Spec{{Name: knn.Name, New: func(s int64) model.Classifier {
			got = append(got, s)
			return knn.New(s)
		}}}}, logging.Discard())

		_, err := a.Run(context.Background(), Request{
			Path: writeDataset(t, 40), TargetCol: "hired", SensitiveCol: "group", ModelName: knn.Name,
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{seed}, got)
	}
}

func TestRun_CleanupOnSuccessAndFailure(t *testing.T) {
	a := New(Options{}, logging.Discard())
	tests := []struct {
		name  string
		model string
		fails bool
	}{
		{"success", model.KNNName, false},
		{"unknown model", "svm", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDataset(t, 40)
			_, err := a.Run(context.Background(), Request{
				Path: path, TargetCol: "hired", SensitiveCol: "group", ModelName: tt.model, Cleanup: true,
			})
			if tt.fails {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoFileExists(t, path)
		})
	}
}

func TestRun_NoCleanupKeepsFile(t *testing.T) {
	path := writeDataset(t, 40)
	_, err := New(Options{}, logging.Discard()).Run(context.Background(), Request{
		Path: path, TargetCol: "hired", SensitiveCol: "group", ModelName: model.KNNName,
	})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestRun_ErrorKinds(t *testing.T) {
	a := New(Options{}, logging.Discard())
	tests := []struct {
		name string
		req  func(path string) Request
		kind string
	}{
		{"missing fields", func(string) Request { return Request{} }, KindInvalidRequest},
		{"unknown target", func(p string) Request {
			return Request{Path: p, TargetCol: "salary", SensitiveCol: "group", ModelName: model.KNNName}
		}, KindColumnNotFound},
		{"unknown sensitive", func(p string) Request {
			return Request{Path: p, TargetCol: "hired", SensitiveCol: "race", ModelName: model.KNNName}
		}, KindColumnNotFound},
		{"unknown positive label", func(p string) Request {
			return Request{Path: p, TargetCol: "hired", SensitiveCol: "group", ModelName: model.KNNName, PositiveLabel: "maybe"}
		}, KindLabelNotFound},
		{"unknown model", func(p string) Request {
			return Request{Path: p, TargetCol: "hired", SensitiveCol: "group", ModelName: "svm"}
		}, KindUnknownModel},
		{"missing file", func(p string) Request {
			return Request{Path: p + ".gone", TargetCol: "hired", SensitiveCol: "group", ModelName: model.KNNName}
		}, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Run(context.Background(), tt.req(writeDataset(t, 40)))
			require.Error(t, err)
			if tt.kind != KindInternal {
				assert.Equal(t, tt.kind, Kind(err), err.Error())
			}
		})
	}
}

func TestRun_EmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,group,hired\n1,A,yes\n2,B,no\n3,,yes\n"), 0o644))

	_, err := New(Options{}, logging.Discard()).Run(context.Background(), Request{
		Path: path, TargetCol: "hired", SensitiveCol: "group", ModelName: model.KNNName,
	})
	var empty *dataprep.EmptyDatasetError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, 1, empty.Dropped)
	assert.Equal(t, KindEmptyDataset, Kind(err))
}

func TestRun_NoModelTrained(t *testing.T) {
	path := filepath.Join(t.TempDir(), "same.csv")
	var sb strings.Builder
	sb.WriteString("x,group,hired\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "%d,%s,yes\n", i, []string{"A", "B"}[i%2])
	}
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))

	_, err := New(Options{}, logging.Discard()).Run(context.Background(), Request{
		Path: path, TargetCol: "hired", SensitiveCol: "group", ModelName: model.KNNName,
	})
	var none *model.NoModelTrainedError
	require.ErrorAs(t, err, &none)
	assert.Equal(t, KindNoModelTrained, Kind(err))
}

func TestRun_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	a := New(Options{
		Timeout: 30 * time.Millisecond,
		Specs: []model.Spec{{Name: "blocking", New: func(int64) model.Classifier {
			return blockingModel{release: release}
		}}},
	}, logging.Discard())
	path := writeDataset(t, 40)

	start := time.Now()
	_, err := a.Run(context.Background(), Request{
		Path: path, TargetCol: "hired", SensitiveCol: "group", ModelName: "blocking", Cleanup: true,
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, KindTimeout, Kind(err))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.NoFileExists(t, path)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}, logging.Discard()).Run(ctx, Request{
		Path: writeDataset(t, 40), TargetCol: "hired", SensitiveCol: "group", ModelName: model.KNNName,
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, KindCanceled, Kind(err))
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, KindOK},
		{&ValidationError{Fields: []string{"path"}}, KindInvalidRequest},
		{fmt.Errorf("wrap: %w", &dataprep.ColumnNotFoundError{Role: "target"}), KindColumnNotFound},
		{&dataprep.LabelNotFoundError{Label: "x"}, KindLabelNotFound},
		{&dataprep.EmptyDatasetError{}, KindEmptyDataset},
		{&model.NoModelTrainedError{}, KindNoModelTrained},
		{&model.UnknownModelNameError{Name: "svm"}, KindUnknownModel},
		{&fairness.FeatureMismatchError{Expected: 2, Got: 1}, KindFeatureMismatch},
		{&fairness.EvaluationError{Reason: "empty test set"}, KindEvaluation},
		{fmt.Errorf("audit: %w", context.DeadlineExceeded), KindTimeout},
		{context.Canceled, KindCanceled},
		{errors.New("disk full"), KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err), "%v", tt.err)
	}
}

func TestRequest_Validate(t *testing.T) {
	err := Request{Path: "x.csv", TargetCol: " "}.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"target_col", "sensitive_col", "model_name"}, verr.Fields)
	assert.NoError(t, Request{Path: "p", TargetCol: "t", SensitiveCol: "s", ModelName: "m"}.Validate())
}
