package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RajatSharma-ops/Biased-AI/pkg/audit"
	"github.com/RajatSharma-ops/Biased-AI/pkg/logging"
	"github.com/RajatSharma-ops/Biased-AI/pkg/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func dataset(n int) string {
	var sb strings.Builder
	sb.WriteString("experience,group,hired\n")
	for i := 0; i < n; i++ {
		group := []string{"A", "B"}[i%2]
		hired := "no"
		if i%10 > 5 || (group == "A" && i%10 > 3) {
			hired = "yes"
		}
		fmt.Fprintf(&sb, "%d,%s,%s\n", i%10, group, hired)
	}
	return sb.String()
}

func newTestServer(t *testing.T) (*Server, Options) {
	t.Helper()
	dir := t.TempDir()
	opts := Options{
		UploadDir: filepath.Join(dir, "uploads"),
		ChartDir:  filepath.Join(dir, "charts"),
		ReportDir: filepath.Join(dir, "reports"),
	}
	a := audit.New(audit.Options{ChartDir: opts.ChartDir, ReportDir: opts.ReportDir}, logging.Discard())
	return New(a, opts, logging.Discard()), opts
}

func multipartRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("dataset", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/results", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func validFields() map[string]string {
	return map[string]string{"target_col": "hired", "sensitive_col": "group", "model_name": model.DecisionTreeName}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestResults_Success(t *testing.T) {
	s, opts := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, multipartRequest(t, "applicants.csv", dataset(100), validFields()))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, model.DecisionTreeName, body["model_name"])
	assert.Equal(t, "yes", body["positive_label"])
	assert.Contains(t, body, "metrics")
	assert.Contains(t, body["group_rates"], "A")

	chartURL, ok := body["chart_url"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(chartURL, "/charts/chart_"))
	reportURL, ok := body["report_url"].(string)
	require.True(t, ok)

	uploads, err := os.ReadDir(opts.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, uploads, "uploaded dataset is removed after the run")

	chart := httptest.NewRecorder()
	s.Engine().ServeHTTP(chart, httptest.NewRequest(http.MethodGet, chartURL, nil))
	assert.Equal(t, http.StatusOK, chart.Code)
	assert.True(t, bytes.HasPrefix(chart.Body.Bytes(), []byte("\x89PNG")))

	rep := httptest.NewRecorder()
	s.Engine().ServeHTTP(rep, httptest.NewRequest(http.MethodGet, reportURL, nil))
	assert.Equal(t, http.StatusOK, rep.Code)
	assert.Equal(t, model.DecisionTreeName, decode(t, rep)["model"])
}

func TestResults_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		fields   map[string]string
		status   int
		kind     string
	}{
		{"no file", "", "", validFields(), http.StatusBadRequest, audit.KindInvalidRequest},
		{"missing target", "d.csv", dataset(40), map[string]string{"sensitive_col": "group", "model_name": "knn"},
			http.StatusBadRequest, audit.KindInvalidRequest},
		{"same columns", "d.csv", dataset(40), map[string]string{"target_col": "hired", "sensitive_col": "hired", "model_name": "knn"},
			http.StatusBadRequest, audit.KindInvalidRequest},
		{"bad extension", "d.xlsx", dataset(40), validFields(), http.StatusBadRequest, audit.KindInvalidRequest},
		{"unknown column", "d.csv", dataset(40), map[string]string{"target_col": "salary", "sensitive_col": "group", "model_name": "knn"},
			http.StatusBadRequest, audit.KindColumnNotFound},
		{"unknown model", "d.csv", dataset(40), map[string]string{"target_col": "hired", "sensitive_col": "group", "model_name": "svm"},
			http.StatusBadRequest, audit.KindUnknownModel},
		{"too few rows", "d.csv", dataset(3), validFields(), http.StatusBadRequest, audit.KindEmptyDataset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			rec := httptest.NewRecorder()
			s.Engine().ServeHTTP(rec, multipartRequest(t, tt.filename, tt.content, tt.fields))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.Equal(t, tt.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestResults_TooLarge(t *testing.T) {
	dir := t.TempDir()
	a := audit.New(audit.Options{}, logging.Discard())
	s := New(a, Options{UploadDir: dir, MaxUploadBytes: 64}, logging.Discard())

	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, multipartRequest(t, "d.csv", dataset(100), validFields()))
	assert.Contains(t, []int{http.StatusRequestEntityTooLarge, http.StatusBadRequest}, rec.Code, rec.Body.String())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is stored when the body is cut off")
}

func TestInfoRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/models", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"models":["logistic_regression","decision_tree","random_forest","knn"]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServeArtifact_OnlyBaseNames(t *testing.T) {
	s, opts := newTestServer(t)
	require.NoError(t, os.MkdirAll(opts.ChartDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(opts.ChartDir, "chart_x.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(opts.ChartDir, ".hidden"), []byte("x"), 0o644))

	tests := []struct {
		path   string
		status int
	}{
		{"/charts/chart_x.png", http.StatusOK},
		{"/charts/missing.png", http.StatusNotFound},
		{"/charts/.hidden", http.StatusNotFound},
		{"/charts/..%2Fuploads", http.StatusNotFound},
		{"/reports/chart_x.png", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.status, rec.Code, tt.path)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[string]int{
		audit.KindInvalidRequest:  http.StatusBadRequest,
		audit.KindColumnNotFound:  http.StatusBadRequest,
		audit.KindLabelNotFound:   http.StatusBadRequest,
		audit.KindEmptyDataset:    http.StatusBadRequest,
		audit.KindUnknownModel:    http.StatusBadRequest,
		audit.KindNoModelTrained:  http.StatusUnprocessableEntity,
		audit.KindEvaluation:      http.StatusUnprocessableEntity,
		audit.KindFeatureMismatch: http.StatusUnprocessableEntity,
		audit.KindTimeout:         http.StatusGatewayTimeout,
		audit.KindCanceled:        http.StatusInternalServerError,
		audit.KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, statusFor(kind), kind)
	}
}

func TestResultsForm_Validate(t *testing.T) {
	tests := []struct {
		name string
		form resultsForm
		ok   bool
	}{
		{"valid", resultsForm{TargetCol: "hired", SensitiveCol: "group", ModelName: "knn"}, true},
		{"inner space", resultsForm{TargetCol: "was hired", SensitiveCol: "group", ModelName: "knn"}, true},
		{"surrounding space", resultsForm{TargetCol: " hired", SensitiveCol: "group", ModelName: "knn"}, false},
		{"control character", resultsForm{TargetCol: "hired", SensitiveCol: "gro\tup", ModelName: "knn"}, false},
		{"same column", resultsForm{TargetCol: "hired", SensitiveCol: "hired", ModelName: "knn"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := formValidate.Struct(tt.form)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
