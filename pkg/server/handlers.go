package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/RajatSharma-ops/Biased-AI/pkg/artifact"
	"github.com/RajatSharma-ops/Biased-AI/pkg/audit"
)

// allowedExtensions are the dataset formats data.ReadTable understands.
var allowedExtensions = map[string]bool{".csv": true, ".tsv": true, ".txt": true}

// formValidate checks the multipart fields of POST /results. Errors report
// the form field names rather than the Go field names.
var formValidate *validator.Validate

func init() {
	formValidate = validator.New()
	formValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
	})
	if err := formValidate.RegisterValidation("column", validateColumn); err != nil {
		panic(err)
	}
}

// validateColumn accepts a header name with no control characters and no
// surrounding whitespace.
func validateColumn(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	return strings.IndexFunc(s, unicode.IsControl) < 0
}

type resultsForm struct {
	TargetCol     string `form:"target_col" validate:"required,max=256,column"`
	SensitiveCol  string `form:"sensitive_col" validate:"required,max=256,column,nefield=TargetCol"`
	ModelName     string `form:"model_name" validate:"required,max=64"`
	PositiveLabel string `form:"positive_label" validate:"max=256"`
}

// fieldErrors converts a validator failure into the field list of an
// audit.ValidationError.
func fieldErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &audit.ValidationError{Fields: []string{err.Error()}}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return &audit.ValidationError{Fields: fields}
}

func (s *Server) handleResults(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	file, err := c.FormFile("dataset")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds size limit", "kind": audit.KindInvalidRequest})
			return
		}
		s.writeError(c, &audit.ValidationError{Fields: []string{"dataset"}})
		return
	}
	form := resultsForm{
		TargetCol:     c.PostForm("target_col"),
		SensitiveCol:  c.PostForm("sensitive_col"),
		ModelName:     c.PostForm("model_name"),
		PositiveLabel: c.PostForm("positive_label"),
	}
	if err := formValidate.Struct(form); err != nil {
		s.writeError(c, fieldErrors(err))
		return
	}

	base := filepath.Base(file.Filename)
	if !allowedExtensions[strings.ToLower(filepath.Ext(base))] {
		s.writeError(c, &audit.ValidationError{Fields: []string{"dataset (extension must be .csv, .tsv or .txt)"}})
		return
	}
	if err := os.MkdirAll(s.opts.UploadDir, 0o755); err != nil {
		s.writeError(c, err)
		return
	}
	dst := filepath.Join(s.opts.UploadDir, uuid.NewString()[:8]+"_"+base)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		s.writeError(c, err)
		return
	}

	out, err := s.auditor.Run(c.Request.Context(), audit.Request{
		Path:          dst,
		TargetCol:     form.TargetCol,
		SensitiveCol:  form.SensitiveCol,
		ModelName:     form.ModelName,
		PositiveLabel: form.PositiveLabel,
		Cleanup:       true,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	body, ok := artifact.ToNative(out).(*artifact.OrderedMap)
	if !ok {
		s.writeError(c, errors.New("server: outcome did not encode to an object"))
		return
	}
	if out.ChartPath != "" {
		body.Set("chart_url", "/charts/"+filepath.Base(out.ChartPath))
	}
	if out.ReportPath != "" {
		body.Set("report_url", "/reports/"+filepath.Base(out.ReportPath))
	}
	c.JSON(http.StatusOK, body)
}

// serveArtifact serves files from dir by base name only.
func (s *Server) serveArtifact(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if dir == "" || name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.File(path)
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind string) int {
	switch kind {
	case audit.KindInvalidRequest, audit.KindColumnNotFound, audit.KindLabelNotFound,
		audit.KindEmptyDataset, audit.KindUnknownModel:
		return http.StatusBadRequest
	case audit.KindNoModelTrained, audit.KindEvaluation, audit.KindFeatureMismatch:
		return http.StatusUnprocessableEntity
	case audit.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	kind := audit.Kind(err)
	status := statusFor(kind)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg, "kind": kind})
}
