package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RajatSharma-ops/Biased-AI/pkg/artifact"
)

// Report is the persisted summary of one audit.
type Report struct {
	GeneratedAt     time.Time `json:"generated_at"`
	Model           string    `json:"model"`
	SensitiveColumn string    `json:"sensitive_column"`
	TargetColumn    string    `json:"target_column"`
	PositiveLabel   string    `json:"positive_label"`
	Metrics         any       `json:"metrics"`
	GroupRates      any       `json:"group_rates"`
	SensitiveSeries []string  `json:"sensitive_series"`
	Predictions     []string  `json:"predictions"`
	Chart           string    `json:"chart,omitempty"`
}

// Write stores r as indented JSON at path, creating parent directories. The
// file is written to a temporary name first and renamed into place.
func Write(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	body, err := json.MarshalIndent(artifact.ToNative(r), "", "  ")
	if err != nil {
		return fmt.Errorf("report: encoding: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Read loads a report written by Write as generic JSON.
func Read(path string) (map[string]any, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("report: decoding %s: %w", path, err)
	}
	return out, nil
}
