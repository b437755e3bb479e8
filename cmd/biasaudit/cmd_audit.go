package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RajatSharma-ops/Biased-AI/pkg/artifact"
	"github.com/RajatSharma-ops/Biased-AI/pkg/audit"
	"github.com/RajatSharma-ops/Biased-AI/pkg/config"
	"github.com/RajatSharma-ops/Biased-AI/pkg/model"
)

func auditorFor(cfg *config.Config, charts, reports string) *audit.Auditor {
	return audit.New(audit.Options{
		Seed:          cfg.Audit.Seed,
		TestRatio:     cfg.Audit.TestRatio,
		MinRows:       cfg.Audit.MinRows,
		MaxMissing:    cfg.Audit.MaxMissing,
		Encoding:      cfg.Audit.Encoding,
		PositiveLabel: cfg.Audit.PositiveLabel,
		Timeout:       cfg.Audit.Timeout,
		ChartDir:      charts,
		ReportDir:     reports,
	}, logger)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	charts, reports := cfg.Storage.ChartDir, cfg.Storage.ReportDir
	if chartDir != "" {
		charts = chartDir
	}
	if reportDir != "" {
		reports = reportDir
	}

	out, err := auditorFor(cfg, charts, reports).Run(cmd.Context(), audit.Request{
		Path:          dataFile,
		TargetCol:     targetCol,
		SensitiveCol:  sensitiveCol,
		ModelName:     modelName,
		PositiveLabel: positiveLabel,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", audit.Kind(err), err)
	}
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(artifact.ToNative(out))
	}
	return printOutcome(cmd.OutOrStdout(), out)
}

func printOutcome(w io.Writer, out *audit.Outcome) error {
	fmt.Fprintf(w, "model %s  target %s  sensitive %s  positive %q\n",
		out.ModelName, out.TargetColumn, out.SensitiveColumn, out.PositiveLabel)
	fmt.Fprintf(w, "rows: train %d  test %d  dropped %d  stratified %t\n\n",
		out.TrainRows, out.TestRows, out.DroppedRows, out.Stratified)

	m := out.Metrics
	fmt.Fprintf(w, "accuracy %.4f  precision %.4f  recall %.4f  f1 %.4f\n", m.Accuracy, m.Precision, m.Recall, m.F1)
	fmt.Fprintf(w, "disparity %.4f  equal opportunity diff %.4f  equalized odds diff %.4f  disparate impact %.4f\n\n",
		m.Disparity, m.EqualOpportunityDiff, m.EqualizedOddsDiff, m.DisparateImpact)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tCOUNT\tSELECTION\tTPR\tFPR\tFNR")
	for _, g := range out.GroupRates.Groups() {
		r, _ := out.GroupRates.Get(g)
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f\n",
			g, r.Count, r.SelectionRate, r.TruePositiveRate, r.FalsePositiveRate, r.FalseNegativeRate)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, f := range out.Failures {
		fmt.Fprintf(w, "\nwarning: %s", f)
	}
	if out.ChartPath != "" {
		fmt.Fprintf(w, "\nchart:  %s", out.ChartPath)
	}
	if out.ReportPath != "" {
		fmt.Fprintf(w, "\nreport: %s", out.ReportPath)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func runModels(cmd *cobra.Command, _ []string) {
	for _, name := range model.ModelNames() {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
}
