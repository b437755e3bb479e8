package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	logLevel string
	logger   = slog.Default()

	// audit flags
	dataFile      string
	targetCol     string
	sensitiveCol  string
	modelName     string
	positiveLabel string
	jsonOutput    bool
	chartDir      string
	reportDir     string

	rootCmd = &cobra.Command{
		Use:          "biasaudit",
		Short:        "Audit tabular classifiers for selection-rate bias across groups",
		SilenceUsage: true,
	}

	auditCmd = &cobra.Command{
		Use:   "audit",
		Short: "Train the model registry on a dataset and report group fairness for one model",
		RunE:  runAudit, // cmd_audit.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the audit API over HTTP",
		RunE:  runServe, // cmd_serve.go
	}

	modelsCmd = &cobra.Command{
		Use:   "models",
		Short: "List the model types every audit trains",
		Run:   runModels, // cmd_audit.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	auditCmd.Flags().StringVarP(&dataFile, "file", "f", "", "CSV or TSV dataset")
	auditCmd.Flags().StringVarP(&targetCol, "target", "t", "", "label column")
	auditCmd.Flags().StringVarP(&sensitiveCol, "sensitive", "s", "", "sensitive attribute column")
	auditCmd.Flags().StringVarP(&modelName, "model", "m", "logistic_regression", "model to evaluate")
	auditCmd.Flags().StringVar(&positiveLabel, "positive", "", "label of the favourable outcome")
	auditCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the outcome as JSON")
	auditCmd.Flags().StringVar(&chartDir, "chart-dir", "", "write the selection rate chart here (CHART_DIR when empty)")
	auditCmd.Flags().StringVar(&reportDir, "report-dir", "", "write the JSON report here (REPORT_DIR when empty)")
	_ = auditCmd.MarkFlagRequired("file")
	_ = auditCmd.MarkFlagRequired("target")
	_ = auditCmd.MarkFlagRequired("sensitive")

	rootCmd.AddCommand(auditCmd, serveCmd, modelsCmd)
}
