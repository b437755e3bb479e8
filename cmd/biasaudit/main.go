package main

import (
	"os"

	"github.com/RajatSharma-ops/Biased-AI/pkg/config"
	"github.com/RajatSharma-ops/Biased-AI/pkg/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and builds the process logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger = logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "biasaudit",
	})
	return cfg, nil
}
