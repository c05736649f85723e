package cli

import (
	"go.uber.org/zap"

	"millionaire-service/internal/config"
)

func newLogger(cfg config.Config, verbose bool) (*zap.Logger, error) {
	if cfg.Log.Development || verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
