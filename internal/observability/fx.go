package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/malipo/internal/config"
	"github.com/smallbiznis/malipo/internal/observability/logger"
	"github.com/smallbiznis/malipo/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideLoggerConfig,
		logger.New,
		fx.Annotate(metrics.NewRegistry, fx.As(new(prometheus.Registerer))),
		metrics.New,
	),
)

func provideLoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName:   cfg.AppName,
		Environment:   cfg.Environment,
		Version:       cfg.AppVersion,
		Level:         cfg.LogLevel,
		Format:        cfg.LogFormat,
		IncludeCaller: true,
	}
}
