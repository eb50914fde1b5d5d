package observability

import (
	"context"
	"strings"

	"github.com/uptrace/uptrace-go/uptrace"

	"github.com/riskibarqy/rugby-analytics/internal/config"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
)

// InitUptrace configures the global OpenTelemetry providers. The returned
// shutdown flushes pending spans; it is a no-op when tracing is off.
func InitUptrace(cfg config.Config, component string, logger *logging.Logger) (func(context.Context) error, error) {
	logger = logging.OrDefault(logger)
	noop := func(context.Context) error { return nil }

	if !cfg.UptraceEnabled {
		logger.Info("uptrace disabled", "reason", "UPTRACE_ENABLED=false")
		return noop, nil
	}
	if strings.TrimSpace(cfg.UptraceDSN) == "" {
		logger.Info("uptrace disabled", "reason", "UPTRACE_DSN empty")
		return noop, nil
	}

	serviceName := cfg.ServiceName
	if component = strings.TrimSpace(component); component != "" {
		serviceName += "-" + component
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(serviceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
	)

	logger.Info("uptrace enabled",
		"service_name", serviceName,
		"service_version", cfg.ServiceVersion,
		"environment", cfg.AppEnv,
	)

	return uptrace.Shutdown, nil
}
