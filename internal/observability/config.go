package observability

import (
	"time"

	"github.com/smallbiznis/clientes/internal/config"
)

// Config is the slice of the application config the logging, tracing and
// metrics providers read.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel   string
	LogConsole bool
	SlowQuery  time.Duration

	OtelEnabled       bool
	OtelEndpoint      string
	OtelProtocol      string
	OtelSamplingRatio float64
}

func LoadConfig(cfg config.Config) Config {
	return Config{
		ServiceName:       cfg.AppName,
		Environment:       cfg.Environment,
		Version:           cfg.AppVersion,
		LogLevel:          cfg.LogLevel,
		LogConsole:        cfg.LogFormat == "console",
		SlowQuery:         time.Duration(cfg.LogSlowQueryMillis) * time.Millisecond,
		OtelEnabled:       cfg.OtelEnabled,
		OtelEndpoint:      cfg.OTLPEndpoint,
		OtelProtocol:      cfg.OTLPProtocol,
		OtelSamplingRatio: cfg.OtelSamplingRatio,
	}
}

// Debug turns on SQL statement logging, stack traces and gin debug mode. It
// holds for LOG_LEVEL=debug and for any non-production deployment.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch c.Environment {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}
