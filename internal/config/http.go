package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var defaultHTTPConfigPaths = []string{
	"/etc/clientes", // System config
	".",             // Current directory (dev mode)
}

// HTTPConfig holds the HTTP settings that can change without a restart.
type HTTPConfig struct {
	Addr string
	// StrictStatus reports not-found updates as 404 and duplicate creates as
	// 409 instead of the legacy 500.
	StrictStatus bool
}

type HTTPConfigHolder struct {
	current atomic.Value // holds HTTPConfig
}

// NewHTTPConfigHolder reads clientes.yml when present and keeps watching it.
// Environment values from Config are the defaults.
func NewHTTPConfigHolder(cfg Config, log *zap.Logger) (*HTTPConfigHolder, error) {
	return newHTTPConfigHolder(cfg, log, defaultHTTPConfigPaths)
}

// NewStaticHTTPConfigHolder returns a holder that never reloads.
func NewStaticHTTPConfigHolder(cfg HTTPConfig) *HTTPConfigHolder {
	holder := &HTTPConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func newHTTPConfigHolder(cfg Config, log *zap.Logger, paths []string) (*HTTPConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.http")

	v := viper.New()
	v.SetConfigName("clientes")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("CLIENTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", cfg.HTTPAddr)
	v.SetDefault("http.strict_status", cfg.HTTPStrictStatus)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileFound = false
	}

	current := readHTTPConfig(v)
	if err := validateHTTPConfig(current); err != nil {
		return nil, err
	}

	holder := NewStaticHTTPConfigHolder(current)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := readHTTPConfig(v)
		if err := validateHTTPConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		// The listener is already bound; only the status policy is live.
		updated.Addr = holder.Get().Addr
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name), zap.Bool("strict_status", updated.StrictStatus))
	})

	return holder, nil
}

func (h *HTTPConfigHolder) Get() HTTPConfig {
	return h.current.Load().(HTTPConfig)
}

func readHTTPConfig(v *viper.Viper) HTTPConfig {
	return HTTPConfig{
		Addr:         strings.TrimSpace(v.GetString("http.addr")),
		StrictStatus: v.GetBool("http.strict_status"),
	}
}

func validateHTTPConfig(cfg HTTPConfig) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return errors.New("http.addr cannot be empty")
	}
	return nil
}
