package main

import (
	"github.com/smallbiznis/clientes/internal/config"
	"github.com/smallbiznis/clientes/internal/metricspush"
	"github.com/smallbiznis/clientes/internal/migration"
	"github.com/smallbiznis/clientes/internal/observability"
	"github.com/smallbiznis/clientes/internal/server"
	"github.com/smallbiznis/clientes/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
		server.Module,
		metricspush.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}
