package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/clientes/internal/cliente"
	clientedomain "github.com/smallbiznis/clientes/internal/cliente/domain"
	"github.com/smallbiznis/clientes/internal/config"
	"github.com/smallbiznis/clientes/internal/observability"
	obslogger "github.com/smallbiznis/clientes/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/clientes/internal/observability/metrics"
	obstracing "github.com/smallbiznis/clientes/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	cliente.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, httpCfg *config.HTTPConfigHolder) *gin.Engine {
	if !obsCfg.Debug() && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware(httpCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, httpCfg *config.HTTPConfigHolder) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, httpCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, httpCfg *config.HTTPConfigHolder, log *zap.Logger) {
	srv := &http.Server{
		Addr:              httpCfg.Get().Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	clienteSvc clientedomain.Service
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	ClienteSvc clientedomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		clienteSvc: p.ClienteSvc,
		obsMetrics: p.ObsMetrics,
	}

	svc.registerClienteRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerClienteRoutes() {
	clientes := s.engine.Group("/clientes")

	clientes.GET("", s.ListClientes)
	clientes.POST("", s.CreateCliente)
	clientes.PUT("", s.UpdateClienteByBody)

	clientes.GET("/:id", s.GetClienteByID)
	clientes.PUT("/:id", s.UpdateCliente)
	clientes.DELETE("/:id", s.DeleteCliente)
}
