package metricspush

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	clientedomain "github.com/smallbiznis/clientes/internal/cliente/domain"
	"github.com/smallbiznis/clientes/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module pushes the clientes_* series on an interval when
// METRICS_PUSH_EXPORTER is set.
var Module = fx.Module("metrics.push",
	fx.Provide(NewPusher),
	fx.Invoke(registerWorker),
)

const familyPrefix = "clientes_"

// Worker refreshes the stored-customer gauges and pushes every clientes_*
// family from the default registry along with them. Go runtime and process
// series stay on the /metrics scrape.
type Worker struct {
	pusher   Pusher
	gatherer prometheus.Gatherer
	records  *prometheus.GaugeVec
	owners   prometheus.Gauge
	db       *gorm.DB
	log      *zap.Logger
}

func NewWorker(pusher Pusher, db *gorm.DB, cfg config.Config, log *zap.Logger) *Worker {
	constLabels := prometheus.Labels{"service": cfg.AppName, "env": cfg.Environment}
	records := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "clientes_records",
		Help:        "Stored customers by estado.",
		ConstLabels: constLabels,
	}, []string{"estado"})
	owners := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "clientes_owners",
		Help:        "Distinct id_usuario values with at least one customer.",
		ConstLabels: constLabels,
	})
	registry := prometheus.NewRegistry()
	registry.MustRegister(records, owners)

	return &Worker{
		pusher:   pusher,
		gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, registry},
		records:  records,
		owners:   owners,
		db:       db,
		log:      log,
	}
}

// PushOnce refreshes the customer gauges and pushes one snapshot. A failed
// count keeps the previous gauge values.
func (w *Worker) PushOnce(ctx context.Context) error {
	if err := w.refresh(ctx); err != nil {
		w.log.Warn("refresh clientes gauges", zap.Error(err))
	}

	families, err := w.gatherer.Gather()
	if err != nil {
		return err
	}
	return w.pusher.Push(ctx, customerFamilies(families))
}

func (w *Worker) refresh(ctx context.Context) error {
	var byEstado []estadoCount
	tx := w.db.WithContext(ctx).Model(&clientedomain.Cliente{})
	if err := tx.Select("estado, count(*) AS total").Group("estado").Scan(&byEstado).Error; err != nil {
		return err
	}
	var owners int64
	if err := w.db.WithContext(ctx).Model(&clientedomain.Cliente{}).Distinct("id_usuario").Count(&owners).Error; err != nil {
		return err
	}

	w.records.WithLabelValues(estadoLabel(true)).Set(0)
	w.records.WithLabelValues(estadoLabel(false)).Set(0)
	for _, row := range byEstado {
		w.records.WithLabelValues(estadoLabel(row.Estado)).Set(float64(row.Total))
	}
	w.owners.Set(float64(owners))
	return nil
}

type estadoCount struct {
	Estado bool
	Total  int64
}

func estadoLabel(active bool) string {
	if active {
		return "activo"
	}
	return "inactivo"
}

func customerFamilies(families []*dto.MetricFamily) []*dto.MetricFamily {
	out := families[:0:0]
	for _, family := range families {
		if strings.HasPrefix(family.GetName(), familyPrefix) {
			out = append(out, family)
		}
	}
	return out
}

func registerWorker(lc fx.Lifecycle, cfg config.Config, pusher Pusher, db *gorm.DB, log *zap.Logger) {
	if pusher == nil {
		return
	}

	interval := time.Duration(cfg.MetricsPushInterval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	worker := NewWorker(pusher, db, cfg, log.Named("metrics.push"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			worker.log.Info("starting metrics push worker", zap.Duration("interval", interval))
			go func() {
				defer close(done)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						if err := worker.PushOnce(ctx); err != nil {
							worker.log.Error("metrics push failed", zap.Error(err))
						}
					case <-ctx.Done():
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
