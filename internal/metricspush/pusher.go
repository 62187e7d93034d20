package metricspush

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/prometheus/prompb"
	"github.com/smallbiznis/clientes/internal/config"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/protoadapt"
)

const (
	exporterRemoteWrite = "prometheus_remote_write"
	exporterPushgateway = "prometheus_pushgateway"
)

// Pusher ships one snapshot of customer metric families to a collector.
type Pusher interface {
	Push(ctx context.Context, families []*dto.MetricFamily) error
}

// NewPusher returns nil when pushing is off. A bad exporter or endpoint is
// logged and also turns pushing off so start-up never depends on it.
func NewPusher(cfg config.Config, log *zap.Logger) Pusher {
	exporter := strings.ToLower(cfg.MetricsPushExporter)
	if exporter == "" {
		return nil
	}
	if _, err := url.ParseRequestURI(cfg.MetricsPushEndpoint); err != nil {
		log.Warn("metrics push disabled", zap.String("exporter", exporter), zap.Error(err))
		return nil
	}

	switch exporter {
	case exporterRemoteWrite:
		return &RemoteWritePusher{
			endpoint: cfg.MetricsPushEndpoint,
			token:    cfg.MetricsPushToken,
			client:   &http.Client{Timeout: 5 * time.Second},
		}
	case exporterPushgateway:
		return &PushgatewayPusher{endpoint: cfg.MetricsPushEndpoint, job: cfg.AppName}
	default:
		log.Warn("metrics push disabled", zap.String("exporter", exporter))
		return nil
	}
}

// RemoteWritePusher posts snappy-compressed prompb write requests.
type RemoteWritePusher struct {
	endpoint string
	token    string
	client   *http.Client
}

func (p *RemoteWritePusher) Push(ctx context.Context, families []*dto.MetricFamily) error {
	series := toTimeSeries(families, time.Now().UnixMilli())
	if len(series) == 0 {
		return nil
	}

	payload, err := proto.Marshal(protoadapt.MessageV2Of(&prompb.WriteRequest{Timeseries: series}))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(snappy.Encode(nil, payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-protobuf")
	req.Header.Set("Content-Encoding", "snappy")
	req.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("remote write: %s", resp.Status)
	}
	return nil
}

// PushgatewayPusher replaces the job's group on a Pushgateway each push. The
// service and env labels travel on the series themselves, so the group is
// keyed by job alone.
type PushgatewayPusher struct {
	endpoint string
	job      string
}

func (p *PushgatewayPusher) Push(ctx context.Context, families []*dto.MetricFamily) error {
	return push.New(p.endpoint, p.job).
		Gatherer(prometheus.GathererFunc(func() ([]*dto.MetricFamily, error) { return families, nil })).
		PushContext(ctx)
}

// toTimeSeries flattens counters and gauges into one series each and
// histograms into their _count and _sum series.
func toTimeSeries(families []*dto.MetricFamily, ts int64) []prompb.TimeSeries {
	var out []prompb.TimeSeries
	add := func(name string, metric *dto.Metric, value float64) {
		labels := []prompb.Label{{Name: "__name__", Value: name}}
		for _, l := range metric.GetLabel() {
			labels = append(labels, prompb.Label{Name: l.GetName(), Value: l.GetValue()})
		}
		sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
		out = append(out, prompb.TimeSeries{Labels: labels, Samples: []prompb.Sample{{Value: value, Timestamp: ts}}})
	}

	for _, family := range families {
		name := family.GetName()
		for _, metric := range family.GetMetric() {
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				add(name, metric, metric.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				add(name, metric, metric.GetGauge().GetValue())
			case dto.MetricType_HISTOGRAM:
				add(name+"_count", metric, float64(metric.GetHistogram().GetSampleCount()))
				add(name+"_sum", metric, metric.GetHistogram().GetSampleSum())
			}
		}
	}
	return out
}
