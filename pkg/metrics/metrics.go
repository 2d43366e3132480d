// Package metrics records what runs select and exports the measurements in
// the Prometheus text format, for node-exporter's textfile collector.
package metrics

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	namespace = "kpet"
	meterName = "kpet"

	suitesMetricName       = "selected_suites"
	casesMetricName        = "selected_cases"
	hostsMetricName        = "selected_hosts"
	loadDurationMetricName = "database_load_duration"

	treeKey = "tree"
	archKey = "arch"

	suitesDesc       = "Number of suites selected for a run, counted once per host"
	casesDesc        = "Number of cases selected for a run"
	hostsDesc        = "Number of hosts a run was distributed over"
	loadDurationDesc = "Time spent loading the database in seconds"
)

// Reporter records run metrics.
type Reporter struct {
	provider     *sdkmetric.MeterProvider
	suites       metric.Int64Counter
	cases        metric.Int64Counter
	hosts        metric.Int64Counter
	loadDuration metric.Float64Histogram
}

// NewReporter returns a Reporter whose measurements are collected by the
// readers.
func NewReporter(readers ...sdkmetric.Reader) (*Reporter, error) {
	opts := make([]sdkmetric.Option, 0, len(readers))
	for _, rdr := range readers {
		opts = append(opts, sdkmetric.WithReader(rdr))
	}
	r := &Reporter{provider: sdkmetric.NewMeterProvider(opts...)}
	meter := r.provider.Meter(meterName)

	var err error
	if r.suites, err = meter.Int64Counter(suitesMetricName, metric.WithDescription(suitesDesc)); err != nil {
		return nil, err
	}
	if r.cases, err = meter.Int64Counter(casesMetricName, metric.WithDescription(casesDesc)); err != nil {
		return nil, err
	}
	if r.hosts, err = meter.Int64Counter(hostsMetricName, metric.WithDescription(hostsDesc)); err != nil {
		return nil, err
	}
	r.loadDuration, err = meter.Float64Histogram(loadDurationMetricName,
		metric.WithDescription(loadDurationDesc),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ReportRun records the size of a run generated for a tree and
// architecture. Either can be empty when not selected.
func (r *Reporter) ReportRun(ctx context.Context, tree, arch string, suites, cases, hosts int) {
	attrs := metric.WithAttributes(attribute.String(treeKey, tree), attribute.String(archKey, arch))
	r.suites.Add(ctx, int64(suites), attrs)
	r.cases.Add(ctx, int64(cases), attrs)
	r.hosts.Add(ctx, int64(hosts), attrs)
}

// ReportLoad records how long loading the database took.
func (r *Reporter) ReportLoad(ctx context.Context, d time.Duration) {
	r.loadDuration.Record(ctx, d.Seconds())
}

// Shutdown flushes the readers and stops recording.
func (r *Reporter) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

// Textfile gathers measurements into a private Prometheus registry.
type Textfile struct {
	registry *prometheus.Registry
	exporter *otelprom.Exporter
}

// NewTextfile returns a Textfile to pass to NewReporter as a reader.
func NewTextfile() (*Textfile, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithNamespace(namespace),
		otelprom.WithoutScopeInfo(),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		return nil, err
	}
	return &Textfile{registry: registry, exporter: exporter}, nil
}

// Reader returns the reader collecting the measurements.
func (t *Textfile) Reader() sdkmetric.Reader {
	return t.exporter
}

// Write atomically writes the gathered measurements to the file at path.
func (t *Textfile) Write(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, t.registry), "writing metrics to %s", path)
}
