package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// Buckets.
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultAnalysisDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300}
	DefaultTableRowsBuckets        = []float64{1, 10, 100, 1000, 10000, 100000}
)

// AnalysisMetrics holds every metric the analyzer emits.
type AnalysisMetrics struct {
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	AnalysesTotal    CounterVec
	AnalysisDuration HistogramVec
	AnalysisRows     HistogramVec
	RowsAnalyzed     CounterVec

	CacheLookupsTotal CounterVec
	EventsTotal       CounterVec
}

// NewAnalysisMetrics registers the analyzer metrics on c.
func NewAnalysisMetrics(c MetricsCollector) *AnalysisMetrics {
	return &AnalysisMetrics{
		HTTPRequestsTotal:   c.RegisterCounter("http_requests_total", "HTTP requests by method, route and status.", "method", "route", "status"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds", "HTTP request latency.", DefaultHTTPDurationBuckets, "method", "route"),
		HTTPActiveRequests:  c.RegisterGauge("http_active_requests", "HTTP requests in flight."),

		AnalysesTotal:    c.RegisterCounter("analyses_total", "Analyses by source and outcome.", "source", "outcome"),
		AnalysisDuration: c.RegisterHistogram("analysis_duration_seconds", "Wall time of one analysis.", DefaultAnalysisDurationBuckets, "source"),
		AnalysisRows:     c.RegisterHistogram("analysis_table_rows", "Rows per analyzed table.", DefaultTableRowsBuckets, "source"),
		RowsAnalyzed:     c.RegisterCounter("rows_analyzed_total", "Analyzed rows by Lipinski result.", "result"),

		CacheLookupsTotal: c.RegisterCounter("descriptor_cache_lookups_total", "Descriptor cache lookups by outcome.", "outcome"),
		EventsTotal:       c.RegisterCounter("events_total", "Analysis events by topic and outcome.", "topic", "outcome"),
	}
}

// RecordAnalysis records one analysis. counts is ignored when err is set.
func (m *AnalysisMetrics) RecordAnalysis(source string, counts compound.Counts, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.AnalysisDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if err != nil {
		m.AnalysesTotal.WithLabelValues(source, outcomeFor(err)).Inc()
		return
	}
	m.AnalysesTotal.WithLabelValues(source, "success").Inc()
	m.AnalysisRows.WithLabelValues(source).Observe(float64(counts.Total))
	m.RowsAnalyzed.WithLabelValues(string(compound.ResultPass)).Add(float64(counts.Pass))
	m.RowsAnalyzed.WithLabelValues(string(compound.ResultFail)).Add(float64(counts.Fail))
	m.RowsAnalyzed.WithLabelValues(string(compound.ResultInvalid)).Add(float64(counts.Invalid))
}

// RecordCacheLookup counts a descriptor cache hit or miss.
func (m *AnalysisMetrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordEvent counts a published or consumed event.
func (m *AnalysisMetrics) RecordEvent(topic string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.EventsTotal.WithLabelValues(topic, outcome).Inc()
}

// RecordHTTPRequest records a finished request.
func (m *AnalysisMetrics) RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// TrackInFlight increments the in-flight gauge and returns its decrement.
func (m *AnalysisMetrics) TrackInFlight() func() {
	if m == nil {
		return func() {}
	}
	g := m.HTTPActiveRequests.WithLabelValues()
	g.Inc()
	return g.Dec
}

// outcomeFor buckets an error into a low-cardinality label.
func outcomeFor(err error) string {
	switch {
	case errors.IsCode(err, errors.ErrCodeNoSmilesColumn), errors.IsCode(err, errors.ErrCodeColumnMissing):
		return "no_column"
	case errors.IsCode(err, errors.ErrCodeTableEmpty), errors.IsCode(err, errors.ErrCodeTableMalformed),
		errors.IsCode(err, errors.ErrCodeFormatUnsupported), errors.IsCode(err, errors.ErrCodeTableTooLarge):
		return "bad_input"
	case errors.IsCode(err, errors.ErrCodeTimeout):
		return "timeout"
	}
	return "error"
}

//Personal.AI order the ending
