package prometheus

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

func TestAnalysisMetrics_RecordAnalysis(t *testing.T) {
	c := newTestCollector(t)
	m := NewAnalysisMetrics(c)

	m.RecordAnalysis("http", compound.Counts{Total: 4, Valid: 3, Invalid: 1, Pass: 2, Fail: 1}, 20*time.Millisecond, nil)
	m.RecordAnalysis("cli", compound.Counts{}, time.Millisecond, errors.New(errors.ErrCodeNoSmilesColumn, "none"))
	m.RecordAnalysis("cli", compound.Counts{}, time.Millisecond, errors.New(errors.ErrCodeTableEmpty, "empty"))
	m.RecordAnalysis("worker", compound.Counts{}, time.Millisecond, assert.AnError)

	out := scrape(t, c)
	assert.Contains(t, out, `test_unit_analyses_total{outcome="success",source="http"} 1`)
	assert.Contains(t, out, `test_unit_analyses_total{outcome="no_column",source="cli"} 1`)
	assert.Contains(t, out, `test_unit_analyses_total{outcome="bad_input",source="cli"} 1`)
	assert.Contains(t, out, `test_unit_analyses_total{outcome="error",source="worker"} 1`)
	assert.Contains(t, out, `test_unit_rows_analyzed_total{result="Pass"} 2`)
	assert.Contains(t, out, `test_unit_rows_analyzed_total{result="Fail"} 1`)
	assert.Contains(t, out, `test_unit_rows_analyzed_total{result="Invalid SMILES"} 1`)
	assert.Contains(t, out, `test_unit_analysis_table_rows_sum{source="http"} 4`)
	assert.Contains(t, out, `test_unit_analysis_duration_seconds_count{source="cli"} 2`)
}

func TestAnalysisMetrics_CacheAndEvents(t *testing.T) {
	c := newTestCollector(t)
	m := NewAnalysisMetrics(c)

	m.RecordCacheLookup(true)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordEvent("lipinski.analysis.completed", nil)
	m.RecordEvent("lipinski.analysis.completed", assert.AnError)

	out := scrape(t, c)
	assert.Contains(t, out, `test_unit_descriptor_cache_lookups_total{outcome="hit"} 2`)
	assert.Contains(t, out, `test_unit_descriptor_cache_lookups_total{outcome="miss"} 1`)
	assert.Contains(t, out, `test_unit_events_total{outcome="success",topic="lipinski.analysis.completed"} 1`)
	assert.Contains(t, out, `test_unit_events_total{outcome="error",topic="lipinski.analysis.completed"} 1`)
}

func TestAnalysisMetrics_HTTP(t *testing.T) {
	c := newTestCollector(t)
	m := NewAnalysisMetrics(c)

	done := m.TrackInFlight()
	assert.Contains(t, scrape(t, c), "test_unit_http_active_requests 1")
	done()

	m.RecordHTTPRequest(http.MethodPost, "/api/v1/analyses", http.StatusOK, 30*time.Millisecond)
	out := scrape(t, c)
	assert.Contains(t, out, "test_unit_http_active_requests 0")
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",route="/api/v1/analyses",status="200"} 1`)
	assert.Contains(t, out, `test_unit_http_request_duration_seconds_count{method="POST",route="/api/v1/analyses"} 1`)
}

func TestAnalysisMetrics_NilSafe(t *testing.T) {
	var m *AnalysisMetrics
	assert.NotPanics(t, func() {
		m.RecordAnalysis("cli", compound.Counts{}, 0, nil)
		m.RecordCacheLookup(true)
		m.RecordEvent("t", nil)
		m.RecordHTTPRequest("GET", "/", 200, 0)
		m.TrackInFlight()()
	})
}

//Personal.AI order the ending
