package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(FallbackCount)
	IncrementFallback()
	assert.Equal(t, before+1, testutil.ToFloat64(FallbackCount))

	tasks := WriteFailures.WithLabelValues("tasks")
	before = testutil.ToFloat64(tasks)
	IncrementWriteFailure("tasks")
	assert.Equal(t, before+1, testutil.ToFloat64(tasks))

	notes := EntitiesMaterialized.WithLabelValues("notes")
	before = testutil.ToFloat64(notes)
	AddMaterialized("notes", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(notes))

	runs := PipelineRuns.WithLabelValues("failed", "extracting")
	before = testutil.ToFloat64(runs)
	RecordPipelineRun("failed", "extracting")
	assert.Equal(t, before+1, testutil.ToFloat64(runs))
}

func TestHistograms(t *testing.T) {
	RecordExtractionLatency("ok", 1200*time.Millisecond)
	RecordDBQueryDuration("insert", "tasks", 3*time.Millisecond)
	RecordHTTPRequestDuration("POST", "/api/brain-dump", "200", 40*time.Millisecond)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(ExtractionLatency), 1)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(DBQueryDuration), 1)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(HTTPRequestDuration), 1)
}
