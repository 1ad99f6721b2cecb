package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.generationsTotal)
	assert.NotNil(t, collector.errorsTotal)
	assert.NotNil(t, collector.quotaChecks)
}

func TestNewCollector_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() { NewCollector(nextTestNamespace(), nil) })
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordHTTPRequest("POST", "/api/generate-image", 200, 100*time.Millisecond, 2048)
	collector.RecordHTTPRequest("POST", "/api/generate-image", 201, 50*time.Millisecond, 1024)
	collector.RecordHTTPRequest("POST", "/api/generate-image", 400, 5*time.Millisecond, 64)

	assert.Equal(t, float64(2), testutil.ToFloat64(
		collector.httpRequestsTotal.WithLabelValues("POST", "/api/generate-image", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		collector.httpRequestsTotal.WithLabelValues("POST", "/api/generate-image", "4xx")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.httpRequestDuration))
}

func TestCollector_RecordGeneration(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordGeneration("fal", "fal-ai/flux/schnell", "success", 2*time.Second)
	collector.RecordGeneration("fal", "fal-ai/flux/schnell", "failure", time.Second)
	collector.RecordGeneration("openai", "dall-e-3", "success", 8*time.Second)

	assert.Equal(t, float64(1), testutil.ToFloat64(
		collector.generationsTotal.WithLabelValues("fal", "fal-ai/flux/schnell", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		collector.generationsTotal.WithLabelValues("fal", "fal-ai/flux/schnell", "failure")))
	assert.Equal(t, 3, testutil.CollectAndCount(collector.generationsTotal))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.generationDuration))
}

func TestCollector_RecordError(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordError("PROMPT_REQUIRED")
	collector.RecordError("PROMPT_REQUIRED")
	collector.RecordError("GENERATION_FAILED")

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.errorsTotal.WithLabelValues("PROMPT_REQUIRED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.errorsTotal.WithLabelValues("GENERATION_FAILED")))
}

func TestCollector_RecordQuotaCheck(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordQuotaCheck("allowed")
	collector.RecordQuotaCheck("denied")

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.quotaChecks.WithLabelValues("denied")))
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				collector.RecordGeneration("luma", "luma-photon", "success", time.Millisecond)
				collector.RecordError("RATE_LIMITED")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(1000), testutil.ToFloat64(
		collector.generationsTotal.WithLabelValues("luma", "luma-photon", "success")))
	assert.Equal(t, float64(1000), testutil.ToFloat64(collector.errorsTotal.WithLabelValues("RATE_LIMITED")))
}

func TestStatusCode(t *testing.T) {
	tests := map[int]string{200: "2xx", 302: "3xx", 404: "4xx", 429: "4xx", 500: "5xx", 0: "unknown"}
	for code, want := range tests {
		assert.Equal(t, want, statusCode(code), "code %d", code)
	}
}
