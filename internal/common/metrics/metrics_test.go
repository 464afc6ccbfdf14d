// internal/common/metrics/metrics_test.go
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveScore(t *testing.T) {
	before := testutil.ToFloat64(ScoresComputed.WithLabelValues("Low"))

	ObserveScore("Low", 816)

	assert.Equal(t, before+1, testutil.ToFloat64(ScoresComputed.WithLabelValues("Low")))
	assert.Equal(t, 1, testutil.CollectAndCount(ScaledScore))
}

func TestObserveCache(t *testing.T) {
	hits := testutil.ToFloat64(CacheLookups.WithLabelValues("report", "hit"))
	misses := testutil.ToFloat64(CacheLookups.WithLabelValues("report", "miss"))

	ObserveCache("report", true)
	ObserveCache("report", false)
	ObserveCache("report", false)

	assert.Equal(t, hits+1, testutil.ToFloat64(CacheLookups.WithLabelValues("report", "hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(CacheLookups.WithLabelValues("report", "miss")))
}
