package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "treasury_tvl",
			Name:      "sdk_requests",
			Help:      "Time taken to process requests",
			Buckets:   []float64{.005, .01, .025, .05, .075, .1, .15, .2, .25, .5, 1, 2.5, 5, 10, 15, 30},
		},
		[]string{"client", "method", "error"},
	)

	SnapshotTokensGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "treasury_tvl",
			Name:      "snapshot_tokens",
			Help:      "Number of tokens in the last computed snapshot",
		}, []string{"chain", "kind"},
	)

	IndexedDataAgeGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "treasury_tvl",
			Name:      "indexed_data_age_seconds",
			Help:      "Age of the latest indexed treasury snapshot",
		}, []string{"chain"},
	)

	RefreshErrorsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "treasury_tvl",
			Name:      "refresh_errors_total",
			Help:      "Failed snapshot refreshes by reason",
		}, []string{"chain", "kind", "reason"},
	)
)

func CollectRequestsMetric(client, method string, err error, start time.Time) {
	RequestsHistogram.
		WithLabelValues(client, method, errLabelValue(err)).
		Observe(time.Since(start).Seconds())
}

func CollectSnapshotTokens(chain, kind string, count int) {
	SnapshotTokensGauge.
		WithLabelValues(chain, kind).
		Set(float64(count))
}

func CollectIndexedDataAge(chain string, age time.Duration) {
	IndexedDataAgeGauge.
		WithLabelValues(chain).
		Set(age.Seconds())
}

func CollectRefreshError(chain, kind, reason string) {
	RefreshErrorsCounter.
		WithLabelValues(chain, kind, reason).
		Inc()
}

// ErrLabelValue returns string representation of error label value
func errLabelValue(err error) string {
	if err != nil {
		return "true"
	}
	return "false"
}
