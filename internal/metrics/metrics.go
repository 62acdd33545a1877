package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trendingnews"

var (
	// FetchTotal 新闻接口调用次数，status 为错误分类（ok / transport / provider ...）
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Total number of news provider calls",
		},
		[]string{"provider", "status"},
	)

	// FetchedArticles 新闻接口返回的条目数
	FetchedArticles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetched_articles_total",
			Help:      "Total number of raw articles returned by providers",
		},
		[]string{"provider"},
	)

	EnrichTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrich_total",
			Help:      "Total number of article enrichments",
		},
		[]string{"status"},
	)

	PersistErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_errors_total",
			Help:      "Total number of failed sink writes",
		},
		[]string{"sink"},
	)

	TrendFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trend_fetch_total",
			Help:      "Total number of trend provider calls",
		},
		[]string{"status"},
	)

	AggregateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_duration_seconds",
			Help:      "Duration of aggregation runs in seconds",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
	)
)

// RecordFetch 记录一次新闻接口调用
func RecordFetch(provider, status string, n int) {
	FetchTotal.WithLabelValues(provider, status).Inc()
	if n > 0 {
		FetchedArticles.WithLabelValues(provider).Add(float64(n))
	}
}

func RecordEnrich(status string) {
	EnrichTotal.WithLabelValues(status).Inc()
}

func RecordPersistError(sink string) {
	PersistErrors.WithLabelValues(sink).Inc()
}

func RecordTrendFetch(status string) {
	TrendFetchTotal.WithLabelValues(status).Inc()
}
