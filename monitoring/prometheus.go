package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BreedRejectedReason string

var (
	BreedInvalidParent   BreedRejectedReason = "invalid_parent"
	BreedTraitEngine     BreedRejectedReason = "trait_engine"
	BreedMiningExhausted BreedRejectedReason = "mining_exhausted"
	BreedChainIntegrity  BreedRejectedReason = "chain_integrity"
	BreedRejectedUnknown BreedRejectedReason = "other"
)

type ledgerPromMetrics struct {
	chainHeight      prometheus.Gauge
	miningAttempts   *prometheus.CounterVec
	miningHashRate   *prometheus.GaugeVec
	miningDuration   prometheus.Histogram
	breedCompleted   prometheus.Counter
	breedRejected    *prometheus.CounterVec
	backendFallbacks prometheus.Counter
	panicCount       prometheus.Counter
}

func newLedgerPromMetrics() *ledgerPromMetrics {
	return &ledgerPromMetrics{
		chainHeight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "strainchain_chain_height",
				Help: "Number of records in the breeding ledger",
			},
		),
		miningAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strainchain_mining_attempts_total",
				Help: "Nonce attempts per mining backend",
			},
			[]string{"backend"},
		),
		miningHashRate: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "strainchain_mining_hash_rate",
				Help: "Attempts per second observed on the last mining call",
			},
			[]string{"backend"},
		),
		miningDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "strainchain_mining_duration_seconds",
				Help:    "Wall time of proof-of-work searches",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
		breedCompleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "strainchain_breed_completed_total",
				Help: "Breeding transactions that appended a record",
			},
		),
		breedRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strainchain_breed_rejected_total",
				Help: "Breeding transactions that failed, by reason",
			},
			[]string{"reason"},
		),
		backendFallbacks: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "strainchain_mining_backend_fallbacks_total",
				Help: "Parallel-to-sequential mining fallbacks",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "strainchain_panic_total",
				Help: "Recovered panics in background goroutines",
			},
		),
	}
}

var metrics *ledgerPromMetrics

func InitMetrics() {
	metrics = newLedgerPromMetrics()
}

func RegisterMetrics(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}

func SetChainHeight(height int) {
	if metrics != nil {
		metrics.chainHeight.Set(float64(height))
	}
}

func AddMiningAttempts(backend string, attempts uint64) {
	if metrics != nil {
		metrics.miningAttempts.WithLabelValues(backend).Add(float64(attempts))
	}
}

func SetMiningHashRate(backend string, attemptsPerSec float64) {
	if metrics != nil {
		metrics.miningHashRate.WithLabelValues(backend).Set(attemptsPerSec)
	}
}

func RecordMiningDuration(duration time.Duration) {
	if metrics != nil {
		metrics.miningDuration.Observe(duration.Seconds())
	}
}

func IncreaseBreedCompleted() {
	if metrics != nil {
		metrics.breedCompleted.Inc()
	}
}

func RecordBreedRejected(reason BreedRejectedReason) {
	if metrics != nil {
		metrics.breedRejected.WithLabelValues(string(reason)).Inc()
	}
}

func IncreaseBackendFallback() {
	if metrics != nil {
		metrics.backendFallbacks.Inc()
	}
}

func IncreasePanicCount() {
	if metrics != nil {
		metrics.panicCount.Inc()
	}
}
