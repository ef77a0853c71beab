package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 論理トランザクション開始の総数（mode, action）
	TransactionsBegunTotal *prometheus.CounterVec

	// 物理コミットの総数
	PhysicalCommitsTotal prometheus.Counter

	// 物理ロールバックの総数（reason: requested, rollback_only, ordering_violation）
	PhysicalRollbacksTotal *prometheus.CounterVec

	// コミット要求がロールバックに転換された回数
	UnexpectedRollbacksTotal prometheus.Counter

	// セーブポイント操作の総数（operation: create, release, rollback_to）
	SavepointOperationsTotal *prometheus.CounterVec

	// 論理トランザクションの所要時間（mode, outcome: commit, rollback, unexpected_rollback）
	TransactionDuration *prometheus.HistogramVec

	// 会員登録の総数（result: success, rolled_back, unexpected_rollback, error）
	MemberJoinsTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		TransactionsBegunTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tx_begun_total",
				Help: "Total number of logical transaction begins",
			},
			[]string{"mode", "action"},
		),
		PhysicalCommitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tx_physical_commits_total",
				Help: "Total number of physical commits",
			},
		),
		PhysicalRollbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tx_physical_rollbacks_total",
				Help: "Total number of physical rollbacks",
			},
			[]string{"reason"},
		),
		UnexpectedRollbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tx_unexpected_rollbacks_total",
				Help: "Total number of commits converted to rollbacks by the rollback-only mark",
			},
		),
		SavepointOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tx_savepoint_operations_total",
				Help: "Total number of savepoint operations",
			},
			[]string{"operation"},
		),
		TransactionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tx_duration_seconds",
				Help:    "Logical transaction duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"mode", "outcome"},
		),
		MemberJoinsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "member_joins_total",
				Help: "Total number of member join attempts",
			},
			[]string{"result"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TransactionsBegunTotal,
		m.PhysicalCommitsTotal,
		m.PhysicalRollbacksTotal,
		m.UnexpectedRollbacksTotal,
		m.SavepointOperationsTotal,
		m.TransactionDuration,
		m.MemberJoinsTotal,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
