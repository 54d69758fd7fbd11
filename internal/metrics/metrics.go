package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CreditMetrics 积分核心指标
type CreditMetrics struct {
	// 计量消耗相关指标
	UsageTotal         *prometheus.CounterVec // 生成请求总数（按结果）
	UsageDuration      *prometheus.HistogramVec
	GenerationDuration prometheus.Histogram // 上游生成耗时
	CompensationTotal  prometheus.Counter   // 补偿退款总数

	// 购买履约相关指标
	FulfillmentTotal    *prometheus.CounterVec // 履约总数（按网关、结果）
	FulfillmentCredits  *prometheus.CounterVec // 入账积分（按网关）
	WebhookDuration     *prometheus.HistogramVec
	WebhookInvalidTotal *prometheus.CounterVec // 签名校验失败总数（按网关）

	// 账本相关指标
	LedgerInconsistencyTotal prometheus.Counter // 账本不一致告警总数
	BalanceQueryTotal        prometheus.Counter

	// 分布式锁相关指标
	LockAcquireTotal    *prometheus.CounterVec
	LockAcquireDuration prometheus.Histogram
}

// NewCreditMetrics 创建积分核心指标
func NewCreditMetrics() *CreditMetrics {
	return &CreditMetrics{
		UsageTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_usage_total",
				Help: "Total number of metered generation requests",
			},
			[]string{"result"}, // result: fulfilled/duplicate/insufficient/compensated
		),
		UsageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_usage_duration_seconds",
				Help:    "Duration of the full metered operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		GenerationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "credit_generation_duration_seconds",
				Help:    "Duration of the upstream generation call",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
		),
		CompensationTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_compensation_total",
				Help: "Total number of compensating credits",
			},
		),

		FulfillmentTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_fulfillment_total",
				Help: "Total number of purchase fulfillments",
			},
			[]string{"gateway", "result"}, // result: credited/duplicate/rejected
		),
		FulfillmentCredits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_fulfillment_credits_total",
				Help: "Total credits granted through fulfillment",
			},
			[]string{"gateway"},
		),
		WebhookDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_webhook_duration_seconds",
				Help:    "Duration of webhook processing",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"gateway"},
		),
		WebhookInvalidTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_webhook_invalid_total",
				Help: "Total number of webhook deliveries failing signature verification",
			},
			[]string{"gateway"},
		),

		LedgerInconsistencyTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_ledger_inconsistency_total",
				Help: "Total number of detected ledger inconsistencies (manual reconciliation required)",
			},
		),
		BalanceQueryTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_balance_query_total",
				Help: "Total number of balance queries",
			},
		),

		LockAcquireTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_lock_acquire_total",
				Help: "Total number of lock acquisition attempts",
			},
			[]string{"result"},
		),
		LockAcquireDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "credit_lock_acquire_duration_seconds",
				Help:    "Duration of lock acquisition",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
		),
	}
}

// 全局指标实例
var defaultMetrics *CreditMetrics

// InitMetrics 初始化全局指标
func InitMetrics() {
	defaultMetrics = NewCreditMetrics()
}

// GetMetrics 获取全局指标实例
func GetMetrics() *CreditMetrics {
	if defaultMetrics == nil {
		InitMetrics()
	}
	return defaultMetrics
}
