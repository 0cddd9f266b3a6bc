package common

import (
	"fmt"

	"github.com/manalab/backend/pkg/errorx"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	WithdrawalTotal            = "withdrawal_total"
	WithdrawnAmountTotal       = "withdrawn_amount_total"
	RewardClaimTotal           = "reward_claim_total"
	PinVerificationTotal       = "pin_verification_total"
	TransactionConflictTotal   = "transaction_conflict_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "code"}),
		WithdrawalTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: WithdrawalTotal,
			Help: "Count of withdrawal requests by result code",
		}, []string{"code"}),
		WithdrawnAmountTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: WithdrawnAmountTotal,
			Help: "Sum of settled withdrawals in minor units by source kind",
		}, []string{"source_kind"}),
		RewardClaimTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RewardClaimTotal,
			Help: "Count of reward claims by result code",
		}, []string{"code"}),
		PinVerificationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PinVerificationTotal,
			Help: "Count of PIN verifications by result code",
		}, []string{"code"}),
		TransactionConflictTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: TransactionConflictTotal,
			Help: "Count of transactions retried after an optimistic concurrency conflict",
		}, []string{"operation"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "code"}),
	}
)

// PromCollectors lists every metric of the service, for registration.
func PromCollectors() []prometheus.Collector {
	result := make([]prometheus.Collector, 0, len(PromCounters)+len(PromHistograms))
	for _, counter := range PromCounters {
		result = append(result, counter)
	}

	for _, histogram := range PromHistograms {
		result = append(result, histogram)
	}

	return result
}

// ResultCode is the label value of err in result counters, "0" means success.
func ResultCode(err error) string {
	if err == nil {
		return "0"
	}

	return fmt.Sprint(int(errorx.CodeOf(err)))
}
