package wallet

import "github.com/shopspring/decimal"

// MetricsCollector receives ledger activity counters.
type MetricsCollector interface {
	RecordTransaction(txType string, amount decimal.Decimal)
	RecordError(operation string, reason string)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTransaction(string, decimal.Decimal) {}
func (NoopMetricsCollector) RecordError(string, string)                {}
