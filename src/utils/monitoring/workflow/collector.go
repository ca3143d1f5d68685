package monitor_workflow

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	ContractsCreated   *prometheus.Desc
	ContractsFunded    *prometheus.Desc
	ContractsActivated *prometheus.Desc
	ContractsSettled   *prometheus.Desc
	ContractsCancelled *prometheus.Desc
	TransactionsSigned *prometheus.Desc
	TransactionsSent   *prometheus.Desc
	JournalEventsSaved *prometheus.Desc
	EventsPublished    *prometheus.Desc

	ValidationErrors         *prometheus.Desc
	ContractServiceErrors    *prometheus.Desc
	WalletServiceErrors      *prometheus.Desc
	SigningErrors            *prometheus.Desc
	BroadcastErrors          *prometheus.Desc
	StateInconsistencyErrors *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "workflow",
	}

	return &Collector{
		ContractsCreated:   prometheus.NewDesc("contracts_created", "", nil, labels),
		ContractsFunded:    prometheus.NewDesc("contracts_funded", "", nil, labels),
		ContractsActivated: prometheus.NewDesc("contracts_activated", "", nil, labels),
		ContractsSettled:   prometheus.NewDesc("contracts_settled", "", nil, labels),
		ContractsCancelled: prometheus.NewDesc("contracts_cancelled", "", nil, labels),
		TransactionsSigned: prometheus.NewDesc("transactions_signed", "", nil, labels),
		TransactionsSent:   prometheus.NewDesc("transactions_sent", "", nil, labels),
		JournalEventsSaved: prometheus.NewDesc("journal_events_saved", "", nil, labels),
		EventsPublished:    prometheus.NewDesc("events_published", "", nil, labels),

		ValidationErrors:         prometheus.NewDesc("validation_errors", "", nil, labels),
		ContractServiceErrors:    prometheus.NewDesc("contract_service_errors", "", nil, labels),
		WalletServiceErrors:      prometheus.NewDesc("wallet_service_errors", "", nil, labels),
		SigningErrors:            prometheus.NewDesc("signing_errors", "", nil, labels),
		BroadcastErrors:          prometheus.NewDesc("broadcast_errors", "", nil, labels),
		StateInconsistencyErrors: prometheus.NewDesc("state_inconsistency_errors", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.ContractsCreated
	ch <- self.ContractsFunded
	ch <- self.ContractsActivated
	ch <- self.ContractsSettled
	ch <- self.ContractsCancelled
	ch <- self.TransactionsSigned
	ch <- self.TransactionsSent
	ch <- self.JournalEventsSaved
	ch <- self.EventsPublished

	ch <- self.ValidationErrors
	ch <- self.ContractServiceErrors
	ch <- self.WalletServiceErrors
	ch <- self.SigningErrors
	ch <- self.BroadcastErrors
	ch <- self.StateInconsistencyErrors
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	state := &self.monitor.Report.Workflow.State
	errs := &self.monitor.Report.Workflow.Errors

	ch <- prometheus.MustNewConstMetric(self.ContractsCreated, prometheus.CounterValue, float64(state.ContractsCreated.Load()))
	ch <- prometheus.MustNewConstMetric(self.ContractsFunded, prometheus.CounterValue, float64(state.ContractsFunded.Load()))
	ch <- prometheus.MustNewConstMetric(self.ContractsActivated, prometheus.CounterValue, float64(state.ContractsActivated.Load()))
	ch <- prometheus.MustNewConstMetric(self.ContractsSettled, prometheus.CounterValue, float64(state.ContractsSettled.Load()))
	ch <- prometheus.MustNewConstMetric(self.ContractsCancelled, prometheus.CounterValue, float64(state.ContractsCancelled.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransactionsSigned, prometheus.CounterValue, float64(state.TransactionsSigned.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransactionsSent, prometheus.CounterValue, float64(state.TransactionsSent.Load()))
	ch <- prometheus.MustNewConstMetric(self.JournalEventsSaved, prometheus.CounterValue, float64(state.JournalEventsSaved.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsPublished, prometheus.CounterValue, float64(state.EventsPublished.Load()))

	ch <- prometheus.MustNewConstMetric(self.ValidationErrors, prometheus.CounterValue, float64(errs.Validation.Load()))
	ch <- prometheus.MustNewConstMetric(self.ContractServiceErrors, prometheus.CounterValue, float64(errs.ContractService.Load()))
	ch <- prometheus.MustNewConstMetric(self.WalletServiceErrors, prometheus.CounterValue, float64(errs.WalletService.Load()))
	ch <- prometheus.MustNewConstMetric(self.SigningErrors, prometheus.CounterValue, float64(errs.Signing.Load()))
	ch <- prometheus.MustNewConstMetric(self.BroadcastErrors, prometheus.CounterValue, float64(errs.Broadcast.Load()))
	ch <- prometheus.MustNewConstMetric(self.StateInconsistencyErrors, prometheus.CounterValue, float64(errs.StateInconsistency.Load()))
}
