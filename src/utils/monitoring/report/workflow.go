package report

import (
	"go.uber.org/atomic"
)

type WorkflowErrors struct {
	Validation         atomic.Uint64 `json:"validation"`
	ContractService    atomic.Uint64 `json:"contract_service"`
	WalletService      atomic.Uint64 `json:"wallet_service"`
	Signing            atomic.Uint64 `json:"signing"`
	Broadcast          atomic.Uint64 `json:"broadcast"`
	StateInconsistency atomic.Uint64 `json:"state_inconsistency"`
	JournalInsert      atomic.Uint64 `json:"journal_insert"`
	PublishEvent       atomic.Uint64 `json:"publish_event"`
}

type WorkflowState struct {
	ContractsCreated   atomic.Uint64 `json:"contracts_created"`
	ContractsFunded    atomic.Uint64 `json:"contracts_funded"`
	ContractsActivated atomic.Uint64 `json:"contracts_activated"`
	ContractsSettled   atomic.Uint64 `json:"contracts_settled"`
	ContractsCancelled atomic.Uint64 `json:"contracts_cancelled"`
	TransactionsSigned atomic.Uint64 `json:"transactions_signed"`
	TransactionsSent   atomic.Uint64 `json:"transactions_sent"`
	JournalEventsSaved atomic.Uint64 `json:"journal_events_saved"`
	EventsPublished    atomic.Uint64 `json:"events_published"`
}

type WorkflowReport struct {
	State  WorkflowState  `json:"state"`
	Errors WorkflowErrors `json:"errors"`
}
