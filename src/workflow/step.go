package workflow

import (
	"github.com/hashhedge/workflow/src/utils/model"
)

// Step is one of the five contract workflow steps. It is never persisted,
// only derived from the contract status and its transactions.
type Step int

const (
	StepCreate Step = iota
	StepFund
	StepSetup
	StepMonitor
	StepSettlement
)

func (self Step) String() string {
	switch self {
	case StepCreate:
		return "create"
	case StepFund:
		return "fund"
	case StepSetup:
		return "setup"
	case StepMonitor:
		return "monitor"
	case StepSettlement:
		return "settlement"
	}
	return "unknown"
}

// StepFor derives the active step purely from the contract state,
// never from what the caller did before. An ACTIVE contract whose setup
// transaction has not confirmed yet still needs the setup signing flow.
func StepFor(contract *model.Contract, setupConfirmed bool) Step {
	if contract == nil {
		return StepCreate
	}

	switch contract.Status {
	case model.ContractStatusCreated:
		return StepFund
	case model.ContractStatusActive:
		if contract.SetupTxId != "" && !setupConfirmed {
			return StepSetup
		}
		return StepMonitor
	default:
		return StepSettlement
	}
}
