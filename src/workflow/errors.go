package workflow

import (
	"errors"
	"fmt"

	"github.com/hashhedge/workflow/src/utils/arkwallet"
)

type ErrorKind int

const (
	// Client detected precondition failure, never sent to the network
	KindValidation ErrorKind = iota

	// Rejection reported by the contract or wallet backend
	KindService

	// Wallet failed to sign, the signing flow stays at unsigned
	KindSigning

	// Network rejected the transaction, the signature stays valid
	KindBroadcast

	// A refreshed contract does not match what a successful action implies
	KindStateInconsistency
)

func (self ErrorKind) String() string {
	switch self {
	case KindValidation:
		return "validation"
	case KindService:
		return "service"
	case KindSigning:
		return "signing"
	case KindBroadcast:
		return "broadcast"
	case KindStateInconsistency:
		return "state inconsistency"
	}
	return "unknown"
}

var (
	// Another action for the same contract is already in flight
	ErrContractBusy = errors.New("contract busy")

	// No transaction of the requested type exists yet
	ErrNoTransaction = errors.New("no transaction available")
)

// Error is what every workflow operation fails with. It keeps the kind so
// callers can decide which phase to retry from, and the contract id so the
// failure can be scoped to a single contract in flight.
type Error struct {
	Kind       ErrorKind
	ContractId string
	Message    string

	cause error
}

func (self *Error) Error() string {
	if self.ContractId == "" {
		return fmt.Sprintf("%s: %s", self.Kind, self.Message)
	}
	return fmt.Sprintf("%s: contract %s: %s", self.Kind, self.ContractId, self.Message)
}

func (self *Error) Unwrap() error {
	return self.cause
}

func validationError(contractId, format string, a ...interface{}) *Error {
	return &Error{Kind: KindValidation, ContractId: contractId, Message: fmt.Sprintf(format, a...)}
}

func inconsistencyError(contractId, format string, a ...interface{}) *Error {
	return &Error{Kind: KindStateInconsistency, ContractId: contractId, Message: fmt.Sprintf(format, a...)}
}

// classify wraps a service client error into a workflow Error,
// keeping the raw message for the caller to surface
func classify(contractId string, err error) *Error {
	var out *Error
	if errors.As(err, &out) {
		return out
	}

	kind := KindService
	switch {
	case errors.Is(err, arkwallet.ErrInsufficientFunds):
		kind = KindValidation
	case errors.Is(err, arkwallet.ErrSigningFailed):
		kind = KindSigning
	case errors.Is(err, arkwallet.ErrBroadcastRejected):
		kind = KindBroadcast
	}

	return &Error{
		Kind:       kind,
		ContractId: contractId,
		Message:    err.Error(),
		cause:      err,
	}
}
