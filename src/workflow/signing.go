package workflow

import (
	"context"
	"sync"

	"github.com/hashhedge/workflow/src/utils/model"
)

// SigningPhase tracks how far a transaction got through the wallet
type SigningPhase int

const (
	PhaseUnsigned SigningPhase = iota
	PhaseSigning
	PhaseSigned
	PhaseBroadcasting
	PhaseBroadcast
)

func (self SigningPhase) String() string {
	switch self {
	case PhaseUnsigned:
		return "unsigned"
	case PhaseSigning:
		return "signing"
	case PhaseSigned:
		return "signed"
	case PhaseBroadcasting:
		return "broadcasting"
	case PhaseBroadcast:
		return "broadcast"
	}
	return "unknown"
}

// SigningFlow drives one transaction through sign and broadcast as two
// independently retryable calls. A failed broadcast falls back to signed,
// not unsigned - the signature stays valid, only the rebroadcast is retried.
type SigningFlow struct {
	mtx sync.Mutex

	wallet WalletService
	tx     model.ContractTransaction

	phase     SigningPhase
	signedHex string
	txid      string
}

func NewSigningFlow(wallet WalletService, tx *model.ContractTransaction) (self *SigningFlow) {
	self = new(SigningFlow)
	self.wallet = wallet
	self.tx = *tx
	self.phase = PhaseUnsigned
	return
}

func (self *SigningFlow) Phase() SigningPhase {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.phase
}

// Txid of the broadcast transaction, empty until the flow finishes
func (self *SigningFlow) Txid() string {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.txid
}

// Sign asks the wallet for a signature. Safe to call again after a failure,
// a no-op once the transaction is already signed.
func (self *SigningFlow) Sign(ctx context.Context) error {
	self.mtx.Lock()
	if self.phase != PhaseUnsigned {
		self.mtx.Unlock()
		return nil
	}
	if self.tx.TxHex == "" {
		self.mtx.Unlock()
		return validationError(self.tx.ContractId, "transaction %s has no payload to sign", self.tx.Id)
	}
	self.phase = PhaseSigning
	self.mtx.Unlock()

	signedHex, err := self.wallet.SignTransaction(ctx, self.tx.TxHex, self.tx.ContractId)

	self.mtx.Lock()
	defer self.mtx.Unlock()
	if err != nil {
		self.phase = PhaseUnsigned
		return classify(self.tx.ContractId, err)
	}

	self.signedHex = signedHex
	self.phase = PhaseSigned
	return nil
}

// Broadcast submits the signed transaction. A rejection reverts to signed,
// so retrying re-runs only the broadcast.
func (self *SigningFlow) Broadcast(ctx context.Context) (txid string, err error) {
	self.mtx.Lock()
	switch self.phase {
	case PhaseBroadcast:
		txid = self.txid
		self.mtx.Unlock()
		return
	case PhaseSigned:
		// pass through
	default:
		phase := self.phase
		self.mtx.Unlock()
		return "", validationError(self.tx.ContractId, "cannot broadcast from phase %s", phase)
	}
	self.phase = PhaseBroadcasting
	signedHex := self.signedHex
	self.mtx.Unlock()

	txid, err = self.wallet.BroadcastTransaction(ctx, signedHex)

	self.mtx.Lock()
	defer self.mtx.Unlock()
	if err != nil {
		// Signature remains valid, only the rebroadcast needs retry
		self.phase = PhaseSigned
		return "", classify(self.tx.ContractId, err)
	}

	self.txid = txid
	self.phase = PhaseBroadcast
	return
}
