package workflow

import (
	"sync"
	"time"

	"github.com/hashhedge/workflow/src/utils/logger"
	"github.com/hashhedge/workflow/src/utils/model"

	"github.com/sirupsen/logrus"
)

// Store is the single source of truth for contracts, their transactions
// and the wallet balance. It is a normalized in-memory cache mutated only
// with results of completed service calls, there's no optimistic state in
// here. All reads return copies.
type Store struct {
	mtx sync.RWMutex
	log *logrus.Entry

	contracts    []model.Contract
	selectedId   string
	transactions []model.ContractTransaction
	balance      model.WalletBalance
}

func NewStore() (self *Store) {
	self = new(Store)
	self.log = logger.NewSublogger("contract-store")
	return
}

func (self *Store) find(id string) int {
	for i := range self.contracts {
		if self.contracts[i].Id == id {
			return i
		}
	}
	return -1
}

// PutCreated appends a freshly created contract and selects it
func (self *Store) PutCreated(contract *model.Contract) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	self.contracts = append(self.contracts, *contract)
	self.selectedId = contract.Id
}

// Upsert replaces the cached contract or appends it, and selects it.
// Backwards status transitions are refused, the lifecycle only moves forward.
func (self *Store) Upsert(contract *model.Contract) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	idx := self.find(contract.Id)
	if idx < 0 {
		self.contracts = append(self.contracts, *contract)
		self.selectedId = contract.Id
		return nil
	}

	if !self.contracts[idx].Status.CanTransitionTo(contract.Status) {
		return inconsistencyError(contract.Id, "refusing status transition %s -> %s",
			self.contracts[idx].Status, contract.Status)
	}

	self.contracts[idx] = *contract
	self.selectedId = contract.Id
	return nil
}

// ApplyCancelled marks the contract CANCELLED, nothing else changes
func (self *Store) ApplyCancelled(id string) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	idx := self.find(id)
	if idx < 0 {
		return inconsistencyError(id, "cancelled contract not cached")
	}
	if !self.contracts[idx].Status.CanTransitionTo(model.ContractStatusCancelled) {
		return inconsistencyError(id, "refusing status transition %s -> %s",
			self.contracts[idx].Status, model.ContractStatusCancelled)
	}

	self.contracts[idx].Status = model.ContractStatusCancelled
	return nil
}

// ApplySetup appends the setup transaction, activates the contract and
// records the setup tx id. The tx id is set at most once.
func (self *Store) ApplySetup(id string, tx *model.ContractTransaction) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	idx := self.find(id)
	if idx < 0 {
		return inconsistencyError(id, "contract not cached")
	}
	contract := &self.contracts[idx]
	if contract.SetupTxId != "" && contract.SetupTxId != tx.Id {
		return inconsistencyError(id, "setup tx id already set to %s", contract.SetupTxId)
	}
	if !contract.Status.CanTransitionTo(model.ContractStatusActive) {
		return inconsistencyError(id, "refusing status transition %s -> %s",
			contract.Status, model.ContractStatusActive)
	}

	self.transactions = append(self.transactions, *tx)
	contract.Status = model.ContractStatusActive
	contract.SetupTxId = tx.Id
	return nil
}

// ApplyFinal appends the final transaction and records its id
func (self *Store) ApplyFinal(id string, tx *model.ContractTransaction) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	idx := self.find(id)
	if idx < 0 {
		return inconsistencyError(id, "contract not cached")
	}
	contract := &self.contracts[idx]
	if contract.FinalTxId != "" && contract.FinalTxId != tx.Id {
		return inconsistencyError(id, "final tx id already set to %s", contract.FinalTxId)
	}

	self.transactions = append(self.transactions, *tx)
	contract.FinalTxId = tx.Id
	return nil
}

// ApplySettled appends the settlement transaction and settles the contract
func (self *Store) ApplySettled(id string, tx *model.ContractTransaction) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	idx := self.find(id)
	if idx < 0 {
		return inconsistencyError(id, "contract not cached")
	}
	contract := &self.contracts[idx]
	if contract.SettlementTxId != "" && contract.SettlementTxId != tx.Id {
		return inconsistencyError(id, "settlement tx id already set to %s", contract.SettlementTxId)
	}
	if !contract.Status.CanTransitionTo(model.ContractStatusSettled) {
		return inconsistencyError(id, "refusing status transition %s -> %s",
			contract.Status, model.ContractStatusSettled)
	}

	self.transactions = append(self.transactions, *tx)
	contract.Status = model.ContractStatusSettled
	contract.SettlementTxId = tx.Id
	return nil
}

// AppendTransaction caches a transaction that doesn't change contract state
func (self *Store) AppendTransaction(tx *model.ContractTransaction) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.transactions = append(self.transactions, *tx)
}

// MarkBroadcast flips the matching transaction to confirmed, exactly once
func (self *Store) MarkBroadcast(txId string, at time.Time) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	for i := range self.transactions {
		if self.transactions[i].Id != txId {
			continue
		}
		if self.transactions[i].Confirmed {
			// Forward-only, the first confirmation wins
			return nil
		}
		self.transactions[i].Confirmed = true
		self.transactions[i].ConfirmedAt = &at
		return nil
	}
	return inconsistencyError("", "broadcast transaction %s not cached", txId)
}

func (self *Store) SetBalance(balance *model.WalletBalance) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.balance = *balance
}

func (self *Store) Balance() model.WalletBalance {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	return self.balance
}

// Contract returns a copy of the cached contract
func (self *Store) Contract(id string) (out model.Contract, ok bool) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	idx := self.find(id)
	if idx < 0 {
		return
	}
	return self.contracts[idx], true
}

func (self *Store) Selected() (out model.Contract, ok bool) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	idx := self.find(self.selectedId)
	if idx < 0 {
		return
	}
	return self.contracts[idx], true
}

func (self *Store) Contracts() []model.Contract {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	out := make([]model.Contract, len(self.contracts))
	copy(out, self.contracts)
	return out
}

func (self *Store) Transactions(contractId string) []model.ContractTransaction {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	var out []model.ContractTransaction
	for i := range self.transactions {
		if self.transactions[i].ContractId == contractId {
			out = append(out, self.transactions[i])
		}
	}
	return out
}

// TransactionByType returns the latest cached transaction of the given type
func (self *Store) TransactionByType(contractId string, txType model.TxType) (out model.ContractTransaction, ok bool) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	for i := len(self.transactions) - 1; i >= 0; i-- {
		if self.transactions[i].ContractId == contractId && self.transactions[i].TxType == txType {
			return self.transactions[i], true
		}
	}
	return
}

// Transaction returns a copy of the cached transaction with the given id
func (self *Store) Transaction(txId string) (out model.ContractTransaction, ok bool) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	for i := range self.transactions {
		if self.transactions[i].Id == txId {
			return self.transactions[i], true
		}
	}
	return
}
