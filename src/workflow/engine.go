package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashhedge/workflow/src/utils/arkwallet"
	"github.com/hashhedge/workflow/src/utils/config"
	"github.com/hashhedge/workflow/src/utils/contracts"
	"github.com/hashhedge/workflow/src/utils/logger"
	"github.com/hashhedge/workflow/src/utils/model"
	"github.com/hashhedge/workflow/src/utils/monitoring"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// ContractService is the slice of the contract backend the engine needs
type ContractService interface {
	CreateContract(ctx context.Context, terms *model.ContractTerms) (*model.Contract, error)
	GetContract(ctx context.Context, id string) (*model.Contract, error)
	SetupContract(ctx context.Context, id string, amount int64) (*contracts.SetupResult, error)
	GenerateFinalTx(ctx context.Context, id string) (*model.ContractTransaction, error)
	SettleContract(ctx context.Context, id string) (*contracts.SettlementResult, error)
	BroadcastTx(ctx context.Context, id string, txId string) (*contracts.BroadcastResult, error)
	CancelContract(ctx context.Context, id string) error
	SwapParticipant(ctx context.Context, id string, participantType string, newPubKey string) (*contracts.SwapResult, error)
	GetTransactions(ctx context.Context, id string) ([]model.ContractTransaction, error)
}

// WalletService is the slice of the wallet daemon the engine needs.
// Key material never crosses this boundary.
type WalletService interface {
	GetBalance(ctx context.Context) (*model.WalletBalance, error)
	SendOnchain(ctx context.Context, address string, amount int64, feeRate int64) (string, error)
	SignTransaction(ctx context.Context, txHex string, contractId string) (string, error)
	BroadcastTransaction(ctx context.Context, txHex string) (string, error)
}

// SettlementOutcome is what a completed settlement reports back
type SettlementOutcome struct {
	Contract  model.Contract
	BuyerWins bool
}

// Engine sequences the contract workflow. Given a contract and its status
// it runs one step's side effects in strict order, commits state only from
// confirmed server responses and surfaces every failure as a workflow Error.
// Nothing in here retries on its own, retrying a failed step re-runs it
// from its first sub-call.
type Engine struct {
	log            *logrus.Entry
	workflowConfig config.Workflow
	netParams      *chaincfg.Params

	contractSvc ContractService
	wallet      WalletService
	store       *Store
	resolver    *TransactionResolver
	locks       *contractLocks
	monitor     monitoring.Monitor

	// Signing flows in progress, keyed by transaction id.
	// Keeps a valid signature around when only the rebroadcast failed.
	flowsMtx sync.Mutex
	flows    map[string]*SigningFlow

	// Optional sinks
	events    chan<- *model.WorkflowEvent
	published chan<- *ContractEvent
}

func NewEngine(config *config.Config) (self *Engine) {
	self = new(Engine)
	self.log = logger.NewSublogger("workflow-engine")
	self.workflowConfig = config.Workflow
	self.locks = newContractLocks()
	self.flows = make(map[string]*SigningFlow)
	self.resolver = NewTransactionResolver(
		config.Workflow.TransactionCacheTTL,
		config.Workflow.TransactionCacheCleanupInterval,
	)

	switch config.Workflow.Network {
	case "mainnet":
		self.netParams = &chaincfg.MainNetParams
	case "testnet3":
		self.netParams = &chaincfg.TestNet3Params
	case "regtest":
		self.netParams = &chaincfg.RegressionNetParams
	case "simnet":
		self.netParams = &chaincfg.SimNetParams
	default:
		self.log.WithField("network", config.Workflow.Network).Warn("Unknown network, falling back to testnet3")
		self.netParams = &chaincfg.TestNet3Params
	}

	return
}

func (self *Engine) WithContractService(v ContractService) *Engine {
	self.contractSvc = v
	self.resolver = self.resolver.WithContractService(v)
	return self
}

func (self *Engine) WithWalletService(v WalletService) *Engine {
	self.wallet = v
	return self
}

func (self *Engine) WithStore(v *Store) *Engine {
	self.store = v
	self.resolver = self.resolver.WithStore(v)
	return self
}

func (self *Engine) WithMonitor(v monitoring.Monitor) *Engine {
	self.monitor = v
	return self
}

func (self *Engine) WithEventChannel(v chan<- *model.WorkflowEvent) *Engine {
	self.events = v
	return self
}

func (self *Engine) WithPublishChannel(v chan<- *ContractEvent) *Engine {
	self.published = v
	return self
}

func (self *Engine) Store() *Store {
	return self.store
}

// ActiveStep derives the current workflow step for a contract
func (self *Engine) ActiveStep(id string) Step {
	contract, ok := self.store.Contract(id)
	if !ok {
		return StepCreate
	}

	setupConfirmed := false
	if tx, ok := self.store.TransactionByType(id, model.TxTypeSetup); ok {
		setupConfirmed = tx.Confirmed
	}
	return StepFor(&contract, setupConfirmed)
}

func busyError(contractId string) *Error {
	return &Error{
		Kind:       KindValidation,
		ContractId: contractId,
		Message:    "another action for this contract is in flight",
		cause:      ErrContractBusy,
	}
}

func (self *Engine) countError(err error) {
	var workflowErr *Error
	if !errors.As(err, &workflowErr) {
		self.monitor.GetReport().Workflow.Errors.ContractService.Inc()
		return
	}

	errs := &self.monitor.GetReport().Workflow.Errors
	switch workflowErr.Kind {
	case KindValidation:
		errs.Validation.Inc()
	case KindSigning:
		errs.Signing.Inc()
	case KindBroadcast:
		errs.Broadcast.Inc()
	case KindStateInconsistency:
		errs.StateInconsistency.Inc()
	default:
		var walletErr *arkwallet.RequestError
		if errors.As(err, &walletErr) {
			errs.WalletService.Inc()
		} else {
			errs.ContractService.Inc()
		}
	}
}

// cachedOrFetched returns the local view of a contract, falling back to the
// backend when the contract isn't cached yet
func (self *Engine) cachedOrFetched(ctx context.Context, id string) (out model.Contract, err error) {
	out, ok := self.store.Contract(id)
	if ok {
		return
	}

	fetched, err := self.contractSvc.GetContract(ctx, id)
	if err != nil {
		err = classify(id, err)
		return
	}
	err = self.store.Upsert(fetched)
	if err != nil {
		return
	}
	return *fetched, nil
}

// Create validates the terms and registers the contract with the backend.
// The terms are checked locally first so obviously broken input never
// reaches the network, the backend stays authoritative.
func (self *Engine) Create(ctx context.Context, terms *model.ContractTerms) (out *model.Contract, err error) {
	defer func() { self.finish("", StepCreate, "create", err, nil) }()

	if err = terms.Validate(); err != nil {
		err = &Error{Kind: KindValidation, Message: err.Error(), cause: err}
		return
	}

	out, err = self.contractSvc.CreateContract(ctx, terms)
	if err != nil {
		err = classify("", err)
		return
	}

	self.store.PutCreated(out)
	self.monitor.GetReport().Workflow.State.ContractsCreated.Inc()
	self.publish(out, StepCreate, "create")
	return
}

// Fund runs the funding step: obtain the setup transaction and its funding
// address, send the amount on-chain and confirm with the backend that the
// contract went ACTIVE. A failure at any sub-call leaves the cached state
// exactly as it was. Funding must not be re-run once the setup tx id is set,
// the send is not idempotent.
func (self *Engine) Fund(ctx context.Context, id string, amount int64) (out *model.Contract, err error) {
	if !self.locks.tryAcquire(id) {
		return nil, busyError(id)
	}
	defer self.locks.release(id)
	defer func() { self.finish(id, StepFund, "fund", err, map[string]interface{}{"amount": amount}) }()

	contract, err := self.cachedOrFetched(ctx, id)
	if err != nil {
		return
	}

	// Validation gates, nothing below touches the network
	if contract.Status != model.ContractStatusCreated {
		err = validationError(id, "funding requires status %s, contract is %s", model.ContractStatusCreated, contract.Status)
		return
	}
	if contract.SetupTxId != "" {
		err = validationError(id, "contract already funded with setup tx %s", contract.SetupTxId)
		return
	}
	// A cached setup tx on a CREATED contract means an earlier attempt
	// already moved funds without the backend acknowledging them.
	// Re-sending would double-spend, this needs a refresh, not a retry.
	if tx, ok := self.store.TransactionByType(id, model.TxTypeSetup); ok {
		err = inconsistencyError(id, "funds already sent for setup tx %s, refusing to send again", tx.Id)
		return
	}
	if amount <= 0 {
		err = validationError(id, "funding amount must be positive")
		return
	}
	if amount < contract.ContractSize {
		err = validationError(id, "funding amount %d below contract size %d", amount, contract.ContractSize)
		return
	}

	// Pre-flight balance check, the wallet re-checks authoritatively
	balance, err := self.wallet.GetBalance(ctx)
	if err != nil {
		err = classify(id, err)
		return
	}
	self.store.SetBalance(balance)
	if amount > balance.Confirmed {
		err = &Error{
			Kind:       KindValidation,
			ContractId: id,
			Message:    "funding amount exceeds confirmed wallet balance",
			cause:      arkwallet.ErrInsufficientFunds,
		}
		return
	}

	setup, err := self.contractSvc.SetupContract(ctx, id, amount)
	if err != nil {
		err = classify(id, err)
		return
	}

	address, err := btcutil.DecodeAddress(setup.Transaction.Address, self.netParams)
	if err != nil || !address.IsForNet(self.netParams) {
		err = &Error{
			Kind:       KindService,
			ContractId: id,
			Message:    "backend returned an invalid funding address",
			cause:      err,
		}
		return
	}

	_, err = self.wallet.SendOnchain(ctx, setup.Transaction.Address, amount, self.workflowConfig.DefaultFeeRate)
	if err != nil {
		err = classify(id, err)
		return
	}
	self.monitor.GetReport().Workflow.State.TransactionsSent.Inc()

	// Only the backend's word moves the contract forward
	refreshed, err := self.contractSvc.GetContract(ctx, id)
	if err != nil {
		err = classify(id, err)
		return
	}
	if refreshed.Status != model.ContractStatusActive {
		self.store.AppendTransaction(&setup.Transaction)
		err = inconsistencyError(id, "funds sent but contract reports %s instead of %s",
			refreshed.Status, model.ContractStatusActive)
		return
	}

	err = self.store.ApplySetup(id, &setup.Transaction)
	if err != nil {
		return
	}

	// Wallet balance changed, refresh the read model. Best effort.
	if balance, e := self.wallet.GetBalance(ctx); e == nil {
		self.store.SetBalance(balance)
	}

	self.monitor.GetReport().Workflow.State.ContractsFunded.Inc()
	self.monitor.GetReport().Workflow.State.ContractsActivated.Inc()

	committed, _ := self.store.Contract(id)
	out = &committed
	self.publish(out, StepFund, "fund")
	return
}

// flowFor reuses an in-progress signing flow for a transaction, so a
// transaction whose broadcast failed keeps its valid signature
func (self *Engine) flowFor(tx *model.ContractTransaction) *SigningFlow {
	self.flowsMtx.Lock()
	defer self.flowsMtx.Unlock()

	if flow, ok := self.flows[tx.Id]; ok {
		return flow
	}
	flow := NewSigningFlow(self.wallet, tx)
	self.flows[tx.Id] = flow
	return flow
}

func (self *Engine) dropFlow(txId string) {
	self.flowsMtx.Lock()
	defer self.flowsMtx.Unlock()
	delete(self.flows, txId)
}

// dropFlowsFor evicts every flow of a contract once it reaches a
// terminal status, those transactions will never be signed again
func (self *Engine) dropFlowsFor(contractId string) {
	self.flowsMtx.Lock()
	defer self.flowsMtx.Unlock()
	for txId, flow := range self.flows {
		if flow.tx.ContractId == contractId {
			delete(self.flows, txId)
		}
	}
}

// Setup runs the signing flow for the setup transaction: sign, broadcast,
// notify the backend and confirm the contract is ACTIVE. Re-invoking it
// before funds moved is safe, the backend returns the same payload again.
func (self *Engine) Setup(ctx context.Context, id string) (out *model.Contract, err error) {
	if !self.locks.tryAcquire(id) {
		return nil, busyError(id)
	}
	defer self.locks.release(id)
	defer func() { self.finish(id, StepSetup, "setup", err, nil) }()

	contract, err := self.cachedOrFetched(ctx, id)
	if err != nil {
		return
	}

	if contract.Status != model.ContractStatusCreated && contract.Status != model.ContractStatusActive {
		err = validationError(id, "setup not available for status %s", contract.Status)
		return
	}
	if tx, ok := self.store.TransactionByType(id, model.TxTypeSetup); ok && tx.Confirmed {
		err = validationError(id, "setup transaction already confirmed")
		return
	}

	tx, err := self.resolver.Resolve(ctx, id, model.TxTypeSetup)
	if errors.Is(err, ErrNoTransaction) && contract.Status == model.ContractStatusCreated {
		// No payload cached anywhere yet, ask the backend again.
		// Idempotent while no funds moved.
		var setup *contracts.SetupResult
		setup, err = self.contractSvc.SetupContract(ctx, id, contract.ContractSize)
		if err != nil {
			err = classify(id, err)
			return
		}
		tx = &setup.Transaction
	}
	if err != nil {
		return
	}

	flow := self.flowFor(tx)
	err = flow.Sign(ctx)
	if err != nil {
		return
	}
	self.monitor.GetReport().Workflow.State.TransactionsSigned.Inc()

	walletTxid, err := flow.Broadcast(ctx)
	if err != nil {
		return
	}

	// The network accepted the transaction. If anything from here on
	// fails the state is inconsistent, not simply retryable.
	_, err = self.contractSvc.BroadcastTx(ctx, id, tx.Id)
	if err != nil {
		err = inconsistencyError(id, "transaction %s broadcast as %s but backend acknowledgement failed: %s",
			tx.Id, walletTxid, err)
		return
	}

	refreshed, err := self.contractSvc.GetContract(ctx, id)
	if err != nil {
		err = classify(id, err)
		return
	}
	if refreshed.Status != model.ContractStatusActive {
		err = inconsistencyError(id, "setup broadcast but contract reports %s instead of %s",
			refreshed.Status, model.ContractStatusActive)
		return
	}

	if contract.Status == model.ContractStatusCreated {
		err = self.store.ApplySetup(id, tx)
	} else {
		if _, ok := self.store.Transaction(tx.Id); !ok {
			self.store.AppendTransaction(tx)
		}
		err = self.store.Upsert(refreshed)
	}
	if err != nil {
		return
	}

	err = self.store.MarkBroadcast(tx.Id, time.Now())
	if err != nil {
		return
	}
	self.dropFlow(tx.Id)

	self.monitor.GetReport().Workflow.State.ContractsActivated.Inc()

	committed, _ := self.store.Contract(id)
	out = &committed
	self.publish(out, StepSetup, "setup")
	return
}

// GenerateFinal asks the backend for the final transaction of an ACTIVE
// contract and caches it
func (self *Engine) GenerateFinal(ctx context.Context, id string) (out *model.ContractTransaction, err error) {
	if !self.locks.tryAcquire(id) {
		return nil, busyError(id)
	}
	defer self.locks.release(id)
	defer func() { self.finish(id, StepMonitor, "generate-final", err, nil) }()

	contract, err := self.cachedOrFetched(ctx, id)
	if err != nil {
		return
	}
	if contract.Status != model.ContractStatusActive {
		err = validationError(id, "final transaction requires status %s, contract is %s",
			model.ContractStatusActive, contract.Status)
		return
	}

	out, err = self.contractSvc.GenerateFinalTx(ctx, id)
	if err != nil {
		err = classify(id, err)
		return
	}

	err = self.store.ApplyFinal(id, out)
	return
}

// Settle resolves an ACTIVE contract. The backend rejects the call until
// the settlement preconditions are met.
func (self *Engine) Settle(ctx context.Context, id string) (out *SettlementOutcome, err error) {
	if !self.locks.tryAcquire(id) {
		return nil, busyError(id)
	}
	defer self.locks.release(id)
	defer func() { self.finish(id, StepMonitor, "settle", err, nil) }()

	contract, err := self.cachedOrFetched(ctx, id)
	if err != nil {
		return
	}
	if contract.Status != model.ContractStatusActive {
		err = validationError(id, "settlement requires status %s, contract is %s",
			model.ContractStatusActive, contract.Status)
		return
	}

	result, err := self.contractSvc.SettleContract(ctx, id)
	if err != nil {
		err = classify(id, err)
		return
	}

	err = self.store.ApplySettled(id, &result.Transaction)
	if err != nil {
		return
	}

	self.dropFlowsFor(id)
	self.monitor.GetReport().Workflow.State.ContractsSettled.Inc()

	committed, _ := self.store.Contract(id)
	out = &SettlementOutcome{Contract: committed, BuyerWins: result.BuyerWins}
	self.publish(&committed, StepSettlement, "settle")
	return
}

// Cancel aborts a contract that hasn't been funded yet. The status only
// flips to CANCELLED after the backend confirms, never optimistically.
func (self *Engine) Cancel(ctx context.Context, id string) (err error) {
	if !self.locks.tryAcquire(id) {
		return busyError(id)
	}
	defer self.locks.release(id)
	defer func() { self.finish(id, StepFund, "cancel", err, nil) }()

	contract, err := self.cachedOrFetched(ctx, id)
	if err != nil {
		return
	}
	if contract.Status != model.ContractStatusCreated {
		err = validationError(id, "only %s contracts can be cancelled, contract is %s",
			model.ContractStatusCreated, contract.Status)
		return
	}

	err = self.contractSvc.CancelContract(ctx, id)
	if err != nil {
		err = classify(id, err)
		return
	}

	err = self.store.ApplyCancelled(id)
	if err != nil {
		return
	}

	self.dropFlowsFor(id)
	self.monitor.GetReport().Workflow.State.ContractsCancelled.Inc()

	committed, _ := self.store.Contract(id)
	self.publish(&committed, StepFund, "cancel")
	return
}

// Swap replaces one participant's key, caching the unsigned swap
// transaction the backend responds with
func (self *Engine) Swap(ctx context.Context, id string, participantType string, newPubKey string) (out *model.ContractTransaction, err error) {
	if !self.locks.tryAcquire(id) {
		return nil, busyError(id)
	}
	defer self.locks.release(id)
	defer func() { self.finish(id, StepMonitor, "swap", err, nil) }()

	if participantType != "buyer" && participantType != "seller" {
		err = validationError(id, "participant type must be buyer or seller")
		return
	}
	if e := model.ValidatePubKey(newPubKey); e != nil {
		err = validationError(id, "new pub key: %s", e)
		return
	}

	if _, err = self.cachedOrFetched(ctx, id); err != nil {
		return
	}

	result, err := self.contractSvc.SwapParticipant(ctx, id, participantType, newPubKey)
	if err != nil {
		err = classify(id, err)
		return
	}

	out = &model.ContractTransaction{
		Id:         xid.New().String(),
		ContractId: id,
		TxType:     model.TxTypeSwap,
		TxHex:      result.TxHex,
		CreatedAt:  time.Now(),
	}
	self.store.AppendTransaction(out)
	return
}

// Refresh re-reads the authoritative contract state
func (self *Engine) Refresh(ctx context.Context, id string) (out *model.Contract, err error) {
	fetched, err := self.contractSvc.GetContract(ctx, id)
	if err != nil {
		return nil, classify(id, err)
	}
	err = self.store.Upsert(fetched)
	if err != nil {
		return
	}
	return fetched, nil
}

// RefreshBalance re-reads the wallet balance
func (self *Engine) RefreshBalance(ctx context.Context) (out model.WalletBalance, err error) {
	balance, err := self.wallet.GetBalance(ctx)
	if err != nil {
		err = classify("", err)
		return
	}
	self.store.SetBalance(balance)
	return *balance, nil
}

// finish journals the attempt and counts errors. Called from every
// operation's deferred path.
func (self *Engine) finish(contractId string, step Step, action string, err error, payload map[string]interface{}) {
	if err != nil {
		self.countError(err)
		self.log.WithField("contract", contractId).WithField("action", action).WithError(err).Warn("Workflow action failed")
	}
	self.journal(contractId, step, action, err, payload)
}

func (self *Engine) journal(contractId string, step Step, action string, actionErr error, payload map[string]interface{}) {
	if self.events == nil {
		return
	}

	event := &model.WorkflowEvent{
		Id:         xid.New().String(),
		ContractId: contractId,
		Step:       step.String(),
		Action:     action,
		Ok:         actionErr == nil,
		CreatedAt:  time.Now(),
	}

	if actionErr != nil {
		event.Error = actionErr.Error()
		var workflowErr *Error
		if errors.As(actionErr, &workflowErr) {
			event.Tags = append(event.Tags, workflowErr.Kind.String())
		}
	}

	if payload == nil {
		payload = map[string]interface{}{}
	}
	if err := event.Payload.Set(payload); err != nil {
		self.monitor.GetReport().Workflow.Errors.JournalInsert.Inc()
		return
	}

	select {
	case self.events <- event:
	default:
		// Journal backpressure must not stall the workflow
		self.monitor.GetReport().Workflow.Errors.JournalInsert.Inc()
	}
}

func (self *Engine) publish(contract *model.Contract, step Step, action string) {
	if self.published == nil {
		return
	}

	event := &ContractEvent{
		ContractId: contract.Id,
		Status:     contract.Status,
		Step:       step.String(),
		Action:     action,
		Timestamp:  time.Now(),
	}

	select {
	case self.published <- event:
	default:
		self.monitor.GetReport().Workflow.Errors.PublishEvent.Inc()
	}
}
