package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hashhedge/workflow/src/utils/model"

	cache "github.com/patrickmn/go-cache"
)

// TransactionResolver is the single cache-or-fetch path for contract
// transactions. The store is checked first, then the short lived cache,
// then the contract backend.
type TransactionResolver struct {
	store  *Store
	client ContractService
	cache  *cache.Cache
}

func NewTransactionResolver(ttl, cleanupInterval time.Duration) (self *TransactionResolver) {
	self = new(TransactionResolver)
	self.cache = cache.New(ttl, cleanupInterval)
	return
}

func (self *TransactionResolver) WithStore(store *Store) *TransactionResolver {
	self.store = store
	return self
}

func (self *TransactionResolver) WithContractService(client ContractService) *TransactionResolver {
	self.client = client
	return self
}

func cacheKey(contractId string, txType model.TxType) string {
	return fmt.Sprintf("%s/%s", contractId, txType)
}

// Resolve returns the transaction of the given type for a contract,
// fetching it from the backend only when it isn't known locally
func (self *TransactionResolver) Resolve(ctx context.Context, contractId string, txType model.TxType) (out *model.ContractTransaction, err error) {
	if tx, ok := self.store.TransactionByType(contractId, txType); ok {
		return &tx, nil
	}

	if cached, ok := self.cache.Get(cacheKey(contractId, txType)); ok {
		tx := cached.(model.ContractTransaction)
		return &tx, nil
	}

	txs, err := self.client.GetTransactions(ctx, contractId)
	if err != nil {
		return nil, classify(contractId, err)
	}

	// Latest one of the requested type wins
	for i := len(txs) - 1; i >= 0; i-- {
		if txs[i].TxType != txType {
			continue
		}
		tx := txs[i]
		self.cache.Set(cacheKey(contractId, txType), tx, cache.DefaultExpiration)
		return &tx, nil
	}

	return nil, &Error{
		Kind:       KindValidation,
		ContractId: contractId,
		Message:    fmt.Sprintf("no %s transaction available", txType),
		cause:      ErrNoTransaction,
	}
}
