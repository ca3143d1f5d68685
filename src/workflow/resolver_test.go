package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/hashhedge/workflow/src/utils/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestResolverTestSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}

type ResolverTestSuite struct {
	suite.Suite

	ctx      context.Context
	contract *fakeContractService
	store    *Store
	resolver *TransactionResolver
}

func (s *ResolverTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.contract = new(fakeContractService)
	s.store = NewStore()
	s.resolver = NewTransactionResolver(time.Minute, time.Minute).
		WithStore(s.store).
		WithContractService(s.contract)
}

func (s *ResolverTestSuite) TestStoreHitSkipsFetch() {
	s.store.AppendTransaction(&model.ContractTransaction{Id: "tx1", ContractId: "c1", TxType: model.TxTypeSetup})

	fetches := 0
	s.contract.getTransactions = func(ctx context.Context, id string) ([]model.ContractTransaction, error) {
		fetches++
		return nil, nil
	}

	tx, err := s.resolver.Resolve(s.ctx, "c1", model.TxTypeSetup)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "tx1", tx.Id)
	assert.Zero(s.T(), fetches)
}

func (s *ResolverTestSuite) TestFetchIsCached() {
	fetches := 0
	s.contract.getTransactions = func(ctx context.Context, id string) ([]model.ContractTransaction, error) {
		fetches++
		return []model.ContractTransaction{
			{Id: "tx1", ContractId: id, TxType: model.TxTypeSetup},
		}, nil
	}

	tx, err := s.resolver.Resolve(s.ctx, "c1", model.TxTypeSetup)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "tx1", tx.Id)

	// Second resolve is answered from the cache
	_, err = s.resolver.Resolve(s.ctx, "c1", model.TxTypeSetup)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, fetches)
}

func (s *ResolverTestSuite) TestLatestOfTypeWins() {
	s.contract.getTransactions = func(ctx context.Context, id string) ([]model.ContractTransaction, error) {
		return []model.ContractTransaction{
			{Id: "tx1", ContractId: id, TxType: model.TxTypeFinal},
			{Id: "tx2", ContractId: id, TxType: model.TxTypeSettlement},
			{Id: "tx3", ContractId: id, TxType: model.TxTypeFinal},
		}, nil
	}

	tx, err := s.resolver.Resolve(s.ctx, "c1", model.TxTypeFinal)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "tx3", tx.Id)
}

func (s *ResolverTestSuite) TestMissReportsNoTransaction() {
	s.contract.getTransactions = func(ctx context.Context, id string) ([]model.ContractTransaction, error) {
		return []model.ContractTransaction{
			{Id: "tx1", ContractId: id, TxType: model.TxTypeSetup},
		}, nil
	}

	_, err := s.resolver.Resolve(s.ctx, "c1", model.TxTypeFinal)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, ErrNoTransaction)
}
