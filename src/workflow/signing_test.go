package workflow

import (
	"context"
	"testing"

	"github.com/hashhedge/workflow/src/utils/arkwallet"
	"github.com/hashhedge/workflow/src/utils/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestSigningFlowTestSuite(t *testing.T) {
	suite.Run(t, new(SigningFlowTestSuite))
}

type SigningFlowTestSuite struct {
	suite.Suite

	ctx    context.Context
	wallet *fakeWalletService
	tx     *model.ContractTransaction
}

func (s *SigningFlowTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.wallet = new(fakeWalletService)
	s.tx = &model.ContractTransaction{
		Id:         "tx1",
		ContractId: "c1",
		TxType:     model.TxTypeSetup,
		TxHex:      "0200aa",
	}
}

func (s *SigningFlowTestSuite) TestSignThenBroadcast() {
	flow := NewSigningFlow(s.wallet, s.tx)
	assert.Equal(s.T(), PhaseUnsigned, flow.Phase())

	require.NoError(s.T(), flow.Sign(s.ctx))
	assert.Equal(s.T(), PhaseSigned, flow.Phase())

	txid, err := flow.Broadcast(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "broadcast-txid", txid)
	assert.Equal(s.T(), PhaseBroadcast, flow.Phase())
	assert.Equal(s.T(), "broadcast-txid", flow.Txid())
}

func (s *SigningFlowTestSuite) TestSignFailureRevertsToUnsigned() {
	s.wallet.signTransaction = func(ctx context.Context, txHex string, contractId string) (string, error) {
		return "", &arkwallet.RequestError{StatusCode: 400, Code: arkwallet.CodeSigningFailed, Message: "bad psbt"}
	}

	flow := NewSigningFlow(s.wallet, s.tx)
	err := flow.Sign(s.ctx)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, arkwallet.ErrSigningFailed)
	assert.Equal(s.T(), PhaseUnsigned, flow.Phase())

	var workflowErr *Error
	require.ErrorAs(s.T(), err, &workflowErr)
	assert.Equal(s.T(), KindSigning, workflowErr.Kind)
}

func (s *SigningFlowTestSuite) TestSignIsIdempotentOnceSigned() {
	signCalls := 0
	s.wallet.signTransaction = func(ctx context.Context, txHex string, contractId string) (string, error) {
		signCalls++
		return "signed", nil
	}

	flow := NewSigningFlow(s.wallet, s.tx)
	require.NoError(s.T(), flow.Sign(s.ctx))
	require.NoError(s.T(), flow.Sign(s.ctx))
	assert.Equal(s.T(), 1, signCalls)
}

func (s *SigningFlowTestSuite) TestSignRefusesEmptyPayload() {
	s.tx.TxHex = ""
	flow := NewSigningFlow(s.wallet, s.tx)

	err := flow.Sign(s.ctx)
	require.Error(s.T(), err)
	assert.Equal(s.T(), PhaseUnsigned, flow.Phase())
}

func (s *SigningFlowTestSuite) TestBroadcastFailureKeepsSignature() {
	signCalls := 0
	s.wallet.signTransaction = func(ctx context.Context, txHex string, contractId string) (string, error) {
		signCalls++
		return "signed", nil
	}

	broadcastCalls := 0
	s.wallet.broadcastTransaction = func(ctx context.Context, txHex string) (string, error) {
		broadcastCalls++
		if broadcastCalls == 1 {
			return "", &arkwallet.RequestError{StatusCode: 400, Code: arkwallet.CodeBroadcastRejected, Message: "mempool full"}
		}
		assert.Equal(s.T(), "signed", txHex)
		return "txid-final", nil
	}

	flow := NewSigningFlow(s.wallet, s.tx)
	require.NoError(s.T(), flow.Sign(s.ctx))

	// Rejected broadcast falls back to signed, not unsigned
	_, err := flow.Broadcast(s.ctx)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, arkwallet.ErrBroadcastRejected)
	assert.Equal(s.T(), PhaseSigned, flow.Phase())

	var workflowErr *Error
	require.ErrorAs(s.T(), err, &workflowErr)
	assert.Equal(s.T(), KindBroadcast, workflowErr.Kind)

	// The retry only re-broadcasts, no second signature
	txid, err := flow.Broadcast(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "txid-final", txid)
	assert.Equal(s.T(), 1, signCalls)
	assert.Equal(s.T(), PhaseBroadcast, flow.Phase())
}

func (s *SigningFlowTestSuite) TestBroadcastIsIdempotentOnceDone() {
	broadcastCalls := 0
	s.wallet.broadcastTransaction = func(ctx context.Context, txHex string) (string, error) {
		broadcastCalls++
		return "txid-final", nil
	}

	flow := NewSigningFlow(s.wallet, s.tx)
	require.NoError(s.T(), flow.Sign(s.ctx))

	txid, err := flow.Broadcast(s.ctx)
	require.NoError(s.T(), err)
	txid2, err := flow.Broadcast(s.ctx)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), txid, txid2)
	assert.Equal(s.T(), 1, broadcastCalls)
}

func (s *SigningFlowTestSuite) TestBroadcastRefusedBeforeSigning() {
	flow := NewSigningFlow(s.wallet, s.tx)

	_, err := flow.Broadcast(s.ctx)
	require.Error(s.T(), err)
	assert.Equal(s.T(), PhaseUnsigned, flow.Phase())
}
