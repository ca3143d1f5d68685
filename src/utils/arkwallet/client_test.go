package arkwallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashhedge/workflow/src/utils/config"
	"github.com/hashhedge/workflow/src/utils/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite

	ctx     context.Context
	server  *httptest.Server
	handler http.HandlerFunc
	client  *Client
}

func (s *ClientTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))

	conf := config.Default().WalletService
	conf.Url = s.server.URL
	s.client = NewClient(&conf)
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *ClientTestSuite) TestGetBalance() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(s.T(), http.MethodGet, r.Method)
		require.Equal(s.T(), "/api/v1/wallet/balance", r.URL.Path)
		respond(w, http.StatusOK, Envelope[model.WalletBalance]{
			Success: true,
			Data:    model.WalletBalance{Confirmed: 150_000, Total: 200_000},
		})
	}

	out, err := s.client.GetBalance(s.ctx)
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 150_000, out.Confirmed)
	assert.EqualValues(s.T(), 200_000, out.Total)
}

func (s *ClientTestSuite) TestSendOnchain() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(s.T(), "/api/v1/wallet/send", r.URL.Path)

		var got map[string]interface{}
		require.NoError(s.T(), json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(s.T(), "tb1qaddr", got["address"])
		assert.EqualValues(s.T(), 100_000, got["amount"])
		assert.EqualValues(s.T(), 2, got["fee_rate"])

		respond(w, http.StatusOK, Envelope[txidResult]{Success: true, Data: txidResult{Txid: "txid-1"}})
	}

	txid, err := s.client.SendOnchain(s.ctx, "tb1qaddr", 100_000, 2)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "txid-1", txid)
}

func (s *ClientTestSuite) TestSendOnchainInsufficientFunds() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusBadRequest, Envelope[struct{}]{
			Error: "confirmed balance too low",
			Code:  CodeInsufficientFunds,
		})
	}

	_, err := s.client.SendOnchain(s.ctx, "tb1qaddr", 100_000, 2)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, ErrInsufficientFunds)
}

func (s *ClientTestSuite) TestSignTransaction() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(s.T(), "/api/v1/wallet/sign", r.URL.Path)

		var got map[string]interface{}
		require.NoError(s.T(), json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(s.T(), "0200aa", got["tx_hex"])
		assert.Equal(s.T(), "c1", got["contract_id"])

		respond(w, http.StatusOK, Envelope[signResult]{Success: true, Data: signResult{SignedTxHex: "0200aa00ff"}})
	}

	signed, err := s.client.SignTransaction(s.ctx, "0200aa", "c1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "0200aa00ff", signed)
}

func (s *ClientTestSuite) TestSignWalletLockedMapsToSigningFailure() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusConflict, Envelope[struct{}]{Error: "wallet is locked", Code: CodeWalletLocked})
	}

	_, err := s.client.SignTransaction(s.ctx, "0200aa", "c1")
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, ErrSigningFailed)
}

func (s *ClientTestSuite) TestBroadcastTransaction() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(s.T(), "/api/v1/wallet/broadcast", r.URL.Path)
		respond(w, http.StatusOK, Envelope[txidResult]{Success: true, Data: txidResult{Txid: "txid-2"}})
	}

	txid, err := s.client.BroadcastTransaction(s.ctx, "0200aa00ff")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "txid-2", txid)
}

func (s *ClientTestSuite) TestBroadcastRejection() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusBadRequest, Envelope[struct{}]{Error: "txn-mempool-conflict", Code: CodeBroadcastRejected})
	}

	_, err := s.client.BroadcastTransaction(s.ctx, "0200aa00ff")
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, ErrBroadcastRejected)

	var requestErr *RequestError
	require.ErrorAs(s.T(), err, &requestErr)
	assert.Equal(s.T(), http.StatusBadRequest, requestErr.StatusCode)
}

func (s *ClientTestSuite) TestEnvelopeFailureOnSuccessStatus() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, Envelope[struct{}]{Success: false, Error: "draining", Code: CodeWalletLocked})
	}

	_, err := s.client.GetBalance(s.ctx)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, ErrSigningFailed)
}
