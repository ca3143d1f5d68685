package contracts

import (
	"context"
	"errors"

	"github.com/hashhedge/workflow/src/utils/config"
	"github.com/hashhedge/workflow/src/utils/model"
)

var ErrFailedToParse = errors.New("failed to parse contract service response")

// Client talks to the contract backend. It keeps no state between calls.
type Client struct {
	*BaseClient
}

func NewClient(config *config.ContractService) (self *Client) {
	self = new(Client)
	self.BaseClient = newBaseClient(config)
	return
}

func (self *Client) CreateContract(ctx context.Context, terms *model.ContractTerms) (out *model.Contract, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(terms).
		SetResult(&Envelope[model.Contract]{}).
		Post("/api/v1/contracts")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[model.Contract])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Message: envelope.Error}
		return
	}

	out = &envelope.Data
	return
}

func (self *Client) GetContract(ctx context.Context, id string) (out *model.Contract, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&Envelope[model.Contract]{}).
		Get("/api/v1/contracts/" + id)
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[model.Contract])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Message: envelope.Error}
		return
	}

	out = &envelope.Data
	return
}

func (self *Client) ListContracts(ctx context.Context) (out []model.Contract, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&Envelope[[]model.Contract]{}).
		Get("/api/v1/contracts")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[[]model.Contract])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Message: envelope.Error}
		return
	}

	out = envelope.Data
	return
}

// SetupContract asks the backend for the setup transaction and its funding
// address. Only valid while the contract is CREATED, the backend enforces that.
func (self *Client) SetupContract(ctx context.Context, id string, amount int64) (out *SetupResult, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(&setupRequest{Amount: amount}).
		SetResult(&Envelope[SetupResult]{}).
		Post("/api/v1/contracts/" + id + "/setup")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[SetupResult])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Message: envelope.Error}
		return
	}

	out = &envelope.Data
	return
}

// GenerateFinalTx is only valid on ACTIVE contracts
func (self *Client) GenerateFinalTx(ctx context.Context, id string) (out *model.ContractTransaction, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&Envelope[model.ContractTransaction]{}).
		Post("/api/v1/contracts/" + id + "/final")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[model.ContractTransaction])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Message: envelope.Error}
		return
	}

	out = &envelope.Data
	return
}

// SettleContract fails until the settlement preconditions are met
// (target reached, hash rate resolved)
func (self *Client) SettleContract(ctx context.Context, id string) (out *SettlementResult, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&Envelope[SettlementResult]{}).
		Post("/api/v1/contracts/" + id + "/settle")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[SettlementResult])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Message: envelope.Error}
		return
	}

	out = &envelope.Data
	return
}

// BroadcastTx notifies the backend that the given contract transaction
// has been broadcast through the wallet
func (self *Client) BroadcastTx(ctx context.Context, id string, txId string) (out *BroadcastResult, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(&broadcastRequest{TransactionId: txId}).
		SetResult(&Envelope[BroadcastResult]{}).
		Post("/api/v1/contracts/" + id + "/broadcast")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[BroadcastResult])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Message: envelope.Error}
		return
	}

	out = &envelope.Data
	return
}

// CancelContract is only permitted while the contract is CREATED
func (self *Client) CancelContract(ctx context.Context, id string) (err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&Envelope[struct{}]{}).
		Post("/api/v1/contracts/" + id + "/cancel")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[struct{}])
	if !ok {
		return ErrFailedToParse
	}
	if !envelope.Success {
		return &RequestError{StatusCode: resp.StatusCode(), Message: envelope.Error}
	}

	return nil
}

func (self *Client) SwapParticipant(ctx context.Context, id string, participantType string, newPubKey string) (out *SwapResult, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(&swapRequest{ParticipantType: participantType, NewPubKey: newPubKey}).
		SetResult(&Envelope[SwapResult]{}).
		Post("/api/v1/contracts/" + id + "/swap")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[SwapResult])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Message: envelope.Error}
		return
	}

	out = &envelope.Data
	return
}

// GetTransactions lists the transactions the backend produced for a contract
func (self *Client) GetTransactions(ctx context.Context, id string) (out []model.ContractTransaction, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&Envelope[[]model.ContractTransaction]{}).
		Get("/api/v1/contracts/" + id + "/transactions")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[[]model.ContractTransaction])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Message: envelope.Error}
		return
	}

	out = envelope.Data
	return
}
