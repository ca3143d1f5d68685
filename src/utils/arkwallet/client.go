package arkwallet

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/hashhedge/workflow/src/utils/build_info"
	"github.com/hashhedge/workflow/src/utils/config"
	"github.com/hashhedge/workflow/src/utils/logger"
	"github.com/hashhedge/workflow/src/utils/model"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

var ErrFailedToParse = errors.New("failed to parse wallet service response")

// Client talks to the Ark wallet daemon. Key material never leaves the
// daemon, this client only moves hex payloads back and forth.
type Client struct {
	client *resty.Client
	config *config.WalletService
	log    *logrus.Entry
}

func NewClient(config *config.WalletService) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("wallet-client")

	self.client =
		resty.New().
			SetBaseURL(self.config.Url).
			SetTimeout(self.config.RequestTimeout).
			SetHeader("User-Agent", "hashhedge/workflow/"+build_info.Version).
			SetRetryCount(0).
			SetTransport(self.createTransport()).
			OnAfterResponse(self.onStatusToError)

	return
}

func (self *Client) createTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   self.config.DialerTimeout,
		KeepAlive: self.config.DialerKeepAlive,
		DualStack: true,
	}

	return &http.Transport{
		ForceAttemptHTTP2: true,

		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   self.config.TLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,

		IdleConnTimeout:     self.config.IdleConnTimeout,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		MaxConnsPerHost:     2,
	}
}

// Converts HTTP status to errors, keeping the backend's error code
// so callers can classify the failure
func (self *Client) onStatusToError(c *resty.Client, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() > 399 && resp.StatusCode() < 500 {
		self.log.WithField("status", resp.StatusCode()).
			WithField("resp", string(resp.Body())).
			WithField("url", resp.Request.URL).
			Debug("Bad request")
	}

	out := &RequestError{StatusCode: resp.StatusCode()}
	var envelope Envelope[json.RawMessage]
	if err := json.Unmarshal(resp.Body(), &envelope); err == nil {
		out.Message = envelope.Error
		out.Code = envelope.Code
	}
	return out
}

func (self *Client) GetBalance(ctx context.Context) (out *model.WalletBalance, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&Envelope[model.WalletBalance]{}).
		Get("/api/v1/wallet/balance")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[model.WalletBalance])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Code: envelope.Code, Message: envelope.Error}
		return
	}

	out = &envelope.Data
	return
}

// SendOnchain moves funds to the given address. The daemon checks the
// confirmed balance authoritatively, callers should pre-flight it anyway.
func (self *Client) SendOnchain(ctx context.Context, address string, amount int64, feeRate int64) (txid string, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(&sendOnchainRequest{Address: address, Amount: amount, FeeRate: feeRate}).
		SetResult(&Envelope[txidResult]{}).
		Post("/api/v1/wallet/send")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[txidResult])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Code: envelope.Code, Message: envelope.Error}
		return
	}

	txid = envelope.Data.Txid
	return
}

// SignTransaction returns the signed transaction hex. Fails when the
// wallet is locked or the payload is malformed.
func (self *Client) SignTransaction(ctx context.Context, txHex string, contractId string) (signedTxHex string, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(&signRequest{TxHex: txHex, ContractId: contractId}).
		SetResult(&Envelope[signResult]{}).
		Post("/api/v1/wallet/sign")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[signResult])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Code: envelope.Code, Message: envelope.Error}
		return
	}

	signedTxHex = envelope.Data.SignedTxHex
	return
}

// BroadcastTransaction submits the signed transaction to the network
func (self *Client) BroadcastTransaction(ctx context.Context, txHex string) (txid string, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(&broadcastRequest{TxHex: txHex}).
		SetResult(&Envelope[txidResult]{}).
		Post("/api/v1/wallet/broadcast")
	if err != nil {
		return
	}

	envelope, ok := resp.Result().(*Envelope[txidResult])
	if !ok {
		err = ErrFailedToParse
		return
	}
	if !envelope.Success {
		err = &RequestError{StatusCode: resp.StatusCode(), Code: envelope.Code, Message: envelope.Error}
		return
	}

	txid = envelope.Data.Txid
	return
}
