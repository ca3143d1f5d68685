package arkwallet

import (
	"errors"
	"fmt"
)

// Backend error codes carried in the envelope
const (
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeSigningFailed     = "SIGNING_FAILED"
	CodeWalletLocked      = "WALLET_LOCKED"
	CodeBroadcastRejected = "BROADCAST_REJECTED"
)

var (
	ErrInsufficientFunds = errors.New("insufficient confirmed funds")
	ErrSigningFailed     = errors.New("wallet failed to sign the transaction")
	ErrBroadcastRejected = errors.New("network rejected the transaction")
)

// Every wallet daemon response is wrapped in this envelope
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// RequestError is a rejection reported by the wallet daemon.
// It unwraps to one of the sentinel errors above when the backend
// sent a known code, so callers can tell signing failures from
// broadcast failures.
type RequestError struct {
	StatusCode int
	Code       string
	Message    string
}

func (self *RequestError) Error() string {
	if self.Message == "" {
		return fmt.Sprintf("wallet service: unexpected status %d", self.StatusCode)
	}
	return fmt.Sprintf("wallet service: %s", self.Message)
}

func (self *RequestError) Unwrap() error {
	switch self.Code {
	case CodeInsufficientFunds:
		return ErrInsufficientFunds
	case CodeSigningFailed, CodeWalletLocked:
		return ErrSigningFailed
	case CodeBroadcastRejected:
		return ErrBroadcastRejected
	}
	return nil
}

type sendOnchainRequest struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
	FeeRate int64  `json:"fee_rate"`
}

type signRequest struct {
	TxHex      string `json:"tx_hex"`
	ContractId string `json:"contract_id"`
}

type broadcastRequest struct {
	TxHex string `json:"tx_hex"`
}

type txidResult struct {
	Txid string `json:"txid"`
}

type signResult struct {
	SignedTxHex string `json:"signed_tx_hex"`
}
