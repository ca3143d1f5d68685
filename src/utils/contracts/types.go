package contracts

import (
	"fmt"

	"github.com/hashhedge/workflow/src/utils/model"
)

// Every contract backend response is wrapped in this envelope.
// A 2xx status with Success=false still counts as a failure.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// RequestError is a rejection reported by the contract backend
type RequestError struct {
	StatusCode int
	Message    string
}

func (self *RequestError) Error() string {
	if self.Message == "" {
		return fmt.Sprintf("contract service: unexpected status %d", self.StatusCode)
	}
	return fmt.Sprintf("contract service: %s", self.Message)
}

type SetupResult struct {
	Transaction model.ContractTransaction `json:"transaction"`
}

type SettlementResult struct {
	Transaction model.ContractTransaction `json:"transaction"`
	BuyerWins   bool                      `json:"buyer_wins"`
}

type BroadcastResult struct {
	BroadcastTxId string `json:"broadcast_tx_id"`
}

type SwapResult struct {
	TxHex string `json:"tx_hex"`
}

type setupRequest struct {
	Amount int64 `json:"amount"`
}

type broadcastRequest struct {
	TransactionId string `json:"transaction_id"`
}

type swapRequest struct {
	ParticipantType string `json:"participant_type"`
	NewPubKey       string `json:"new_pub_key"`
}
