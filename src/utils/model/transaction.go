package model

import "time"

const TableContractTransaction = "contract_transactions"

type TxType string

const (
	TxTypeSetup      TxType = "setup"
	TxTypeFinal      TxType = "final"
	TxTypeSettlement TxType = "settlement"
	TxTypeSwap       TxType = "swap"
)

// ContractTransaction is one Bitcoin transaction associated with a contract.
// TxHex is immutable once produced by the backend, only the confirmation
// fields flip, exactly once.
type ContractTransaction struct {
	Id         string `json:"id"`
	ContractId string `json:"contract_id"`

	TxType TxType `json:"tx_type"`
	TxHex  string `json:"tx_hex"`

	// Funding address, set only on setup transactions
	Address string `json:"address,omitempty"`

	Confirmed   bool       `json:"confirmed"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}
