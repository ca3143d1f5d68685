package model

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

const TableContract = "contracts"

type ContractType string

const (
	ContractTypeCall ContractType = "CALL"
	ContractTypePut  ContractType = "PUT"
)

type ContractStatus string

const (
	ContractStatusCreated   ContractStatus = "CREATED"
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusSettled   ContractStatus = "SETTLED"
	ContractStatusExpired   ContractStatus = "EXPIRED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// Ranks statuses along the forward-only lifecycle
var statusRank = map[ContractStatus]int{
	ContractStatusCreated:   0,
	ContractStatusActive:    1,
	ContractStatusSettled:   2,
	ContractStatusExpired:   2,
	ContractStatusCancelled: 2,
}

func (self ContractStatus) IsValid() bool {
	_, ok := statusRank[self]
	return ok
}

func (self ContractStatus) IsTerminal() bool {
	return self == ContractStatusSettled || self == ContractStatusExpired || self == ContractStatusCancelled
}

// Transitions only move forward. Equal statuses are allowed so refreshes are idempotent.
func (self ContractStatus) CanTransitionTo(next ContractStatus) bool {
	if !self.IsValid() || !next.IsValid() {
		return false
	}
	if self == next {
		return true
	}
	if self.IsTerminal() {
		return false
	}
	return statusRank[next] > statusRank[self]
}

// ContractTerms are the immutable terms of a hash-rate derivative agreement.
// This is also the payload of a create request.
type ContractTerms struct {
	ContractType     ContractType `json:"contract_type"`
	StrikeHashRate   float64      `json:"strike_hash_rate"`
	StartBlockHeight int64        `json:"start_block_height"`
	EndBlockHeight   int64        `json:"end_block_height"`
	TargetTimestamp  time.Time    `json:"target_timestamp"`
	ContractSize     int64        `json:"contract_size"`
	Premium          int64        `json:"premium"`
	BuyerPubKey      string       `json:"buyer_pub_key"`
	SellerPubKey     string       `json:"seller_pub_key"`
}

var (
	ErrInvalidContractType = errors.New("contract type must be CALL or PUT")
	ErrInvalidStrike       = errors.New("strike hash rate must be positive")
	ErrInvalidBlockWindow  = errors.New("end block height must be greater than start block height")
	ErrTargetInPast        = errors.New("target timestamp must be in the future")
	ErrInvalidSize         = errors.New("contract size must be positive")
	ErrNegativePremium     = errors.New("premium must not be negative")
)

// Validate checks the terms invariants. Used before a create request is sent,
// the contract backend remains authoritative.
func (self *ContractTerms) Validate() error {
	if self.ContractType != ContractTypeCall && self.ContractType != ContractTypePut {
		return ErrInvalidContractType
	}
	if self.StrikeHashRate <= 0 {
		return ErrInvalidStrike
	}
	if self.EndBlockHeight <= self.StartBlockHeight {
		return ErrInvalidBlockWindow
	}
	if !self.TargetTimestamp.After(time.Now()) {
		return ErrTargetInPast
	}
	if self.ContractSize <= 0 {
		return ErrInvalidSize
	}
	if self.Premium < 0 {
		return ErrNegativePremium
	}
	if err := ValidatePubKey(self.BuyerPubKey); err != nil {
		return fmt.Errorf("buyer pub key: %w", err)
	}
	if err := ValidatePubKey(self.SellerPubKey); err != nil {
		return fmt.Errorf("seller pub key: %w", err)
	}
	return nil
}

// Compressed secp256k1 keys are 66 hex chars, x-only keys are 64
func ValidatePubKey(key string) error {
	if len(key) != 66 && len(key) != 64 {
		return errors.New("must be 66 or 64 hex characters")
	}
	if _, err := hex.DecodeString(key); err != nil {
		return errors.New("must be hex encoded")
	}
	return nil
}

// Contract is one hash-rate derivative agreement between a buyer and a seller.
// Terms are immutable once the contract backend assigns an id.
type Contract struct {
	Id string `json:"id"`

	ContractTerms

	// Lifecycle
	Status         ContractStatus `json:"status"`
	SetupTxId      string         `json:"setup_tx_id,omitempty"`
	FinalTxId      string         `json:"final_tx_id,omitempty"`
	SettlementTxId string         `json:"settlement_tx_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
