package model

// WalletBalance is the connected wallet's spendable funds in satoshis.
// Owned by the wallet service, read-only here.
type WalletBalance struct {
	Confirmed int64 `json:"confirmed"`
	Total     int64 `json:"total"`
}
