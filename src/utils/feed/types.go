package feed

import "time"

// TradeTick is one trade reported by the live feed
type TradeTick struct {
	Channel    string    `json:"channel"`
	ContractId string    `json:"contract_id"`
	Price      int64     `json:"price"`
	Quantity   int64     `json:"quantity"`
	Timestamp  time.Time `json:"timestamp"`
}

type subscribeMessage struct {
	Op       string   `json:"op"`
	Channels []string `json:"channels"`
}
