package report

import (
	"go.uber.org/atomic"
)

type FeedState struct {
	TradesReceived atomic.Uint64 `json:"trades_received"`
	Reconnects     atomic.Uint64 `json:"reconnects"`
}

type FeedErrors struct {
	Connection atomic.Uint64 `json:"connection"`
	Decode     atomic.Uint64 `json:"decode"`
}

type FeedReport struct {
	State  FeedState  `json:"state"`
	Errors FeedErrors `json:"errors"`
}
