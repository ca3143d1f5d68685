package workflow

import (
	"encoding/json"
	"time"

	"github.com/hashhedge/workflow/src/utils/model"
)

// ContractEvent is published after every committed contract state change
type ContractEvent struct {
	ContractId string               `json:"contract_id"`
	Status     model.ContractStatus `json:"status"`
	Step       string               `json:"step"`
	Action     string               `json:"action"`
	Timestamp  time.Time            `json:"timestamp"`
}

func (self *ContractEvent) MarshalBinary() ([]byte, error) {
	return json.Marshal(self)
}
