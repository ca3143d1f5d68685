package model

import (
	"time"

	"github.com/jackc/pgtype"
	"github.com/lib/pq"
)

const TableWorkflowEvent = "workflow_events"

// WorkflowEvent is one journal row describing a single workflow action attempt.
type WorkflowEvent struct {
	Id         string `gorm:"primaryKey"`
	ContractId string
	Step       string
	Action     string
	Ok         bool
	Error      string
	Tags       pq.StringArray `gorm:"type:text[]"`
	Payload    pgtype.JSONB   `gorm:"type:jsonb"`
	CreatedAt  time.Time
}

func (WorkflowEvent) TableName() string {
	return TableWorkflowEvent
}
