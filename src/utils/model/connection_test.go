package model

import (
	"context"
	"testing"
	"time"

	"github.com/hashhedge/workflow/src/utils/config"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteJournal(t *testing.T) {
	conf := config.Default().Journal
	conf.SqlitePath = ":memory:"

	db, err := Connect(context.Background(), &conf, "test")
	require.NoError(t, err)

	event := &WorkflowEvent{
		Id:         "evt-1",
		ContractId: "c1",
		Step:       "fund",
		Action:     "fund",
		Ok:         false,
		Error:      "funding amount below contract size",
		Tags:       pq.StringArray{"validation"},
		CreatedAt:  time.Now(),
	}
	require.NoError(t, event.Payload.Set(map[string]interface{}{"amount": 50000}))
	require.NoError(t, db.Create(event).Error)

	var got WorkflowEvent
	require.NoError(t, db.First(&got, "contract_id = ?", "c1").Error)
	assert.Equal(t, "evt-1", got.Id)
	assert.Equal(t, "fund", got.Step)
	assert.False(t, got.Ok)
	assert.Equal(t, pq.StringArray{"validation"}, got.Tags)
}

func TestConnectUnknownDriver(t *testing.T) {
	conf := config.Default().Journal
	conf.Driver = "oracle"

	_, err := Connect(context.Background(), &conf, "test")
	require.Error(t, err)
}
