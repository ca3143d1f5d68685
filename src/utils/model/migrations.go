package model

import (
	migrate "github.com/rubenv/sql-migrate"
)

// Journal schema. Kept in memory, there's no external migrations directory.
var journalMigrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "001_workflow_events",
			Up: []string{
				`CREATE TABLE IF NOT EXISTS workflow_events (
					id TEXT PRIMARY KEY,
					contract_id TEXT NOT NULL,
					step TEXT NOT NULL,
					action TEXT NOT NULL,
					ok BOOLEAN NOT NULL DEFAULT FALSE,
					error TEXT,
					tags TEXT[],
					payload JSONB,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`,
				`CREATE INDEX IF NOT EXISTS idx_workflow_events_contract_id ON workflow_events(contract_id)`,
			},
			Down: []string{
				`DROP TABLE workflow_events`,
			},
		},
	},
}
