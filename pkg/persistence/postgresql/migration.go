package postgresql

// migrations returns the versioned schema statements for the PostgreSQL
// store. Versions are applied in order by the migration manager.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS flows (
				id VARCHAR(255) PRIMARY KEY,
				workspace_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL DEFAULT 'draft',
				webhook_id VARCHAR(255) NOT NULL,
				nodes JSONB NOT NULL DEFAULT '[]',
				edges JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_flows_webhook_id ON flows(webhook_id);
			CREATE INDEX IF NOT EXISTS idx_flows_workspace_id ON flows(workspace_id);
		`,
		2: `
			CREATE TABLE IF NOT EXISTS events (
				id VARCHAR(255) PRIMARY KEY,
				workspace_id VARCHAR(255) NOT NULL,
				flow_id VARCHAR(255) NOT NULL,
				source VARCHAR(100) NOT NULL,
				event_type VARCHAR(255) NOT NULL,
				payload JSONB NOT NULL DEFAULT '{}',
				headers JSONB NOT NULL DEFAULT '{}',
				received_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				status VARCHAR(50) NOT NULL DEFAULT 'pending'
			);

			CREATE INDEX IF NOT EXISTS idx_events_flow_id ON events(flow_id);
			CREATE INDEX IF NOT EXISTS idx_events_status ON events(status);
		`,
		3: `
			CREATE TABLE IF NOT EXISTS executions (
				id VARCHAR(255) PRIMARY KEY,
				flow_id VARCHAR(255) NOT NULL,
				event_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL DEFAULT 'pending',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				completed_at TIMESTAMP WITH TIME ZONE,
				duration_ms BIGINT,
				node_executions JSONB NOT NULL DEFAULT '[]',
				error TEXT
			);

			CREATE INDEX IF NOT EXISTS idx_executions_flow_id ON executions(flow_id);
			CREATE INDEX IF NOT EXISTS idx_executions_status ON executions(status);
		`,
	}
}
