package database

// migrations are applied in order; the index plus one is the schema version
var migrations = []string{
	`CREATE TABLE generations (
    id TEXT PRIMARY KEY,
    created_at DATETIME NOT NULL,
    sender_name TEXT NOT NULL,
    recipient_name TEXT NOT NULL,
    subject TEXT NOT NULL DEFAULT '',
    tone TEXT NOT NULL DEFAULT '',
    length TEXT NOT NULL DEFAULT '',
    attachment_count INTEGER NOT NULL DEFAULT 0,
    state TEXT NOT NULL,
    error_kind TEXT NOT NULL DEFAULT '',
    error_message TEXT NOT NULL DEFAULT '',
    prompt_chars INTEGER NOT NULL DEFAULT 0,
    body_chars INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_generations_created ON generations(created_at);`,

	`CREATE INDEX idx_generations_state ON generations(state);`,
}
