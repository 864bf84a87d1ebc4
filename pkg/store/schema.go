package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the compile record tables. Timestamps are Unix nanoseconds
// so both SQLite drivers read them back identically.
const Schema = `
CREATE TABLE IF NOT EXISTS compile_records (
    id TEXT PRIMARY KEY,
    hash TEXT NOT NULL,
    file TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    bits INTEGER NOT NULL,
    dropped INTEGER NOT NULL,
    warnings INTEGER NOT NULL,
    errors INTEGER NOT NULL,
    document BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_compile_records_created_at ON compile_records(created_at);
CREATE INDEX IF NOT EXISTS idx_compile_records_file ON compile_records(file, created_at);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;`

const recordColumns = `id, hash, file, created_at, bits, dropped, warnings, errors, document`
