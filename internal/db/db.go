package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SchemaVersion is the layout version written with every run
const SchemaVersion = 1

// DB wraps a SQLite database connection
type DB struct {
	conn *sql.DB
	Path string
}

// OpenDB opens (creating if needed) a SQLite run store with WAL mode and
// foreign keys enabled, and brings its schema up to date
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: keeps ":memory:" stores on a single database
	conn.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	d := &DB{conn: conn, Path: path}
	if err := d.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return d, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries
func (d *DB) Conn() *sql.DB {
	return d.conn
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	schema_version INTEGER NOT NULL,
	num_samples INTEGER NOT NULL,
	sample_names TEXT,
	config TEXT NOT NULL,
	removed_groups TEXT,
	repairs INTEGER NOT NULL DEFAULT 0,
	enumerated INTEGER NOT NULL DEFAULT 0,
	truncated INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS nodes (
	run_id TEXT NOT NULL,
	node_id INTEGER NOT NULL,
	kind TEXT NOT NULL,
	level INTEGER NOT NULL,
	label TEXT NOT NULL,
	tag TEXT,
	cluster INTEGER,
	sample INTEGER,
	members INTEGER NOT NULL DEFAULT 0,
	robust INTEGER NOT NULL DEFAULT 0,
	aaf TEXT NOT NULL,
	stddev TEXT,
	PRIMARY KEY (run_id, node_id),
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS edges (
	run_id TEXT NOT NULL,
	from_id INTEGER NOT NULL,
	to_id INTEGER NOT NULL,
	PRIMARY KEY (run_id, from_id, to_id),
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS trees (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY (run_id, rank),
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS tree_edges (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	from_id INTEGER NOT NULL,
	to_id INTEGER NOT NULL,
	PRIMARY KEY (run_id, rank, to_id),
	FOREIGN KEY (run_id, rank) REFERENCES trees(run_id, rank) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// migrate applies schema versions newer than the one recorded in the store
func (d *DB) migrate() error {
	if _, err := d.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return err
	}
	var current int
	if err := d.conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("store schema version %d is newer than supported version %d", current, SchemaVersion)
	}
	if current == SchemaVersion {
		return nil
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(schemaV1); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		return err
	}
	return tx.Commit()
}

// Version returns the schema version recorded in the store
func (d *DB) Version() (int, error) {
	var v int
	err := d.conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&v)
	return v, err
}
