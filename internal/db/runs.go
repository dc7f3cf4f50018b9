package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned by LoadRun for an unknown id
var ErrRunNotFound = errors.New("run not found")

// SaveRun stores a run with its network and trees in one transaction and
// returns the run id. A new id is assigned when rec.Run.ID is empty.
func (d *DB) SaveRun(rec *RunRecord) (string, error) {
	run := rec.Run
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixMilli()
	}
	run.SchemaVersion = SchemaVersion

	names, err := encodeJSON(run.SampleNames)
	if err != nil {
		return "", err
	}
	removed, err := encodeJSON(run.RemovedGroups)
	if err != nil {
		return "", err
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, created_at, schema_version, num_samples, sample_names, config,
		                  removed_groups, repairs, enumerated, truncated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt, run.SchemaVersion, run.NumSamples, names, run.Config,
		removed, run.Repairs, run.Enumerated, run.Truncated)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for _, n := range rec.Nodes {
		aaf, err := encodeJSON(n.AAF)
		if err != nil {
			return "", err
		}
		stddev, err := encodeJSON(n.StdDev)
		if err != nil {
			return "", err
		}
		_, err = tx.Exec(`
			INSERT INTO nodes (run_id, node_id, kind, level, label, tag, cluster, sample,
			                   members, robust, aaf, stddev)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, n.ID, n.Kind, n.Level, n.Label, nullable(n.Tag), nullable(n.Cluster), nullable(n.Sample),
			n.Members, n.Robust, aaf, stddev)
		if err != nil {
			return "", fmt.Errorf("inserting node %d: %w", n.ID, err)
		}
	}

	for _, e := range rec.Edges {
		if _, err := tx.Exec(`INSERT INTO edges (run_id, from_id, to_id) VALUES (?, ?, ?)`,
			run.ID, e.From, e.To); err != nil {
			return "", fmt.Errorf("inserting edge %d->%d: %w", e.From, e.To, err)
		}
	}

	for _, t := range rec.Trees {
		if _, err := tx.Exec(`INSERT INTO trees (run_id, rank, score) VALUES (?, ?, ?)`,
			run.ID, t.Rank, t.Score); err != nil {
			return "", fmt.Errorf("inserting tree %d: %w", t.Rank, err)
		}
		for _, e := range t.Edges {
			if _, err := tx.Exec(`INSERT INTO tree_edges (run_id, rank, from_id, to_id) VALUES (?, ?, ?, ?)`,
				run.ID, t.Rank, e.From, e.To); err != nil {
				return "", fmt.Errorf("inserting tree %d edge %d->%d: %w", t.Rank, e.From, e.To, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return run.ID, nil
}

// scanRun scans a row into a Run. The row must have the 10 runs columns in standard order.
func scanRun(scanner interface{ Scan(dest ...any) error }, extra ...any) (Run, error) {
	var r Run
	var names, removed sql.NullString
	dest := append([]any{
		&r.ID, &r.CreatedAt, &r.SchemaVersion, &r.NumSamples, &names, &r.Config,
		&removed, &r.Repairs, &r.Enumerated, &r.Truncated,
	}, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return r, err
	}
	if err := decodeJSON(names, &r.SampleNames); err != nil {
		return r, err
	}
	if err := decodeJSON(removed, &r.RemovedGroups); err != nil {
		return r, err
	}
	return r, nil
}

// ListRuns returns all runs, newest first, with their tree counts and best scores
func (d *DB) ListRuns() ([]Run, error) {
	rows, err := d.conn.Query(`
		SELECT r.id, r.created_at, r.schema_version, r.num_samples, r.sample_names, r.config,
		       r.removed_groups, r.repairs, r.enumerated, r.truncated,
		       (SELECT COUNT(*) FROM trees t WHERE t.run_id = r.id),
		       (SELECT MIN(score) FROM trees t WHERE t.run_id = r.id)
		FROM runs r ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var best sql.NullFloat64
		var numTrees int
		r, err := scanRun(rows, &numTrees, &best)
		if err != nil {
			return nil, err
		}
		r.NumTrees = numTrees
		if best.Valid {
			v := best.Float64
			r.BestScore = &v
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadRun reads a stored run with its nodes, edges and trees
func (d *DB) LoadRun(id string) (*RunRecord, error) {
	row := d.conn.QueryRow(`
		SELECT id, created_at, schema_version, num_samples, sample_names, config,
		       removed_groups, repairs, enumerated, truncated
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rec := &RunRecord{Run: run}
	if rec.Nodes, err = d.runNodes(id); err != nil {
		return nil, fmt.Errorf("loading nodes: %w", err)
	}
	if rec.Edges, err = d.runEdges(`SELECT from_id, to_id FROM edges WHERE run_id = ? ORDER BY from_id, to_id`, id); err != nil {
		return nil, fmt.Errorf("loading edges: %w", err)
	}
	if rec.Trees, err = d.runTrees(id); err != nil {
		return nil, fmt.Errorf("loading trees: %w", err)
	}
	rec.Run.NumTrees = len(rec.Trees)
	if len(rec.Trees) > 0 {
		v := rec.Trees[0].Score
		rec.Run.BestScore = &v
	}
	return rec, nil
}

// DeleteRun removes a run; nodes, edges and trees are cascade-deleted
func (d *DB) DeleteRun(id string) error {
	res, err := d.conn.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

func (d *DB) runNodes(id string) ([]NodeRow, error) {
	rows, err := d.conn.Query(`
		SELECT node_id, kind, level, label, tag, cluster, sample, members, robust, aaf, stddev
		FROM nodes WHERE run_id = ? ORDER BY node_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []NodeRow
	for rows.Next() {
		var n NodeRow
		var aaf string
		var stddev sql.NullString
		if err := rows.Scan(&n.ID, &n.Kind, &n.Level, &n.Label, &n.Tag, &n.Cluster, &n.Sample,
			&n.Members, &n.Robust, &aaf, &stddev); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aaf), &n.AAF); err != nil {
			return nil, fmt.Errorf("node %d aaf: %w", n.ID, err)
		}
		if err := decodeJSON(stddev, &n.StdDev); err != nil {
			return nil, fmt.Errorf("node %d stddev: %w", n.ID, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (d *DB) runEdges(query string, args ...any) ([]EdgeRow, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []EdgeRow
	for rows.Next() {
		var e EdgeRow
		if err := rows.Scan(&e.From, &e.To); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (d *DB) runTrees(id string) ([]TreeRow, error) {
	rows, err := d.conn.Query(`SELECT rank, score FROM trees WHERE run_id = ? ORDER BY rank`, id)
	if err != nil {
		return nil, err
	}
	var trees []TreeRow
	for rows.Next() {
		var t TreeRow
		if err := rows.Scan(&t.Rank, &t.Score); err != nil {
			rows.Close()
			return nil, err
		}
		trees = append(trees, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Release the connection before the per-tree queries
	rows.Close()

	for i := range trees {
		edges, err := d.runEdges(`
			SELECT from_id, to_id FROM tree_edges WHERE run_id = ? AND rank = ? ORDER BY rowid
		`, id, trees[i].Rank)
		if err != nil {
			return nil, err
		}
		trees[i].Edges = edges
	}
	return trees, nil
}

// nullable turns a nil pointer into SQL NULL
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// encodeJSON marshals v, mapping nil slices to SQL NULL
func encodeJSON[T any](v []T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding json: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeJSON(s sql.NullString, dest any) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), dest)
}
