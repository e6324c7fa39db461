// Package store is the embedded, transactional store for nodes, edges, and
// snapshots, per SPEC_FULL.md §4.6. It is backed by SQLite (mattn/go-sqlite3),
// matching the embedded-store idiom of the example pack's codebase-memory
// tooling.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/graph"
)

// Store is a single-writer/many-reader handle onto one mubase file.
type Store struct {
	db       *sql.DB
	writeMu  sync.Mutex
}

// Open opens (creating if absent) the sqlite file at path and ensures the
// schema exists. WAL mode gives readers a consistent pre-commit/post-commit
// view without blocking on the writer (spec §5 snapshot isolation).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, errs.Wrap(errs.IO, "cannot open store", err).WithPath(path, 0)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	name TEXT NOT NULL,
	qualified_name TEXT,
	file_path TEXT,
	line_start INTEGER,
	line_end INTEGER,
	complexity INTEGER NOT NULL DEFAULT 0,
	properties TEXT
);
CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type);
CREATE INDEX IF NOT EXISTS idx_nodes_file_path ON nodes(file_path);
CREATE INDEX IF NOT EXISTS idx_nodes_complexity ON nodes(complexity);

CREATE TABLE IF NOT EXISTS edges (
	id TEXT PRIMARY KEY,
	source_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	target_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	type TEXT NOT NULL,
	properties TEXT
);
CREATE INDEX IF NOT EXISTS idx_edges_source_type ON edges(source_id, type);
CREATE INDEX IF NOT EXISTS idx_edges_target_type ON edges(target_id, type);

CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	commit_hash TEXT UNIQUE,
	parent_id TEXT,
	commit_metadata TEXT,
	node_count INTEGER,
	edge_count INTEGER,
	delta_counts TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS node_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	node_id TEXT NOT NULL,
	snapshot_id TEXT,
	change_type TEXT NOT NULL,
	recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS edge_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	edge_id TEXT NOT NULL,
	snapshot_id TEXT,
	change_type TEXT NOT NULL,
	recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return errs.Wrap(errs.IO, "cannot migrate schema", err)
	}
	return nil
}

// Build replaces the entire graph atomically — used for a full rebuild.
func (s *Store) Build(ctx context.Context, nodes []*graph.Node, edges []*graph.Edge) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.IO, "cannot begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges`); err != nil {
		return errs.Wrap(errs.IO, "cannot clear edges", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return errs.Wrap(errs.IO, "cannot clear nodes", err)
	}

	if err := insertNodes(ctx, tx, nodes); err != nil {
		return err
	}
	if err := insertEdges(ctx, tx, edges); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.IO, "cannot commit transaction", err)
	}
	return nil
}

// ChangeSet is the result of an incremental update for one changed file.
type ChangeSet struct {
	Added    []*graph.Node
	Modified []*graph.Node
	Removed  []string // node IDs
}

// ApplyChanges atomically replaces the nodes/edges attributed to one file
// with the newly parsed set, per spec §4.6's incremental-update contract.
func (s *Store) ApplyChanges(ctx context.Context, filePath string, nodes []*graph.Node, edges []*graph.Edge) (ChangeSet, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ChangeSet{}, errs.Wrap(errs.IO, "cannot begin transaction", err)
	}
	defer tx.Rollback()

	existing, err := queryNodesByFile(ctx, tx, filePath)
	if err != nil {
		return ChangeSet{}, err
	}
	existingByID := map[string]*graph.Node{}
	for _, n := range existing {
		existingByID[n.ID] = n
	}

	var changes ChangeSet
	newByID := map[string]*graph.Node{}
	for _, n := range nodes {
		newByID[n.ID] = n
		if old, ok := existingByID[n.ID]; !ok {
			changes.Added = append(changes.Added, n)
		} else if old.Complexity != n.Complexity || old.LineStart != n.LineStart || old.LineEnd != n.LineEnd {
			changes.Modified = append(changes.Modified, n)
		}
	}
	for id := range existingByID {
		if _, ok := newByID[id]; !ok {
			changes.Removed = append(changes.Removed, id)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE source_id IN (SELECT id FROM nodes WHERE file_path = ?)`, filePath); err != nil {
		return ChangeSet{}, errs.Wrap(errs.IO, "cannot clear stale edges", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE file_path = ?`, filePath); err != nil {
		return ChangeSet{}, errs.Wrap(errs.IO, "cannot clear stale nodes", err)
	}
	if err := insertNodes(ctx, tx, nodes); err != nil {
		return ChangeSet{}, err
	}
	if err := insertEdges(ctx, tx, edges); err != nil {
		return ChangeSet{}, err
	}

	if err := tx.Commit(); err != nil {
		return ChangeSet{}, errs.Wrap(errs.IO, "cannot commit transaction", err)
	}
	return changes, nil
}

func insertNodes(ctx context.Context, tx *sql.Tx, nodes []*graph.Node) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO nodes(id, type, name, qualified_name, file_path, line_start, line_end, complexity, properties) VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return errs.Wrap(errs.IO, "cannot prepare node insert", err)
	}
	defer stmt.Close()

	for _, n := range nodes {
		props, _ := json.Marshal(n.Properties)
		if _, err := stmt.ExecContext(ctx, n.ID, string(n.Type), n.Name, n.QualifiedName, n.FilePath, n.LineStart, n.LineEnd, n.Complexity, string(props)); err != nil {
			return errs.Wrap(errs.Invariant, "duplicate or invalid node", err).WithPath(n.FilePath, n.LineStart)
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, edges []*graph.Edge) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO edges(id, source_id, target_id, type, properties) VALUES (?,?,?,?,?)`)
	if err != nil {
		return errs.Wrap(errs.IO, "cannot prepare edge insert", err)
	}
	defer stmt.Close()

	for _, e := range edges {
		props, _ := json.Marshal(e.Properties)
		if _, err := stmt.ExecContext(ctx, e.ID, e.SourceID, e.TargetID, string(e.Type), string(props)); err != nil {
			return errs.Wrap(errs.Invariant, "edge references missing node", err)
		}
	}
	return nil
}

func queryNodesByFile(ctx context.Context, tx *sql.Tx, filePath string) ([]*graph.Node, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, type, name, qualified_name, file_path, line_start, line_end, complexity, properties FROM nodes WHERE file_path = ?`, filePath)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "cannot query nodes by file", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}
