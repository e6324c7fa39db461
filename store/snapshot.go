package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/graph"
)

// WriteSnapshot persists an immutable Snapshot; a later build supersedes it
// only by writing a new snapshot row, never by mutating this one.
func (s *Store) WriteSnapshot(ctx context.Context, snap *graph.Snapshot) error {
	meta, _ := json.Marshal(snap.CommitMetadata)
	deltas, _ := json.Marshal(snap.DeltaCounts)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots(id, commit_hash, parent_id, commit_metadata, node_count, edge_count, delta_counts) VALUES (?,?,?,?,?,?,?)`,
		snap.ID, snap.CommitHash, snap.ParentID, string(meta), snap.NodeCount, snap.EdgeCount, string(deltas))
	if err != nil {
		return errs.Wrap(errs.IO, "cannot write snapshot", err)
	}
	return nil
}

// ListSnapshots returns every snapshot, most recent first.
func (s *Store) ListSnapshots(ctx context.Context) ([]*graph.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, commit_hash, parent_id, commit_metadata, node_count, edge_count, delta_counts FROM snapshots ORDER BY created_at DESC`)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "cannot list snapshots", err)
	}
	defer rows.Close()

	var out []*graph.Snapshot
	for rows.Next() {
		snap := &graph.Snapshot{CommitMetadata: map[string]string{}, DeltaCounts: map[string]int{}}
		var parentID sql.NullString
		var meta, deltas sql.NullString
		if err := rows.Scan(&snap.ID, &snap.CommitHash, &parentID, &meta, &snap.NodeCount, &snap.EdgeCount, &deltas); err != nil {
			return nil, errs.Wrap(errs.IO, "cannot scan snapshot row", err)
		}
		snap.ParentID = parentID.String
		if meta.Valid {
			_ = json.Unmarshal([]byte(meta.String), &snap.CommitMetadata)
		}
		if deltas.Valid {
			_ = json.Unmarshal([]byte(deltas.String), &snap.DeltaCounts)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// GetSnapshotByCommit fetches a snapshot by its unique commit hash.
func (s *Store) GetSnapshotByCommit(ctx context.Context, commitHash string) (*graph.Snapshot, error) {
	snaps, err := s.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	for _, snap := range snaps {
		if snap.CommitHash == commitHash {
			return snap, nil
		}
	}
	return nil, errs.New(errs.NotFound, "snapshot not found").WithPath(commitHash, 0)
}
