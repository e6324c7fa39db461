package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/graph"
)

// GetNode fetches a node by ID.
func (s *Store) GetNode(ctx context.Context, id string) (*graph.Node, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, type, name, qualified_name, file_path, line_start, line_end, complexity, properties FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, errs.New(errs.NotFound, "node not found").WithPath(id, 0)
	}
	if err != nil {
		return nil, errs.Wrap(errs.IO, "cannot read node", err)
	}
	return n, nil
}

// NodesByType enumerates nodes of a given type.
func (s *Store) NodesByType(ctx context.Context, t graph.NodeType) ([]*graph.Node, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type, name, qualified_name, file_path, line_start, line_end, complexity, properties FROM nodes WHERE type = ? ORDER BY id`, string(t))
	if err != nil {
		return nil, errs.Wrap(errs.IO, "cannot query nodes by type", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// NodesByNamePattern filters nodes whose name matches a SQL LIKE pattern.
func (s *Store) NodesByNamePattern(ctx context.Context, pattern string) ([]*graph.Node, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type, name, qualified_name, file_path, line_start, line_end, complexity, properties FROM nodes WHERE name LIKE ? ORDER BY id`, pattern)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "cannot query nodes by name", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// NodesByComplexityRange filters nodes whose complexity falls in [min, max].
func (s *Store) NodesByComplexityRange(ctx context.Context, min, max int) ([]*graph.Node, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type, name, qualified_name, file_path, line_start, line_end, complexity, properties FROM nodes WHERE complexity BETWEEN ? AND ? ORDER BY complexity DESC`, min, max)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "cannot query nodes by complexity", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// IncidentEdges fetches edges touching id, filtered by direction and type.
func (s *Store) IncidentEdges(ctx context.Context, id string, direction string, edgeTypes []graph.EdgeType) ([]*graph.Edge, error) {
	col := "source_id"
	switch direction {
	case "in":
		col = "target_id"
	case "out":
		col = "source_id"
	default:
		return s.incidentBothDirections(ctx, id, edgeTypes)
	}

	query := `SELECT id, source_id, target_id, type, properties FROM edges WHERE ` + col + ` = ?`
	args := []interface{}{id}
	if len(edgeTypes) > 0 {
		query += ` AND type IN (` + placeholders(len(edgeTypes)) + `)`
		for _, t := range edgeTypes {
			args = append(args, string(t))
		}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "cannot query incident edges", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

func (s *Store) incidentBothDirections(ctx context.Context, id string, edgeTypes []graph.EdgeType) ([]*graph.Edge, error) {
	out, err := s.IncidentEdges(ctx, id, "out", edgeTypes)
	if err != nil {
		return nil, err
	}
	in, err := s.IncidentEdges(ctx, id, "in", edgeTypes)
	if err != nil {
		return nil, err
	}
	return append(out, in...), nil
}

func placeholders(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += "?"
	}
	return out
}

// AllNodes and AllEdges load the full graph, used by package graphalg to
// build its in-memory projection.
func (s *Store) AllNodes(ctx context.Context) ([]*graph.Node, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type, name, qualified_name, file_path, line_start, line_end, complexity, properties FROM nodes ORDER BY id`)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "cannot load nodes", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

func (s *Store) AllEdges(ctx context.Context) ([]*graph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source_id, target_id, type, properties FROM edges ORDER BY id`)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "cannot load edges", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row rowScanner) (*graph.Node, error) {
	n := &graph.Node{}
	var qname, fpath, props sql.NullString
	var lstart, lend sql.NullInt64
	if err := row.Scan(&n.ID, &n.Type, &n.Name, &qname, &fpath, &lstart, &lend, &n.Complexity, &props); err != nil {
		return nil, err
	}
	n.QualifiedName = qname.String
	n.FilePath = fpath.String
	n.LineStart = int(lstart.Int64)
	n.LineEnd = int(lend.Int64)
	n.Properties = map[string]string{}
	if props.Valid && props.String != "" {
		_ = json.Unmarshal([]byte(props.String), &n.Properties)
	}
	return n, nil
}

func scanNodes(rows *sql.Rows) ([]*graph.Node, error) {
	var out []*graph.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, errs.Wrap(errs.IO, "cannot scan node row", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanEdges(rows *sql.Rows) ([]*graph.Edge, error) {
	var out []*graph.Edge
	for rows.Next() {
		e := &graph.Edge{}
		var props sql.NullString
		if err := rows.Scan(&e.ID, &e.SourceID, &e.TargetID, &e.Type, &props); err != nil {
			return nil, errs.Wrap(errs.IO, "cannot scan edge row", err)
		}
		e.Properties = map[string]string{}
		if props.Valid && props.String != "" {
			_ = json.Unmarshal([]byte(props.String), &e.Properties)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
