package store

import (
	"context"
	"fmt"

	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/graph"
)

// FilterOp is a comparison operator accepted in a Filter.
type FilterOp string

const (
	OpEQ   FilterOp = "="
	OpNE   FilterOp = "!="
	OpGT   FilterOp = ">"
	OpGTE  FilterOp = ">="
	OpLT   FilterOp = "<"
	OpLTE  FilterOp = "<="
	OpLike FilterOp = "LIKE"
)

// Filter is one bound WHERE predicate. Field must be a key of
// queryableColumns; Value is always passed as a bound parameter, never
// interpolated, per spec §8's MUQL safety property.
type Filter struct {
	Field string
	Op    FilterOp
	Value interface{}
}

var queryableColumns = map[string]string{
	"name":           "name",
	"qualified_name": "qualified_name",
	"file_path":      "file_path",
	"complexity":     "complexity",
	"line_start":     "line_start",
	"line_end":       "line_end",
}

// Query describes a bound SELECT over the nodes table, built by muql's
// Planner from a parsed SELECT/FIND statement.
type Query struct {
	NodeType graph.NodeType // empty = any type
	Filters  []Filter
	OrderBy  string // must be a key of queryableColumns, or empty
	Desc     bool
	Limit    int // 0 = unlimited
}

// QueryNodes runs a bound, parameterized node query. Every literal value in
// q.Filters and q.Limit is passed through database/sql as an arg — the SQL
// text itself only ever contains whitelisted column names, never query
// content, so no user-supplied literal is ever interpolated into the query
// string.
func (s *Store) QueryNodes(ctx context.Context, q Query) ([]*graph.Node, error) {
	sqlText := `SELECT id, type, name, qualified_name, file_path, line_start, line_end, complexity, properties FROM nodes WHERE 1=1`
	var args []interface{}

	if q.NodeType != "" {
		sqlText += ` AND type = ?`
		args = append(args, string(q.NodeType))
	}

	for _, f := range q.Filters {
		col, ok := queryableColumns[f.Field]
		if !ok {
			return nil, errs.New(errs.Invariant, "unknown query field "+f.Field)
		}
		op := f.Op
		if op == "" {
			op = OpEQ
		}
		sqlText += fmt.Sprintf(" AND %s %s ?", col, string(op))
		args = append(args, f.Value)
	}

	if q.OrderBy != "" {
		col, ok := queryableColumns[q.OrderBy]
		if !ok {
			return nil, errs.New(errs.Invariant, "unknown order field "+q.OrderBy)
		}
		sqlText += " ORDER BY " + col
		if q.Desc {
			sqlText += " DESC"
		}
	} else {
		sqlText += " ORDER BY id"
	}

	if q.Limit > 0 {
		sqlText += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "cannot run query", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}
