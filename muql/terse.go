package muql

import (
	"strconv"
	"strings"
)

var terseEntity = map[string]string{
	"fn": "functions", "cls": "classes", "mod": "modules",
}

var terseField = map[string]string{
	"c": "complexity", "n": "name",
}

var terseRelation = map[string]ShowRelation{
	"deps":    RelDependencies,
	"revdeps": RelDependents,
	"callers": RelCallers,
	"callees": RelCallees,
	"impl":    RelImplementations,
	"inherits": RelInheritance,
	"imports": RelImports,
}

// ExpandTerse recognizes MU's terse query shorthand (spec §4.8, e.g.
// "fn c>50 sort c- 10" or "deps X d2") and expands it to canonical grammar
// text that Parse understands. Input that doesn't start with a recognized
// shorthand keyword is returned unchanged, so ordinary MUQL always reaches
// Parse untouched.
func ExpandTerse(q string) string {
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return q
	}
	head := strings.ToLower(fields[0])

	if entity, ok := terseEntity[head]; ok {
		return expandSelectTerse(entity, fields[1:])
	}
	if rel, ok := terseRelation[head]; ok && len(fields) >= 2 {
		return expandShowTerse(rel, fields[1:])
	}
	return q
}

func expandSelectTerse(entity string, rest []string) string {
	var where []string
	order := ""
	limit := ""

	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		if strings.EqualFold(tok, "sort") && i+1 < len(rest) {
			order = expandSortTerm(rest[i+1])
			i++
			if i+1 < len(rest) {
				if _, err := strconv.Atoi(rest[i+1]); err == nil {
					limit = rest[i+1]
					i++
				}
			}
			continue
		}
		if cond, ok := expandCondTerm(tok); ok {
			where = append(where, cond)
		}
	}

	out := "SELECT * FROM " + entity
	if len(where) > 0 {
		out += " WHERE " + strings.Join(where, " AND ")
	}
	if order != "" {
		out += " ORDER BY " + order
	}
	if limit != "" {
		out += " LIMIT " + limit
	}
	return out
}

// expandCondTerm expands "c>50" into "complexity>50".
func expandCondTerm(tok string) (string, bool) {
	for _, op := range []string{">=", "<=", "!=", ">", "<", "="} {
		if idx := strings.Index(tok, op); idx > 0 {
			field, ok := terseField[strings.ToLower(tok[:idx])]
			if !ok {
				return "", false
			}
			return field + op + tok[idx+len(op):], true
		}
	}
	return "", false
}

// expandSortTerm expands "c-"/"c+" into "complexity DESC"/"complexity ASC".
func expandSortTerm(tok string) string {
	dir := "ASC"
	field := tok
	switch {
	case strings.HasSuffix(tok, "-"):
		dir = "DESC"
		field = strings.TrimSuffix(tok, "-")
	case strings.HasSuffix(tok, "+"):
		field = strings.TrimSuffix(tok, "+")
	}
	name, ok := terseField[strings.ToLower(field)]
	if !ok {
		name = field
	}
	return name + " " + dir
}

func expandShowTerse(rel ShowRelation, rest []string) string {
	of := rest[0]
	depth := ""
	if len(rest) > 1 {
		d := rest[1]
		if strings.HasPrefix(strings.ToLower(d), "d") {
			if _, err := strconv.Atoi(d[1:]); err == nil {
				depth = d[1:]
			}
		}
	}
	out := "SHOW " + string(rel) + " OF " + of
	if depth != "" {
		out += " DEPTH " + depth
	}
	return out
}
