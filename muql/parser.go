package muql

import (
	"fmt"
	"strconv"

	"github.com/mu-graph/mu/errs"
)

// Parser converts a token stream into a Statement.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse tokenizes and parses a MUQL string, first expanding any recognized
// terse shorthand.
func Parse(input string) (*Statement, error) {
	tokens, err := Lex(ExpandTerse(input))
	if err != nil {
		return nil, errs.Wrap(errs.Invariant, "cannot lex query", err)
	}
	p := &Parser{tokens: tokens}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, errs.Wrap(errs.Invariant, "cannot parse query", err)
	}
	return stmt, nil
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *Parser) expect(typ TokenType) (Token, error) {
	t := p.advance()
	if t.Type != typ {
		return t, fmt.Errorf("unexpected token %q at pos %d", t.Value, t.Pos)
	}
	return t, nil
}

func (p *Parser) parseStatement() (*Statement, error) {
	switch p.peek().Type {
	case TokSelect:
		s, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		return &Statement{Select: s}, nil
	case TokShow:
		s, err := p.parseShow()
		if err != nil {
			return nil, err
		}
		return &Statement{Show: s}, nil
	case TokFind:
		s, err := p.parseFind()
		if err != nil {
			return nil, err
		}
		return &Statement{Find: s}, nil
	case TokPath:
		s, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		return &Statement{Path: s}, nil
	case TokAnalyze:
		s, err := p.parseAnalyze()
		if err != nil {
			return nil, err
		}
		return &Statement{Analyze: s}, nil
	default:
		return nil, fmt.Errorf("expected SELECT, SHOW, FIND, PATH, or ANALYZE, got %q", p.peek().Value)
	}
}

func (p *Parser) parseSelect() (*SelectStmt, error) {
	if _, err := p.expect(TokSelect); err != nil {
		return nil, err
	}
	stmt := &SelectStmt{}

	if p.peek().Type == TokStar {
		p.advance()
		stmt.Fields = []string{"*"}
	} else {
		for {
			id, err := p.expect(TokIdent)
			if err != nil {
				return nil, fmt.Errorf("field name: %w", err)
			}
			stmt.Fields = append(stmt.Fields, id.Value)
			if p.peek().Type != TokComma {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(TokFrom); err != nil {
		return nil, err
	}
	entity, err := p.expect(TokIdent)
	if err != nil {
		return nil, fmt.Errorf("entity kind: %w", err)
	}
	stmt.EntityKind = entity.Value

	if p.peek().Type == TokWhere {
		p.advance()
		conds, err := p.parseConditions()
		if err != nil {
			return nil, err
		}
		stmt.Where = conds
	}

	if p.peek().Type == TokOrder {
		p.advance()
		if _, err := p.expect(TokBy); err != nil {
			return nil, err
		}
		field, err := p.expect(TokIdent)
		if err != nil {
			return nil, fmt.Errorf("order field: %w", err)
		}
		ob := &OrderBy{Field: field.Value}
		switch p.peek().Type {
		case TokDesc:
			p.advance()
			ob.Desc = true
		case TokAsc:
			p.advance()
		}
		stmt.Order = ob
	}

	if p.peek().Type == TokLimit {
		p.advance()
		n, err := p.expect(TokNumber)
		if err != nil {
			return nil, fmt.Errorf("limit value: %w", err)
		}
		stmt.Limit, _ = strconv.Atoi(n.Value)
	}

	return stmt, nil
}

func (p *Parser) parseConditions() ([]Condition, error) {
	var out []Condition
	for {
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
		if p.peek().Type != TokAnd {
			break
		}
		p.advance()
	}
	return out, nil
}

func (p *Parser) parseCondition() (Condition, error) {
	field, err := p.expect(TokIdent)
	if err != nil {
		return Condition{}, fmt.Errorf("condition field: %w", err)
	}
	op, err := p.parseCompareOp()
	if err != nil {
		return Condition{}, err
	}
	value, err := p.parseValue()
	if err != nil {
		return Condition{}, err
	}
	return Condition{Field: field.Value, Op: op, Value: value}, nil
}

func (p *Parser) parseCompareOp() (CompareOp, error) {
	t := p.advance()
	switch t.Type {
	case TokEQ:
		return CmpEQ, nil
	case TokNE:
		return CmpNE, nil
	case TokGT:
		return CmpGT, nil
	case TokGTE:
		return CmpGTE, nil
	case TokLT:
		return CmpLT, nil
	case TokLTE:
		return CmpLTE, nil
	default:
		return "", fmt.Errorf("expected comparison operator at pos %d, got %q", t.Pos, t.Value)
	}
}

func (p *Parser) parseValue() (interface{}, error) {
	t := p.advance()
	switch t.Type {
	case TokString:
		return t.Value, nil
	case TokNumber:
		if f, err := strconv.ParseFloat(t.Value, 64); err == nil {
			return f, nil
		}
		return t.Value, nil
	case TokIdent:
		return t.Value, nil
	default:
		return nil, fmt.Errorf("expected a value at pos %d, got %q", t.Pos, t.Value)
	}
}

func (p *Parser) parseShow() (*ShowStmt, error) {
	if _, err := p.expect(TokShow); err != nil {
		return nil, err
	}
	rel, err := p.expect(TokIdent)
	if err != nil {
		return nil, fmt.Errorf("relation name: %w", err)
	}
	stmt := &ShowStmt{Relation: ShowRelation(rel.Value)}

	if _, err := p.expect(TokOf); err != nil {
		return nil, err
	}
	ident, err := p.parseIdentifier()
	if err != nil {
		return nil, fmt.Errorf("SHOW target: %w", err)
	}
	stmt.Of = ident

	if p.peek().Type == TokDepth {
		p.advance()
		n, err := p.expect(TokNumber)
		if err != nil {
			return nil, fmt.Errorf("depth value: %w", err)
		}
		stmt.Depth, _ = strconv.Atoi(n.Value)
	}
	return stmt, nil
}

// parseIdentifier accepts an identifier made of dotted/slashed path-like
// segments as one token (the lexer already treats '.', '/', '-' as ident
// characters), matching MUQL's loose node-reference syntax.
func (p *Parser) parseIdentifier() (string, error) {
	t := p.advance()
	if t.Type != TokIdent {
		return "", fmt.Errorf("expected identifier at pos %d, got %q", t.Pos, t.Value)
	}
	return t.Value, nil
}

func (p *Parser) parseFind() (*FindStmt, error) {
	if _, err := p.expect(TokFind); err != nil {
		return nil, err
	}
	kind, err := p.expect(TokIdent)
	if err != nil {
		return nil, fmt.Errorf("FIND entity kind: %w", err)
	}
	stmt := &FindStmt{EntityKind: kind.Value}

	pred, err := p.parsePredicate()
	if err != nil {
		return nil, err
	}
	stmt.Predicate = pred
	return stmt, nil
}

func (p *Parser) parsePredicate() (FindPredicate, error) {
	t := p.advance()
	switch t.Type {
	case TokCalling:
		arg, err := p.parseIdentifier()
		return FindPredicate{Kind: PredCalling, Arg: arg}, err
	case TokCalled:
		if _, err := p.expect(TokBy); err != nil {
			return FindPredicate{}, fmt.Errorf("CALLED BY: %w", err)
		}
		arg, err := p.parseIdentifier()
		return FindPredicate{Kind: PredCalledBy, Arg: arg}, err
	case TokImplementing:
		arg, err := p.parseIdentifier()
		return FindPredicate{Kind: PredImplementing, Arg: arg}, err
	case TokInheriting:
		arg, err := p.parseIdentifier()
		return FindPredicate{Kind: PredInheriting, Arg: arg}, err
	case TokWith:
		if _, err := p.expect(TokDecorator); err != nil {
			return FindPredicate{}, fmt.Errorf("WITH DECORATOR: %w", err)
		}
		s, err := p.expect(TokString)
		if err != nil {
			return FindPredicate{}, fmt.Errorf("decorator name: %w", err)
		}
		return FindPredicate{Kind: PredWithDecorator, Arg: s.Value}, nil
	case TokMatching:
		s, err := p.expect(TokString)
		if err != nil {
			return FindPredicate{}, fmt.Errorf("MATCHING pattern: %w", err)
		}
		return FindPredicate{Kind: PredMatching, Arg: s.Value}, nil
	case TokSimilar:
		if _, err := p.expect(TokTo); err != nil {
			return FindPredicate{}, fmt.Errorf("SIMILAR TO: %w", err)
		}
		arg, err := p.parseIdentifier()
		return FindPredicate{Kind: PredSimilarTo, Arg: arg}, err
	default:
		return FindPredicate{}, fmt.Errorf("unrecognized FIND predicate at pos %d, got %q", t.Pos, t.Value)
	}
}

func (p *Parser) parsePath() (*PathStmt, error) {
	if _, err := p.expect(TokPath); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokFrom); err != nil {
		return nil, err
	}
	from, err := p.parseIdentifier()
	if err != nil {
		return nil, fmt.Errorf("PATH FROM: %w", err)
	}
	if _, err := p.expect(TokTo); err != nil {
		return nil, err
	}
	to, err := p.parseIdentifier()
	if err != nil {
		return nil, fmt.Errorf("PATH TO: %w", err)
	}
	stmt := &PathStmt{From: from, To: to}

	if p.peek().Type == TokMax {
		p.advance()
		if _, err := p.expect(TokDepth); err != nil {
			return nil, err
		}
		n, err := p.expect(TokNumber)
		if err != nil {
			return nil, fmt.Errorf("max depth value: %w", err)
		}
		stmt.MaxDepth, _ = strconv.Atoi(n.Value)
	}
	if p.peek().Type == TokVia {
		p.advance()
		via, err := p.expect(TokIdent)
		if err != nil {
			return nil, fmt.Errorf("VIA edge type: %w", err)
		}
		stmt.Via = via.Value
	}
	return stmt, nil
}

func (p *Parser) parseAnalyze() (*AnalyzeStmt, error) {
	if _, err := p.expect(TokAnalyze); err != nil {
		return nil, err
	}
	kind, err := p.expect(TokIdent)
	if err != nil {
		return nil, fmt.Errorf("ANALYZE kind: %w", err)
	}
	stmt := &AnalyzeStmt{Kind: AnalyzeKind(kind.Value)}

	if p.peek().Type == TokFor {
		p.advance()
		ident, err := p.parseIdentifier()
		if err != nil {
			return nil, fmt.Errorf("ANALYZE FOR: %w", err)
		}
		stmt.For = ident
	}
	return stmt, nil
}
