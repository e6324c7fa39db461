package muql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexBasicSelect(t *testing.T) {
	tokens, err := Lex(`SELECT * FROM functions WHERE complexity > 50 LIMIT 10`)
	require.NoError(t, err)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		TokSelect, TokStar, TokFrom, TokIdent, TokWhere, TokIdent, TokGT, TokNumber, TokLimit, TokNumber, TokEOF,
	}, types)
}

func TestLexStringLiteral(t *testing.T) {
	tokens, err := Lex(`FIND function WITH DECORATOR "deprecated"`)
	require.NoError(t, err)
	var got string
	for _, tok := range tokens {
		if tok.Type == TokString {
			got = tok.Value
		}
	}
	assert.Equal(t, "deprecated", got)
}

func TestLexDottedIdentifier(t *testing.T) {
	tokens, err := Lex(`SHOW dependencies OF pkg/foo.Bar`)
	require.NoError(t, err)
	var idents []string
	for _, tok := range tokens {
		if tok.Type == TokIdent {
			idents = append(idents, tok.Value)
		}
	}
	assert.Contains(t, idents, "pkg/foo.Bar")
}

func TestLexComparisonOperators(t *testing.T) {
	tokens, err := Lex(`a >= 1 AND b <= 2 AND c != 3`)
	require.NoError(t, err)
	var ops []TokenType
	for _, tok := range tokens {
		switch tok.Type {
		case TokGTE, TokLTE, TokNE:
			ops = append(ops, tok.Type)
		}
	}
	assert.Equal(t, []TokenType{TokGTE, TokLTE, TokNE}, ops)
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := Lex(`FIND function WITH DECORATOR "oops`)
	assert.Error(t, err)
}
