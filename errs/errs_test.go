package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	cases := map[Kind]int{
		Config:              2,
		Parse:               3,
		IO:                  4,
		Invariant:           5,
		NotFound:            1,
		Ambiguity:           1,
		ResourceLimit:       1,
		UnsupportedLanguage: 1,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.ExitCode(), "kind %s", kind)
	}
}

func TestErrorMessage(t *testing.T) {
	e := New(Parse, "unexpected token")
	assert.Equal(t, "parse: unexpected token", e.Error())

	e = e.WithPath("main.go", 12)
	assert.Equal(t, "parse: unexpected token (main.go:12)", e.Error())

	e2 := New(IO, "read failed").WithPath("a.txt", 0)
	assert.Equal(t, "io: read failed (a.txt)", e2.Error())
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(IO, "cannot write", cause)

	assert.Same(t, cause, wrapped.Unwrap())
	assert.True(t, errors.Is(wrapped, cause))

	var target *Error
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, IO, target.Kind)
}

func TestWithRemediation(t *testing.T) {
	e := New(Config, "bad value").WithRemediation("set MU_OUTPUT_FORMAT to mu|json|md")
	assert.Equal(t, "set MU_OUTPUT_FORMAT to mu|json|md", e.Remediation)
}
