package rust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mu-graph/mu/ir"
)

const sample = `use std::collections::HashMap;

pub trait Greeter {
    fn greet(&self, count: i32) -> String;
}

pub struct Widget {
    name: String,
}

impl Greeter for Widget {
    fn greet(&self, count: i32) -> String {
        if count > 0 {
            return String::from("hi");
        }
        String::from("bye")
    }
}

fn add(a: i32, b: i32) -> i32 {
    a + b
}
`

func TestParseSource(t *testing.T) {
	mod, err := New().ParseSource([]byte(sample), "widget.rs")
	require.NoError(t, err)

	assert.Equal(t, "rust", mod.Language)

	require.Len(t, mod.Imports, 1)
	assert.Equal(t, "std::collections::HashMap", mod.Imports[0].Module)

	require.Len(t, mod.Functions, 1)
	assert.Equal(t, "add", mod.Functions[0].Name)
	assert.Equal(t, "i32", mod.Functions[0].ReturnType)

	widget := findClass(mod.Classes, "Widget")
	require.NotNil(t, widget)
	require.Len(t, widget.Attributes, 1)
	assert.Equal(t, "name", widget.Attributes[0].Name)
	assert.Contains(t, widget.Bases, "Greeter")
	require.Len(t, widget.Methods, 1)
	assert.Equal(t, "greet", widget.Methods[0].Name)
	assert.True(t, widget.Methods[0].IsMethod)
	assert.GreaterOrEqual(t, widget.Methods[0].BodyComplexity, 2)

	trait := findClass(mod.Classes, "Greeter")
	require.NotNil(t, trait)
}

func findClass(classes []*ir.ClassIR, name string) *ir.ClassIR {
	for _, c := range classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}
