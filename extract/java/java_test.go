package java

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `package com.example.widgets;

import java.util.List;

public class Widget extends Base implements Greeter {
    private int count;

    public Widget(int count) {
        this.count = count;
    }

    @Override
    public String greet(int times) {
        if (times > 0) {
            return "hi";
        }
        return "bye";
    }
}
`

func TestParseSource(t *testing.T) {
	mod, err := New().ParseSource([]byte(sample), "Widget.java")
	require.NoError(t, err)

	assert.Equal(t, "java", mod.Language)
	assert.Equal(t, "com.example.widgets", mod.Name)

	require.Len(t, mod.Imports, 1)
	assert.Equal(t, "java.util.List", mod.Imports[0].Module)

	require.Len(t, mod.Classes, 1)
	cls := mod.Classes[0]
	assert.Equal(t, "Widget", cls.Name)
	assert.Contains(t, cls.Bases, "Base")
	assert.Contains(t, cls.Bases, "Greeter")
	require.Len(t, cls.Attributes, 1)
	assert.Equal(t, "count", cls.Attributes[0].Name)

	require.Len(t, cls.Methods, 2)
	ctor := cls.Methods[0]
	assert.Equal(t, "<init>", ctor.Name)

	greet := cls.Methods[1]
	assert.Equal(t, "greet", greet.Name)
	assert.Equal(t, "String", greet.ReturnType)
	assert.Contains(t, greet.Decorators, "Override")
	assert.GreaterOrEqual(t, greet.BodyComplexity, 2)
}
