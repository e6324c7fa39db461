package typescript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `import { useState } from 'react'
import Default from './default'

export class Widget extends Base {
  greet(count: number): string {
    if (count > 0) {
      return "hi"
    }
    return "bye"
  }
}

export const helper = (x: number, y: number = 1): number => {
  return x + y
}
`

func TestParseSourceTypeScript(t *testing.T) {
	mod, err := NewTypeScript().ParseSource([]byte(sample), "sample.ts")
	require.NoError(t, err)

	assert.Equal(t, "typescript", mod.Language)
	require.Len(t, mod.Imports, 2)
	assert.Equal(t, "react", mod.Imports[0].Module)
	assert.Equal(t, "./default", mod.Imports[1].Module)

	require.Len(t, mod.Classes, 1)
	cls := mod.Classes[0]
	assert.Equal(t, "Widget", cls.Name)
	assert.Contains(t, cls.Bases, "Base")
	require.Len(t, cls.Methods, 1)
	assert.Equal(t, "greet", cls.Methods[0].Name)

	require.Len(t, mod.Functions, 1)
	assert.Equal(t, "helper", mod.Functions[0].Name)
	require.Len(t, mod.Functions[0].Params, 2)
	assert.Equal(t, "1", mod.Functions[0].Params[1].Default)
}

func TestDynamicImport(t *testing.T) {
	src := `async function load() {
  const mod = await import("./plugin")
  return mod
}`
	mod, err := NewJavaScript().ParseSource([]byte(src), "sample.js")
	require.NoError(t, err)
	require.Len(t, mod.Imports, 1)
	assert.True(t, mod.Imports[0].IsDynamic)
	assert.Equal(t, "./plugin", mod.Imports[0].Module)
	assert.Equal(t, "import()", mod.Imports[0].DynamicSource)
	assert.Equal(t, `import("./plugin")`, mod.Imports[0].DynamicPattern)
}
