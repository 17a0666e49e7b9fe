package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScene(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFileHostLoadReplacesActive(t *testing.T) {
	a := writeScene(t, "a.yaml", `
collections:
  objects:
    entities:
      - type: Object
        name: A
        props:
          location: {vector: [0, 0, 0]}
`)
	b := writeScene(t, "b.yaml", `
collections:
  objects:
    entities:
      - type: Object
        name: B
        props:
          location: {vector: [1, 1, 1]}
`)

	host := NewFileHost()
	assert.Nil(t, host.Active())
	assert.Empty(t, host.ActivePath())

	docA, err := host.Load(a)
	require.NoError(t, err)
	assert.Same(t, docA, host.Active())
	assert.Equal(t, a, host.ActivePath())

	// Loading another file replaces the single active document.
	docB, err := host.Load(b)
	require.NoError(t, err)
	assert.Same(t, docB, host.Active())
	assert.Equal(t, b, host.ActivePath())
	assert.Equal(t, "B", docB.Collections[0].Entities[0].Name)
}

func TestFileHostLoadFailureKeepsActive(t *testing.T) {
	a := writeScene(t, "a.yaml", `
collections:
  objects:
    entities:
      - type: Object
        name: A
        props:
          location: {vector: [0, 0, 0]}
`)
	host := NewFileHost()
	_, err := host.Load(a)
	require.NoError(t, err)

	_, err = host.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, a, host.ActivePath())
	assert.NotNil(t, host.Active())
}

func TestFileHostSetActiveAndDirty(t *testing.T) {
	host := NewFileHost()
	doc := &Document{}

	host.SetActive(doc, "")
	assert.Same(t, doc, host.Active())
	assert.Empty(t, host.ActivePath())
	assert.False(t, host.Unsaved())

	host.MarkDirty()
	assert.True(t, host.Unsaved())
}
