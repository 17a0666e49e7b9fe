package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplace(t *testing.T) {
	p, err := Parse([]byte(`
skip_collections:
  - render_cache
skip_paths:
  - particle_systems
`))
	require.NoError(t, err)

	assert.True(t, p.SkipCollection("render_cache"))
	assert.False(t, p.SkipCollection("window_managers")) // defaults replaced
	assert.True(t, p.SkipPath("particle_systems"))
	assert.False(t, p.SkipPath("vertices"))
}

func TestParseExtendDefaults(t *testing.T) {
	p, err := Parse([]byte(`
extend_defaults: true
skip_paths:
  - particle_systems
`))
	require.NoError(t, err)

	assert.True(t, p.SkipPath("particle_systems"))
	assert.True(t, p.SkipPath("vertices"))
	assert.True(t, p.SkipCollection("window_managers"))
	assert.NotEqual(t, Default().Digest(), p.Digest())
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("skip_paths: {not: a list}"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extend_defaults: true\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Digest(), p.Digest())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
