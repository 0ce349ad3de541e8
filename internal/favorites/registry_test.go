package favorites

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkIsExclusive(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Mark(Yellow, "e1"))
	require.NoError(t, r.Mark(Red, "e1"))

	assert.False(t, r.Has(Yellow, "e1"))
	assert.True(t, r.Has(Red, "e1"))

	c, ok := r.ColorOf("e1")
	require.True(t, ok)
	assert.Equal(t, Red, c)
	assert.Equal(t, 1, r.Len())
}

func TestMarkRejectsUnknownColor(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Mark(Color("chartreuse"), "e1"))
}

func TestUnmark(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Mark(Orange, "e1"))
	r.Unmark("e1")

	_, ok := r.ColorOf("e1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles", "local.json")

	r := NewRegistry()
	require.NoError(t, r.Mark(Yellow, "e1"))
	require.NoError(t, r.Mark(Yellow, "e2"))
	require.NoError(t, r.Mark(Red, "e3"))
	require.NoError(t, r.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, loaded.Keys(Yellow))
	assert.Equal(t, []string{"e3"}, loaded.Keys(Red))
	assert.Empty(t, loaded.Keys(Orange))
}

func TestLoadMissingFile(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
}
