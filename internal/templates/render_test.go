package templates

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fragmentsDir() string {
	return filepath.Join("..", "..", "web", "templates", "fragments")
}

func TestRenderFragments(t *testing.T) {
	r, err := New(fragmentsDir())
	require.NoError(t, err)

	t.Run("empty state", func(t *testing.T) {
		out, err := r.Render("empty-state", map[string]string{
			"Title": "No saved views", "Message": "Save one",
		})
		require.NoError(t, err)
		assert.Contains(t, out, "No saved views")
		assert.Contains(t, out, "Save one")
	})

	t.Run("legend section renders swatches and opacity labels", func(t *testing.T) {
		out, err := r.Render("legend-section", map[string]any{
			"LayerID": "fullmind",
			"Label":   "Plum",
			"Rows": []map[string]any{
				{"Key": "fullmind:new", "Category": "new", "Color": "#AF77C4", "Opacity": 0.75},
			},
		})
		require.NoError(t, err)
		assert.Contains(t, out, "background-color:#AF77C4")
		assert.Contains(t, out, "75%")
		assert.Contains(t, out, "fullmind:new")
	})

	t.Run("view card escapes names", func(t *testing.T) {
		out, err := r.Render("view-card", map[string]any{
			"ID": "v1", "Name": "<script>x</script>", "IsShared": true,
		})
		require.NoError(t, err)
		assert.NotContains(t, out, "<script>x")
		assert.Contains(t, out, "badge-shared")
	})

	t.Run("unknown template errors", func(t *testing.T) {
		_, err := r.Render("no-such-fragment", nil)
		assert.Error(t, err)
	})
}

func TestReload(t *testing.T) {
	r, err := New(fragmentsDir())
	require.NoError(t, err)
	require.NoError(t, r.Reload(fragmentsDir()))

	_, err = r.Render("empty-state", map[string]string{"Title": "t", "Message": "m"})
	assert.NoError(t, err)
}
