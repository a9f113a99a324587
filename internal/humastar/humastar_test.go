package humastar

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullmind/atlas/internal/templates"
)

func TestParseSignals(t *testing.T) {
	signals, err := ParseSignals([]byte(`{
		"vendor": "fullmind",
		"fiscalyear": 2027,
		"opacity": 0.75,
		"viewshared": true,
		"engagements": ["new", "renewal_pipeline", 7]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "fullmind", signals.String("vendor"))
	assert.Equal(t, 2027, signals.Int("fiscalyear"))
	assert.Equal(t, 0.75, signals.Float("opacity"))
	assert.True(t, signals.Bool("viewshared"))
	// non-string list members are skipped, not coerced
	assert.Equal(t, []string{"new", "renewal_pipeline"}, signals.Strings("engagements"))

	t.Run("missing keys yield zero values", func(t *testing.T) {
		assert.Equal(t, "", signals.String("nope"))
		assert.Equal(t, 0, signals.Int("nope"))
		assert.Equal(t, 0.0, signals.Float("nope"))
		assert.False(t, signals.Bool("nope"))
		assert.Nil(t, signals.Strings("nope"))
		assert.False(t, signals.Has("nope"))
		assert.True(t, signals.Has("opacity"))
	})

	t.Run("mistyped values yield zero values", func(t *testing.T) {
		assert.Equal(t, "", signals.String("fiscalyear"))
		assert.Equal(t, 0, signals.Int("vendor"))
		assert.Nil(t, signals.Strings("vendor"))
	})

	t.Run("malformed body errors", func(t *testing.T) {
		_, err := ParseSignals([]byte(`{nope`))
		assert.Error(t, err)
	})
}

func TestMustParse(t *testing.T) {
	in := &SignalsInput{RawBody: []byte(`{"vendor":"tbt"}`)}
	signals, err := in.MustParse()
	require.NoError(t, err)
	assert.Equal(t, "tbt", signals.String("vendor"))

	in = &SignalsInput{RawBody: []byte(`not json`)}
	_, err = in.MustParse()
	assert.Error(t, err)
}

func TestRenderList(t *testing.T) {
	renderer, err := templates.New(filepath.Join("..", "..", "web", "templates", "fragments"))
	require.NoError(t, err)
	h := Handler{Renderer: renderer}

	t.Run("no items renders the empty state", func(t *testing.T) {
		out := h.RenderList("view-card", nil, "No saved views", "Save one")
		assert.Contains(t, out, "No saved views")
		assert.Contains(t, out, "Save one")
	})

	t.Run("items render one fragment each", func(t *testing.T) {
		out := h.RenderList("view-card", []any{
			map[string]any{"ID": "v1", "Name": "Territory A", "IsShared": false},
			map[string]any{"ID": "v2", "Name": "Territory B", "IsShared": true},
		}, "", "")
		assert.Contains(t, out, "Territory A")
		assert.Contains(t, out, "Territory B")
		assert.Contains(t, out, `id="view-v2"`)
	})
}
