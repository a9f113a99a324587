package expr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// marshal renders a node to its wire form for assertion.
func marshal(t *testing.T, e Expr) string {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	return string(data)
}

func TestNodeEncoding(t *testing.T) {
	t.Run("literals are raw values", func(t *testing.T) {
		assert.Equal(t, `"#FFB347"`, marshal(t, Lit{"#FFB347"}))
		assert.Equal(t, `0.75`, marshal(t, Lit{0.75}))
	})

	t.Run("array constants are wrapped", func(t *testing.T) {
		assert.Equal(t, `["literal",["TX","OK"]]`, marshal(t, ArrayLit{[]string{"TX", "OK"}}))
	})

	t.Run("get and zoom", func(t *testing.T) {
		assert.Equal(t, `["get","fullmind_category"]`, marshal(t, Get{"fullmind_category"}))
		assert.Equal(t, `["zoom"]`, marshal(t, Zoom{}))
	})

	t.Run("match interleaves labels and outputs", func(t *testing.T) {
		m := Match{
			Input: Get{"x"},
			Cases: []Case{
				{Label: "a", Output: Lit{"#111111"}},
				{Label: "b", Output: Lit{"#222222"}},
			},
			Default: Lit{"rgba(0,0,0,0)"},
		}
		assert.Equal(t,
			`["match",["get","x"],"a","#111111","b","#222222","rgba(0,0,0,0)"]`,
			marshal(t, m))
	})

	t.Run("interpolate carries the linear operator", func(t *testing.T) {
		i := Interpolate{
			Input: Zoom{},
			Stops: []Stop{{Input: 4, Output: Lit{2.5}}, {Input: 12, Output: Lit{7.0}}},
		}
		assert.Equal(t,
			`["interpolate",["linear"],["zoom"],4,2.5,12,7]`,
			marshal(t, i))
	})

	t.Run("comparisons and combinators", func(t *testing.T) {
		assert.Equal(t, `["==",["get","a"],"x"]`, marshal(t, Eq{Get{"a"}, Lit{"x"}}))
		assert.Equal(t, `["!=",["get","a"],"x"]`, marshal(t, Neq{Get{"a"}, Lit{"x"}}))
		assert.Equal(t, `["in",["get","a"],["literal",["x"]]]`,
			marshal(t, In{Get{"a"}, ArrayLit{[]string{"x"}}}))
		assert.Equal(t, `["index-of","p1",["coalesce",["get","plan_ids"],""]]`,
			marshal(t, IndexOf{Lit{"p1"}, Coalesce{[]Expr{Get{"plan_ids"}, Lit{""}}}}))
		assert.Equal(t, `["all",["==",["get","a"],"x"]]`,
			marshal(t, All{[]Expr{Eq{Get{"a"}, Lit{"x"}}}}))
	})
}
