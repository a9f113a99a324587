// Package expr compiles view state into declarative rendering expressions.
//
// Expressions are modeled as a small tagged-variant AST rather than raw
// []any trees so the compiler stays testable and renderer-agnostic; the
// renderer's array-encoded wire format ([operator, args...]) is produced by
// a thin JSON serialization step on each node.
package expr

import "encoding/json"

// Expr is a node in the rendering-expression tree. Every node serializes to
// the renderer's array-encoded grammar via MarshalJSON.
type Expr interface {
	json.Marshaler
}

// Lit is a scalar literal (string, number, bool). It serializes to the raw
// JSON value, which is how the renderer grammar encodes scalar constants.
type Lit struct {
	V any
}

func (e Lit) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.V)
}

// ArrayLit is an array constant. Arrays must be wrapped in a literal
// operator so the renderer does not parse them as sub-expressions.
type ArrayLit struct {
	Values []string
}

func (e ArrayLit) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{"literal", e.Values})
}

// Get reads a feature property.
type Get struct {
	Property string
}

func (e Get) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{"get", e.Property})
}

// Zoom reads the current map zoom level.
type Zoom struct{}

func (e Zoom) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{"zoom"})
}

// Case is one label/output branch of a Match.
type Case struct {
	Label  string
	Output Expr
}

// Match selects an output by comparing its input against case labels,
// producing Default when nothing matches.
type Match struct {
	Input   Expr
	Cases   []Case
	Default Expr
}

func (e Match) MarshalJSON() ([]byte, error) {
	parts := make([]any, 0, 2*len(e.Cases)+3)
	parts = append(parts, "match", e.Input)
	for _, c := range e.Cases {
		parts = append(parts, c.Label, c.Output)
	}
	parts = append(parts, e.Default)
	return json.Marshal(parts)
}

// All is a logical AND over its conditions.
type All struct {
	Conds []Expr
}

func (e All) MarshalJSON() ([]byte, error) {
	parts := make([]any, 0, len(e.Conds)+1)
	parts = append(parts, "all")
	for _, c := range e.Conds {
		parts = append(parts, c)
	}
	return json.Marshal(parts)
}

// Eq is an equality comparison.
type Eq struct {
	Left, Right Expr
}

func (e Eq) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{"==", e.Left, e.Right})
}

// Neq is an inequality comparison.
type Neq struct {
	Left, Right Expr
}

func (e Neq) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{"!=", e.Left, e.Right})
}

// In tests membership of Needle in Haystack.
type In struct {
	Needle, Haystack Expr
}

func (e In) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{"in", e.Needle, e.Haystack})
}

// IndexOf finds the first occurrence of Needle in Haystack, -1 if absent.
type IndexOf struct {
	Needle, Haystack Expr
}

func (e IndexOf) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{"index-of", e.Needle, e.Haystack})
}

// Coalesce returns the first non-null argument.
type Coalesce struct {
	Args []Expr
}

func (e Coalesce) MarshalJSON() ([]byte, error) {
	parts := make([]any, 0, len(e.Args)+1)
	parts = append(parts, "coalesce")
	for _, a := range e.Args {
		parts = append(parts, a)
	}
	return json.Marshal(parts)
}

// Stop is one input/output pair of an Interpolate.
type Stop struct {
	Input  float64
	Output Expr
}

// Interpolate produces a linear interpolation over its input.
type Interpolate struct {
	Input Expr
	Stops []Stop
}

func (e Interpolate) MarshalJSON() ([]byte, error) {
	parts := make([]any, 0, 2*len(e.Stops)+3)
	parts = append(parts, "interpolate", []any{"linear"}, e.Input)
	for _, s := range e.Stops {
		parts = append(parts, s.Input, s.Output)
	}
	return json.Marshal(parts)
}
