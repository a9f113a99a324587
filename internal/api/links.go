package api

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/view>; rel="view-state"`,
		`</api/v1/views>; rel="views"`,
		`</api/v1/style/layers>; rel="style"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/view>; rel="view-state"`,
	},
	"/api/v1/view": {
		`</api/v1/view/dirty>; rel="dirty"`,
		`</api/v1/views>; rel="views"`,
		`</api/v1/style/layers>; rel="style"`,
	},
	"/api/v1/views": {
		`</api/v1/view>; rel="view-state"`,
	},
	"/api/v1/views/{id}": {
		`</api/v1/views>; rel="collection"`,
		`</api/v1/views/{id}/load>; rel="load"`,
	},
	"/api/v1/style/layers": {
		`</api/v1/view>; rel="view-state"`,
		`</api/v1/summary>; rel="summary"`,
	},
	"/api/v1/summary": {
		`</api/v1/summary/options>; rel="options"`,
		`</api/v1/summary/bounds>; rel="bounds"`,
	},
	"/api/v1/tables": {
		`</api/v1/query>; rel="query"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}

		// Item endpoints get a self link
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		return v, nil
	}
}
