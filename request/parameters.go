package request

import "maps"

// ParamKind identifies which variant a [Parameters] value holds.
type ParamKind int

const (
	// ParamNone is the zero value: no parameters were supplied.
	ParamNone ParamKind = iota
	// ParamBody sends parameters as a JSON payload.
	ParamBody
	// ParamQuery sends parameters as URL query items.
	ParamQuery
)

func (k ParamKind) String() string {
	switch k {
	case ParamBody:
		return "body"
	case ParamQuery:
		return "query"
	default:
		return "none"
	}
}

// Parameters holds either body parameters or query parameters, never both.
// Construct it with [BodyParams] or [QueryParams].
type Parameters struct {
	kind  ParamKind
	body  any
	query map[string]string
}

// BodyParams returns parameters that are JSON-encoded into the request payload.
// v may be a map[string]any tree or any value encoding/json can marshal.
// A nil v selects the body variant without attaching a payload.
func BodyParams(v any) Parameters {
	return Parameters{kind: ParamBody, body: v}
}

// QueryParams returns parameters that replace the URL query string.
// The map is copied.
func QueryParams(kv map[string]string) Parameters {
	return Parameters{kind: ParamQuery, query: maps.Clone(kv)}
}

// Kind reports the active variant.
func (p Parameters) Kind() ParamKind {
	return p.kind
}

// Body returns the body value and true if p is the body variant.
func (p Parameters) Body() (any, bool) {
	if p.kind != ParamBody {
		return nil, false
	}

	return p.body, true
}

// Query returns a copy of the query items and true if p is the query variant.
func (p Parameters) Query() (map[string]string, bool) {
	if p.kind != ParamQuery {
		return nil, false
	}

	return maps.Clone(p.query), true
}
