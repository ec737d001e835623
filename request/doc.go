// Package request builds immutable, transport-ready HTTP request descriptors.
//
// # Building a Request
//
// Use [New] with a base URL and a path, configure it with the chainable
// setters, then call [Builder.Build]:
//
//	b, err := request.New("https://api.example.com", "/widgets")
//	if err != nil { ... }
//	d, err := b.SetMethod(request.MethodPost).
//		SetHeaders(map[string]string{"Authorization": "Bearer token"}).
//		SetParameters(request.BodyParams(map[string]any{"name": "bolt"})).
//		Build()
//
// # Parameters
//
// [Parameters] is either a JSON body ([BodyParams]) or a set of query
// items ([QueryParams]). Query items replace any query already present on
// the path. Body parameters are dropped for GET requests.
//
// # Headers
//
// Every request carries "Accept: application/json" and
// "Content-Type: application/json". Headers passed to
// [Builder.SetHeaders] are applied afterwards, key by key, so a caller
// value replaces a default with the same name.
package request
