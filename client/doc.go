// Package client executes request descriptors and decodes JSON responses.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//	)
//
// # Making Requests
//
// Describe the request with the request package, then run it with
// [Execute], which blocks and returns the decoded value:
//
//	b, err := request.New("https://api.example.com", "/widgets/1")
//	w, err := client.Execute[Widget](ctx, c, b)
//
// or with [Publish], which delivers the value and a completion signal,
// or a single error, to callbacks on another goroutine:
//
//	sub := client.Publish[Widget](ctx, c, b).Sink(
//		func(w Widget) { ... },
//		func(err error) { ... },
//	)
//	defer sub.Cancel()
//
// # Errors
//
// Every failure is an [*apierror.Error]. Statuses outside 200-299 are
// classified by [apierror.Classify], with the message taken from the
// response body when one of [DefaultErrorMessagePaths] matches. Bodies
// that do not decode, or whose decoded structs fail their `validate`
// tags, produce [apierror.ErrDecoding].
//
// # Transports
//
// The default transport is a private copy of [http.DefaultClient].
// [WithThrottle] adds the token bucket from
// [github.com/adamwoolhether/network/client/throttle], and [WithDoer]
// swaps the client for any [Doer], such as
// [github.com/adamwoolhether/network/client/transport.Resty].
package client
