// Package network builds JSON requests, executes them, and maps every
// failure to a small closed error taxonomy.
//
// The work is split across three packages:
//
//   - [github.com/adamwoolhether/network/request] builds immutable descriptors.
//   - [github.com/adamwoolhether/network/client] executes them.
//   - [github.com/adamwoolhether/network/apierror] defines the errors.
package network

import (
	"github.com/adamwoolhether/network/client"
)

// NewClient instantiates a new *Client with the provided options.
// If not specified, a copy of http.DefaultClient and http.DefaultTransport are used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}
