package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/adamwoolhether/network/apierror"
)

// Descriptor is a fully configured request. It is never mutated after
// [Builder.Build] returns it; accessors hand out copies.
type Descriptor struct {
	url     *url.URL
	method  Method
	header  http.Header
	body    []byte
	timeout time.Duration
}

// Build returns d itself, letting a Descriptor be used wherever a
// [Requester] is accepted.
func (d *Descriptor) Build() (*Descriptor, error) {
	return d, nil
}

// URL returns a copy of the composed URL.
func (d *Descriptor) URL() *url.URL {
	cpy := *d.url
	return &cpy
}

func (d *Descriptor) Method() Method {
	return d.method
}

// Header returns a copy of the merged headers.
func (d *Descriptor) Header() http.Header {
	return d.header.Clone()
}

// Body returns a copy of the JSON payload, or nil when there is none.
func (d *Descriptor) Body() []byte {
	return slices.Clone(d.body)
}

// Timeout returns the bound for the whole exchange; zero means none.
func (d *Descriptor) Timeout() time.Duration {
	return d.timeout
}

// HTTPRequest creates a new transport request for d bound to ctx.
// Each call returns an independent *http.Request.
func (d *Descriptor) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if d.body != nil {
		body = bytes.NewReader(d.body)
	}

	req, err := http.NewRequestWithContext(ctx, string(d.method), d.url.String(), body)
	if err != nil {
		return nil, apierror.URLError(fmt.Errorf("instantiating request: %w", err))
	}
	req.Header = d.header.Clone()

	return req, nil
}
