// Package transport holds alternate [client.Doer] implementations.
package transport

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Resty adapts a resty.Client to the client.Doer contract. The response
// body is left unread so the caller decodes it.
type Resty struct {
	client *resty.Client
}

// NewResty returns a Resty with a fresh resty.Client bounded by timeout.
// A zero timeout leaves the exchange unbounded.
func NewResty(timeout time.Duration) *Resty {
	c := resty.New()
	c.SetTimeout(timeout)
	return &Resty{client: c}
}

// NewRestyFromClient wraps an existing resty.Client.
func NewRestyFromClient(c *resty.Client) *Resty {
	return &Resty{client: c}
}

// Do sends req through resty and returns the raw *http.Response.
func (r *Resty) Do(req *http.Request) (*http.Response, error) {
	rr := r.client.R().
		SetContext(req.Context()).
		SetHeaderMultiValues(req.Header).
		SetDoNotParseResponse(true)

	if req.Body != nil && req.Body != http.NoBody {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		if err := req.Body.Close(); err != nil {
			return nil, fmt.Errorf("closing request body: %w", err)
		}
		rr.SetBody(b)
	}

	resp, err := rr.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}

	return resp.RawResponse, nil
}
