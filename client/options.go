package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/network/client/throttle"
)

// ErrDoerConflict is returned by [Build] when [WithDoer] is combined with
// options that configure the default *http.Client.
var ErrDoerConflict = errors.New("doer cannot be combined with http client options")

// DefaultRequestIDHeader is the header [WithRequestID] uses when given "".
const DefaultRequestIDHeader = "X-Request-ID"

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	doer              Doer
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	tracer            trace.Tracer
	requestIDHeader   string
	messagePaths      []string
	messagePathsSet   bool
	useJSONNumber     bool
	skipValidation    bool
}

// httpClientConfigured reports whether any option targets the *http.Client.
func (o *options) httpClientConfigured() bool {
	return o.client != nil || o.rt != nil || o.timeout != nil ||
		o.userAgent != "" || o.throttle != nil || o.noFollowRedirects
}

// WithClient replaces the default [http.Client] used by the [Client].
// The given client is copied; later changes to it have no effect.
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithDoer replaces the *http.Client entirely, for example with
// [github.com/adamwoolhether/network/client/transport.Resty].
func WithDoer(d Doer) Option {
	return func(c *options) error {
		if d == nil {
			return errors.New("doer must not be nil")
		}
		c.doer = d
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
// Descriptors carry their own timeout as well; the shorter one wins.
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
// A redirect status is then classified like any other non-2xx status.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithTracer injects the tracer used to record a client span per request.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// WithRequestID sets a random UUID on header for every request that does
// not already carry one. An empty header selects [DefaultRequestIDHeader].
func WithRequestID(header string) Option {
	return func(c *options) error {
		if header == "" {
			header = DefaultRequestIDHeader
		}
		c.requestIDHeader = http.CanonicalHeaderKey(header)
		return nil
	}
}

// WithErrorMessagePaths sets the gjson paths tried, in order, to extract
// a message from a non-2xx response body. Passing no paths disables
// extraction, so classified errors carry the default messages.
func WithErrorMessagePaths(paths ...string) Option {
	return func(c *options) error {
		c.messagePaths = paths
		c.messagePathsSet = true
		return nil
	}
}

// WithJSONNumber tells the JSON decoder to use [json.Decoder.UseNumber],
// preserving number precision as [json.Number] instead of float64.
func WithJSONNumber() Option {
	return func(c *options) error {
		c.useJSONNumber = true
		return nil
	}
}

// WithoutValidation skips `validate` struct tag checks on decoded values.
func WithoutValidation() Option {
	return func(c *options) error {
		c.skipValidation = true
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}
