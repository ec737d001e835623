package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/network/apierror"
	"github.com/adamwoolhether/network/client/throttle"
	"github.com/adamwoolhether/network/request"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code. This prevents
// unbounded memory usage when a large response arrives with a
// wrong status.
const maxErrBodySize = 4 << 10 // 4KB

// DefaultErrorMessagePaths are the gjson paths tried when extracting a
// message from a non-2xx response body.
var DefaultErrorMessagePaths = []string{"message", "error.message", "error", "detail"}

// Doer performs a single HTTP exchange. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Executor runs a request and decodes the response body into dest.
// *Client implements it; tests may substitute a fake.
type Executor interface {
	Do(ctx context.Context, r request.Requester, dest any) error
}

// Client sends request descriptors through a [Doer] and decodes the
// responses. By default the Doer is a private copy of http.DefaultClient;
// [WithDoer] swaps in any other implementation.
type Client struct {
	c               Doer
	logger          *slog.Logger
	tracer          trace.Tracer
	requestIDHeader string
	messagePaths    []string
	useJSONNumber   bool
	validate        bool
}

// Build returns a Client configured by optFns.
func Build(optFns ...Option) (*Client, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	client := &Client{
		logger:          slog.Default(),
		tracer:          noop.NewTracerProvider().Tracer("no-op tracer"),
		requestIDHeader: opts.requestIDHeader,
		messagePaths:    DefaultErrorMessagePaths,
		useJSONNumber:   opts.useJSONNumber,
		validate:        !opts.skipValidation,
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}
	if opts.tracer != nil {
		client.tracer = opts.tracer
	}
	if opts.messagePathsSet {
		client.messagePaths = opts.messagePaths
	}

	if opts.doer != nil {
		if opts.httpClientConfigured() {
			return nil, ErrDoerConflict
		}
		client.c = opts.doer
		return client, nil
	}

	hc, err := client.httpClient(&opts)
	if err != nil {
		return nil, err
	}
	client.c = hc

	return client, nil
}

// httpClient assembles a private *http.Client from opts.
func (c *Client) httpClient(opts *options) (*http.Client, error) {
	base := http.DefaultClient
	if opts.client != nil {
		base = opts.client
	}
	hc := *base

	if opts.timeout != nil {
		hc.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return c.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	hc.Transport = transport

	return &hc, nil
}

// Do builds r, fires the request, and decodes a 2xx response body into
// dest when dest is non-nil. Every failure is an [*apierror.Error].
func (c *Client) Do(ctx context.Context, r request.Requester, dest any) error {
	d, err := r.Build()
	if err != nil {
		return toURLError(err)
	}

	if t := d.Timeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, "network.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", d.Method().String()),
			attribute.String("url.full", d.URL().String()),
		),
	)
	defer span.End()

	if err := c.exec(ctx, d, dest, span); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// exec runs the request and decodes the body after validating the status code.
func (c *Client) exec(ctx context.Context, d *request.Descriptor, dest any, span trace.Span) error {
	req, err := d.HTTPRequest(ctx)
	if err != nil {
		return toURLError(err)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	logArgs := []any{"method", req.Method, "url", req.URL.String()}
	if c.requestIDHeader != "" {
		id := req.Header.Get(c.requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			req.Header.Set(c.requestIDHeader, id)
		}
		logArgs = append(logArgs, "request_id", id)
	}

	c.logger.DebugContext(ctx, "request started", logArgs...)
	start := time.Now()

	resp, err := c.c.Do(req)
	if err != nil {
		apiErr := apierror.ClassifyTransport(err)
		c.logger.DebugContext(ctx, "request failed", append(logArgs, "error", err, "kind", apiErr.Kind.String())...)
		return apiErr
	}
	if resp == nil {
		return apierror.UnknownError("Invalid response type.")
	}

	defer func() {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			c.logger.Error("failed to discard unused body", "error", err)
		}
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.DebugContext(ctx, "request finished", append(logArgs, "status", resp.StatusCode, "took", time.Since(start).String())...)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))

		return apierror.Classify(resp.StatusCode, extractMessage(b, c.messagePaths))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierror.ClassifyTransport(fmt.Errorf("reading body: %w", err))
	}

	if dest == nil {
		return nil
	}

	return c.decode(body, dest)
}

// toURLError keeps a URL error as is and wraps anything else in one.
func toURLError(err error) *apierror.Error {
	if e, ok := apierror.As(err); ok && e.Kind == apierror.KindURL {
		return e
	}
	return apierror.URLError(err)
}

// toAPIError converts err into an *apierror.Error, keeping existing ones.
func toAPIError(err error) *apierror.Error {
	if e, ok := apierror.As(err); ok {
		return e
	}
	e := apierror.UnknownError(err.Error())
	e.Err = err
	return e
}
