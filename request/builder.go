package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/adamwoolhether/network/apierror"
)

// DefaultTimeout bounds a request when the builder does not set one.
const DefaultTimeout = 50 * time.Second

const contentTypeJSON = "application/json"

var (
	// ErrNotAbsolute is wrapped when a base URL lacks a scheme or host.
	ErrNotAbsolute = errors.New("base url must be absolute")
	// ErrInvalidMethod is wrapped when the method is not a supported verb.
	ErrInvalidMethod = errors.New("unsupported method")
)

// Requester produces an immutable [Descriptor]. Both [*Builder] and
// [*Descriptor] satisfy it.
type Requester interface {
	Build() (*Descriptor, error)
}

// Builder accumulates request settings. A Builder is owned by one caller
// and must not be mutated concurrently.
type Builder struct {
	baseURL    *url.URL
	path       string
	method     Method
	headers    map[string]string
	parameters Parameters
	timeout    time.Duration
}

// New returns a Builder for baseURL and path. It fails with an
// [apierror.KindURL] error when baseURL is not an absolute URI.
func New(baseURL, path string) (*Builder, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, apierror.URLError(fmt.Errorf("parsing base url: %w", err))
	}

	return NewFromURL(u, path)
}

// NewFromURL is like [New] for an already parsed base URL. The URL is copied.
func NewFromURL(baseURL *url.URL, path string) (*Builder, error) {
	if baseURL == nil || !baseURL.IsAbs() || baseURL.Host == "" {
		return nil, apierror.URLError(fmt.Errorf("%w: %v", ErrNotAbsolute, baseURL))
	}

	cpy := *baseURL

	return &Builder{
		baseURL: &cpy,
		path:    path,
		method:  MethodGet,
		timeout: DefaultTimeout,
	}, nil
}

// SetMethod sets the HTTP verb.
func (b *Builder) SetMethod(m Method) *Builder {
	b.method = m
	return b
}

// SetPath replaces the path appended to the base URL.
func (b *Builder) SetPath(p string) *Builder {
	b.path = p
	return b
}

// SetHeaders replaces the caller headers. A nil map clears them.
func (b *Builder) SetHeaders(h map[string]string) *Builder {
	b.headers = maps.Clone(h)
	return b
}

// SetParameters replaces the request parameters.
func (b *Builder) SetParameters(p Parameters) *Builder {
	b.parameters = p
	return b
}

// SetTimeout bounds the whole exchange. Zero or negative disables the bound.
func (b *Builder) SetTimeout(d time.Duration) *Builder {
	b.timeout = d
	return b
}

// Build composes the URL, body and headers into a [Descriptor].
// Any failure is an [apierror.KindURL] error wrapping the cause.
func (b *Builder) Build() (*Descriptor, error) {
	u, err := b.composeURL()
	if err != nil {
		return nil, apierror.URLError(err)
	}

	if !b.method.Valid() {
		return nil, apierror.URLError(fmt.Errorf("%w: %q", ErrInvalidMethod, b.method))
	}

	var body []byte
	if v, ok := b.parameters.Body(); ok && b.method != MethodGet && !isNil(v) {
		body, err = json.Marshal(v)
		if err != nil {
			return nil, apierror.URLError(fmt.Errorf("encoding body parameters: %w", err))
		}
	}

	header := make(http.Header, 2+len(b.headers))
	header.Set("Accept", contentTypeJSON)
	header.Set("Content-Type", contentTypeJSON)
	// Keys that canonicalize alike resolve in sorted order, so the
	// lexically greatest spelling wins.
	for _, k := range slices.Sorted(maps.Keys(b.headers)) {
		header.Set(k, b.headers[k])
	}

	return &Descriptor{
		url:     u,
		method:  b.method,
		header:  header,
		body:    body,
		timeout: b.timeout,
	}, nil
}

// composeURL joins the base URL with the normalized path and applies
// query parameters.
func (b *Builder) composeURL() (*url.URL, error) {
	p, rawQuery, hasQuery := strings.Cut(b.path, "?")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	u := *b.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + p
	u.RawPath = ""

	if hasQuery {
		if _, err := url.ParseQuery(rawQuery); err != nil {
			return nil, fmt.Errorf("parsing path query: %w", err)
		}
		u.RawQuery = rawQuery
	}

	if kv, ok := b.parameters.Query(); ok && kv != nil {
		q := make(url.Values, len(kv))
		for k, v := range kv {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	if _, err := url.Parse(u.String()); err != nil {
		return nil, fmt.Errorf("composing url: %w", err)
	}

	return &u, nil
}

// isNil reports whether v is nil or a nil map, slice or pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}

	return false
}
