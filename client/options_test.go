package client_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adamwoolhether/network/apierror"
	"github.com/adamwoolhether/network/client"
	"github.com/adamwoolhether/network/client/throttle"
	"github.com/adamwoolhether/network/request"
)

// okServer returns a server that answers every request with an empty object.
// check, when non-nil, inspects each request first.
func okServer(t *testing.T, check func(t *testing.T, r *http.Request)) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(t, r)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
}

// getRoot executes a GET / against serverURL with c.
func getRoot(t *testing.T, c *client.Client, serverURL string) error {
	t.Helper()

	b, err := request.New(serverURL, "/")
	if err != nil {
		t.Fatalf("failed to create builder: %v", err)
	}

	_, err = client.Execute[map[string]any](t.Context(), c, b)
	return err
}

func userAgentCheck(expectedUA string) func(t *testing.T, r *http.Request) {
	return func(t *testing.T, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != expectedUA {
			t.Errorf("expected User-Agent %q, got %q", expectedUA, ua)
		}
	}
}

func TestClient_WithUserAgent(t *testing.T) {
	expectedUA := "TestUserAgent/1.0"

	ts := okServer(t, userAgentCheck(expectedUA))
	defer ts.Close()

	client, err := client.Build(client.WithUserAgent(expectedUA))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if err := getRoot(t, client, ts.URL); err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
}

func TestClient_WithTransport(t *testing.T) {
	var called bool
	custom := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return http.DefaultTransport.RoundTrip(r)
	})

	ts := okServer(t, nil)
	defer ts.Close()

	client, err := client.Build(client.WithTransport(custom))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if err := getRoot(t, client, ts.URL); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !called {
		t.Error("custom transport was not called")
	}
}

func TestClient_OptionValidation(t *testing.T) {
	testCases := map[string]struct {
		opt    client.Option
		expErr error
	}{
		"nilTransport":    {opt: client.WithTransport(nil)},
		"nilClient":       {opt: client.WithClient(nil)},
		"nilDoer":         {opt: client.WithDoer(nil)},
		"nilTracer":       {opt: client.WithTracer(nil)},
		"negativeTimeout": {opt: client.WithTimeout(-1)},
		"zeroRPS":         {opt: client.WithThrottle(0, 10), expErr: throttle.ErrMustNotBeZero},
		"zeroBurst":       {opt: client.WithThrottle(10, 0), expErr: throttle.ErrMustNotBeZero},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := client.Build(tc.opt)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.expErr != nil && !errors.Is(err, tc.expErr) {
				t.Errorf("exp err %v, got: %v", tc.expErr, err)
			}
		})
	}
}

func TestClient_WithTimeoutZero(t *testing.T) {
	// Zero means no timeout per stdlib.
	_, err := client.Build(client.WithTimeout(0))
	if err != nil {
		t.Fatalf("expected no error for zero timeout, got: %v", err)
	}
}

func TestClient_FullChainComposition(t *testing.T) {
	expectedUA := "FullChain/1.0"

	ts := okServer(t, userAgentCheck(expectedUA))
	defer ts.Close()

	var transportCalled bool
	custom := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		transportCalled = true
		return http.DefaultTransport.RoundTrip(r)
	})

	// All three options in various orders should produce the same result.
	orders := [][]client.Option{
		{client.WithTransport(custom), client.WithUserAgent(expectedUA), client.WithThrottle(100, 10)},
		{client.WithThrottle(100, 10), client.WithTransport(custom), client.WithUserAgent(expectedUA)},
		{client.WithUserAgent(expectedUA), client.WithThrottle(100, 10), client.WithTransport(custom)},
	}

	for i, opts := range orders {
		transportCalled = false

		client, err := client.Build(opts...)
		if err != nil {
			t.Fatalf("order %d: failed to create client: %v", i, err)
		}

		if err := getRoot(t, client, ts.URL); err != nil {
			t.Errorf("order %d: expected no error, got: %v", i, err)
		}
		if !transportCalled {
			t.Errorf("order %d: custom transport was not called", i)
		}
	}
}

func TestClient_WithClient(t *testing.T) {
	custom := &http.Client{Timeout: 42 * time.Second}

	ts := okServer(t, nil)
	defer ts.Close()

	client, err := client.Build(client.WithClient(custom), client.WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if err := getRoot(t, client, ts.URL); err != nil {
		t.Errorf("expected no error, got: %v", err)
	}

	// The provided client is copied, never mutated.
	if custom.Timeout != 42*time.Second {
		t.Errorf("expected provided client timeout preserved as 42s, got %v", custom.Timeout)
	}
	if custom.Transport != nil {
		t.Errorf("expected provided client transport untouched, got %T", custom.Transport)
	}
}

func TestClient_DefaultClientUntouched(t *testing.T) {
	before := *http.DefaultClient

	_, err := client.Build(client.WithTimeout(time.Second), client.WithUserAgent("ua"))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if http.DefaultClient.Timeout != before.Timeout || http.DefaultClient.Transport != before.Transport {
		t.Error("http.DefaultClient must not be modified by Build")
	}
}

func TestClient_WithClientAndWithTransport(t *testing.T) {
	// WithTransport must always win over the provided client's transport.
	var providedCalled, explicitCalled bool
	providedTransport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		providedCalled = true
		return http.DefaultTransport.RoundTrip(r)
	})
	explicitTransport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		explicitCalled = true
		return http.DefaultTransport.RoundTrip(r)
	})
	custom := &http.Client{Transport: providedTransport}

	ts := okServer(t, nil)
	defer ts.Close()

	client, err := client.Build(
		client.WithClient(custom),
		client.WithTransport(explicitTransport),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if err := getRoot(t, client, ts.URL); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if providedCalled {
		t.Error("provided client's transport should not have been called")
	}
	if !explicitCalled {
		t.Error("WithTransport's transport should have been called")
	}
}

func TestClient_WithNoFollowRedirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/redirect" {
			http.Redirect(w, r, "/target", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	testCases := map[string]struct {
		opts   []client.Option
		expErr error
	}{
		"follow":   {},
		"noFollow": {opts: []client.Option{client.WithNoFollowRedirects()}, expErr: apierror.ErrUnknown},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			c, err := client.Build(tc.opts...)
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			b, err := request.New(ts.URL, "/redirect")
			if err != nil {
				t.Fatalf("failed to create builder: %v", err)
			}

			_, err = client.Execute[map[string]any](t.Context(), c, b)
			if tc.expErr == nil {
				if err != nil {
					t.Fatalf("expected redirect to be followed, got: %v", err)
				}
				return
			}

			if !errors.Is(err, tc.expErr) {
				t.Fatalf("exp err %v, got: %v", tc.expErr, err)
			}
			if exp := "An unknown error occurred: Received unexpected status code: 302"; err.Error() != exp {
				t.Errorf("exp %q, got %q", exp, err.Error())
			}
		})
	}
}

func TestClient_WithDoerConflict(t *testing.T) {
	d := doerFunc(func(*http.Request) (*http.Response, error) { return nil, nil })

	_, err := client.Build(client.WithDoer(d), client.WithUserAgent("ua"))
	if !errors.Is(err, client.ErrDoerConflict) {
		t.Fatalf("exp ErrDoerConflict, got: %v", err)
	}
}
