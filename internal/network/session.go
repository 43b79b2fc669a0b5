package network

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/url"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultRetryCount is the number of retries after the initial attempt.
const DefaultRetryCount = 3

const defaultTimeout = 30 * time.Second

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0",
}

// Doer is the transport surface the session drives. tls_client.HttpClient
// satisfies it.
type Doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// RequestError is the terminal failure of a resilient request. Status
// is zero when no response was received at all.
type RequestError struct {
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed with no response: %v", e.Err)
	}
	return fmt.Sprintf("request failed: http %d", e.Status)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient: no response at
// all, throttling, or a server-side error. Any other non-2xx status is
// terminal.
func (e *RequestError) Retryable() bool {
	return e.Status == 0 || e.Status == 429 || e.Status >= 500
}

// SessionOptions configure a Session.
type SessionOptions struct {
	// Proxies are egress proxy URLs rotated across attempts. Empty
	// means direct connections.
	Proxies []string

	// Timeout applies per transport call. Defaults to 30 seconds.
	Timeout time.Duration

	// RetryCount is the number of retries after the first attempt.
	// Zero means DefaultRetryCount; a negative value disables retries.
	RetryCount int

	// BackoffUnit scales the exponential backoff (unit << attempt).
	// Defaults to one second.
	BackoffUnit time.Duration

	// RequestsPerSecond enables a client-side throttle when positive.
	RequestsPerSecond float64

	// Transport overrides the built-in TLS transport for every
	// rotation slot. Mainly useful for callers that bring their own
	// HTTP stack.
	Transport Doer

	Logger zerolog.Logger
}

// Session issues HTTP requests that survive transient failures. Every
// attempt takes the next slot from the shared proxy rotation; retryable
// failures back off exponentially before the next attempt.
type Session struct {
	rotator     *Rotator
	clients     []Doer
	retryCount  int
	backoffUnit time.Duration
	limiter     *rate.Limiter
	logger      zerolog.Logger
}

// NewSession builds a session with one transport per rotation slot, so
// concurrent attempts never race over a shared proxy setting.
func NewSession(opts SessionOptions) (*Session, error) {
	rotator, err := NewRotator(opts.Proxies)
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryCount == 0 {
		opts.RetryCount = DefaultRetryCount
	}
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	}
	if opts.BackoffUnit <= 0 {
		opts.BackoffUnit = time.Second
	}

	clients := make([]Doer, rotator.Len())
	for idx := range clients {
		if opts.Transport != nil {
			clients[idx] = opts.Transport
			continue
		}
		client, err := newTransport(opts.Timeout, rotator.Proxy(idx))
		if err != nil {
			return nil, err
		}
		clients[idx] = client
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Session{
		rotator:     rotator,
		clients:     clients,
		retryCount:  opts.RetryCount,
		backoffUnit: opts.BackoffUnit,
		limiter:     limiter,
		logger:      opts.Logger,
	}, nil
}

func newTransport(timeout time.Duration, proxy *url.URL) (tls_client.HttpClient, error) {
	jar, _ := fhttpcookiejar.New(nil)

	options := []tls_client.HttpClientOption{
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(int(timeout.Seconds())),
		tls_client.WithCookieJar(jar),
	}
	if proxy != nil {
		options = append(options, tls_client.WithProxyUrl(proxy.String()))
	}

	return tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
}

// Get executes a GET request through the retry loop.
func (s *Session) Get(ctx context.Context, target string, params url.Values, headers map[string]string) ([]byte, error) {
	return s.Do(ctx, fhttp.MethodGet, target, params, headers)
}

// Do executes the request until it succeeds, the failure is classified
// terminal, or the retry budget runs out. The returned error is a
// *RequestError carrying the last status, zero when no response was
// ever received.
func (s *Session) Do(ctx context.Context, method string, target string, params url.Values, headers map[string]string) ([]byte, error) {
	var lastErr *RequestError

	for attempt := 0; attempt <= s.retryCount; attempt++ {
		idx, proxy := s.rotator.Next()

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		body, status, err := s.attempt(ctx, s.clients[idx], method, target, params, headers)
		if err == nil && status >= 200 && status < 300 {
			return body, nil
		}

		lastErr = &RequestError{Status: status, Err: err}
		if !lastErr.Retryable() {
			return nil, lastErr
		}

		s.logger.Debug().
			Str("method", method).
			Str("url", target).
			Str("proxy", proxyLabel(proxy)).
			Int("attempt", attempt).
			Int("status", status).
			Err(err).
			Msg("request attempt failed")

		if attempt == s.retryCount {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.backoffUnit << attempt):
		}
	}

	return nil, lastErr
}

func (s *Session) attempt(ctx context.Context, client Doer, method string, target string, params url.Values, headers map[string]string) ([]byte, int, error) {
	req, err := fhttp.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, 0, err
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	applyHeaders(req, headers)

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// Close releases idle transport connections.
func (s *Session) Close() {
	for _, client := range s.clients {
		if c, ok := client.(interface{ CloseIdleConnections() }); ok {
			c.CloseIdleConnections()
		}
	}
}

func applyHeaders(req *fhttp.Request, headers map[string]string) {
	if headers == nil {
		headers = map[string]string{}
	}
	if _, ok := headers["accept"]; !ok {
		headers["accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
	if _, ok := headers["accept-language"]; !ok {
		headers["accept-language"] = "en-US,en;q=0.9"
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])
	}
}

func proxyLabel(proxy *url.URL) string {
	if proxy == nil {
		return "direct"
	}
	return proxy.Host
}
