package wiki

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/text/language"
)

const (
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent identifies the crawler to the API operators.
	DefaultUserAgent = "wikicorpus/1.0 (+https://github.com/nao1215/wikicorpus)"

	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize = 64 << 20
)

// Client talks to one MediaWiki API endpoint.
type Client struct {
	// apiURL is the api.php endpoint.
	apiURL *url.URL

	// httpClient performs the requests. It is built in NewClient unless
	// supplied with WithHTTPClient.
	httpClient *http.Client

	// timeout bounds every request, including reading the body.
	timeout time.Duration

	// userAgent is sent with every request.
	userAgent string

	// token is an optional OAuth bearer token.
	token string

	// proxyAddress is an optional SOCKS5 proxy in "host:port" format.
	proxyAddress string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithToken sets an OAuth bearer token sent in the Authorization header.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithProxy routes all requests through a SOCKS5 proxy at address.
func WithProxy(address string) ClientOption {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithHTTPClient uses the given client instead of building one.
// Timeout and proxy options are ignored in that case.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the api.php endpoint at apiURL.
// It validates its arguments but does not contact the server.
func NewClient(apiURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(apiURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAPIURL, apiURL)
	}

	c := &Client{
		apiURL:      u,
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
		// A batch issues one request per title at once; keep them on
		// reusable connections instead of the default two idle per host.
		transport.MaxIdleConnsPerHost = 64

		if c.proxyAddress != "" {
			if !IsValidProxyAddress(c.proxyAddress) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, c.proxyAddress)
			}
			dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
			}
			cd, ok := dialer.(proxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("SOCKS5 dialer for %s does not support contexts", c.proxyAddress)
			}
			transport.Proxy = nil
			transport.DialContext = cd.DialContext
		}

		c.httpClient = &http.Client{
			Transport: transport,
			Timeout:   c.timeout,
		}
	}

	return c, nil
}

// APIURL returns the endpoint the client talks to.
func (c *Client) APIURL() string {
	return c.apiURL.String()
}

// APIURLForLanguage returns the api.php endpoint of the Wikipedia edition
// for the given language code.
func APIURLForLanguage(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidLanguage, code, err)
	}
	base, _ := tag.Base()
	return "https://" + base.String() + ".wikipedia.org/w/api.php", nil
}

// IsValidProxyAddress checks if the address is in valid "host:port" format.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// get performs one GET request against the endpoint and returns the body of
// a 200 response.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	u := *c.apiURL
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"url", u.String(),
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBodySize)) //nolint:errcheck // best effort
		return nil, newStatusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
