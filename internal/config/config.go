package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"

	"github.com/nao1215/wikicorpus/internal/crawler"
	"github.com/nao1215/wikicorpus/internal/retry"
	"github.com/nao1215/wikicorpus/internal/wiki"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "wikicorpus"

	// DefaultLanguage is the Wikipedia edition crawled when none is given.
	DefaultLanguage = "ru"

	// DefaultBatchSize is the number of titles fetched concurrently.
	DefaultBatchSize = crawler.DefaultBatchSize

	// DefaultPacingInterval is the minimum spacing between batch starts.
	// The public API tolerates one burst of requests every 15 seconds.
	DefaultPacingInterval = crawler.DefaultPacingInterval

	// DefaultTimeout bounds every single API request.
	DefaultTimeout = wiki.DefaultTimeout

	// DefaultRetryMaxInterval caps the backoff wait when backoff is enabled.
	DefaultRetryMaxInterval = time.Minute

	// DefaultUserAgent identifies the crawler in API requests.
	DefaultUserAgent = wiki.DefaultUserAgent

	// DefaultMaxBodySize limits the size of one API response.
	DefaultMaxBodySize = wiki.DefaultMaxBodySize
)

// Config holds all configuration options of a crawl run.
type Config struct {
	// Category is the root category title, e.g. "Категория:Статьи".
	Category string

	// TitlesFile, CorpusFile and StatsFile are the output artifact paths.
	TitlesFile string
	CorpusFile string
	StatsFile  string

	// Language selects the Wikipedia edition. Ignored when APIURL is set.
	Language string

	// APIURL is an explicit api.php endpoint.
	APIURL string

	// BatchSize is the number of titles fetched together.
	BatchSize int

	// PacingInterval is the minimum spacing between batch starts. Zero
	// disables pacing.
	PacingInterval time.Duration

	// MaxInFlight caps concurrent requests inside a batch. 0 means one
	// request per title.
	MaxInFlight int

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// RetryInitialInterval is the first backoff wait. 0 retries immediately.
	RetryInitialInterval time.Duration

	// RetryMaxInterval caps the backoff wait.
	RetryMaxInterval time.Duration

	// RetryMaxAttempts caps attempts per operation. 0 retries forever.
	RetryMaxAttempts uint64

	// UserAgent is sent with every request.
	UserAgent string

	// Token is an optional OAuth bearer token.
	Token string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64

	// StoreDir is the directory of the title and category stores.
	// Defaults to the XDG data directory (~/.local/share/wikicorpus on Linux).
	StoreDir string

	// ReportFile is an optional path for a Markdown run summary.
	ReportFile string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit configuration file path.
	ConfigFilePath string

	// FromTitles skips the traversal and fetches the titles already listed
	// in TitlesFile.
	FromTitles bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Language:         DefaultLanguage,
		BatchSize:        DefaultBatchSize,
		PacingInterval:   DefaultPacingInterval,
		Timeout:          DefaultTimeout,
		RetryMaxInterval: DefaultRetryMaxInterval,
		UserAgent:        DefaultUserAgent,
		MaxBodySize:      DefaultMaxBodySize,
		StoreDir:         XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory of the application.
// On Linux: ~/.local/share/wikicorpus
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory of the application.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Category == "" {
		return ErrNoCategory
	}
	if c.TitlesFile == "" || c.CorpusFile == "" || c.StatsFile == "" {
		return ErrNoOutput
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.PacingInterval < 0 {
		return ErrInvalidPacingInterval
	}
	if c.MaxInFlight < 0 {
		return ErrInvalidMaxInFlight
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.RetryInitialInterval < 0 || c.RetryMaxInterval < 0 {
		return ErrInvalidRetryInterval
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.APIURL == "" {
		if _, err := language.Parse(c.Language); err != nil {
			return ErrInvalidLanguage
		}
	}
	if c.ProxyAddress != "" && !wiki.IsValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}
	if c.StoreDir == "" {
		return ErrNoStoreDir
	}
	return nil
}

// Endpoint returns the API endpoint to crawl: APIURL when set, otherwise the
// endpoint of the configured language edition.
func (c *Config) Endpoint() (string, error) {
	if c.APIURL != "" {
		return c.APIURL, nil
	}
	return wiki.APIURLForLanguage(c.Language)
}

// RetryPolicy returns the retry policy shared by all retried operations.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:     c.RetryMaxAttempts,
		InitialInterval: c.RetryInitialInterval,
		MaxInterval:     c.RetryMaxInterval,
	}
}
