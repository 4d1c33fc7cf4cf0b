package beets

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config holds client configuration.
type Config struct {
	BaseURL    string       // Required: root of the beets web API, e.g. http://localhost:8337
	HTTPClient *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	MaxRetries int          // Optional: attempts for temporary failures (defaults to 3)
	Logger     Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for beets web API operations.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	logger         Logger

	items  *ItemService
	albums *AlbumService
}

const (
	// DefaultMaxRetries is the number of attempts made for temporary failures.
	DefaultMaxRetries = 3

	defaultBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

// NewClient creates a new beets web API client.
//
// Returns an error if BaseURL is missing.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: BaseURL is required", ErrInvalidConfig)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	c := &Client{
		baseURL:        baseURL,
		httpClient:     httpClient,
		maxRetries:     maxRetries,
		initialBackoff: defaultBackoff,
		logger:         cfg.Logger,
	}

	c.items = &ItemService{client: c}
	c.albums = &AlbumService{client: c}

	return c, nil
}

// Items returns the item service.
func (c *Client) Items() *ItemService {
	return c.items
}

// Albums returns the album service.
func (c *Client) Albums() *AlbumService {
	return c.albums
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// resolve joins path onto the API root.
func (c *Client) resolve(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
