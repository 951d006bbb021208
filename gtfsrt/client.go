package gtfsrt

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
)

// DefaultHeader carries the credential when no agency-specific header is set.
const DefaultHeader = "api_key"

// Client fetches GTFS-RT protobuf feeds over HTTP.
type Client struct {
	credential string
	header     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHeader sets the header name used to send the credential.
func WithHeader(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.header = name
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client. An empty credential sends no auth header.
func NewClient(credential string, opts ...Option) *Client {
	c := &Client{
		credential: credential,
		header:     DefaultHeader,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTripUpdates fetches and decodes a trip-updates feed.
func (c *Client) FetchTripUpdates(ctx context.Context, url string) (*TripUpdateFeed, error) {
	b, fetchedAt, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	feed, err := DecodeTripUpdates(b)
	if err != nil {
		return nil, err
	}
	feed.Header.FetchedAt = fetchedAt
	c.logFeed(url, "trip_updates", feed.Header, len(feed.Updates))
	return feed, nil
}

// FetchVehiclePositions fetches and decodes a vehicle-positions feed.
func (c *Client) FetchVehiclePositions(ctx context.Context, url string) (*VehiclePositionFeed, error) {
	b, fetchedAt, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	feed, err := DecodeVehiclePositions(b)
	if err != nil {
		return nil, err
	}
	feed.Header.FetchedAt = fetchedAt
	c.logFeed(url, "vehicle_positions", feed.Header, len(feed.Positions))
	return feed, nil
}

// FetchServiceAlerts fetches and decodes an alerts feed.
func (c *Client) FetchServiceAlerts(ctx context.Context, url string) (*ServiceAlertFeed, error) {
	b, fetchedAt, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	feed, err := DecodeServiceAlerts(b)
	if err != nil {
		return nil, err
	}
	feed.Header.FetchedAt = fetchedAt
	c.logFeed(url, "service_alerts", feed.Header, len(feed.Alerts))
	return feed, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, time.Time{}, errs.Wrap(errs.ErrNetwork, err, "create request")
	}
	if c.credential != "" {
		req.Header.Set(c.header, c.credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, time.Time{}, errs.Wrap(errs.ErrNetwork, err, "failed to fetch %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, time.Time{}, errs.Wrap(errs.ErrNetwork, nil, "HTTP %d from %s", resp.StatusCode, url)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, time.Time{}, errs.Wrap(errs.ErrNetwork, err, "read body from %s", url)
	}
	return b, time.Now(), nil
}

func (c *Client) logFeed(url, kind string, h FeedHeader, records int) {
	c.logger.Debug("decoded realtime feed",
		zap.String("fetch_id", h.FetchID.String()),
		zap.String("feed", kind),
		zap.String("url", url),
		zap.Int("entities", h.Entities),
		zap.Int("records", records),
		zap.Time("feed_timestamp", h.Timestamp),
	)
}
