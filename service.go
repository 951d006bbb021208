package transitfusion

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fusion/config"
	"github.com/theoremus-urban-solutions/transit-fusion/errs"
	"github.com/theoremus-urban-solutions/transit-fusion/gtfs"
	"github.com/theoremus-urban-solutions/transit-fusion/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-fusion/registry"
	"github.com/theoremus-urban-solutions/transit-fusion/resolver"
)

// Service wires the feed registry, schedule store, real-time client and station
// resolver together the way the conversational layer calls them.
type Service struct {
	cfg      *config.AppConfig
	registry *registry.Registry
	store    *gtfs.Store
	resolver *resolver.Resolver
	rtHTTP   *http.Client
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService builds a Service from configuration. Agencies listed in the config
// are registered on top of the built-in table.
func NewService(cfg *config.AppConfig, logger *zap.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errs.Wrap(errs.ErrInvalidConfig, nil, "nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := registry.New(cfg.Storage.BaseDir, logger,
		registry.WithHTTPClient(&http.Client{Timeout: millis(cfg.Download.TimeoutMS)}),
	)
	for _, a := range cfg.Agencies {
		if err := reg.Register(feedConfigFrom(a)); err != nil {
			return nil, err
		}
	}

	store := gtfs.NewStore(reg, logger)
	return &Service{
		cfg:      cfg,
		registry: reg,
		store:    store,
		resolver: resolver.New(store),
		rtHTTP:   &http.Client{Timeout: millis(cfg.Realtime.TimeoutMS)},
		logger:   logger.With(zap.String("component", "service")),
		locks:    map[string]*sync.Mutex{},
	}, nil
}

func feedConfigFrom(a config.Agency) registry.FeedConfig {
	fc := registry.FeedConfig{
		Code:                a.Code,
		Name:                a.Name,
		StaticURL:           a.StaticURL,
		TripUpdatesURL:      a.TripUpdatesURL,
		VehiclePositionsURL: a.VehiclePositionsURL,
		AlertsURL:           a.ServiceAlertsURL,
		RequiresAPIKey:      a.RequiresAPIKey,
		APIKeyHeader:        a.APIKeyHeader,
	}
	if bb := a.BoundingBox; bb != nil {
		fc.BBox = &registry.BoundingBox{MinLat: bb.MinLat, MaxLat: bb.MaxLat, MinLon: bb.MinLon, MaxLon: bb.MaxLon}
	}
	return fc
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Registry exposes the agency table.
func (s *Service) Registry() *registry.Registry { return s.registry }

// Store exposes the schedule store.
func (s *Service) Store() *gtfs.Store { return s.store }

// EnsureForLocation selects the agency covering (lat, lon) and ensures its
// schedule is loaded. It returns the agency code.
func (s *Service) EnsureForLocation(ctx context.Context, lat, lon float64) (string, error) {
	code, ok := s.registry.SelectByLocation(lat, lon)
	if !ok {
		return "", errs.Wrap(errs.ErrUnknownAgency, nil, "no agency covers %.4f,%.4f", lat, lon)
	}
	return code, s.EnsureAgency(ctx, code)
}

// EnsureAgency downloads code's schedule if it is not on disk yet and makes it
// the current dataset. Loading an agency that is already current is a no-op.
func (s *Service) EnsureAgency(ctx context.Context, code string) error {
	if _, err := s.registry.Get(code); err != nil {
		return err
	}
	lock := s.agencyLock(code)
	lock.Lock()
	defer lock.Unlock()

	if !s.registry.IsDownloaded(code) {
		if err := s.download(ctx, code); err != nil {
			return err
		}
	}
	if s.store.AgencyCode() == code {
		return nil
	}
	return s.store.Load(code)
}

// Refresh re-downloads code's schedule and reloads it regardless of what is on disk.
func (s *Service) Refresh(ctx context.Context, code string) error {
	lock := s.agencyLock(code)
	lock.Lock()
	defer lock.Unlock()

	if err := s.download(ctx, code); err != nil {
		return err
	}
	return s.store.Load(code)
}

func (s *Service) agencyLock(code string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[code]
	if !ok {
		l = &sync.Mutex{}
		s.locks[code] = l
	}
	return l
}

// download retries transient failures with exponential backoff. Archive and
// configuration errors are not retried.
func (s *Service) download(ctx context.Context, code string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = millis(s.cfg.Download.InitialIntervalMS)
	b.MaxElapsedTime = 0
	attempts := max(s.cfg.Download.MaxAttempts, 1)
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)

	op := func() error {
		_, err := s.registry.DownloadAndExtract(ctx, code)
		if err != nil && !errors.Is(err, errs.ErrNetwork) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn("GTFS download failed, retrying",
			zap.String("agency", code),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	return backoff.RetryNotify(op, policy, notify)
}

// NearbyStop is a stop with its distance from the caller.
type NearbyStop struct {
	Stop           gtfs.Stop
	DistanceMeters float64
}

// NearestStop returns the loaded dataset's stop closest to (lat, lon), or nil when
// no stop has coordinates.
func (s *Service) NearestStop(lat, lon float64) (*NearbyStop, error) {
	stop, err := s.store.NearestStop(lat, lon)
	if err != nil || stop == nil {
		return nil, err
	}
	d, _ := stop.DistanceTo(lat, lon)
	return &NearbyStop{Stop: *stop, DistanceMeters: d}, nil
}

// ResolveTrip resolves an utterance against the loaded agency's station names.
func (s *Service) ResolveTrip(utterance string, caller *resolver.Coordinates) (resolver.ResolvedTrip, error) {
	ds, err := s.store.Current()
	if err != nil {
		return resolver.ResolvedTrip{}, err
	}
	return s.resolver.Resolve(utterance, vocabulary(ds), caller)
}

// vocabulary lists the distinct stop names of ds in file order.
func vocabulary(ds *gtfs.Dataset) []string {
	seen := make(map[string]bool, len(ds.Stops))
	names := make([]string, 0, len(ds.Stops))
	for _, st := range ds.Stops {
		if st.Name == "" || seen[st.Name] {
			continue
		}
		seen[st.Name] = true
		names = append(names, st.Name)
	}
	return names
}

func (s *Service) realtimeClient(feed registry.FeedConfig) *gtfsrt.Client {
	cred := s.cfg.Credential(feed.Code)
	if feed.RequiresAPIKey && cred == "" {
		s.logger.Warn("agency requires an API key but none is configured", zap.String("agency", feed.Code))
	}
	return gtfsrt.NewClient(cred,
		gtfsrt.WithHeader(feed.KeyHeader()),
		gtfsrt.WithHTTPClient(s.rtHTTP),
		gtfsrt.WithLogger(s.logger),
	)
}

// currentFeed returns the FeedConfig of the loaded dataset's agency.
func (s *Service) currentFeed() (*gtfs.Dataset, registry.FeedConfig, error) {
	ds, err := s.store.Current()
	if err != nil {
		return nil, registry.FeedConfig{}, err
	}
	feed, err := s.registry.Get(ds.AgencyCode)
	if err != nil {
		return nil, registry.FeedConfig{}, err
	}
	return ds, feed, nil
}
