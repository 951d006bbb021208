package registry

import (
	"iter"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
)

const defaultDownloadTimeout = 2 * time.Minute

// Registry maps agency codes to their FeedConfig and owns the on-disk layout
// of downloaded schedule archives.
type Registry struct {
	mu      sync.RWMutex
	feeds   map[string]FeedConfig
	baseDir string

	client *http.Client
	logger *zap.Logger
}

// Option customizes a Registry.
type Option func(*Registry)

// WithHTTPClient sets the client used for static archive downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) {
		if c != nil {
			r.client = c
		}
	}
}

// New creates a registry rooted at baseDir and seeded with the built-in agencies.
func New(baseDir string, logger *zap.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		feeds:   make(map[string]FeedConfig, len(defaultFeeds)),
		baseDir: baseDir,
		client:  &http.Client{Timeout: defaultDownloadTimeout},
		logger:  logger.With(zap.String("component", "feed_registry")),
	}
	for _, f := range defaultFeeds {
		if f.BBox != nil {
			bb := *f.BBox
			f.BBox = &bb
		}
		r.feeds[f.Code] = f
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a feed. Codes are unique; re-registering fails with ErrDuplicateAgency.
func (r *Registry) Register(cfg FeedConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.feeds[cfg.Code]; ok {
		return errs.Wrap(errs.ErrDuplicateAgency, nil, "register %q", cfg.Code)
	}
	if cfg.BBox != nil {
		bb := *cfg.BBox
		cfg.BBox = &bb
	}
	r.feeds[cfg.Code] = cfg
	r.logger.Info("registered agency",
		zap.String("agency", cfg.Code),
		zap.String("name", cfg.Name),
	)
	return nil
}

// Get returns the FeedConfig for code.
func (r *Registry) Get(code string) (FeedConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.feeds[code]
	if !ok {
		return FeedConfig{}, errs.Wrap(errs.ErrUnknownAgency, nil, "agency %q", code)
	}
	return f, nil
}

// SelectByLocation returns the code of an agency whose bounding box contains the point.
// When boxes overlap, any containing agency may be returned.
func (r *Registry) SelectByLocation(lat, lon float64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for code, f := range r.feeds {
		if f.BBox != nil && f.BBox.Contains(lat, lon) {
			return code, true
		}
	}
	return "", false
}

// ListAgencies yields (code, name) for every registered agency in no particular order.
func (r *Registry) ListAgencies() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		r.mu.RLock()
		pairs := make([][2]string, 0, len(r.feeds))
		for code, f := range r.feeds {
			pairs = append(pairs, [2]string{code, f.Name})
		}
		r.mu.RUnlock()
		for _, p := range pairs {
			if !yield(p[0], p[1]) {
				return
			}
		}
	}
}

// AgencyDir is the directory holding code's archive and extracted files.
func (r *Registry) AgencyDir(code string) string {
	return filepath.Join(r.baseDir, code)
}

// IsDownloaded reports whether stops.txt and routes.txt exist for code.
func (r *Registry) IsDownloaded(code string) bool {
	dir := r.AgencyDir(code)
	for _, name := range []string{"stops.txt", "routes.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}
