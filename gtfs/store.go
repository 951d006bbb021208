package gtfs

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
)

// DirResolver maps an agency code to its extracted feed directory.
type DirResolver interface {
	AgencyDir(code string) string
}

// Store holds the current Dataset. Loads replace it atomically; reads work on
// whichever dataset was current when they started.
type Store struct {
	dirs    DirResolver
	current atomic.Pointer[Dataset]
	logger  *zap.Logger
}

// NewStore returns an empty store.
func NewStore(dirs DirResolver, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dirs:   dirs,
		logger: logger.With(zap.String("component", "schedule_store")),
	}
}

// Load parses the agency's feed and makes it current. On error the previous
// dataset stays current.
func (s *Store) Load(agencyCode string) error {
	dir := s.dirs.AgencyDir(agencyCode)
	ds, err := LoadDataset(agencyCode, dir, s.logger)
	if err != nil {
		s.logger.Warn("dataset load failed, keeping previous",
			zap.String("agency", agencyCode),
			zap.String("dir", dir),
			zap.Error(err),
		)
		return err
	}
	s.Swap(ds)
	return nil
}

// Swap installs ds as current and returns the dataset it replaced. A nil ds
// installs nothing and returns the current dataset, so a loaded store never
// goes back to empty.
func (s *Store) Swap(ds *Dataset) *Dataset {
	if ds == nil {
		return s.current.Load()
	}
	return s.current.Swap(ds)
}

// Current returns the loaded dataset.
func (s *Store) Current() (*Dataset, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, errs.ErrNoFeedLoaded
	}
	return ds, nil
}

// AgencyCode returns the code of the loaded dataset, empty when none.
func (s *Store) AgencyCode() string {
	if ds := s.current.Load(); ds != nil {
		return ds.AgencyCode
	}
	return ""
}

// NearestStop returns the closest stop with coordinates, or nil when none has any.
func (s *Store) NearestStop(lat, lon float64) (*Stop, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return ds.NearestStop(lat, lon), nil
}

// FindByName resolves a stop by exact, then partial, case-insensitive name.
func (s *Store) FindByName(query string) (*Stop, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return ds.FindByName(query), nil
}

// ListStops returns up to limit stops.
func (s *Store) ListStops(limit int) ([]Stop, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return ds.ListStops(limit), nil
}

// Stop looks a stop up by id; nil when absent.
func (s *Store) Stop(id string) (*Stop, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	st, _ := ds.StopByID(id)
	return st, nil
}

// StopTimesForStop lists the scheduled visits at a stop.
func (s *Store) StopTimesForStop(stopID string) ([]StopTime, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return ds.StopTimesForStop(stopID), nil
}

// StopTimesForTrip lists a trip's stops in sequence.
func (s *Store) StopTimesForTrip(tripID string) ([]StopTime, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return ds.StopTimesForTrip(tripID), nil
}

// ScheduledArrivals lists visits to stopID on serviceDate as absolute times.
func (s *Store) ScheduledArrivals(stopID string, serviceDate time.Time) ([]ScheduledArrival, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return ds.ScheduledArrivals(stopID, serviceDate), nil
}
