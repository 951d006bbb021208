package gtfs

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
)

// Dataset is one agency's parsed schedule. It is immutable once built.
type Dataset struct {
	AgencyCode    string
	Agencies      []Agency
	Stops         []Stop
	Routes        []Route
	Trips         []Trip
	StopTimes     []StopTime
	Calendar      []Calendar
	CalendarDates []CalendarDate
	LoadedAt      time.Time

	location  *time.Location
	stopNames []string // lowercased, parallel to Stops

	stopIdx     map[string]int
	routeIdx    map[string]int
	tripIdx     map[string]int
	timesByStop map[string][]int
	timesByTrip map[string][]int
	calendarIdx map[string]int
	exceptions  map[string]map[string]int // service_id -> YYYYMMDD -> exception type
}

func newDataset(agencyCode string, raw *rawFeed) (*Dataset, error) {
	ds := &Dataset{
		AgencyCode:  agencyCode,
		LoadedAt:    time.Now(),
		location:    time.UTC,
		stopIdx:     make(map[string]int, len(raw.Stops)),
		routeIdx:    make(map[string]int, len(raw.Routes)),
		tripIdx:     make(map[string]int, len(raw.Trips)),
		timesByStop: map[string][]int{},
		timesByTrip: map[string][]int{},
		calendarIdx: make(map[string]int, len(raw.Calendar)),
		exceptions:  map[string]map[string]int{},
	}

	for _, a := range raw.Agencies {
		ds.Agencies = append(ds.Agencies, *a)
	}
	if len(ds.Agencies) > 0 && ds.Agencies[0].Timezone != "" {
		loc, err := time.LoadLocation(ds.Agencies[0].Timezone)
		if err != nil {
			return nil, errs.Wrap(errs.ErrParse, err, "agency timezone %q", ds.Agencies[0].Timezone)
		}
		ds.location = loc
	}

	ds.Stops = make([]Stop, 0, len(raw.Stops))
	ds.stopNames = make([]string, 0, len(raw.Stops))
	for _, s := range raw.Stops {
		if s.ID == "" {
			continue
		}
		if s.Lat.Valid && (s.Lat.Value < -90 || s.Lat.Value > 90) {
			return nil, errs.Wrap(errs.ErrParse, nil, "stop %s latitude %g out of range", s.ID, s.Lat.Value)
		}
		if s.Lon.Valid && (s.Lon.Value < -180 || s.Lon.Value > 180) {
			return nil, errs.Wrap(errs.ErrParse, nil, "stop %s longitude %g out of range", s.ID, s.Lon.Value)
		}
		if _, dup := ds.stopIdx[s.ID]; dup {
			return nil, errs.Wrap(errs.ErrParse, nil, "duplicate stop_id %s", s.ID)
		}
		ds.stopIdx[s.ID] = len(ds.Stops)
		ds.Stops = append(ds.Stops, *s)
		ds.stopNames = append(ds.stopNames, strings.ToLower(s.Name))
	}

	for _, r := range raw.Routes {
		ds.routeIdx[r.ID] = len(ds.Routes)
		ds.Routes = append(ds.Routes, *r)
	}
	for _, t := range raw.Trips {
		ds.tripIdx[t.ID] = len(ds.Trips)
		ds.Trips = append(ds.Trips, *t)
	}

	ds.StopTimes = make([]StopTime, 0, len(raw.StopTimes))
	for _, st := range raw.StopTimes {
		i := len(ds.StopTimes)
		ds.StopTimes = append(ds.StopTimes, *st)
		ds.timesByStop[st.StopID] = append(ds.timesByStop[st.StopID], i)
		ds.timesByTrip[st.TripID] = append(ds.timesByTrip[st.TripID], i)
	}
	for _, idx := range ds.timesByStop {
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(ds.StopTimes[a].Arrival(), ds.StopTimes[b].Arrival())
		})
	}
	for _, idx := range ds.timesByTrip {
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(ds.StopTimes[a].Sequence, ds.StopTimes[b].Sequence)
		})
	}

	for _, c := range raw.Calendar {
		ds.calendarIdx[c.ServiceID] = len(ds.Calendar)
		ds.Calendar = append(ds.Calendar, *c)
	}
	for _, cd := range raw.CalendarDates {
		ds.CalendarDates = append(ds.CalendarDates, *cd)
		m, ok := ds.exceptions[cd.ServiceID]
		if !ok {
			m = map[string]int{}
			ds.exceptions[cd.ServiceID] = m
		}
		m[cd.Date.Format(gtfsDateFormat)] = int(cd.ExceptionType)
	}
	return ds, nil
}

// Location is the agency timezone, UTC when agency.txt names none.
func (ds *Dataset) Location() *time.Location {
	return ds.location
}

// StopByID returns the stop with id.
func (ds *Dataset) StopByID(id string) (*Stop, bool) {
	i, ok := ds.stopIdx[id]
	if !ok {
		return nil, false
	}
	s := ds.Stops[i]
	return &s, true
}

// RouteByID returns the route with id.
func (ds *Dataset) RouteByID(id string) (*Route, bool) {
	i, ok := ds.routeIdx[id]
	if !ok {
		return nil, false
	}
	r := ds.Routes[i]
	return &r, true
}

// TripByID returns the trip with id.
func (ds *Dataset) TripByID(id string) (*Trip, bool) {
	i, ok := ds.tripIdx[id]
	if !ok {
		return nil, false
	}
	t := ds.Trips[i]
	return &t, true
}

// NearestStop returns the stop with the smallest squared lat/lon difference to the point.
// Stops without coordinates are ignored; nil is returned when none qualify.
func (ds *Dataset) NearestStop(lat, lon float64) *Stop {
	best := -1
	bestDist := 0.0
	for i := range ds.Stops {
		s := &ds.Stops[i]
		if !s.HasCoordinates() {
			continue
		}
		dLat := s.Lat.Value - lat
		dLon := s.Lon.Value - lon
		d := dLat*dLat + dLon*dLon
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return nil
	}
	s := ds.Stops[best]
	return &s
}

// FindByName matches query case-insensitively. An exact name match anywhere in the
// dataset wins; otherwise the first stop, in file order, whose name contains query.
func (ds *Dataset) FindByName(query string) *Stop {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	partial := -1
	for i, name := range ds.stopNames {
		if name == q {
			s := ds.Stops[i]
			return &s
		}
		if partial < 0 && strings.Contains(name, q) {
			partial = i
		}
	}
	if partial < 0 {
		return nil
	}
	s := ds.Stops[partial]
	return &s
}

// ListStops returns up to limit stops in file order.
func (ds *Dataset) ListStops(limit int) []Stop {
	n := min(max(limit, 0), len(ds.Stops))
	return slices.Clone(ds.Stops[:n])
}

// StopTimesForStop returns the stop's visits ordered by arrival time.
func (ds *Dataset) StopTimesForStop(stopID string) []StopTime {
	return ds.collect(ds.timesByStop[stopID])
}

// StopTimesForTrip returns the trip's visits ordered by stop_sequence.
func (ds *Dataset) StopTimesForTrip(tripID string) []StopTime {
	return ds.collect(ds.timesByTrip[tripID])
}

func (ds *Dataset) collect(idx []int) []StopTime {
	out := make([]StopTime, len(idx))
	for i, j := range idx {
		out[i] = ds.StopTimes[j]
	}
	return out
}

// ServiceActive reports whether serviceID runs on date. calendar_dates exceptions
// override calendar; a service named in neither file is assumed to run.
func (ds *Dataset) ServiceActive(serviceID string, date time.Time) bool {
	if m, ok := ds.exceptions[serviceID]; ok {
		switch m[date.Format(gtfsDateFormat)] {
		case ServiceAdded:
			return true
		case ServiceRemoved:
			return false
		}
	}
	if i, ok := ds.calendarIdx[serviceID]; ok {
		return ds.Calendar[i].RunsOn(date)
	}
	_, onlyExceptions := ds.exceptions[serviceID]
	return !onlyExceptions
}

// ScheduledArrival is a stop visit resolved to an absolute instant.
type ScheduledArrival struct {
	TripID    string
	StopID    string
	RouteID   string
	Headsign  string
	Arrival   time.Time
	Departure time.Time
}

// ScheduledArrivals lists visits to stopID on serviceDate (interpreted in the agency
// timezone) for trips whose service runs that day, ordered by arrival.
func (ds *Dataset) ScheduledArrivals(stopID string, serviceDate time.Time) []ScheduledArrival {
	day := serviceDate.In(ds.location)
	var out []ScheduledArrival
	for _, j := range ds.timesByStop[stopID] {
		st := ds.StopTimes[j]
		arr := st.Arrival()
		if !arr.Valid() {
			continue
		}
		sa := ScheduledArrival{
			TripID:  st.TripID,
			StopID:  st.StopID,
			Arrival: arr.On(day, ds.location),
		}
		sa.Departure = sa.Arrival
		if st.DepartureTime.Valid() {
			sa.Departure = st.DepartureTime.On(day, ds.location)
		}
		sa.Headsign = st.Headsign
		if trip, ok := ds.TripByID(st.TripID); ok {
			if trip.ServiceID != "" && !ds.ServiceActive(trip.ServiceID, day) {
				continue
			}
			sa.RouteID = trip.RouteID
			if sa.Headsign == "" {
				sa.Headsign = trip.Headsign
			}
		}
		out = append(out, sa)
	}
	return out
}
