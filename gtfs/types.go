package gtfs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const gtfsDateFormat = "20060102"

var (
	// ErrInvalidBoolField is returned if a boolean field has invalid data
	ErrInvalidBoolField = errors.New("invalid boolean field supplied")
	// ErrInvalidTime is returned for stop times not in H:MM:SS form
	ErrInvalidTime = errors.New("invalid GTFS time")
)

// CSVBool is a CSV boolean encoded as 0/1.
type CSVBool bool

// UnmarshalCSV parses 0, 1 or empty (false).
func (b *CSVBool) UnmarshalCSV(csv string) error {
	csv = strings.TrimSpace(csv)
	switch csv {
	case "", "0":
		*b = false
	case "1":
		*b = true
	default:
		return ErrInvalidBoolField
	}
	return nil
}

// CSVInt is an integer column where empty means zero.
type CSVInt int

// UnmarshalCSV parses a base-10 integer.
func (i *CSVInt) UnmarshalCSV(csv string) error {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		*i = 0
		return nil
	}
	val, err := strconv.ParseInt(csv, 10, 32)
	if err != nil {
		return err
	}
	*i = CSVInt(val)
	return nil
}

// CSVDate is a GTFS YYYYMMDD date.
type CSVDate struct {
	time.Time
}

// MarshalCSV formats the date as YYYYMMDD.
func (d CSVDate) MarshalCSV() (string, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(gtfsDateFormat), nil
}

// UnmarshalCSV parses YYYYMMDD; empty leaves the zero time.
func (d *CSVDate) UnmarshalCSV(csv string) (err error) {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		d.Time = time.Time{}
		return nil
	}
	d.Time, err = time.Parse(gtfsDateFormat, csv)
	return err
}

// OptionalFloat is a float column that may be left blank.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// MarshalCSV formats the value, or empty when absent.
func (f OptionalFloat) MarshalCSV() (string, error) {
	if !f.Valid {
		return "", nil
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64), nil
}

// UnmarshalCSV parses a float; empty marks the value as absent.
func (f *OptionalFloat) UnmarshalCSV(csv string) error {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		*f = OptionalFloat{}
		return nil
	}
	val, err := strconv.ParseFloat(csv, 64)
	if err != nil {
		return err
	}
	*f = OptionalFloat{Value: val, Valid: true}
	return nil
}

// Time is a GTFS stop time in seconds past the start of the service day.
// Values past 24h are legal. NoTime marks an absent value.
type Time int32

// NoTime is the value of an empty arrival or departure column.
const NoTime Time = -1

// maxHours keeps a parsed time inside Time's range. Real feeds stay below 48.
const maxHours = 9999

// ParseTime parses H:MM:SS or HH:MM:SS with hours up to maxHours.
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoTime, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return NoTime, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	var hms [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || (i == 0 && v > maxHours) || (i > 0 && (v > 59 || len(p) != 2)) {
			return NoTime, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		hms[i] = v
	}
	return Time(hms[0]*3600 + hms[1]*60 + hms[2]), nil
}

// UnmarshalCSV implements gocsv's TypeUnmarshaller.
func (t *Time) UnmarshalCSV(csv string) error {
	v, err := ParseTime(csv)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Valid reports whether the time was present in the feed.
func (t Time) Valid() bool { return t >= 0 }

// On returns the absolute instant of t on serviceDate in loc.
// Service day offsets are measured from noon minus twelve hours so DST days come out right.
func (t Time) On(serviceDate time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := serviceDate.Date()
	noon := time.Date(y, m, d, 12, 0, 0, 0, loc)
	return noon.Add(-12 * time.Hour).Add(time.Duration(t) * time.Second)
}

func (t Time) String() string {
	if !t.Valid() {
		return ""
	}
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}

// RouteType is the GTFS route_type enum.
type RouteType int

const (
	RouteTypeLRT        RouteType = 0
	RouteTypeSubway     RouteType = 1
	RouteTypeRail       RouteType = 2
	RouteTypeBus        RouteType = 3
	RouteTypeFerry      RouteType = 4
	RouteTypeCableTram  RouteType = 5
	RouteTypeAerialLift RouteType = 6
	RouteTypeFunicular  RouteType = 7
)

// UnmarshalCSV parses the numeric route type.
func (rt *RouteType) UnmarshalCSV(csv string) error {
	var v CSVInt
	if err := v.UnmarshalCSV(csv); err != nil {
		return err
	}
	*rt = RouteType(v)
	return nil
}

func (rt RouteType) String() string {
	switch rt {
	case RouteTypeLRT:
		return "LRT/Streetcar"
	case RouteTypeSubway:
		return "Subway"
	case RouteTypeRail:
		return "Rail"
	case RouteTypeBus:
		return "Bus"
	case RouteTypeFerry:
		return "Ferry"
	case RouteTypeCableTram:
		return "Tram"
	case RouteTypeAerialLift:
		return "Aerial Lift"
	case RouteTypeFunicular:
		return "Funicular"
	default:
		return "Unknown"
	}
}

// Agency represents the transit agency supplying service.
type Agency struct {
	ID       string `csv:"agency_id"`
	Name     string `csv:"agency_name"`
	URL      string `csv:"agency_url"`
	Timezone string `csv:"agency_timezone"`
	Language string `csv:"agency_lang"`
	Phone    string `csv:"agency_phone"`
}

// Stop is a row of stops.txt.
type Stop struct {
	ID            string        `csv:"stop_id"`
	Code          string        `csv:"stop_code"`
	Name          string        `csv:"stop_name"`
	Description   string        `csv:"stop_desc"`
	Lat           OptionalFloat `csv:"stop_lat"`
	Lon           OptionalFloat `csv:"stop_lon"`
	ZoneID        string        `csv:"zone_id"`
	LocationType  CSVInt        `csv:"location_type"`
	ParentStation string        `csv:"parent_station"`
	Timezone      string        `csv:"stop_timezone"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (s Stop) HasCoordinates() bool {
	return s.Lat.Valid && s.Lon.Valid
}

// Route is a row of routes.txt.
type Route struct {
	ID        string    `csv:"route_id"`
	AgencyID  string    `csv:"agency_id"`
	ShortName string    `csv:"route_short_name"`
	LongName  string    `csv:"route_long_name"`
	Type      RouteType `csv:"route_type"`
	Color     string    `csv:"route_color"`
}

// DisplayName prefers the short name.
func (r Route) DisplayName() string {
	if r.ShortName != "" {
		return r.ShortName
	}
	return r.LongName
}

// Trip is a row of trips.txt.
type Trip struct {
	RouteID     string `csv:"route_id"`
	ServiceID   string `csv:"service_id"`
	ID          string `csv:"trip_id"`
	Headsign    string `csv:"trip_headsign"`
	ShortName   string `csv:"trip_short_name"`
	DirectionID CSVInt `csv:"direction_id"`
	ShapeID     string `csv:"shape_id"`
}

// StopTime is a row of stop_times.txt.
type StopTime struct {
	TripID        string `csv:"trip_id"`
	ArrivalTime   Time   `csv:"arrival_time"`
	DepartureTime Time   `csv:"departure_time"`
	StopID        string `csv:"stop_id"`
	Sequence      CSVInt `csv:"stop_sequence"`
	Headsign      string `csv:"stop_headsign"`
}

// Arrival returns the arrival time, falling back to departure when only that is given.
func (st StopTime) Arrival() Time {
	if st.ArrivalTime.Valid() {
		return st.ArrivalTime
	}
	return st.DepartureTime
}

// Calendar is a set of days that the specified service is available.
type Calendar struct {
	ServiceID string  `csv:"service_id"`
	Monday    CSVBool `csv:"monday"`
	Tuesday   CSVBool `csv:"tuesday"`
	Wednesday CSVBool `csv:"wednesday"`
	Thursday  CSVBool `csv:"thursday"`
	Friday    CSVBool `csv:"friday"`
	Saturday  CSVBool `csv:"saturday"`
	Sunday    CSVBool `csv:"sunday"`
	StartDate CSVDate `csv:"start_date"`
	EndDate   CSVDate `csv:"end_date"`
}

// RunsOn reports whether the weekly pattern and date range include date.
func (c Calendar) RunsOn(date time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if !c.StartDate.IsZero() && day.Before(c.StartDate.Time) {
		return false
	}
	if !c.EndDate.IsZero() && day.After(c.EndDate.Time) {
		return false
	}
	switch date.Weekday() {
	case time.Monday:
		return bool(c.Monday)
	case time.Tuesday:
		return bool(c.Tuesday)
	case time.Wednesday:
		return bool(c.Wednesday)
	case time.Thursday:
		return bool(c.Thursday)
	case time.Friday:
		return bool(c.Friday)
	case time.Saturday:
		return bool(c.Saturday)
	default:
		return bool(c.Sunday)
	}
}

// Calendar date exception types.
const (
	ServiceAdded   = 1
	ServiceRemoved = 2
)

// CalendarDate represents a service override on the specified date.
type CalendarDate struct {
	ServiceID     string  `csv:"service_id"`
	Date          CSVDate `csv:"date"`
	ExceptionType CSVInt  `csv:"exception_type"`
}
