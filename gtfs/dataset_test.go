package gtfs

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
)

func TestLoadDataset(t *testing.T) {
	ds := loadSample(t)

	assert.Equal(t, "wmata", ds.AgencyCode)
	assert.Equal(t, "America/New_York", ds.Location().String())
	require.Len(t, ds.Stops, 5)
	assert.Equal(t, "S0", ds.Stops[0].ID, "byte order mark must not leak into the first header")
	assert.Len(t, ds.Routes, 1)
	assert.Len(t, ds.Trips, 3)
	assert.Len(t, ds.StopTimes, 6)

	s4, ok := ds.StopByID("S4")
	require.True(t, ok)
	assert.False(t, s4.HasCoordinates())
	assert.Equal(t, "S2", s4.ParentStation)

	route, ok := ds.RouteByID("RED")
	require.True(t, ok)
	assert.Equal(t, RouteTypeSubway, route.Type)
}

func TestLoadDataset_OptionalFiles(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, map[string]string{
		"stops.txt":  "stop_id,stop_name\nA,Alpha\n",
		"routes.txt": "route_id,route_short_name\n",
		"trips.txt":  "",
	})
	ds, err := LoadDataset("mini", dir, nil)
	require.NoError(t, err)
	assert.Len(t, ds.Stops, 1)
	assert.Empty(t, ds.Routes)
	assert.Empty(t, ds.Trips)
	assert.Equal(t, time.UTC, ds.Location())
}

func TestLoadDataset_MissingTimeColumns(t *testing.T) {
	t.Run("no time columns", func(t *testing.T) {
		dir := t.TempDir()
		writeFeed(t, dir, withFile(sampleFeed, "stop_times.txt", "trip_id,stop_id,stop_sequence\nT1,S2,1\nT1,S1,2\n"))
		ds, err := LoadDataset("wmata", dir, nil)
		require.NoError(t, err)
		require.Len(t, ds.StopTimes, 2)
		for _, st := range ds.StopTimes {
			assert.Equal(t, NoTime, st.ArrivalTime)
			assert.Equal(t, NoTime, st.DepartureTime)
			assert.False(t, st.Arrival().Valid())
		}
		assert.Empty(t, ds.ScheduledArrivals("S2", time.Date(2026, time.October, 19, 12, 0, 0, 0, ds.Location())))
	})

	t.Run("departure column only", func(t *testing.T) {
		dir := t.TempDir()
		writeFeed(t, dir, withFile(sampleFeed, "stop_times.txt", "trip_id,departure_time,stop_id,stop_sequence\nT1,08:00:30,S2,1\n"))
		ds, err := LoadDataset("wmata", dir, nil)
		require.NoError(t, err)
		require.Len(t, ds.StopTimes, 1)
		st := ds.StopTimes[0]
		assert.Equal(t, NoTime, st.ArrivalTime)
		assert.Equal(t, Time(8*3600+30), st.Arrival())
	})
}

func TestLoadDataset_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr error
	}{
		{
			name:    "missing stops",
			files:   map[string]string{"routes.txt": "route_id\nR\n"},
			wantErr: errs.ErrFileNotFound,
		},
		{
			name:    "latitude out of range",
			files:   withFile(sampleFeed, "stops.txt", "stop_id,stop_name,stop_lat,stop_lon\nX,Bad,95.0,-77.0\n"),
			wantErr: errs.ErrParse,
		},
		{
			name:    "non numeric coordinate",
			files:   withFile(sampleFeed, "stops.txt", "stop_id,stop_name,stop_lat,stop_lon\nX,Bad,north,-77.0\n"),
			wantErr: errs.ErrParse,
		},
		{
			name:    "malformed stop time",
			files:   withFile(sampleFeed, "stop_times.txt", "trip_id,arrival_time,departure_time,stop_id,stop_sequence\nT1,8:00,8:00,S1,1\n"),
			wantErr: errs.ErrParse,
		},
		{
			name:    "duplicate stop id",
			files:   withFile(sampleFeed, "stops.txt", "stop_id,stop_name\nA,Alpha\nA,Again\n"),
			wantErr: errs.ErrParse,
		},
		{
			name:    "unknown timezone",
			files:   withFile(sampleFeed, "agency.txt", "agency_id,agency_name,agency_url,agency_timezone\nX,X,https://x,Mars/Olympus\n"),
			wantErr: errs.ErrParse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFeed(t, dir, tt.files)
			_, err := LoadDataset("x", dir, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing directory", func(t *testing.T) {
		_, err := LoadDataset("x", filepath.Join(t.TempDir(), "nope"), nil)
		assert.ErrorIs(t, err, errs.ErrFileNotFound)
	})
}

func TestFindByName(t *testing.T) {
	ds := loadSample(t)

	tests := []struct {
		query string
		want  string
	}{
		{query: "Union Station", want: "S1"},
		{query: "union station", want: "S1"},
		{query: "union", want: "S0"},
		{query: "CENTER", want: "S2"},
		{query: "chinatown", want: "S3"},
		{query: "Nowhere Junction"},
		{query: "   "},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := ds.FindByName(tt.query)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestNearestStop(t *testing.T) {
	ds := loadSample(t)

	got := ds.NearestStop(38.8984, -77.0280)
	require.NotNil(t, got)
	assert.Equal(t, "S2", got.ID)

	got = ds.NearestStop(38.8976, -77.0061)
	require.NotNil(t, got)
	assert.Equal(t, "S0", got.ID)

	dir := t.TempDir()
	writeFeed(t, dir, map[string]string{"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\nA,Alpha,,\n"})
	bare, err := LoadDataset("bare", dir, nil)
	require.NoError(t, err)
	assert.Nil(t, bare.NearestStop(0, 0))
}

func TestListStops(t *testing.T) {
	ds := loadSample(t)

	assert.Len(t, ds.ListStops(2), 2)
	assert.Len(t, ds.ListStops(100), 5)
	assert.Empty(t, ds.ListStops(0))

	got := ds.ListStops(1)
	got[0].Name = "mutated"
	assert.Equal(t, "Union Station Bus Bay", ds.Stops[0].Name)
}

func TestStopTimes(t *testing.T) {
	ds := loadSample(t)

	trip := ds.StopTimesForTrip("T1")
	require.Len(t, trip, 3)
	assert.Equal(t, []string{"S2", "S3", "S1"}, []string{trip[0].StopID, trip[1].StopID, trip[2].StopID})

	atStop := ds.StopTimesForStop("S1")
	require.Len(t, atStop, 2)
	assert.Equal(t, "T1", atStop[0].TripID)
	assert.Equal(t, "T2", atStop[1].TripID)
	assert.False(t, atStop[1].DepartureTime.Valid())

	assert.Empty(t, ds.StopTimesForStop("unknown"))
}

func TestServiceActive(t *testing.T) {
	ds := loadSample(t)
	ny := ds.Location()

	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, ny)
	tuesday := time.Date(2026, 10, 20, 0, 0, 0, 0, ny)
	wednesday := time.Date(2026, 10, 21, 0, 0, 0, 0, ny)

	assert.True(t, ds.ServiceActive("WKDY", monday))
	assert.False(t, ds.ServiceActive("WKDY", tuesday), "removed by calendar_dates")
	assert.False(t, ds.ServiceActive("WKND", monday))
	assert.True(t, ds.ServiceActive("WKND", wednesday), "added by calendar_dates")
	assert.True(t, ds.ServiceActive("UNLISTED", monday))
}

func TestScheduledArrivals(t *testing.T) {
	ds := loadSample(t)
	ny := ds.Location()

	got := ds.ScheduledArrivals("S2", time.Date(2026, 10, 19, 7, 0, 0, 0, ny))
	require.Len(t, got, 2)
	assert.Equal(t, "T1", got[0].TripID)
	assert.Equal(t, "RED", got[0].RouteID)
	assert.Equal(t, "Glenmont", got[0].Headsign)
	assert.Equal(t, time.Date(2026, 10, 19, 8, 0, 0, 0, ny), got[0].Arrival)
	assert.Equal(t, time.Date(2026, 10, 19, 8, 0, 30, 0, ny), got[0].Departure)
	assert.Equal(t, "T2", got[1].TripID)
	assert.Equal(t, time.Date(2026, 10, 20, 1, 10, 0, 0, ny), got[1].Arrival)

	assert.Empty(t, ds.ScheduledArrivals("S2", time.Date(2026, 10, 20, 7, 0, 0, 0, ny)))

	wed := ds.ScheduledArrivals("S2", time.Date(2026, 10, 21, 7, 0, 0, 0, ny))
	require.Len(t, wed, 3)
	assert.Equal(t, "T3", wed[1].TripID)
	assert.Equal(t, "Shady Grove", wed[1].Headsign)

	late := ds.ScheduledArrivals("S1", time.Date(2026, 10, 19, 7, 0, 0, 0, ny))
	require.Len(t, late, 2)
	assert.Equal(t, late[1].Arrival, late[1].Departure)
}

func TestDistanceMeters(t *testing.T) {
	// Union Station to Metro Center, roughly 1.9 km.
	assert.InDelta(t, 1890, DistanceMeters(38.8977, -77.0063, 38.8983, -77.0281), 30)
	assert.Zero(t, DistanceMeters(38.9, -77.0, 38.9, -77.0))

	ds := loadSample(t)
	s4, _ := ds.StopByID("S4")
	_, ok := s4.DistanceTo(38.9, -77.0)
	assert.False(t, ok)
}
