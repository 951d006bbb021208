package gtfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// dirMap resolves agency codes to subdirectories of a temp root.
type dirMap string

func (d dirMap) AgencyDir(code string) string { return filepath.Join(string(d), code) }

var sampleFeed = map[string]string{
	"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
		"WMATA,WMATA,https://wmata.com,America/New_York\n",
	"stops.txt": "\xEF\xBB\xBFstop_id,stop_name,stop_lat,stop_lon,location_type,parent_station\n" +
		"S0,Union Station Bus Bay,38.8975,-77.0060,0,\n" +
		"S1,Union Station,38.8977,-77.0063,1,\n" +
		"S2,Metro Center,38.8983,-77.0281,1,\n" +
		"S3,Gallery Pl-Chinatown,38.8983,-77.0219,1,\n" +
		"S4,Entrance Without Coordinates,,,2,S2\n",
	"routes.txt": "route_id,route_short_name,route_long_name,route_type\n" +
		"RED,RD,Red Line,1\n",
	"trips.txt": "route_id,service_id,trip_id,trip_headsign\n" +
		"RED,WKDY,T1,Glenmont\n" +
		"RED,WKDY,T2,Glenmont\n" +
		"RED,WKND,T3,Shady Grove\n",
	"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
		"T1,08:00:00,08:00:30,S2,1\n" +
		"T1,08:02:00,08:02:30,S3,2\n" +
		"T1,08:06:00,08:06:30,S1,3\n" +
		"T2,25:10:00,25:10:30,S2,1\n" +
		"T2,25:14:00,,S1,2\n" +
		"T3,09:00:00,09:00:00,S2,1\n",
	"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
		"WKDY,1,1,1,1,1,0,0,20260101,20261231\n" +
		"WKND,0,0,0,0,0,1,1,20260101,20261231\n",
	"calendar_dates.txt": "service_id,date,exception_type\n" +
		"WKDY,20261020,2\n" +
		"WKND,20261021,1\n",
}

func writeFeed(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func withFile(files map[string]string, name, body string) map[string]string {
	out := make(map[string]string, len(files))
	for k, v := range files {
		out[k] = v
	}
	out[name] = body
	return out
}

func loadSample(t *testing.T) *Dataset {
	t.Helper()
	dir := t.TempDir()
	writeFeed(t, dir, sampleFeed)
	ds, err := LoadDataset("wmata", dir, nil)
	require.NoError(t, err)
	return ds
}
