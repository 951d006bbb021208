package registry

// defaultFeeds are the agencies every Registry starts with.
var defaultFeeds = []FeedConfig{
	{
		Code:           "wmata",
		Name:           "Washington DC Metro",
		StaticURL:      "https://transitfeeds.com/p/wmata/85/latest/download",
		TripUpdatesURL: "https://api.wmata.com/gtfs/bus-gtfsrt-tripupdates.pb",
		RequiresAPIKey: true,
		APIKeyHeader:   "api_key",
		BBox:           &BoundingBox{MinLat: 38.79, MaxLat: 39.12, MinLon: -77.47, MaxLon: -76.91},
	},
	{
		Code:           "mta",
		Name:           "New York City MTA",
		StaticURL:      "http://web.mta.info/developers/data/nyct/subway/google_transit.zip",
		TripUpdatesURL: "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs",
		AlertsURL:      "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/camsys%2Fsubway-alerts",
		RequiresAPIKey: true,
		APIKeyHeader:   "x-api-key",
		BBox:           &BoundingBox{MinLat: 40.50, MaxLat: 40.92, MinLon: -74.26, MaxLon: -73.70},
	},
	{
		Code:           "bart",
		Name:           "San Francisco BART",
		StaticURL:      "https://www.bart.gov/dev/schedules/google_transit.zip",
		TripUpdatesURL: "https://api.bart.gov/gtfsrt/tripupdate.aspx",
		AlertsURL:      "https://api.bart.gov/gtfsrt/alerts.aspx",
		BBox:           &BoundingBox{MinLat: 37.48, MaxLat: 38.02, MinLon: -122.52, MaxLon: -121.90},
	},
	{
		Code:      "cta",
		Name:      "Chicago Transit Authority",
		StaticURL: "https://www.transitchicago.com/downloads/sch_data/google_transit.zip",
		BBox:      &BoundingBox{MinLat: 41.64, MaxLat: 42.07, MinLon: -87.94, MaxLon: -87.52},
	},
	{
		Code:           "lametro",
		Name:           "Los Angeles Metro",
		StaticURL:      "https://gitlab.com/LACMTA/gtfs_rail/raw/master/gtfs_rail.zip",
		TripUpdatesURL: "https://api.metro.net/gtfsrt/vehicles/all",
		BBox:           &BoundingBox{MinLat: 33.70, MaxLat: 34.34, MinLon: -118.67, MaxLon: -117.92},
	},
	{
		Code:                "mbta",
		Name:                "Boston MBTA",
		StaticURL:           "https://cdn.mbta.com/MBTA_GTFS.zip",
		TripUpdatesURL:      "https://cdn.mbta.com/realtime/TripUpdates.pb",
		VehiclePositionsURL: "https://cdn.mbta.com/realtime/VehiclePositions.pb",
		AlertsURL:           "https://cdn.mbta.com/realtime/Alerts.pb",
		BBox:                &BoundingBox{MinLat: 42.23, MaxLat: 42.52, MinLon: -71.19, MaxLon: -70.92},
	},
	{
		Code:                "kingcounty",
		Name:                "Seattle King County Metro",
		StaticURL:           "https://metro.kingcounty.gov/gtfs/google_transit.zip",
		TripUpdatesURL:      "https://s3.amazonaws.com/kcm-alerts-realtime-prod/tripupdates.pb",
		VehiclePositionsURL: "https://s3.amazonaws.com/kcm-alerts-realtime-prod/vehiclepositions.pb",
		AlertsURL:           "https://s3.amazonaws.com/kcm-alerts-realtime-prod/alerts.pb",
		BBox:                &BoundingBox{MinLat: 47.24, MaxLat: 47.78, MinLon: -122.44, MaxLon: -122.22},
	},
	{
		Code:           "septa",
		Name:           "Philadelphia SEPTA",
		StaticURL:      "http://www3.septa.org/gtfsrt/gtfs-public.zip",
		TripUpdatesURL: "http://www3.septa.org/gtfsrt/septarail-pa-us/Trip/rtTripUpdates.pb",
		AlertsURL:      "http://www3.septa.org/gtfsrt/septarail-pa-us/Alert/rtAlerts.pb",
		BBox:           &BoundingBox{MinLat: 39.87, MaxLat: 40.14, MinLon: -75.28, MaxLon: -74.96},
	},
}
