/*
Package transitfusion answers "when is the next train" and "how do I get from A
to B" questions by fusing GTFS static schedules with GTFS-Realtime delays.

# Basic Usage

	cfg, err := config.Load()
	logger, err := transitfusion.NewLogger(cfg.Logging)
	svc, err := transitfusion.NewService(cfg, logger)

	// pick the agency covering the caller and make sure its schedule is loaded
	code, err := svc.EnsureForLocation(ctx, 38.8977, -77.0365)

	trip, err := svc.ResolveTrip("how do I get to Union Station", &resolver.Coordinates{Lat: 38.8977, Lon: -77.0365})
	deps, err := svc.Departures(ctx, trip.Origin.ID, time.Now(), 5)

# Degradation

Real-time data is best effort. When the trip-updates feed cannot be fetched or
decoded, Departures logs a warning and reports every departure as on time.

# Refreshing

A Refresher re-downloads and reloads the current agency on a cron schedule.
A failed refresh keeps serving the previously loaded schedule.
*/
package transitfusion
