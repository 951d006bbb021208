package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"go.uber.org/zap"

	lib "github.com/theoremus-urban-solutions/transit-fusion"
	"github.com/theoremus-urban-solutions/transit-fusion/config"
	"github.com/theoremus-urban-solutions/transit-fusion/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-fusion/resolver"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (defaults to ./config.yml or ./config/config.yml)")
	mode := flag.String("mode", "agencies", "agencies|download|status|nearest|find|stops|departures|resolve|alerts|vehicles|decode|serve")
	agency := flag.String("agency", "", "agency code (defaults to config.defaultAgency or the one covering -lat/-lon)")
	lat := flag.Float64("lat", 0, "caller latitude")
	lon := flag.Float64("lon", 0, "caller longitude")
	query := flag.String("q", "", "stop name, stop id or utterance depending on -mode")
	limit := flag.Int("limit", 10, "maximum number of rows")
	feedKind := flag.String("feed", "tu", "GTFS-RT feed kind for -mode=decode: tu|vp|alerts")
	feedSource := flag.String("src", "", "GTFS-RT URL or local file for -mode=decode")
	flag.Parse()

	var paths []string
	if *configPath != "" {
		paths = []string{*configPath}
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := lib.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, options{
		mode: *mode, agency: *agency, lat: *lat, lon: *lon,
		query: *query, limit: *limit, feedKind: *feedKind, feedSource: *feedSource,
	}); err != nil {
		logger.Error("command failed", zap.String("mode", *mode), zap.Error(err))
		os.Exit(1)
	}
}

type options struct {
	mode       string
	agency     string
	lat, lon   float64
	query      string
	limit      int
	feedKind   string
	feedSource string
}

func (o options) hasLocation() bool { return o.lat != 0 || o.lon != 0 }

func run(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger, o options) error {
	svc, err := lib.NewService(cfg, logger)
	if err != nil {
		return err
	}

	switch o.mode {
	case "agencies":
		var rows []string
		for code, name := range svc.Registry().ListAgencies() {
			rows = append(rows, fmt.Sprintf("%-10s %s", code, name))
		}
		slices.Sort(rows)
		for _, r := range rows {
			fmt.Println(r)
		}
		return nil
	case "decode":
		if o.feedSource == "" {
			return fmt.Errorf("-src is required for -mode=decode")
		}
		code := cfg.SelectAgency(o.agency)
		header := gtfsrt.DefaultHeader
		if feed, err := svc.Registry().Get(code); err == nil {
			header = feed.KeyHeader()
		}
		return decodeFeed(ctx, o.feedKind, o.feedSource, cfg.Credential(code), header)
	case "status":
		return printStatus(svc.Status())
	}

	if err := ensure(ctx, svc, cfg, o); err != nil {
		return err
	}

	switch o.mode {
	case "download":
		return printStatus(svc.Status())
	case "nearest":
		near, err := svc.NearestStop(o.lat, o.lon)
		if err != nil {
			return err
		}
		if near == nil {
			fmt.Println("no stops with coordinates")
			return nil
		}
		fmt.Printf("%s %s (%.0f m)\n", near.Stop.ID, near.Stop.Name, near.DistanceMeters)
	case "find":
		st, err := svc.Store().FindByName(o.query)
		if err != nil {
			return err
		}
		if st == nil {
			fmt.Printf("no stop matches %q\n", o.query)
			return nil
		}
		fmt.Printf("%s %s %.5f,%.5f\n", st.ID, st.Name, st.Lat.Value, st.Lon.Value)
	case "stops":
		stops, err := svc.Store().ListStops(o.limit)
		if err != nil {
			return err
		}
		for _, st := range stops {
			fmt.Printf("%-12s %s\n", st.ID, st.Name)
		}
	case "departures":
		stopID, err := stopForQuery(svc, o)
		if err != nil {
			return err
		}
		deps, err := svc.Departures(ctx, stopID, time.Now(), o.limit)
		if err != nil {
			return err
		}
		for _, d := range deps {
			fmt.Printf("%s  %-6s %-24s %-8s %+5ds\n",
				d.EstimatedArrival.Format("15:04"), d.RouteName, d.Headsign, d.Status, d.DelaySeconds)
		}
	case "resolve":
		var caller *resolver.Coordinates
		if o.hasLocation() {
			caller = &resolver.Coordinates{Lat: o.lat, Lon: o.lon}
		}
		trip, err := svc.ResolveTrip(o.query, caller)
		if err != nil {
			return err
		}
		fmt.Printf("intent: %s\n", trip.Intent)
		if trip.Origin != nil {
			fmt.Printf("origin: %s %s (from location: %t)\n", trip.Origin.ID, trip.Origin.Name, trip.OriginFromLocation)
		}
		if trip.Destination != nil {
			fmt.Printf("destination: %s %s\n", trip.Destination.ID, trip.Destination.Name)
		}
	case "alerts":
		alerts, err := svc.Alerts(ctx)
		if err != nil {
			return err
		}
		printAlerts(alerts)
	case "vehicles":
		vps, err := svc.Vehicles(ctx)
		if err != nil {
			return err
		}
		printVehicles(vps)
	case "serve":
		return serve(ctx, svc, cfg, logger)
	default:
		return fmt.Errorf("unknown mode %q", o.mode)
	}
	return nil
}

// ensure loads the agency named by -agency, else the one covering -lat/-lon,
// else the configured default.
func ensure(ctx context.Context, svc *lib.Service, cfg *config.AppConfig, o options) error {
	if o.agency == "" && o.hasLocation() {
		_, err := svc.EnsureForLocation(ctx, o.lat, o.lon)
		return err
	}
	code := cfg.SelectAgency(o.agency)
	if code == "" {
		return fmt.Errorf("no agency: pass -agency, -lat/-lon or set defaultAgency")
	}
	return svc.EnsureAgency(ctx, code)
}

// stopForQuery accepts a stop id or a name; without -q it uses the stop nearest the caller.
func stopForQuery(svc *lib.Service, o options) (string, error) {
	if o.query == "" {
		near, err := svc.NearestStop(o.lat, o.lon)
		if err != nil {
			return "", err
		}
		if near == nil {
			return "", fmt.Errorf("no stop near %.5f,%.5f", o.lat, o.lon)
		}
		return near.Stop.ID, nil
	}
	if st, err := svc.Store().Stop(o.query); err == nil && st != nil {
		return st.ID, nil
	}
	st, err := svc.Store().FindByName(o.query)
	if err != nil {
		return "", err
	}
	if st == nil {
		return "", fmt.Errorf("no stop matches %q", o.query)
	}
	return st.ID, nil
}

func printStatus(st lib.Status) error {
	fmt.Printf("status: %s\n", st.Status)
	if st.Agency != "" {
		fmt.Printf("agency: %s loaded %s: %d stops, %d routes, %d trips, %d stop times\n",
			st.Agency, st.LoadedAt.Format(time.RFC3339), st.Stops, st.Routes, st.Trips, st.StopTimes)
	}
	for _, a := range st.Agencies {
		fmt.Printf("  %-10s downloaded=%-5t loaded=%-5t realtime=%t\n", a.Code, a.Downloaded, a.Loaded, a.Realtime)
	}
	return nil
}

// serve keeps the loaded agency fresh on the configured schedule until ctx ends.
func serve(ctx context.Context, svc *lib.Service, cfg *config.AppConfig, logger *zap.Logger) error {
	if !cfg.Refresh.Enabled {
		return fmt.Errorf("refresh is disabled in config")
	}
	r, err := lib.NewRefresher(svc, cfg.Refresh.Schedule)
	if err != nil {
		return err
	}
	r.Start()
	<-ctx.Done()
	logger.Info("shutting down")
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	r.Stop(stopCtx)
	return nil
}
