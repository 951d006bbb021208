package transitfusion

import (
	"cmp"
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fusion/fusion"
	"github.com/theoremus-urban-solutions/transit-fusion/gtfs"
	"github.com/theoremus-urban-solutions/transit-fusion/gtfsrt"
)

// Departure is one row of a departure board.
type Departure struct {
	fusion.EnrichedStopTime
	RouteID   string
	RouteName string
	Headsign  string
	// Realtime is false when the board was built without a trip-updates feed.
	Realtime bool
}

// Departures returns up to limit departures from stopID whose estimated arrival
// is at or after now, soonest first. Visits the real-time feed marks as skipped
// are left out. Yesterday's service day is included so
// trips running past midnight show up.
func (s *Service) Departures(ctx context.Context, stopID string, now time.Time, limit int) ([]Departure, error) {
	ds, feed, err := s.currentFeed()
	if err != nil {
		return nil, err
	}

	local := now.In(ds.Location())
	var scheduled []gtfs.ScheduledArrival
	for _, day := range []time.Time{local.AddDate(0, 0, -1), local} {
		scheduled = append(scheduled, ds.ScheduledArrivals(stopID, day)...)
	}
	if len(scheduled) == 0 {
		return nil, nil
	}

	stopTimes := make([]fusion.ScheduledStopTime, len(scheduled))
	for i, sa := range scheduled {
		stopTimes[i] = fusion.ScheduledStopTime{TripID: sa.TripID, StopID: sa.StopID, ScheduledArrival: sa.Arrival}
	}

	var updates *gtfsrt.TripUpdateFeed
	if feed.TripUpdatesURL != "" {
		updates, err = s.realtimeClient(feed).FetchTripUpdates(ctx, feed.TripUpdatesURL)
		if err != nil {
			s.logger.Warn("realtime unavailable, serving static schedule",
				zap.String("agency", feed.Code),
				zap.String("stop_id", stopID),
				zap.Error(err),
			)
			updates = nil
		}
	}

	skipped := skippedStops(updates)
	enriched := fusion.Enrich(stopTimes, updates)
	out := make([]Departure, 0, len(enriched))
	for i, e := range enriched {
		if e.EstimatedArrival.Before(now) || skipped[tripStop{e.TripID, e.StopID}] {
			continue
		}
		d := Departure{
			EnrichedStopTime: e,
			RouteID:          scheduled[i].RouteID,
			Headsign:         scheduled[i].Headsign,
			Realtime:         updates != nil,
		}
		if r, ok := ds.RouteByID(d.RouteID); ok {
			d.RouteName = r.DisplayName()
		}
		out = append(out, d)
	}
	slices.SortStableFunc(out, func(a, b Departure) int {
		return cmp.Compare(a.EstimatedArrival.UnixNano(), b.EstimatedArrival.UnixNano())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type tripStop struct{ tripID, stopID string }

// skippedStops lists the visits the feed marks as skipped. As in Enrich, the last
// update for a visit wins.
func skippedStops(feed *gtfsrt.TripUpdateFeed) map[tripStop]bool {
	skipped := map[tripStop]bool{}
	if feed == nil {
		return skipped
	}
	for _, u := range feed.Updates {
		key := tripStop{u.TripID, u.StopID}
		if u.ScheduleRelationship == gtfsrt.Skipped {
			skipped[key] = true
		} else {
			delete(skipped, key)
		}
	}
	return skipped
}

// Alerts fetches the current agency's service alerts. An agency without an
// alerts feed yields none.
func (s *Service) Alerts(ctx context.Context) ([]gtfsrt.ServiceAlert, error) {
	_, feed, err := s.currentFeed()
	if err != nil {
		return nil, err
	}
	if feed.AlertsURL == "" {
		return nil, nil
	}
	res, err := s.realtimeClient(feed).FetchServiceAlerts(ctx, feed.AlertsURL)
	if err != nil {
		return nil, err
	}
	return res.Alerts, nil
}

// Vehicles fetches the current agency's vehicle positions. An agency without a
// vehicle-positions feed yields none.
func (s *Service) Vehicles(ctx context.Context) ([]gtfsrt.VehiclePosition, error) {
	_, feed, err := s.currentFeed()
	if err != nil {
		return nil, err
	}
	if feed.VehiclePositionsURL == "" {
		return nil, nil
	}
	res, err := s.realtimeClient(feed).FetchVehiclePositions(ctx, feed.VehiclePositionsURL)
	if err != nil {
		return nil, err
	}
	return res.Positions, nil
}
