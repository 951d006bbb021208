// Package fusion overlays real-time delay observations on scheduled stop times.
package fusion

import (
	"time"

	"github.com/theoremus-urban-solutions/transit-fusion/gtfsrt"
)

// DelayedThreshold is the delay above which an arrival is reported as delayed.
const DelayedThreshold = 300 * time.Second

// Arrival statuses.
const (
	StatusOnTime  = "ON TIME"
	StatusDelayed = "DELAYED"
)

// ScheduledStopTime is a scheduled visit of a trip to a stop.
type ScheduledStopTime struct {
	TripID           string
	StopID           string
	ScheduledArrival time.Time
}

// EnrichedStopTime is a scheduled visit with its real-time estimate.
type EnrichedStopTime struct {
	TripID           string
	StopID           string
	ScheduledArrival time.Time
	EstimatedArrival time.Time
	DelaySeconds     int32
	Status           string
}

// Delayed reports whether the status is DELAYED.
func (e EnrichedStopTime) Delayed() bool {
	return e.Status == StatusDelayed
}

type delayKey struct {
	TripID string
	StopID string
}

// Enrich joins stopTimes with feed on (trip, stop). A visit without an update
// gets zero delay. When the feed holds several updates for one key the last wins.
// A nil feed behaves as an empty one. The inputs are not modified.
func Enrich(stopTimes []ScheduledStopTime, feed *gtfsrt.TripUpdateFeed) []EnrichedStopTime {
	delays := map[delayKey]int32{}
	if feed != nil {
		for _, u := range feed.Updates {
			delays[delayKey{TripID: u.TripID, StopID: u.StopID}] = u.DelaySeconds
		}
	}

	out := make([]EnrichedStopTime, len(stopTimes))
	for i, st := range stopTimes {
		delay := delays[delayKey{TripID: st.TripID, StopID: st.StopID}]
		out[i] = EnrichedStopTime{
			TripID:           st.TripID,
			StopID:           st.StopID,
			ScheduledArrival: st.ScheduledArrival,
			EstimatedArrival: st.ScheduledArrival.Add(time.Duration(delay) * time.Second),
			DelaySeconds:     delay,
			Status:           status(delay),
		}
	}
	return out
}

func status(delay int32) string {
	if time.Duration(delay)*time.Second > DelayedThreshold {
		return StatusDelayed
	}
	return StatusOnTime
}
