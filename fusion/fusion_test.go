package fusion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-fusion/gtfsrt"
)

var base = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func schedule() []ScheduledStopTime {
	return []ScheduledStopTime{
		{TripID: "T1", StopID: "S1", ScheduledArrival: base},
		{TripID: "T1", StopID: "S2", ScheduledArrival: base.Add(4 * time.Minute)},
		{TripID: "T2", StopID: "S1", ScheduledArrival: base.Add(10 * time.Minute)},
		{TripID: "T3", StopID: "S1", ScheduledArrival: base.Add(20 * time.Minute)},
	}
}

func feed(updates ...gtfsrt.TripUpdate) *gtfsrt.TripUpdateFeed {
	return &gtfsrt.TripUpdateFeed{Updates: updates}
}

func TestEnrich(t *testing.T) {
	got := Enrich(schedule(), feed(
		gtfsrt.TripUpdate{TripID: "T1", StopID: "S1", DelaySeconds: 120},
		gtfsrt.TripUpdate{TripID: "T2", StopID: "S1", DelaySeconds: 301},
		gtfsrt.TripUpdate{TripID: "T3", StopID: "S1", DelaySeconds: -60},
		gtfsrt.TripUpdate{TripID: "T9", StopID: "S1", DelaySeconds: 900},
	))
	require.Len(t, got, 4)

	tests := []struct {
		name   string
		idx    int
		delay  int32
		status string
	}{
		{name: "small delay is on time", idx: 0, delay: 120, status: StatusOnTime},
		{name: "no update means zero delay", idx: 1, delay: 0, status: StatusOnTime},
		{name: "just over threshold", idx: 2, delay: 301, status: StatusDelayed},
		{name: "early arrival", idx: 3, delay: -60, status: StatusOnTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := got[tt.idx]
			assert.Equal(t, tt.delay, e.DelaySeconds)
			assert.Equal(t, tt.status, e.Status)
			assert.Equal(t, e.ScheduledArrival.Add(time.Duration(tt.delay)*time.Second), e.EstimatedArrival)
		})
	}
	assert.True(t, got[2].Delayed())
}

func TestEnrich_ThresholdBoundary(t *testing.T) {
	got := Enrich(schedule()[:1], feed(gtfsrt.TripUpdate{TripID: "T1", StopID: "S1", DelaySeconds: 300}))
	assert.Equal(t, StatusOnTime, got[0].Status)
}

func TestEnrich_LastWriteWins(t *testing.T) {
	got := Enrich(schedule()[:1], feed(
		gtfsrt.TripUpdate{TripID: "T1", StopID: "S1", DelaySeconds: 600},
		gtfsrt.TripUpdate{TripID: "T1", StopID: "S1", DelaySeconds: 30},
	))
	assert.Equal(t, int32(30), got[0].DelaySeconds)
	assert.Equal(t, StatusOnTime, got[0].Status)
}

func TestEnrich_EmptyFeed(t *testing.T) {
	for _, f := range []*gtfsrt.TripUpdateFeed{nil, feed()} {
		got := Enrich(schedule(), f)
		require.Len(t, got, 4)
		for i, e := range got {
			assert.Zero(t, e.DelaySeconds)
			assert.Equal(t, StatusOnTime, e.Status)
			assert.Equal(t, schedule()[i].ScheduledArrival, e.EstimatedArrival)
		}
	}
	assert.Empty(t, Enrich(nil, feed()))
}

func TestEnrich_Idempotent(t *testing.T) {
	in := schedule()
	f := feed(
		gtfsrt.TripUpdate{TripID: "T1", StopID: "S2", DelaySeconds: 450},
		gtfsrt.TripUpdate{TripID: "T3", StopID: "S1", DelaySeconds: 15},
	)
	first := Enrich(in, f)
	second := Enrich(in, f)
	assert.Equal(t, first, second)
	assert.Equal(t, schedule(), in, "input slice is untouched")
	assert.Len(t, f.Updates, 2)
}
