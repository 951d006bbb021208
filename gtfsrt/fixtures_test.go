package gtfsrt

import (
	"testing"

	p "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

const feedTimestamp = 1792400000

func marshalFeed(t *testing.T, entities ...*p.FeedEntity) []byte {
	t.Helper()
	incrementality := p.FeedHeader_FULL_DATASET
	fm := &p.FeedMessage{
		Header: &p.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      &incrementality,
			Timestamp:           proto.Uint64(feedTimestamp),
		},
		Entity: entities,
	}
	data, err := proto.MarshalOptions{AllowPartial: true}.Marshal(fm)
	require.NoError(t, err)
	return data
}

type stopDelay struct {
	stopID string
	delay  *int32
	rel    p.TripUpdate_StopTimeUpdate_ScheduleRelationship
	noArr  bool
}

func tripUpdateEntity(id, tripID string, stops ...stopDelay) *p.FeedEntity {
	stus := make([]*p.TripUpdate_StopTimeUpdate, 0, len(stops))
	for _, s := range stops {
		rel := s.rel
		stu := &p.TripUpdate_StopTimeUpdate{
			StopId:               proto.String(s.stopID),
			ScheduleRelationship: &rel,
		}
		if !s.noArr {
			stu.Arrival = &p.TripUpdate_StopTimeEvent{Delay: s.delay}
		}
		stus = append(stus, stu)
	}
	return &p.FeedEntity{
		Id: proto.String(id),
		TripUpdate: &p.TripUpdate{
			Trip:           &p.TripDescriptor{TripId: proto.String(tripID)},
			StopTimeUpdate: stus,
		},
	}
}

func translated(texts ...string) *p.TranslatedString {
	ts := &p.TranslatedString{}
	for _, text := range texts {
		ts.Translation = append(ts.Translation, &p.TranslatedString_Translation{Text: proto.String(text)})
	}
	return ts
}
