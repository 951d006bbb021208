package gtfsrt

import (
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
)

// Partial messages are accepted so that an entity missing a required sub-message
// is skipped rather than failing the whole feed.
var unmarshalOpts = proto.UnmarshalOptions{AllowPartial: true, DiscardUnknown: true}

func decodeMessage(b []byte) (*gtfs.FeedMessage, FeedHeader, error) {
	var fm gtfs.FeedMessage
	if err := unmarshalOpts.Unmarshal(b, &fm); err != nil {
		return nil, FeedHeader{}, errs.Wrap(errs.ErrDecode, err, "feed message")
	}
	h := FeedHeader{
		FetchID:   uuid.New(),
		FetchedAt: time.Now(),
		Entities:  len(fm.GetEntity()),
	}
	if ts := fm.GetHeader().GetTimestamp(); ts > 0 {
		h.Timestamp = time.Unix(int64(ts), 0)
	}
	return &fm, h, nil
}

// DecodeTripUpdates decodes a trip-updates FeedMessage.
func DecodeTripUpdates(b []byte) (*TripUpdateFeed, error) {
	fm, h, err := decodeMessage(b)
	if err != nil {
		return nil, err
	}
	feed := &TripUpdateFeed{Header: h}
	for _, e := range fm.GetEntity() {
		feed.Updates = append(feed.Updates, tripUpdatesFromEntity(e)...)
	}
	return feed, nil
}

// DecodeVehiclePositions decodes a vehicle-positions FeedMessage.
func DecodeVehiclePositions(b []byte) (*VehiclePositionFeed, error) {
	fm, h, err := decodeMessage(b)
	if err != nil {
		return nil, err
	}
	feed := &VehiclePositionFeed{Header: h}
	for _, e := range fm.GetEntity() {
		if vp, ok := vehiclePositionFromEntity(e); ok {
			feed.Positions = append(feed.Positions, vp)
		}
	}
	return feed, nil
}

// DecodeServiceAlerts decodes an alerts FeedMessage.
func DecodeServiceAlerts(b []byte) (*ServiceAlertFeed, error) {
	fm, h, err := decodeMessage(b)
	if err != nil {
		return nil, err
	}
	feed := &ServiceAlertFeed{Header: h}
	for _, e := range fm.GetEntity() {
		if a, ok := serviceAlertFromEntity(e); ok {
			feed.Alerts = append(feed.Alerts, a)
		}
	}
	return feed, nil
}

// tripUpdatesFromEntity yields one update per stop-time-update that carries an
// arrival event or is skipped. Entities without a trip descriptor yield nothing.
func tripUpdatesFromEntity(e *gtfs.FeedEntity) []TripUpdate {
	tu := e.GetTripUpdate()
	if tu == nil || tu.GetTrip() == nil {
		return nil
	}
	tripID := tu.GetTrip().GetTripId()
	var out []TripUpdate
	for _, stu := range tu.GetStopTimeUpdate() {
		rel := relationshipFromProto(stu.GetScheduleRelationship())
		if stu.GetArrival() == nil && rel != Skipped {
			continue
		}
		out = append(out, TripUpdate{
			TripID:               tripID,
			StopID:               stu.GetStopId(),
			DelaySeconds:         stu.GetArrival().GetDelay(),
			ScheduleRelationship: rel,
		})
	}
	return out
}

func relationshipFromProto(r gtfs.TripUpdate_StopTimeUpdate_ScheduleRelationship) ScheduleRelationship {
	switch r {
	case gtfs.TripUpdate_StopTimeUpdate_SKIPPED:
		return Skipped
	case gtfs.TripUpdate_StopTimeUpdate_NO_DATA:
		return NoData
	default:
		return Scheduled
	}
}

// vehiclePositionFromEntity requires both a position and a trip descriptor.
func vehiclePositionFromEntity(e *gtfs.FeedEntity) (VehiclePosition, bool) {
	v := e.GetVehicle()
	if v == nil || v.GetPosition() == nil || v.GetTrip() == nil {
		return VehiclePosition{}, false
	}
	pos := v.GetPosition()
	vp := VehiclePosition{
		VehicleID: v.GetVehicle().GetId(),
		TripID:    v.GetTrip().GetTripId(),
		Latitude:  pos.GetLatitude(),
		Longitude: pos.GetLongitude(),
		Bearing:   pos.Bearing,
		Speed:     pos.Speed,
	}
	if ts := v.GetTimestamp(); ts > 0 {
		vp.Timestamp = time.Unix(int64(ts), 0)
	}
	return vp, true
}

func serviceAlertFromEntity(e *gtfs.FeedEntity) (ServiceAlert, bool) {
	a := e.GetAlert()
	if a == nil {
		return ServiceAlert{}, false
	}
	sa := ServiceAlert{
		ID:          e.GetId(),
		Header:      firstTranslation(a.GetHeaderText()),
		Description: firstTranslation(a.GetDescriptionText()),
		Severity:    severityFromProto(a),
	}
	for _, ie := range a.GetInformedEntity() {
		if ie.RouteId != nil {
			sa.RouteIDs = append(sa.RouteIDs, ie.GetRouteId())
		}
		if ie.StopId != nil {
			sa.StopIDs = append(sa.StopIDs, ie.GetStopId())
		}
	}
	return sa, true
}

// firstTranslation returns the first translation's text, empty when there is none.
func firstTranslation(ts *gtfs.TranslatedString) string {
	tr := ts.GetTranslation()
	if len(tr) == 0 {
		return ""
	}
	return tr[0].GetText()
}

func severityFromProto(a *gtfs.Alert) Severity {
	if a.SeverityLevel == nil {
		return SeverityWarning
	}
	switch a.GetSeverityLevel() {
	case gtfs.Alert_SEVERE:
		return SeveritySevere
	case gtfs.Alert_WARNING:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
