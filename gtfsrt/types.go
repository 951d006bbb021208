package gtfsrt

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleRelationship tags a stop-level update.
type ScheduleRelationship string

const (
	Scheduled ScheduleRelationship = "SCHEDULED"
	Skipped   ScheduleRelationship = "SKIPPED"
	NoData    ScheduleRelationship = "NO_DATA"
)

// Severity of a service alert.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeveritySevere  Severity = "SEVERE"
)

// FeedHeader describes one fetch.
type FeedHeader struct {
	// FetchID identifies the fetch in logs.
	FetchID uuid.UUID
	// FetchedAt is when the body was received.
	FetchedAt time.Time
	// Timestamp is the producer's header timestamp, zero when absent.
	Timestamp time.Time
	// Entities is the number of entities in the message, skipped ones included.
	Entities int
}

// TripUpdate is one real-time delay observation.
type TripUpdate struct {
	TripID               string
	StopID               string
	DelaySeconds         int32
	ScheduleRelationship ScheduleRelationship
}

// TripUpdateFeed is the decoded trip-updates feed.
type TripUpdateFeed struct {
	Header  FeedHeader
	Updates []TripUpdate
}

// VehiclePosition is a vehicle's last reported location.
type VehiclePosition struct {
	VehicleID string
	TripID    string
	Latitude  float32
	Longitude float32
	Bearing   *float32
	Speed     *float32
	Timestamp time.Time
}

// VehiclePositionFeed is the decoded vehicle-positions feed.
type VehiclePositionFeed struct {
	Header    FeedHeader
	Positions []VehiclePosition
}

// ServiceAlert is a rider-facing notice.
type ServiceAlert struct {
	ID          string
	Header      string
	Description string
	Severity    Severity
	RouteIDs    []string
	StopIDs     []string
}

// ServiceAlertFeed is the decoded alerts feed.
type ServiceAlertFeed struct {
	Header FeedHeader
	Alerts []ServiceAlert
}
