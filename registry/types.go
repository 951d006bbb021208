package registry

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
	"github.com/theoremus-urban-solutions/transit-fusion/gtfsrt"
)

var validate = validator.New()

// BoundingBox is an inclusive lat/lon rectangle in degrees.
type BoundingBox struct {
	MinLat float64 `validate:"gte=-90,lte=90"`
	MaxLat float64 `validate:"gte=-90,lte=90,gtefield=MinLat"`
	MinLon float64 `validate:"gte=-180,lte=180"`
	MaxLon float64 `validate:"gte=-180,lte=180,gtefield=MinLon"`
}

// Contains reports whether (lat, lon) lies inside the box, edges included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Validate checks the box lies on the globe with min <= max on both axes.
func (b BoundingBox) Validate() error {
	if err := validate.Struct(b); err != nil {
		return errs.Wrap(errs.ErrInvalidConfig, err, "bounding box %s", b)
	}
	return nil
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("lat[%g,%g] lon[%g,%g]", b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
}

// FeedConfig describes one agency's data sources.
type FeedConfig struct {
	Code                string `validate:"required"`
	Name                string
	StaticURL           string `validate:"required,url"`
	TripUpdatesURL      string `validate:"omitempty,url"`
	VehiclePositionsURL string `validate:"omitempty,url"`
	AlertsURL           string `validate:"omitempty,url"`
	RequiresAPIKey      bool
	// APIKeyHeader names the header carrying the credential; empty means gtfsrt.DefaultHeader.
	APIKeyHeader string
	BBox         *BoundingBox
}

// KeyHeader returns the header used for this feed's credential.
func (f FeedConfig) KeyHeader() string {
	if f.APIKeyHeader == "" {
		return gtfsrt.DefaultHeader
	}
	return f.APIKeyHeader
}

// HasRealtime reports whether any GTFS-Realtime endpoint is configured.
func (f FeedConfig) HasRealtime() bool {
	return f.TripUpdatesURL != "" || f.VehiclePositionsURL != "" || f.AlertsURL != ""
}

func (f FeedConfig) validate() error {
	if err := validate.Struct(f); err != nil {
		return errs.Wrap(errs.ErrInvalidConfig, err, "feed %q", f.Code)
	}
	return nil
}
