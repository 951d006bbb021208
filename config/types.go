package config

// StorageConfig contains on-disk locations
type StorageConfig struct {
	BaseDir string `yaml:"baseDir" validate:"required"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// RealtimeConfig contains GTFS-Realtime client settings
type RealtimeConfig struct {
	TimeoutMS int `yaml:"timeoutMS" validate:"gte=0"`
	// Credentials maps agency code to the API key sent with real-time requests.
	Credentials map[string]string `yaml:"credentials"`
}

// DownloadConfig contains static archive download settings
type DownloadConfig struct {
	TimeoutMS         int `yaml:"timeoutMS" validate:"gte=0"`
	MaxAttempts       int `yaml:"maxAttempts" validate:"gte=0,lte=20"`
	InitialIntervalMS int `yaml:"initialIntervalMS" validate:"gte=0"`
}

// RefreshConfig controls the scheduled static re-download
type RefreshConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// BoundingBox is a lat/lon rectangle in degrees
type BoundingBox struct {
	MinLat float64 `yaml:"minLat" validate:"gte=-90,lte=90"`
	MaxLat float64 `yaml:"maxLat" validate:"gte=-90,lte=90,gtefield=MinLat"`
	MinLon float64 `yaml:"minLon" validate:"gte=-180,lte=180"`
	MaxLon float64 `yaml:"maxLon" validate:"gte=-180,lte=180,gtefield=MinLon"`
}

// Agency represents a single agency registered in addition to the built-in table
type Agency struct {
	Code                string       `yaml:"code" validate:"required"`
	Name                string       `yaml:"name" validate:"required"`
	StaticURL           string       `yaml:"staticURL" validate:"required,url"`
	TripUpdatesURL      string       `yaml:"tripUpdatesURL" validate:"omitempty,url"`
	VehiclePositionsURL string       `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	ServiceAlertsURL    string       `yaml:"serviceAlertsURL" validate:"omitempty,url"`
	RequiresAPIKey      bool         `yaml:"requiresAPIKey"`
	APIKeyHeader        string       `yaml:"apiKeyHeader"`
	BoundingBox         *BoundingBox `yaml:"boundingBox"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Storage       StorageConfig  `yaml:"storage" validate:"required"`
	Logging       LoggingConfig  `yaml:"logging"`
	Realtime      RealtimeConfig `yaml:"realtime"`
	Download      DownloadConfig `yaml:"download"`
	Refresh       RefreshConfig  `yaml:"refresh"`
	DefaultAgency string         `yaml:"defaultAgency"`
	Agencies      []Agency       `yaml:"agencies" validate:"dive"`
}
