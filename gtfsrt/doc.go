// Package gtfsrt fetches GTFS-Realtime protobuf feeds and decodes them into
// plain records.
//
// It supports three feed types:
//   - Trip Updates: per-stop delay observations keyed by (trip, stop)
//   - Vehicle Positions: current vehicle locations
//   - Service Alerts: rider-facing notices
//
// Each feed entity maps to zero or one record; entities missing the expected
// sub-message are skipped. The Client performs a single GET per call with no
// retries or caching.
package gtfsrt
