package gtfs

import "math"

const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance between two points in kilometers.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

// DistanceMeters is the walking-distance figure reported alongside a stop.
// It plays no part in choosing the nearest stop.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineKM(lat1, lon1, lat2, lon2) * 1000
}

// DistanceTo returns the distance from (lat, lon) to s in meters, false without coordinates.
func (s Stop) DistanceTo(lat, lon float64) (float64, bool) {
	if !s.HasCoordinates() {
		return 0, false
	}
	return DistanceMeters(lat, lon, s.Lat.Value, s.Lon.Value), true
}
