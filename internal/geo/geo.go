package geo

import "math"

// EarthRadiusM is the mean Earth radius used for great-circle math.
const EarthRadiusM = 6371000.0

// Haversine returns the great-circle distance in meters between two
// coordinates given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusM * c
}

// Bearing returns the initial bearing in degrees [0, 360) from the first
// coordinate toward the second.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dLon := radians(lon2 - lon1)

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)
	deg := degrees(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

// Destination projects a point the given distance in meters along the given
// bearing in degrees and returns the resulting latitude and longitude.
func Destination(lat, lon, bearingDeg, distanceM float64) (float64, float64) {
	delta := distanceM / EarthRadiusM
	theta := radians(bearingDeg)
	phi1 := radians(lat)
	lambda1 := radians(lon)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) +
		math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))

	lon2 := math.Mod(degrees(lambda2)+540, 360) - 180
	return degrees(phi2), lon2
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
