package views

import (
	"math"

	"github.com/starford/itinera/internal/models"
)

const earthRadiusKm = 6371

// LatLng is a [lat, lng] pair as consumed by map fit-bounds calls.
type LatLng [2]float64

// Bounds describes the area covered by a set of located activities.
type Bounds struct {
	Center    LatLng   `json:"center"`
	SouthWest LatLng   `json:"southWest"`
	NorthEast LatLng   `json:"northEast"`
	Points    []LatLng `json:"points"`
}

// Located keeps the activities whose coordinates are mappable.
func Located(acts []models.Activity) []models.Activity {
	var out []models.Activity
	for _, a := range acts {
		if a.Located() {
			out = append(out, a)
		}
	}
	return out
}

// GeoBounds computes the arithmetic-mean center and the bounding corners of
// the located activities. ok is false when none of them has coordinates;
// callers should then show a "no locations" state.
func GeoBounds(acts []models.Activity) (Bounds, bool) {
	var points []LatLng
	for _, a := range acts {
		if lat, lng, ok := a.Coordinates.Point(); ok {
			points = append(points, LatLng{lat, lng})
		}
	}
	return boundsOf(points)
}

func boundsOf(points []LatLng) (b Bounds, ok bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	var latSum, lngSum float64
	minLat, minLng := math.Inf(1), math.Inf(1)
	maxLat, maxLng := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		latSum += p[0]
		lngSum += p[1]
		minLat, maxLat = math.Min(minLat, p[0]), math.Max(maxLat, p[0])
		minLng, maxLng = math.Min(minLng, p[1]), math.Max(maxLng, p[1])
	}

	n := float64(len(points))
	b.Points = points
	b.Center = LatLng{latSum / n, lngSum / n}
	b.SouthWest = LatLng{minLat, minLng}
	b.NorthEast = LatLng{maxLat, maxLng}
	return b, true
}

// Haversine returns the great-circle distance in kilometres.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// RouteDistance sums the legs between consecutive points.
func RouteDistance(points []LatLng) float64 {
	var km float64
	for i := 1; i < len(points); i++ {
		km += Haversine(points[i-1][0], points[i-1][1], points[i][0], points[i][1])
	}
	return km
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
