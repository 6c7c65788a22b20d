package geo

import (
	"errors"
	"fmt"
	"math"
)

// 地球半径（メートル）
const earthRadiusMeters = 6371000

var ErrLocationUnavailable = errors.New("location unavailable")

// OutOfRangeError: ジオフェンス外からの打刻
type OutOfRangeError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("out of range: %.1fm from work site (allowed %.1fm)", e.DistanceMeters, e.RadiusMeters)
}

// Position は端末が報告した座標。Accuracy は誤差半径（m）で判定には使わない。
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// Policy は従業員ごとの勤務地制限
type Policy struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	Enabled      bool
}

type VerifiedLocation struct {
	Position
	// 制限が有効で半径内と判定された場合のみ true
	Verified       bool
	DistanceMeters *float64
}

// Verify decides whether pos is an acceptable basis for an attendance action.
// It never widens the radius by the reported accuracy.
func Verify(pos *Position, policy Policy) (VerifiedLocation, error) {
	if pos == nil || !valid(*pos) {
		return VerifiedLocation{}, ErrLocationUnavailable
	}
	if !policy.Enabled {
		return VerifiedLocation{Position: *pos}, nil
	}

	d := Distance(pos.Latitude, pos.Longitude, policy.Latitude, policy.Longitude)
	if d > policy.RadiusMeters {
		return VerifiedLocation{}, &OutOfRangeError{DistanceMeters: d, RadiusMeters: policy.RadiusMeters}
	}
	return VerifiedLocation{Position: *pos, Verified: true, DistanceMeters: &d}, nil
}

// Distance: haversine で2点間の距離（メートル）
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(toRad(lat1))*math.Cos(toRad(lat2))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// ValidCoordinates reports whether lat/lon are finite and within range.
func ValidCoordinates(lat, lon float64) bool {
	return valid(Position{Latitude: lat, Longitude: lon})
}

func valid(p Position) bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) || math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

func toRad(deg float64) float64 { return deg * math.Pi / 180.0 }
