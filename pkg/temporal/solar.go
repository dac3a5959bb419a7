package temporal

import (
	"math"
	"time"
)

// ReferenceLongitude is the time-zone reference meridian, in degrees
// east, against which the longitude correction is computed.
const ReferenceLongitude = 120.0

// TrueSolarTime adjusts a civil local time for the longitude offset
// from the reference meridian plus the equation-of-time correction.
//
// The longitude correction is (longitudeEast - 120.0) * 4 minutes. The
// equation of time uses the standard low-order harmonic fit
// 9.87*sin(2B) - 7.53*cos(B) - 1.5*sin(B) with B = 360/365 *
// (dayOfYear - 81) in radians.
func TrueSolarTime(local time.Time, longitudeEast float64) time.Time {
	longitudeMinutes := (longitudeEast - ReferenceLongitude) * 4
	b := 2 * math.Pi / 365 * (float64(local.YearDay()) - 81)
	eot := 9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)
	correction := longitudeMinutes + eot
	return local.Add(time.Duration(correction * float64(time.Minute)))
}

// TrueSolarHour returns the hour of the true-solar-time corrected
// local time. At the reference meridian only the equation-of-time term
// applies.
func TrueSolarHour(local time.Time, longitudeEast float64) int {
	return TrueSolarTime(local, longitudeEast).Hour()
}
