package ephemeris

import "github.com/fxbgnss/gnsscore/gtime"

// cartesianPosVel extrapolates an SBAS ephemeris forward by a second-order
// Taylor expansion (position, velocity, acceleration all broadcast
// directly), grounded on FengXuebin-gnssgo/src/ephemeris.go's SEph2Pos.
// Velocity and acceleration are the analytic derivatives of the same
// expansion, not a finite difference.
func cartesianPosVel(e *CartesianEphemeris, t gtime.GpsTime) (pos, vel, acc [3]float64) {
	tk := gtime.GpsDiffTime(t, gtime.MatchWeeks(e.Toe, t))
	for i := 0; i < 3; i++ {
		pos[i] = e.Pos[i] + e.Vel[i]*tk + e.Acc[i]*tk*tk/2.0
		vel[i] = e.Vel[i] + e.Acc[i]*tk
		acc[i] = e.Acc[i]
	}
	return pos, vel, acc
}

func cartesianClock(e *CartesianEphemeris, t gtime.GpsTime) (clk, clkRate float64) {
	tk := gtime.GpsDiffTime(t, gtime.MatchWeeks(e.Toe, t))
	return e.Agf0 + e.Agf1*tk, e.Agf1
}
