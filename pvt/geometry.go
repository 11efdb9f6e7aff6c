package pvt

import (
	"fmt"

	"github.com/fxbgnss/gnsscore/ephemeris"
	"github.com/fxbgnss/gnsscore/geodesy"
	"github.com/fxbgnss/gnsscore/gtime"
)

const transmissionTimeIterations = 2

type satGeom struct {
	meas       Measurement
	pos        geodesy.Ecef
	vel        geodesy.Ecef
	clockBias  float64
	clockDrift float64
	variance   float64
	status     ephemeris.Status
	los        geodesy.Ecef
	rangeM     float64
	azRad      float64
	elRad      float64
}

// resolveSatellite iterates the light-time equation to find the
// transmission-time satellite state consistent with rxApproxPos/rxTime,
// grounded on the teacher's satposs→residuals transmission-time handling
// (the teacher folds this into obs2.Time = obs.Time - P/CLIGHT upstream of
// SatPoss; here it is made explicit and re-run every Newton iteration since
// the receiver position changes).
func resolveSatellite(m Measurement, rxApproxPos geodesy.Ecef, rxTime gtime.GpsTime) (satGeom, error) {
	status := ephemeris.CalcStatus(m.Eph, rxTime)
	transmit := rxTime
	var st ephemeris.SatState
	var err error
	for i := 0; i < transmissionTimeIterations; i++ {
		st, err = ephemeris.CalcSatStateN(m.Eph, transmit)
		if err != nil {
			return satGeom{}, err
		}
		satPos := geodesy.Ecef{X: st.Pos[0], Y: st.Pos[1], Z: st.Pos[2]}
		rangeM, _ := geodesy.GeoDist(satPos, rxApproxPos)
		if rangeM < 0 {
			return satGeom{}, fmt.Errorf("pvt: degenerate satellite position for %v", m.Sid)
		}
		tof := rangeM / geodesy.LightSpeedMps
		transmit = gtime.NormalizeGpsTime(gtime.GpsTime{WN: rxTime.WN, TOW: rxTime.TOW - tof - st.ClockBias})
	}

	satPos := geodesy.Ecef{X: st.Pos[0], Y: st.Pos[1], Z: st.Pos[2]}
	rangeM, los := geodesy.GeoDist(satPos, rxApproxPos)

	return satGeom{
		meas:       m,
		pos:        satPos,
		vel:        geodesy.Ecef{X: st.Vel[0], Y: st.Vel[1], Z: st.Vel[2]},
		clockBias:  st.ClockBias,
		clockDrift: st.ClockDrift,
		variance:   st.Variance,
		status:     status,
		los:        los,
		rangeM:     rangeM,
	}, nil
}
