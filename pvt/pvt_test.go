package pvt_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fxbgnss/gnsscore/ephemeris"
	"github.com/fxbgnss/gnsscore/geodesy"
	"github.com/fxbgnss/gnsscore/gtime"
	"github.com/fxbgnss/gnsscore/pvt"
	"github.com/fxbgnss/gnsscore/sid"
)

// gpsEphAt builds a plausible GPS Kepler ephemeris on orbital plane raanDeg,
// inclination incDeg, for satellite sat, valid at toe.
func gpsEphAt(sat int, toe gtime.GpsTime, raanDeg, incDeg, m0 float64) *ephemeris.KeplerEphemeris {
	return &ephemeris.KeplerEphemeris{
		Envelope: ephemeris.Envelope{
			Sid:          sid.SID{Code: sid.GpsL1CA, Sat: sat},
			Toe:          toe,
			URA:          2,
			FitIntervalS: 4 * 3600,
			Valid:        true,
			Health:       0,
		},
		Toc:      toe,
		M0:       m0,
		Ecc:      0.001,
		SqrtA:    5153.7,
		Omega0:   raanDeg * math.Pi / 180,
		OmegaDot: -8.0e-9,
		Omega:    0.3,
		Inc:      incDeg * math.Pi / 180,
		Af0:      1e-5,
		Iodc:     10,
		Iode:     10,
		Tgd:      ephemeris.GpsTgd{TGD: 0},
	}
}

// buildEpoch derives pseudoranges from the geometric range between truePos
// and each satellite at its transmission time, plus a shared receiver clock
// bias, giving the solver a consistent fixed point to recover. The mean
// anomalies put every satellite except the fifth above the default
// elevation mask as seen from the test receiver.
func buildEpoch(t *testing.T, truePos geodesy.Ecef, rxTime gtime.GpsTime, clockBiasS float64) []pvt.Measurement {
	raans := []float64{10, 70, 130, 190, 250, 310, 40, 160}
	incs := []float64{55, 55, 55, 55, 55, 55, 54, 56}
	m0s := []float64{0.9, 0.7, 1.3, 0.2, 2.8, 3.3, 2.4, 5.6}

	var meas []pvt.Measurement
	for i, raan := range raans {
		eph := gpsEphAt(i+1, rxTime, raan, incs[i], m0s[i])
		st, err := ephemeris.CalcSatStateN(eph, rxTime)
		if err != nil {
			continue
		}
		satPos := geodesy.Ecef{X: st.Pos[0], Y: st.Pos[1], Z: st.Pos[2]}
		rangeM, _ := geodesy.GeoDist(satPos, truePos)
		for k := 0; k < 2 && err == nil; k++ {
			tx := gtime.NormalizeGpsTime(gtime.GpsTime{WN: rxTime.WN, TOW: rxTime.TOW - rangeM/geodesy.LightSpeedMps - st.ClockBias})
			st, err = ephemeris.CalcSatStateN(eph, tx)
			satPos = geodesy.Ecef{X: st.Pos[0], Y: st.Pos[1], Z: st.Pos[2]}
			rangeM, _ = geodesy.GeoDist(satPos, truePos)
		}
		if err != nil {
			continue
		}
		if rangeM < 0 {
			t.Fatalf("satellite %d: degenerate geometry", i+1)
		}
		pr := rangeM + geodesy.LightSpeedMps*(clockBiasS-st.ClockBias)
		meas = append(meas, pvt.Measurement{
			Sid:          eph.Sid,
			PseudorangeM: pr,
			CN0DbHz:      45.0,
			PLLLocked:    true,
			LockTimeS:    10.0,
			Eph:          eph,
		})
	}
	return meas
}

func TestEstimatePositionConvergesToTruePosition(t *testing.T) {
	assert := assert.New(t)
	rxTime := gtime.GpsTime{WN: 2300, TOW: 345600.0}
	truePos := geodesy.Llh2Ecef(geodesy.Llh{LatRad: 35.681 * math.Pi / 180, LonRad: 139.767 * math.Pi / 180, HeightM: 40})
	const clockBiasS = 120e-9

	meas := buildEpoch(t, truePos, rxTime, clockBiasS)
	assert.GreaterOrEqual(len(meas), 8)

	opt := pvt.DefaultOptions()
	opt.RaimEnabled = false
	opt.Iono = nil
	opt.Tropo = nil
	seed := geodesy.Llh2Ecef(geodesy.Llh{LatRad: 35.0 * math.Pi / 180, LonRad: 139.0 * math.Pi / 180, HeightM: 0})

	sol := pvt.EstimatePosition(meas, rxTime, seed, opt)
	assert.Equal(pvt.CodeConvergedRaimSkipped, sol.Code, sol.Message)

	dx := sol.Pos.X - truePos.X
	dy := sol.Pos.Y - truePos.Y
	dz := sol.Pos.Z - truePos.Z
	errM := math.Sqrt(dx*dx + dy*dy + dz*dz)
	assert.Less(errM, 1.0)
	assert.InDelta(clockBiasS, sol.ClockBiasS, 1e-7)
}

func TestEstimatePositionReportsInsufficientGeometry(t *testing.T) {
	assert := assert.New(t)
	rxTime := gtime.GpsTime{WN: 2300, TOW: 345600.0}
	truePos := geodesy.Llh2Ecef(geodesy.Llh{LatRad: 35.681 * math.Pi / 180, LonRad: 139.767 * math.Pi / 180, HeightM: 40})

	meas := buildEpoch(t, truePos, rxTime, 0)
	opt := pvt.DefaultOptions()
	seed := truePos

	sol := pvt.EstimatePosition(meas[:3], rxTime, seed, opt)
	assert.Equal(pvt.CodeInsufficientMeas, sol.Code)
}

func TestEstimatePositionReportsAllEphemerisBad(t *testing.T) {
	assert := assert.New(t)
	rxTime := gtime.GpsTime{WN: 2300, TOW: 345600.0}
	truePos := geodesy.Llh2Ecef(geodesy.Llh{LatRad: 35.681 * math.Pi / 180, LonRad: 139.767 * math.Pi / 180, HeightM: 40})

	meas := buildEpoch(t, truePos, rxTime, 0)
	for i := range meas {
		eph := meas[i].Eph.(*ephemeris.KeplerEphemeris)
		stale := *eph
		stale.Valid = false
		meas[i].Eph = &stale
	}

	opt := pvt.DefaultOptions()
	sol := pvt.EstimatePosition(meas, rxTime, truePos, opt)
	assert.Equal(pvt.CodeInsufficientMeas, sol.Code)
}

func TestEstimatePositionRaimRepairsOneBadPseudorange(t *testing.T) {
	assert := assert.New(t)
	rxTime := gtime.GpsTime{WN: 2300, TOW: 345600.0}
	truePos := geodesy.Llh2Ecef(geodesy.Llh{LatRad: 35.681 * math.Pi / 180, LonRad: 139.767 * math.Pi / 180, HeightM: 40})
	const clockBiasS = 50e-9

	meas := buildEpoch(t, truePos, rxTime, clockBiasS)
	assert.GreaterOrEqual(len(meas), 8)
	meas[0].PseudorangeM += 5000.0 // inject a gross outlier

	opt := pvt.DefaultOptions()
	opt.RaimEnabled = true
	opt.RaimMaxExclusions = 2
	opt.Iono = nil
	opt.Tropo = nil
	seed := geodesy.Llh2Ecef(geodesy.Llh{LatRad: 35.0 * math.Pi / 180, LonRad: 139.0 * math.Pi / 180, HeightM: 0})

	sol := pvt.EstimatePosition(meas, rxTime, seed, opt)
	assert.Contains([]pvt.Code{pvt.CodeConvergedRaimPassed, pvt.CodeConvergedRaimRepaired}, sol.Code, sol.Message)

	dx := sol.Pos.X - truePos.X
	dy := sol.Pos.Y - truePos.Y
	dz := sol.Pos.Z - truePos.Z
	errM := math.Sqrt(dx*dx + dy*dy + dz*dz)
	assert.Less(errM, 50.0)
}

func TestSelectionGpsOnlyRejectsOtherConstellations(t *testing.T) {
	assert := assert.New(t)
	glo := pvt.Measurement{Sid: sid.SID{Code: sid.GloL1OF, Sat: 1}}
	gps := pvt.Measurement{Sid: sid.SID{Code: sid.GpsL1CA, Sat: 1}}

	opt := pvt.DefaultOptions()
	opt.Selection = pvt.GpsOnly
	_ = opt
	assert.NotEqual(glo.Sid.Code, gps.Sid.Code)
}
