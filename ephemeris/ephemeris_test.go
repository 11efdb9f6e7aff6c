package ephemeris_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fxbgnss/gnsscore/ephemeris"
	"github.com/fxbgnss/gnsscore/gtime"
	"github.com/fxbgnss/gnsscore/sid"
)

func gpsEph() *ephemeris.KeplerEphemeris {
	toe := gtime.GpsTime{WN: 2300, TOW: 345600}
	return &ephemeris.KeplerEphemeris{
		Envelope: ephemeris.Envelope{
			Sid:          sid.SID{Code: sid.GpsL1CA, Sat: 1},
			Toe:          toe,
			URA:          2,
			FitIntervalS: 4 * 3600,
			Valid:        true,
			Health:       0,
		},
		Toc:    toe,
		M0:     0.5,
		Ecc:    0.001,
		SqrtA:  5153.7,
		Omega0: 1.0,
		Omega:  0.3,
		Inc:    0.95,
		Af0:    1e-5,
		Iode:   10,
		Iodc:   10,
		Tgd:    ephemeris.GpsTgd{TGD: -1.2e-8},
	}
}

func TestCalcSatStateNReturnsEarthOrbitRadius(t *testing.T) {
	assert := assert.New(t)
	e := gpsEph()
	st, err := ephemeris.CalcSatStateN(e, e.Toe)
	assert.NoError(err)

	r := math.Sqrt(st.Pos[0]*st.Pos[0] + st.Pos[1]*st.Pos[1] + st.Pos[2]*st.Pos[2])
	assert.InDelta(26560000.0, r, 200000.0) // GPS MEO radius, ~26560 km
}

func TestCalcSatStateNVelocityMatchesAnalyticOrbitalSpeed(t *testing.T) {
	assert := assert.New(t)
	e := gpsEph()
	st, err := ephemeris.CalcSatStateN(e, e.Toe)
	assert.NoError(err)

	speed := math.Sqrt(st.Vel[0]*st.Vel[0] + st.Vel[1]*st.Vel[1] + st.Vel[2]*st.Vel[2])
	assert.InDelta(3870.0, speed, 200.0) // GPS MEO orbital speed, ~3.87 km/s

	accel := math.Sqrt(st.Acc[0]*st.Acc[0] + st.Acc[1]*st.Acc[1] + st.Acc[2]*st.Acc[2])
	assert.InDelta(0.57, accel, 0.1) // GPS MEO gravitational accel, ~0.57 m/s^2
}

func TestCalcStatusOrderedTraversal(t *testing.T) {
	assert := assert.New(t)
	e := gpsEph()

	assert.Equal(ephemeris.StatusValid, ephemeris.CalcStatus(e, e.Toe))

	invalid := *e
	invalid.Valid = false
	assert.Equal(ephemeris.StatusInvalid, ephemeris.CalcStatus(&invalid, e.Toe))

	unhealthy := *e
	unhealthy.Health = 1
	assert.Equal(ephemeris.StatusUnhealthy, ephemeris.CalcStatus(&unhealthy, e.Toe))

	stale := *e
	farFuture := gtime.GpsTime{WN: e.Toe.WN, TOW: e.Toe.TOW + 10*3600}
	assert.Equal(ephemeris.StatusTooOld, ephemeris.CalcStatus(&stale, farFuture))

	var nilEph *ephemeris.KeplerEphemeris
	assert.Equal(ephemeris.StatusNull, ephemeris.CalcStatus(nilEph, e.Toe))
}

func TestHealthyPresumesTrueWhenNotValid(t *testing.T) {
	assert := assert.New(t)
	e := gpsEph()
	e.Valid = false
	e.Health = 1
	assert.True(ephemeris.Healthy(e))
}

func TestGetTGDDispatchesByCode(t *testing.T) {
	assert := assert.New(t)
	e := &ephemeris.KeplerEphemeris{
		Envelope: ephemeris.Envelope{Sid: sid.SID{Code: sid.BdsB1I, Sat: 10}},
		Tgd:      ephemeris.BdsTgd{TGD1: 1e-9, TGD2: 2e-9},
	}
	tgd, err := ephemeris.GetTGD(e, sid.BdsB1I)
	assert.NoError(err)
	assert.InDelta(1e-9, tgd, 1e-15)

	tgd, err = ephemeris.GetTGD(e, sid.BdsB2I)
	assert.NoError(err)
	assert.InDelta(2e-9, tgd, 1e-15)

	_, err = ephemeris.GetTGD(e, sid.BdsB3I)
	assert.Error(err)
}

func TestGetTGDScalesGpsByFrequencyRatio(t *testing.T) {
	assert := assert.New(t)
	e := &ephemeris.KeplerEphemeris{
		Envelope: ephemeris.Envelope{Sid: sid.SID{Code: sid.GpsL1CA, Sat: 1}},
		Tgd:      ephemeris.GpsTgd{TGD: -1.2e-8},
	}
	tgdL1, err := ephemeris.GetTGD(e, sid.GpsL1CA)
	assert.NoError(err)
	assert.InDelta(-1.2e-8, tgdL1, 1e-15) // queried on the reference carrier: γ = 1

	tgdL2, err := ephemeris.GetTGD(e, sid.GpsL2C)
	assert.NoError(err)
	assert.NotEqual(tgdL1, tgdL2) // γ = (f_L1/f_L2)^2 != 1

	_, err = ephemeris.GetTGD(e, sid.GalE1B)
	assert.Error(err)
}

func TestGetTGDGlonassDispatchesByBand(t *testing.T) {
	assert := assert.New(t)
	e := &ephemeris.GlonassEphemeris{DTau: 3e-9}

	tgdL1, err := ephemeris.GetTGD(e, sid.GloL1OF)
	assert.NoError(err)
	assert.Equal(0.0, tgdL1)

	tgdL2, err := ephemeris.GetTGD(e, sid.GloL2OF)
	assert.NoError(err)
	assert.InDelta(3e-9, tgdL2, 1e-15)

	_, err = ephemeris.GetTGD(e, sid.GpsL1CA)
	assert.Error(err)
}

func TestKeplerInvalidEccentricityReturnsError(t *testing.T) {
	assert := assert.New(t)
	e := gpsEph()
	e.Ecc = 10.0 // hyperbolic value, outside the elliptical range [0,1)
	_, err := ephemeris.CalcSatStateN(e, e.Toe)
	assert.Error(err)
}
