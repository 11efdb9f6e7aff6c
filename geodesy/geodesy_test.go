package geodesy_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fxbgnss/gnsscore/geodesy"
	"github.com/fxbgnss/gnsscore/gtime"
)

func TestEcefLlhRoundTrip(t *testing.T) {
	assert := assert.New(t)
	llh := geodesy.Llh{LatRad: 35.681 * math.Pi / 180, LonRad: 139.767 * math.Pi / 180, HeightM: 40.0}
	ecef := geodesy.Llh2Ecef(llh)
	back := geodesy.Ecef2Llh(ecef)

	assert.InDelta(llh.LatRad, back.LatRad, 1e-9)
	assert.InDelta(llh.LonRad, back.LonRad, 1e-9)
	assert.InDelta(llh.HeightM, back.HeightM, 1e-6)
}

func TestGeoDistReturnsUnitLineOfSight(t *testing.T) {
	assert := assert.New(t)
	rx := geodesy.Llh2Ecef(geodesy.Llh{LatRad: 0, LonRad: 0, HeightM: 0})
	sat := geodesy.Ecef{X: rx.X + 20000000, Y: rx.Y, Z: rx.Z}

	rangeM, los := geodesy.GeoDist(sat, rx)
	norm := math.Sqrt(los.X*los.X + los.Y*los.Y + los.Z*los.Z)
	assert.InDelta(1.0, norm, 1e-9)
	assert.Greater(rangeM, 19999000.0)
}

func TestGeoDistRejectsDegenerateSatellitePosition(t *testing.T) {
	assert := assert.New(t)
	rx := geodesy.Llh2Ecef(geodesy.Llh{LatRad: 0, LonRad: 0, HeightM: 0})
	rangeM, _ := geodesy.GeoDist(geodesy.Ecef{X: 1, Y: 1, Z: 1}, rx)
	assert.Less(rangeM, 0.0)
}

func TestSatAzElOverheadSatelliteIsNearNinetyDegrees(t *testing.T) {
	assert := assert.New(t)
	rxLlh := geodesy.Llh{LatRad: 0, LonRad: 0, HeightM: 0}
	rx := geodesy.Llh2Ecef(rxLlh)
	dir := geodesy.Ecef{X: rx.X * 2, Y: rx.Y, Z: rx.Z}
	norm := math.Sqrt((dir.X-rx.X)*(dir.X-rx.X) + (dir.Y-rx.Y)*(dir.Y-rx.Y) + (dir.Z-rx.Z)*(dir.Z-rx.Z))
	los := geodesy.Ecef{X: (dir.X - rx.X) / norm, Y: (dir.Y - rx.Y) / norm, Z: (dir.Z - rx.Z) / norm}

	_, el := geodesy.SatAzEl(rxLlh, los)
	assert.InDelta(math.Pi/2, el, 1e-6)
}

func TestComputeDOPsWithFourWellSpreadSatellites(t *testing.T) {
	assert := assert.New(t)
	// Uniform elevations make the z/clock geometry sub-block singular (every
	// row carries the same sin(el), perfectly correlated with the clock
	// column), so this scene mixes elevations to keep the 4x4 normal matrix
	// invertible.
	azel := [][2]float64{
		{0, 20 * math.Pi / 180}, {90 * math.Pi / 180, 40 * math.Pi / 180},
		{180 * math.Pi / 180, 60 * math.Pi / 180}, {270 * math.Pi / 180, 85 * math.Pi / 180},
	}
	dops := geodesy.ComputeDOPs(azel, 5*math.Pi/180)
	assert.Greater(dops.GDOP, 0.0)
	assert.Greater(dops.PDOP, 0.0)
	assert.Greater(dops.HDOP, 0.0)
	assert.Greater(dops.VDOP, 0.0)
	// GDOP^2 = PDOP^2 + TDOP^2, so GDOP can never be smaller than PDOP; same
	// relation holds between PDOP and HDOP (PDOP^2 = HDOP^2 + VDOP^2).
	assert.GreaterOrEqual(dops.GDOP, dops.PDOP)
	assert.GreaterOrEqual(dops.PDOP, dops.HDOP)
}

func TestComputeDOPsReturnsZeroValueBelowFourSatellites(t *testing.T) {
	assert := assert.New(t)
	azel := [][2]float64{{0, 45 * math.Pi / 180}, {math.Pi, 45 * math.Pi / 180}}
	dops := geodesy.ComputeDOPs(azel, 5*math.Pi/180)
	assert.Equal(geodesy.DOPs{}, dops)
}

func TestNoopCorrectorReturnsFixedVariance(t *testing.T) {
	assert := assert.New(t)
	c := geodesy.NoopCorrector{VarianceM2: 9.0}
	delay, variance := c.Correct(gtime.GpsTime{}, geodesy.Llh{}, 0, math.Pi/4)
	assert.Equal(0.0, delay)
	assert.Equal(9.0, variance)
}

func TestSaastamoinenCorrectorDelayDecreasesWithElevation(t *testing.T) {
	assert := assert.New(t)
	c := geodesy.SaastamoinenCorrector{RelativeHumidity: 0.7}
	rx := geodesy.Llh{LatRad: 35 * math.Pi / 180, LonRad: 0, HeightM: 100}

	low, _ := c.Correct(gtime.GpsTime{}, rx, 10*math.Pi/180)
	high, _ := c.Correct(gtime.GpsTime{}, rx, 80*math.Pi/180)
	assert.Greater(low, high)
}
