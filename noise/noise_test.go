package noise_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fxbgnss/gnsscore/noise"
	"github.com/fxbgnss/gnsscore/sid"
)

func TestPseudorangeVarianceDecreasesWithElevation(t *testing.T) {
	assert := assert.New(t)
	opt := noise.DefaultOptions()

	low := noise.PseudorangeVariance(opt, sid.GpsL1CA, 10*math.Pi/180, 45, true, 10)
	high := noise.PseudorangeVariance(opt, sid.GpsL1CA, 80*math.Pi/180, 45, true, 10)
	assert.Greater(low, high)
}

func TestPseudorangeVarianceClampsBelowMinElevation(t *testing.T) {
	assert := assert.New(t)
	opt := noise.DefaultOptions()

	atMin := noise.PseudorangeVariance(opt, sid.GpsL1CA, opt.MinElevationRad, 45, true, 10)
	belowMin := noise.PseudorangeVariance(opt, sid.GpsL1CA, opt.MinElevationRad/2, 45, true, 10)
	assert.Equal(atMin, belowMin)
}

func TestPseudorangeVarianceScalesByPerCodeBaseline(t *testing.T) {
	assert := assert.New(t)
	opt := noise.DefaultOptions()

	gps := noise.PseudorangeVariance(opt, sid.GpsL1CA, 45*math.Pi/180, 45, true, 10)
	glo := noise.PseudorangeVariance(opt, sid.GloL1OF, 45*math.Pi/180, 45, true, 10)
	bds := noise.PseudorangeVariance(opt, sid.BdsB1I, 45*math.Pi/180, 45, true, 10)
	assert.Greater(glo, gps)
	assert.Greater(glo, bds)
}

func TestPseudorangeVarianceDecreasesWithCn0(t *testing.T) {
	assert := assert.New(t)
	opt := noise.DefaultOptions()

	weak := noise.PseudorangeVariance(opt, sid.GpsL1CA, 45*math.Pi/180, 25, true, 10)
	strong := noise.PseudorangeVariance(opt, sid.GpsL1CA, 45*math.Pi/180, 50, true, 10)
	assert.Greater(weak, strong)
}

func TestPseudorangeVarianceUnlockedPllPenalty(t *testing.T) {
	assert := assert.New(t)
	opt := noise.DefaultOptions()

	locked := noise.PseudorangeVariance(opt, sid.GpsL1CA, 45*math.Pi/180, 45, true, opt.LockRampS)
	unlocked := noise.PseudorangeVariance(opt, sid.GpsL1CA, 45*math.Pi/180, 45, false, 0)
	assert.InDelta(locked*16.0, unlocked, 1e-9)
}

func TestPseudorangeVarianceLockTimeRampsFromFourToOne(t *testing.T) {
	assert := assert.New(t)
	opt := noise.DefaultOptions()

	justAcquired := noise.PseudorangeVariance(opt, sid.GpsL1CA, 45*math.Pi/180, 45, true, 0)
	fullyLocked := noise.PseudorangeVariance(opt, sid.GpsL1CA, 45*math.Pi/180, 45, true, opt.LockRampS)
	assert.InDelta(fullyLocked*4.0, justAcquired, 1e-9)

	halfway := noise.PseudorangeVariance(opt, sid.GpsL1CA, 45*math.Pi/180, 45, true, opt.LockRampS/2)
	assert.Greater(halfway, fullyLocked)
	assert.Less(halfway, justAcquired)
}

func TestDopplerVarianceDecreasesWithCn0(t *testing.T) {
	assert := assert.New(t)
	opt := noise.DefaultOptions()

	weak := noise.DopplerVariance(opt, 25, true, opt.LockRampS)
	strong := noise.DopplerVariance(opt, 50, true, opt.LockRampS)
	assert.Greater(weak, strong)
}

func TestDopplerVarianceUnlockedPllPenalty(t *testing.T) {
	assert := assert.New(t)
	opt := noise.DefaultOptions()

	locked := noise.DopplerVariance(opt, 45, true, opt.LockRampS)
	unlocked := noise.DopplerVariance(opt, 45, false, 0)
	assert.InDelta(locked*16.0, unlocked, 1e-9)
}
