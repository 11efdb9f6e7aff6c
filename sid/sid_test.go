package sid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fxbgnss/gnsscore/sid"
)

func TestCarrierFreqHzNonFdma(t *testing.T) {
	assert := assert.New(t)
	freq, err := sid.CarrierFreqHz(sid.SID{Code: sid.GpsL1CA, Sat: 1}, nil)
	assert.NoError(err)
	assert.InDelta(1.57542e9, freq, 1.0)
}

func TestCarrierFreqHzFdmaRequiresFcn(t *testing.T) {
	assert := assert.New(t)
	_, err := sid.CarrierFreqHz(sid.SID{Code: sid.GloL1OF, Sat: 1}, nil)
	assert.Error(err)

	fcnMap := sid.NewFcnMap()
	fcnMap.Set(1, 1, 7+3) // slot +3
	freq, err := sid.CarrierFreqHz(sid.SID{Code: sid.GloL1OF, Sat: 1}, fcnMap)
	assert.NoError(err)
	assert.Greater(freq, 1.602e9)
}

func TestWavelengthMMatchesFrequency(t *testing.T) {
	assert := assert.New(t)
	const c = 299792458.0
	wl, err := sid.WavelengthM(sid.SID{Code: sid.GpsL1CA, Sat: 1}, nil, c)
	assert.NoError(err)
	freq, _ := sid.CarrierFreqHz(sid.SID{Code: sid.GpsL1CA, Sat: 1}, nil)
	assert.InDelta(c/freq, wl, 1e-9)
}

func TestCodeConstellationMapping(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(sid.GPS, sid.GpsL1CA.Constellation())
	assert.Equal(sid.GLO, sid.GloL1OF.Constellation())
	assert.Equal(sid.GAL, sid.GalE1B.Constellation())
	assert.Equal(sid.BDS, sid.BdsB1I.Constellation())
	assert.Equal(sid.QZS, sid.QzsL1CA.Constellation())
	assert.Equal(sid.SBAS, sid.SbasL1.Constellation())
}

func TestInfoKnownAndUnknownCode(t *testing.T) {
	assert := assert.New(t)
	info, ok := sid.Info(sid.GpsL1CA)
	assert.True(ok)
	assert.True(info.DirectAcquisition())
	assert.False(info.IsFdma())

	info, ok = sid.Info(sid.GloL1OF)
	assert.True(ok)
	assert.True(info.IsFdma())
}

func TestFcnMapNilReceiverAlwaysMisses(t *testing.T) {
	assert := assert.New(t)
	var m *sid.FcnMap
	_, ok := m.Lookup(1, 1)
	assert.False(ok)
}

func TestFcnMapSetLookupRoundTrip(t *testing.T) {
	assert := assert.New(t)
	m := sid.NewFcnMap()
	m.Set(3, 1, 5)
	fcn, ok := m.Lookup(3, 1)
	assert.True(ok)
	assert.Equal(5, fcn)

	_, ok = m.Lookup(3, 2)
	assert.False(ok)
}
