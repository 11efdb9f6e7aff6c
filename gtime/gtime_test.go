package gtime_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fxbgnss/gnsscore/gtime"
)

func TestNormalizeGpsTimeWrapsWeekRollover(t *testing.T) {
	assert := assert.New(t)

	out := gtime.NormalizeGpsTime(gtime.GpsTime{WN: 2300, TOW: gtime.WeekSeconds + 10})
	assert.Equal(2301, out.WN)
	assert.InDelta(10.0, out.TOW, 1e-9)

	out = gtime.NormalizeGpsTime(gtime.GpsTime{WN: 2300, TOW: -5})
	assert.Equal(2299, out.WN)
	assert.InDelta(gtime.WeekSeconds-5, out.TOW, 1e-9)
}

func TestNormalizeGpsTimeSafeRejectsNonFinite(t *testing.T) {
	assert := assert.New(t)
	_, err := gtime.NormalizeGpsTimeSafe(gtime.GpsTime{WN: 2300, TOW: math.NaN()})
	assert.ErrorIs(err, gtime.ErrNonFinite)
}

func TestGpsDiffTimeRoundTrip(t *testing.T) {
	assert := assert.New(t)
	a := gtime.GpsTime{WN: 2300, TOW: 500000}
	b := gtime.GpsTime{WN: 2301, TOW: 1000}
	dt := gtime.GpsDiffTime(b, a)
	back := gtime.NormalizeGpsTime(gtime.GpsTime{WN: a.WN, TOW: a.TOW + dt})
	assert.InDelta(b.TOW, back.TOW, 1e-6)
	assert.Equal(b.WN, back.WN)
}

func TestMatchWeeksPicksNearestWeek(t *testing.T) {
	assert := assert.New(t)
	ref := gtime.GpsTime{WN: 2300, TOW: 604790}
	t1 := gtime.GpsTime{WN: gtime.UnknownWeek, TOW: 5}
	out := gtime.MatchWeeks(t1, ref)
	assert.Equal(2301, out.WN)
}

func TestAdjustWeekCycleRecoversAbsoluteWeek(t *testing.T) {
	assert := assert.New(t)
	wnRef := 2300
	truncated := wnRef % 1024
	assert.Equal(wnRef, gtime.AdjustWeekCycle(truncated, wnRef))
	assert.Equal(wnRef+1024, gtime.AdjustWeekCycle(truncated, wnRef+1))
}

func TestGps2UtcRoundTrip(t *testing.T) {
	assert := assert.New(t)
	gps := gtime.GpsTime{WN: 2300, TOW: 345600}
	u := gtime.Gps2Utc(gps, nil)
	back := gtime.Utc2Gps(u, nil)
	assert.InDelta(gps.TOW, back.TOW, 1e-6)
	assert.Equal(gps.WN, back.WN)
}

func TestGetGpsUtcOffsetMonotonicAcrossLeapSecondEvent(t *testing.T) {
	assert := assert.New(t)
	// 2017-01-01 introduced the most recent leap second; walk the known
	// table boundary instead of a literal epoch to avoid hard-coding the
	// GPS week of that date.
	before := gtime.GetGpsUtcOffset(gtime.GpsTime{WN: 1, TOW: 0}, nil)
	after := gtime.GetGpsUtcOffset(gtime.GpsTime{WN: 3000, TOW: 0}, nil)
	assert.GreaterOrEqual(after, before)
}

func TestMjdRoundTrip(t *testing.T) {
	assert := assert.New(t)
	gps := gtime.GpsTime{WN: 2300, TOW: 12345.5}
	mjd := gtime.Gps2Mjd(gps)
	back := gtime.Mjd2Gps(mjd)
	assert.InDelta(gps.TOW, back.TOW, 1e-6)
	assert.Equal(gps.WN, back.WN)
}

func TestGloGpsRoundTrip(t *testing.T) {
	assert := assert.New(t)
	gps := gtime.GpsTime{WN: 2300, TOW: 345600}
	glo := gtime.Gps2Glo(gps, nil)
	back, err := gtime.Glo2Gps(glo, nil)
	assert.NoError(err)
	assert.InDelta(gps.TOW, back.TOW, 1e-3)
	assert.Equal(gps.WN, back.WN)
}

func TestGlo2GpsRejectsOutOfRange(t *testing.T) {
	assert := assert.New(t)
	_, err := gtime.Glo2Gps(gtime.GloTime{N4: 99, NT: 1}, nil)
	assert.ErrorIs(err, gtime.ErrGloOutOfRange)
}

func TestRoundAndFloorToEpoch(t *testing.T) {
	assert := assert.New(t)
	t1 := gtime.GpsTime{WN: 2300, TOW: 100.26}
	rounded := gtime.RoundToEpoch(t1, 1.0)
	assert.InDelta(100.0, rounded.TOW, 1e-9)

	floored := gtime.FloorToEpoch(gtime.GpsTime{WN: 2300, TOW: 100.9}, 1.0)
	assert.InDelta(100.0, floored.TOW, 1e-9)
}
