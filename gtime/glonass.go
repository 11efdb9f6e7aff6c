package gtime

import "math"

// GloTime is GLONASS broken-down calendar time (spec.md §3): N4 is the
// 4-year cycle since 1996, NT the day within that cycle.
type GloTime struct {
	N4     int // 4-year interval since 1996, in [1, 31]
	NT     int // day number within the 4-year interval, in [1, 1461]
	Hour   int
	Minute int
	Sec    float64 // may reach 60 during a positive leap-second event
}

const (
	gloN4Min, gloN4Max = 1, 31
	gloNTMin, gloNTMax = 1, 1461
	gloEpochYear       = 1996
)

func gloBaseMjd(n4 int) int64 {
	return Date2Mjd(gloEpochYear+4*(n4-1), 1, 1)
}

// Glo2Gps converts GLONASS calendar time to GPS time, applying the Moscow
// UTC offset (+3h) and the GPS-UTC leap-second offset (spec.md §4.1).
// Out-of-range N4/NT return ErrGloOutOfRange (the "TIME_UNKNOWN" sentinel
// of the source API, expressed idiomatically as an error here since this is
// not an on-the-wire decoder boundary).
func Glo2Gps(g GloTime, params *UtcParams) (GpsTime, error) {
	if g.N4 < gloN4Min || g.N4 > gloN4Max || g.NT < gloNTMin || g.NT > gloNTMax {
		return GpsTime{}, ErrGloOutOfRange
	}

	inLeapSecond := g.Sec >= 60.0
	sec := g.Sec
	if inLeapSecond {
		sec -= 1.0
	}

	moscowDay := gloBaseMjd(g.N4) + int64(g.NT-1)
	moscow := UtcTime{Hour: g.Hour, Minute: g.Minute, Sec: sec}
	y, m, d := Mjd2Date(moscowDay)
	moscow.Year, moscow.Month, moscow.Day = y, m, d

	moscowContinuous := Date2Gps(moscow)
	utcApprox := NormalizeGpsTime(GpsTime{WN: moscowContinuous.WN, TOW: moscowContinuous.TOW - moscowUtcOffsetHours*3600})
	offset := GetGpsUtcOffset(utcApprox, params)
	result := NormalizeGpsTime(GpsTime{WN: utcApprox.WN, TOW: utcApprox.TOW + offset})

	if inLeapSecond {
		result = NormalizeGpsTime(GpsTime{WN: result.WN, TOW: result.TOW + 1.0})
	}
	return result, nil
}

// Gps2Glo is the inverse of Glo2Gps, propagating any day/month/year rollover
// caused by the +3h Moscow offset.
func Gps2Glo(t GpsTime, params *UtcParams) GloTime {
	leap := IsLeapSecondEvent(t, params)
	utc := Gps2Utc(t, params)
	clampedSec := utc.Sec
	if leap {
		clampedSec -= 1.0
	}

	full := Date2MjdFull(UtcTime{Year: utc.Year, Month: utc.Month, Day: utc.Day, Hour: utc.Hour, Minute: utc.Minute, Sec: clampedSec})
	shifted := Mjd{Day: full.Day, Frac: full.Frac + moscowUtcOffsetHours/24.0}
	if shifted.Frac >= 1.0 {
		shifted.Day++
		shifted.Frac -= 1.0
	}
	moscow := Mjd2DateFull(shifted)

	days := shifted.Day - gloBaseMjd(1)
	n4 := int(math.Floor(float64(days)/1461.0)) + 1
	nt := int(days-int64(n4-1)*1461) + 1

	sec := moscow.Sec
	if leap {
		sec += 1.0
	}
	return GloTime{N4: n4, NT: nt, Hour: moscow.Hour, Minute: moscow.Minute, Sec: sec}
}
