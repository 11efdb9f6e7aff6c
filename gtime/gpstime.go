package gtime

import (
	"fmt"
	"math"
)

// GpsTime is a (week number, seconds-of-week) pair, spec.md §3. WN ==
// UnknownWeek is a permitted sentinel meaning "week number not yet resolved".
type GpsTime struct {
	WN  int
	TOW float64
}

// Duration is a (weeks, seconds) pair used for long intervals where an f64
// seconds count alone would lose resolution (spec.md §3).
type Duration struct {
	Weeks   int16
	Seconds float64
}

func (d Duration) String() string {
	return fmt.Sprintf("%dw%.6fs", d.Weeks, d.Seconds)
}

// NormalizeGpsTime wraps TOW into [0, WeekSeconds) while incrementing or
// decrementing WN accordingly. It panics on pathological input (WN ≪ 0 after
// normalization, or non-finite TOW) per spec.md §4.1's documented "asserts on
// pathological inputs" behavior; use NormalizeGpsTimeSafe for a non-panicking
// variant.
func NormalizeGpsTime(t GpsTime) GpsTime {
	out, err := NormalizeGpsTimeSafe(t)
	if err != nil {
		panic(fmt.Sprintf("gtime: NormalizeGpsTime: %v (wn=%d tow=%g)", err, t.WN, t.TOW))
	}
	return out
}

// NormalizeGpsTimeSafe is the non-panicking sibling of NormalizeGpsTime: it
// rejects inputs whose wn would underflow, or whose TOW is non-finite,
// instead of asserting.
func NormalizeGpsTimeSafe(t GpsTime) (GpsTime, error) {
	if math.IsNaN(t.TOW) || math.IsInf(t.TOW, 0) {
		return GpsTime{}, ErrNonFinite
	}
	if t.WN == UnknownWeek {
		// An unknown week carries no week-rollover information to normalize;
		// only fold TOW within a single week's worth of seconds.
		tow := math.Mod(t.TOW, WeekSeconds)
		if tow < 0 {
			tow += WeekSeconds
		}
		return GpsTime{WN: UnknownWeek, TOW: tow}, nil
	}

	wn := t.WN
	tow := t.TOW
	shift := math.Floor(tow / WeekSeconds)
	wn += int(shift)
	tow -= shift * WeekSeconds
	if tow < 0 {
		tow += WeekSeconds
		wn--
	}
	if tow >= WeekSeconds {
		tow -= WeekSeconds
		wn++
	}
	if wn < 0 {
		return GpsTime{}, ErrWeekUnderflow
	}
	return GpsTime{WN: wn, TOW: tow}, nil
}

// GpsDiffTime returns end-beginning in seconds. If either time's week number
// is unknown, the times are assumed to lie within ±WeekSeconds/2 of each
// other and the difference is wrapped accordingly; otherwise the full
// weeks+tow difference is used (spec.md §4.1).
func GpsDiffTime(end, beginning GpsTime) float64 {
	if end.WN == UnknownWeek || beginning.WN == UnknownWeek {
		dt := end.TOW - beginning.TOW
		if dt > WeekSeconds/2 {
			dt -= WeekSeconds
		} else if dt < -WeekSeconds/2 {
			dt += WeekSeconds
		}
		return dt
	}
	return float64(end.WN-beginning.WN)*WeekSeconds + (end.TOW - beginning.TOW)
}

// GpsDiffTimeWeekSecond returns the same quantity as GpsDiffTime but as a
// (weeks, seconds) Duration so that precision is preserved over year-plus
// intervals (spec.md §4.1).
func GpsDiffTimeWeekSecond(end, beginning GpsTime) Duration {
	if end.WN == UnknownWeek || beginning.WN == UnknownWeek {
		dt := GpsDiffTime(end, beginning)
		return Duration{Weeks: 0, Seconds: dt}
	}
	weeks := end.WN - beginning.WN
	secs := end.TOW - beginning.TOW
	// Fold excess seconds back into whole weeks so Seconds stays bounded,
	// the way a long-interval duration should.
	wholeWeeks := int(math.Trunc(secs / WeekSeconds))
	weeks += wholeWeeks
	secs -= float64(wholeWeeks) * WeekSeconds
	return Duration{Weeks: int16(weeks), Seconds: secs}
}

// MatchWeeks resolves t's week number against ref when t.WN is unknown, by
// choosing the WN closest to ref such that |t - ref| <= WeekSeconds/2
// (spec.md §3, §4.1).
func MatchWeeks(t, ref GpsTime) GpsTime {
	if t.WN != UnknownWeek {
		return t
	}
	out := GpsTime{WN: ref.WN, TOW: t.TOW}
	dt := out.TOW - ref.TOW
	if dt > WeekSeconds/2 {
		out.WN--
	} else if dt < -WeekSeconds/2 {
		out.WN++
	}
	return out
}

// RoundToEpoch rounds t to the nearest multiple of 1/freqHz seconds within
// the week, preserving week rollover.
func RoundToEpoch(t GpsTime, freqHz float64) GpsTime {
	period := 1.0 / freqHz
	rounded := math.Round(t.TOW/period) * period
	return NormalizeGpsTime(GpsTime{WN: t.WN, TOW: rounded})
}

// FloorToEpoch floors t to the previous multiple of 1/freqHz seconds.
func FloorToEpoch(t GpsTime, freqHz float64) GpsTime {
	period := 1.0 / freqHz
	floored := math.Floor(t.TOW/period) * period
	return NormalizeGpsTime(GpsTime{WN: t.WN, TOW: floored})
}

// AdjustWeekCycle resolves a truncated week number (broadcast mod 1024, as
// GPS/QZSS/Galileo 10-bit week fields carry) against a past reference week,
// returning the absolute week number assuming "now" is at or after wnRef.
// Correct for ~19.6 years after the reference (spec.md §4.1).
func AdjustWeekCycle(wnRaw, wnRef int) int {
	return adjustWeekCycleModulus(wnRaw, wnRef, 1024)
}

// AdjustWeekCycle256 is the same adjustment for an 8-bit truncated week
// number (~4.9-year cycle), as some legacy almanac formats carry.
func AdjustWeekCycle256(wnRaw, wnRef int) int {
	return adjustWeekCycleModulus(wnRaw, wnRef, 256)
}

func adjustWeekCycleModulus(wnRaw, wnRef, modulus int) int {
	cycle := wnRef / modulus
	wn := wnRaw + cycle*modulus
	if wn < wnRef {
		wn += modulus
	}
	return wn
}
