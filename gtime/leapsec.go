package gtime

import "github.com/fxbgnss/gnsscore/internal/obslog"

// UtcParams holds the broadcast UTC polynomial parameters (spec.md §3):
// A0 + A1*dt + A2*dt^2 evaluated at dt = t - Tot, plus the leap-second event
// time TLse and the leap-second totals before/after that event.
type UtcParams struct {
	A0, A1, A2         float64
	Tot                GpsTime
	TLse               GpsTime
	LeapSecondsBefore  float64
	LeapSecondsAfter   float64
}

// Valid reports whether the polynomial parameters look populated (the zero
// value, with Tot.WN==0, means "not supplied").
func (p *UtcParams) Valid() bool {
	return p != nil && p.Tot.WN != 0
}

type leapDate struct {
	year, month, day int
	offsetAfter      float64
}

// leapDates is the hard-coded history of UTC leap-second insertions
// (TAI-UTC increments), from the first event after the GPS epoch through
// the latest known one. Entries are the UTC calendar date on which the new
// offset takes effect; GPS-UTC starts at 0 on 1980-01-06.
//
// SHOULD be kept current (spec.md §9 "leap-second table update discipline").
var leapDates = []leapDate{
	{1981, 7, 1, 1}, {1982, 7, 1, 2}, {1983, 7, 1, 3}, {1985, 7, 1, 4},
	{1988, 1, 1, 5}, {1990, 1, 1, 6}, {1991, 1, 1, 7}, {1992, 7, 1, 8},
	{1993, 7, 1, 9}, {1994, 7, 1, 10}, {1996, 1, 1, 11}, {1997, 7, 1, 12},
	{1999, 1, 1, 13}, {2006, 1, 1, 14}, {2009, 1, 1, 15}, {2012, 7, 1, 16},
	{2015, 7, 1, 17}, {2017, 1, 1, 18},
}

// tableCompiledYear and maxExtrapolationSeconds implement the Design Notes
// §9 discipline: warn rather than silently extrapolate far past the known
// table.
const (
	tableCompiledYear        = 2026
	maxExtrapolationSeconds  = 2 * 365 * DaySeconds
)

type leapEvent struct {
	tLse         GpsTime // instant the extra leap second occupies
	before       float64
	after        float64
}

var leapEvents = buildLeapEvents()

func buildLeapEvents() []leapEvent {
	events := make([]leapEvent, len(leapDates))
	for i, d := range leapDates {
		before := 0.0
		if i > 0 {
			before = leapDates[i-1].offsetAfter
		}
		midnightUtc := Date2Gps(UtcTime{Year: d.year, Month: d.month, Day: d.day})
		threshold := NormalizeGpsTime(GpsTime{WN: midnightUtc.WN, TOW: midnightUtc.TOW + before})
		tLse := NormalizeGpsTime(GpsTime{WN: threshold.WN, TOW: threshold.TOW - 1.0})
		events[i] = leapEvent{tLse: tLse, before: before, after: d.offsetAfter}
	}
	return events
}

// GetGpsUtcOffset returns GPS-minus-UTC (seconds) at GPS time t. With
// UtcParams present and valid, it evaluates the broadcast polynomial plus
// the applicable leap total; otherwise it scans the hard-coded table from
// latest to earliest and returns the offset whose event precedes t by at
// least 1 second (spec.md §4.1).
func GetGpsUtcOffset(t GpsTime, params *UtcParams) float64 {
	if params.Valid() {
		dt := GpsDiffTime(t, params.Tot)
		offset := params.A0 + params.A1*dt + params.A2*dt*dt
		if GpsDiffTime(t, params.TLse) >= 1.0 {
			return offset + params.LeapSecondsAfter
		}
		return offset + params.LeapSecondsBefore
	}

	warnIfStale(t)

	for i := len(leapEvents) - 1; i >= 0; i-- {
		ev := leapEvents[i]
		if GpsDiffTime(t, ev.tLse) >= 1.0 {
			return ev.after
		}
	}
	if len(leapEvents) > 0 {
		return leapEvents[0].before
	}
	return 0.0
}

// IsLeapSecondEvent reports whether t falls within [TLse, TLse+1s), i.e.
// within the extra leap second itself (spec.md §4.1).
func IsLeapSecondEvent(t GpsTime, params *UtcParams) bool {
	if params.Valid() {
		dt := GpsDiffTime(t, params.TLse)
		return dt >= 0.0 && dt < 1.0
	}
	for _, ev := range leapEvents {
		dt := GpsDiffTime(t, ev.tLse)
		if dt >= 0.0 && dt < 1.0 {
			return true
		}
	}
	return false
}

func warnIfStale(t GpsTime) {
	latest := leapEvents[len(leapEvents)-1].tLse
	if GpsDiffTime(t, latest) > maxExtrapolationSeconds {
		obslog.Warnf("gtime: GetGpsUtcOffset extrapolating %.0f s past the latest known leap-second entry (table compiled %d); supply UtcParams for authoritative results",
			GpsDiffTime(t, latest), tableCompiledYear)
	}
}
