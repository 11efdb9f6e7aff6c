package ephemeris

import (
	"github.com/fxbgnss/gnsscore/gtime"
	"github.com/fxbgnss/gnsscore/sid"
)

// Status is the outcome of the ordered validity traversal of spec.md §4.3.
type Status int

const (
	StatusNull Status = iota
	StatusInvalid
	StatusWnEqZero
	StatusFitIntervalEqZero
	StatusUnhealthy
	StatusInvalidIod
	StatusTooOld
	StatusValid
)

func (s Status) String() string {
	switch s {
	case StatusNull:
		return "NULL"
	case StatusInvalid:
		return "INVALID"
	case StatusWnEqZero:
		return "WN_EQ_0"
	case StatusFitIntervalEqZero:
		return "FIT_INTERVAL_EQ_0"
	case StatusUnhealthy:
		return "UNHEALTHY"
	case StatusInvalidIod:
		return "INVALID_IOD"
	case StatusTooOld:
		return "TOO_OLD"
	case StatusValid:
		return "VALID"
	default:
		return "UNKNOWN"
	}
}

// CalcStatus runs the ordered traversal: nil pointer, invalid flag, zero
// week, zero fit interval, unhealthy, bounded IOD check, time-window check
// (spec.md §4.3). e may be a nil interface or a typed nil pointer wrapped in
// a non-nil interface; both are treated as NULL.
func CalcStatus(e Ephemeris, t gtime.GpsTime) Status {
	if isNilEphemeris(e) {
		return StatusNull
	}
	env := e.Env()
	if !env.Valid {
		return StatusInvalid
	}
	if env.Toe.WN == 0 {
		return StatusWnEqZero
	}
	if env.FitIntervalS == 0 {
		return StatusFitIntervalEqZero
	}
	if !e.healthy() {
		return StatusUnhealthy
	}
	if !e.iodValid() {
		return StatusInvalidIod
	}
	toe := gtime.MatchWeeks(env.Toe, t)
	beforeHalf, _ := e.window()
	var start, end gtime.GpsTime
	if beforeHalf {
		start = gtime.NormalizeGpsTime(gtime.GpsTime{WN: toe.WN, TOW: toe.TOW - env.FitIntervalS/2})
		end = gtime.NormalizeGpsTime(gtime.GpsTime{WN: toe.WN, TOW: toe.TOW + env.FitIntervalS/2})
	} else {
		start = toe
		end = gtime.NormalizeGpsTime(gtime.GpsTime{WN: toe.WN, TOW: toe.TOW + env.FitIntervalS})
	}
	if gtime.GpsDiffTime(t, start) < 0 || gtime.GpsDiffTime(t, end) > 0 {
		return StatusTooOld
	}
	return StatusValid
}

// Healthy reports the per-constellation health-word check in isolation,
// independent of the full ordered traversal. A false Valid flag is
// presumed healthy here (spec.md §4.3: "a deliberate soft failure" that lets
// higher layers keep tracking a not-yet-fully-validated ephemeris); CalcStatus
// itself never reaches this path when Valid is false, since it returns
// StatusInvalid first.
func Healthy(e Ephemeris) bool {
	if isNilEphemeris(e) {
		return false
	}
	if !e.Env().Valid {
		return true
	}
	return e.healthy()
}

func isNilEphemeris(e Ephemeris) bool {
	if e == nil {
		return true
	}
	switch v := e.(type) {
	case *KeplerEphemeris:
		return v == nil
	case *CartesianEphemeris:
		return v == nil
	case *GlonassEphemeris:
		return v == nil
	default:
		return false
	}
}

// healthy applies the per-constellation health rule of spec.md §4.3: GPS
// requires both a URA index in range and a signal-dependent reading of the
// 6-bit health word (IS-GPS-200 Table 20-VII); GAL/BDS require a
// non-negative URA and an all-zero health word; QZS/SBAS require only an
// all-zero health word.
func (e *KeplerEphemeris) healthy() bool {
	switch e.Sid.Code.Constellation() {
	case sid.GAL, sid.BDS:
		return e.URA >= 0 && e.Health == 0
	case sid.QZS:
		return e.Health == 0
	default: // GPS
		if e.URA < 0 || e.URA > 15 {
			return false
		}
		return gpsSignalHealthy(e.Health, e.Sid.Code)
	}
}

// gpsSignalHealthy interprets the 6-bit GPS health word per IS-GPS-200
// Table 20-VII: the top 3 bits report NAV data health (0 = OK), the bottom
// 3 bits report per-signal health, with the specific bit depending on which
// signal is being queried.
func gpsSignalHealthy(health uint8, code sid.Code) bool {
	navHealth := (health >> 3) & 0x7
	sigHealth := health & 0x7
	if navHealth != 0 {
		return false
	}
	bit := uint8(0) // L1CA
	switch code {
	case sid.GpsL2C:
		bit = 1
	case sid.GpsL5:
		bit = 2
	}
	return sigHealth&(1<<bit) == 0
}

func (e *CartesianEphemeris) healthy() bool { return e.Health == 0 }

func (e *GlonassEphemeris) healthy() bool { return e.URA >= 0 && e.Health == 0 }

// bdsIsPhase2 reports whether a BeiDou satellite number falls in the BDS-2
// numbering range (PRNs 1-16), which uses narrower IOD fields than BDS-3.
func bdsIsPhase2(sat int) bool { return sat >= 1 && sat <= 16 }

func (e *KeplerEphemeris) iodValid() bool {
	switch e.Sid.Code.Constellation() {
	case sid.GPS, sid.QZS:
		return e.Iode >= 0 && e.Iode <= 0xFF && e.Iodc >= 0 && e.Iodc <= 0x3FF
	case sid.GAL:
		return e.Iode >= 0 && e.Iode <= 0x3FF
	case sid.BDS:
		if bdsIsPhase2(e.Sid.Sat) {
			return e.Iode >= 0 && e.Iode <= 240 && e.Iodc >= 0 && e.Iodc <= 240
		}
		return e.Iode >= 0 && e.Iode <= 0xFF && e.Iodc >= 0 && e.Iodc <= 0x3FF
	default:
		return true
	}
}

func (e *CartesianEphemeris) iodValid() bool { return true }

func (e *GlonassEphemeris) iodValid() bool { return e.IOD >= 0 && e.IOD <= 0x7F }

func (e *KeplerEphemeris) window() (beforeHalf, afterFull bool) {
	switch e.Sid.Code.Constellation() {
	case sid.GAL, sid.BDS:
		return false, true
	default:
		return true, false
	}
}

func (e *CartesianEphemeris) window() (beforeHalf, afterFull bool) { return true, false }
func (e *GlonassEphemeris) window() (beforeHalf, afterFull bool)   { return true, false }
