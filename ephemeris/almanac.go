package ephemeris

import (
	"fmt"
	"math"

	"github.com/fxbgnss/gnsscore/gtime"
	"github.com/fxbgnss/gnsscore/sid"
)

// Almanac is the coarse, long-validity orbital element set broadcast
// alongside full ephemerides (spec.md §3), grounded on
// FengXuebin-gnssgo/src/types.go's Alm struct.
type Almanac struct {
	Sid                    sid.SID
	Toa                    gtime.GpsTime
	A, Ecc, Inc0           float64
	Omega0, OmegaDot, Omega float64
	M0                     float64
	F0, F1                 float64
}

// AlmanacPosition evaluates an almanac record at t, grounded on Alm2Pos.
// Almanacs carry no URA/health/fit-interval fields, so callers needing a
// validity check should gate on the envelope of a full ephemeris instead;
// this function always attempts the Kepler solve and reports an error only
// on iteration overflow or a non-positive semi-major axis.
func AlmanacPosition(alm Almanac, t gtime.GpsTime) (pos [3]float64, clockBias float64, err error) {
	if alm.A <= 0.0 {
		return pos, 0, fmt.Errorf("ephemeris: almanac semi-major axis %g not positive sat=%v", alm.A, alm.Sid)
	}
	mu, omega := constellationMu(alm.Sid.Code.Constellation())

	tk := gtime.GpsDiffTime(t, alm.Toa)
	M := alm.M0 + math.Sqrt(mu/(alm.A*alm.A*alm.A))*tk
	E := M
	Ek := 0.0
	n := 0
	for ; math.Abs(E-Ek) > rtolKepler && n < maxIterKepler; n++ {
		Ek = E
		E -= (E - alm.Ecc*math.Sin(E) - M) / (1.0 - alm.Ecc*math.Cos(E))
	}
	if n >= maxIterKepler {
		return pos, 0, errKeplerOverflow(alm.Sid)
	}
	sinE, cosE := math.Sin(E), math.Cos(E)

	u := math.Atan2(math.Sqrt(1.0-alm.Ecc*alm.Ecc)*sinE, cosE-alm.Ecc) + alm.Omega
	r := alm.A * (1.0 - alm.Ecc*cosE)
	incl := alm.Inc0
	O := alm.Omega0 + (alm.OmegaDot-omega)*tk - omega*alm.Toa.TOW

	x, y := r*math.Cos(u), r*math.Sin(u)
	sinO, cosO, cosi := math.Sin(O), math.Cos(O), math.Cos(incl)

	pos[0] = x*cosO - y*cosi*sinO
	pos[1] = x*sinO + y*cosi*cosO
	pos[2] = y * math.Sin(incl)

	return pos, alm.F0 + alm.F1*tk, nil
}

func errKeplerOverflow(s sid.SID) error {
	return &keplerOverflowError{s}
}

type keplerOverflowError struct{ sid sid.SID }

func (e *keplerOverflowError) Error() string {
	return "ephemeris: almanac kepler iteration overflow sat=" + e.sid.String()
}
