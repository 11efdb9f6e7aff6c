package ephemeris

import (
	"fmt"
	"math"

	"github.com/fxbgnss/gnsscore/gtime"
	"github.com/fxbgnss/gnsscore/sid"
)

func constellationMu(c sid.Constellation) (mu, omega float64) {
	switch c {
	case sid.GAL:
		return muGAL, omegaEarthGAL
	case sid.BDS:
		return muBDS, omegaEarthBDS
	default:
		return muGPS, omegaEarthGPS
	}
}

// keplerKinematics carries the eccentric-anomaly solution and its time
// derivative forward from keplerPosVel to keplerClock, so the clock's
// relativity term can be differentiated analytically instead of refitting
// the Kepler solve a second time.
type keplerKinematics struct {
	ecc, sinE, cosE, dEdt, a float64
}

// keplerPosVel solves Kepler's equation by Newton iteration and evaluates
// the orbital-plane position and its analytic first derivative (velocity),
// returning both in ECEF. Grounded on FengXuebin-gnssgo/src/ephemeris.go's
// Eph2Pos, generalized across GPS/Galileo/BeiDou/QZSS via constellationMu and
// the BDS-3 Aref_MEO/Aref_IGSO_GEO hinted semi-major-axis reference (ref
// [9]); velocity is the chain-rule derivative through every stage (ν, u, r,
// i, x, y, Ω) rather than a finite difference, per spec.md §4.3.
func keplerPosVel(e *KeplerEphemeris, t gtime.GpsTime) (pos, vel [3]float64, kin keplerKinematics, err error) {
	toe := gtime.MatchWeeks(e.Toe, t)
	tk := gtime.GpsDiffTime(t, toe)

	mu, omega := constellationMu(e.Sid.Code.Constellation())

	// SqrtA is always the broadcast square root; for the BDS-3 hinted case it
	// is the square root of the *delta* relative to Aref_MEO/Aref_IGSO_GEO
	// (ref [9]), not the absolute semi-major axis.
	var A, M, meanMotion float64
	if e.Sid.Code.Constellation() == sid.BDS && e.OrbitHint != OrbitHintUnknown {
		var a0 float64
		switch e.OrbitHint {
		case OrbitHintMEO:
			a0 = aRefMEO + e.SqrtA*e.SqrtA
		default: // IGSO or GEO
			a0 = aRefIGSOGEO + e.SqrtA*e.SqrtA
		}
		A = a0
		n0 := math.Sqrt(mu / (a0 * a0 * a0))
		meanMotion = n0 + e.Dn
		M = e.M0 + meanMotion*tk
	} else {
		A = e.SqrtA * e.SqrtA
		meanMotion = math.Sqrt(mu/(A*A*A)) + e.Dn
		M = e.M0 + meanMotion*tk
	}

	if !(e.Ecc >= 0.0 && e.Ecc < 1.0) {
		return pos, vel, kin, fmt.Errorf("ephemeris: eccentricity %g outside [0,1) sat=%v", e.Ecc, e.Sid)
	}
	E := M
	Ek := 0.0
	n := 0
	for ; math.Abs(E-Ek) > rtolKepler && n < maxIterKepler; n++ {
		Ek = E
		E -= (E - e.Ecc*math.Sin(E) - M) / (1.0 - e.Ecc*math.Cos(E))
	}
	if n >= maxIterKepler {
		return pos, vel, kin, fmt.Errorf("ephemeris: kepler iteration overflow sat=%v", e.Sid)
	}
	sinE, cosE := math.Sin(E), math.Cos(E)
	dEdt := meanMotion / (1.0 - e.Ecc*cosE)

	sqrt1me2 := math.Sqrt(1.0 - e.Ecc*e.Ecc)
	dNuDt := sqrt1me2 * dEdt / (1.0 - e.Ecc*cosE)

	u0 := math.Atan2(sqrt1me2*sinE, cosE-e.Ecc) + e.Omega
	r0 := A * (1.0 - e.Ecc*cosE)
	dR0Dt := A * e.Ecc * sinE * dEdt
	incl0 := e.Inc + e.IncDot*tk

	sin2u, cos2u := math.Sin(2.0*u0), math.Cos(2.0*u0)
	u := u0 + e.Cus*sin2u + e.Cuc*cos2u
	r := r0 + e.Crs*sin2u + e.Crc*cos2u
	incl := incl0 + e.Cis*sin2u + e.Cic*cos2u

	dUDt := dNuDt * (1.0 + 2.0*(e.Cus*cos2u-e.Cuc*sin2u))
	dRDt := dR0Dt + 2.0*dNuDt*(e.Crs*cos2u-e.Crc*sin2u)
	dInclDt := e.IncDot + 2.0*dNuDt*(e.Cis*cos2u-e.Cic*sin2u)

	sinu, cosu := math.Sin(u), math.Cos(u)
	x := r * cosu
	y := r * sinu
	dx := dRDt*cosu - r*sinu*dUDt
	dy := dRDt*sinu + r*cosu*dUDt

	cosi, sini := math.Cos(incl), math.Sin(incl)

	// For BDS, the node correction is evaluated in BeiDou time, which runs
	// 14 s behind GPS time (spec.md §4.3).
	toeSec := toe.TOW
	if e.Sid.Code.Constellation() == sid.BDS {
		toeSec -= float64(gtime.BdsSecondToGpsSecond)
	}

	if e.Sid.Code.Constellation() == sid.BDS && isBdsGeoSlot(e.Sid.Sat, e.OrbitHint) {
		O := e.Omega0 + e.OmegaDot*tk - omega*toeSec
		dOdt := e.OmegaDot
		sinO, cosO := math.Sin(O), math.Cos(O)

		xg := x*cosO - y*cosi*sinO
		yg := x*sinO + y*cosi*cosO
		zg := y * sini
		dxg := dx*cosO - x*sinO*dOdt - dy*cosi*sinO + y*sini*dInclDt*sinO - y*cosi*cosO*dOdt
		dyg := dx*sinO + x*cosO*dOdt + dy*cosi*cosO - y*sini*dInclDt*cosO - y*cosi*sinO*dOdt
		dzg := dy*sini + y*cosi*dInclDt

		sino, coso := math.Sin(omega*tk), math.Cos(omega*tk)
		pos[0] = xg*coso + yg*sino*cos5Deg + zg*sino*sin5Deg
		pos[1] = -xg*sino + yg*coso*cos5Deg + zg*coso*sin5Deg
		pos[2] = -yg*sin5Deg + zg*cos5Deg

		vel[0] = dxg*coso - xg*omega*sino + dyg*sino*cos5Deg + yg*omega*coso*cos5Deg + dzg*sino*sin5Deg + zg*omega*coso*sin5Deg
		vel[1] = -dxg*sino - xg*omega*coso + dyg*coso*cos5Deg - yg*omega*sino*cos5Deg + dzg*coso*sin5Deg - zg*omega*sino*sin5Deg
		vel[2] = -dyg*sin5Deg + dzg*cos5Deg
	} else {
		O := e.Omega0 + (e.OmegaDot-omega)*tk - omega*toeSec
		dOdt := e.OmegaDot - omega
		sinO, cosO := math.Sin(O), math.Cos(O)

		pos[0] = x*cosO - y*cosi*sinO
		pos[1] = x*sinO + y*cosi*cosO
		pos[2] = y * sini

		vel[0] = dx*cosO - x*sinO*dOdt - dy*cosi*sinO + y*sini*dInclDt*sinO - y*cosi*cosO*dOdt
		vel[1] = dx*sinO + x*cosO*dOdt + dy*cosi*cosO - y*sini*dInclDt*cosO - y*cosi*sinO*dOdt
		vel[2] = dy*sini + y*cosi*dInclDt
	}

	kin = keplerKinematics{ecc: e.Ecc, sinE: sinE, cosE: cosE, dEdt: dEdt, a: A}
	return pos, vel, kin, nil
}

// isBdsGeoSlot reports whether a BeiDou satellite uses the 5-degree GEO
// rotation correction (ref [9] table 4-1: BDS-2 GEO PRNs 1-5 and 59-63,
// or an explicit GEO orbit hint for BDS-3).
func isBdsGeoSlot(sat int, hint BeidouOrbitHint) bool {
	if hint == OrbitHintGEO {
		return true
	}
	if hint != OrbitHintUnknown {
		return false
	}
	return sat <= 5 || sat >= 59
}

// keplerClock evaluates the two-iteration broadcast clock polynomial plus
// the relativity correction (Eph2Pos's tail in the teacher), along with its
// analytic time derivative (clock drift).
func keplerClock(e *KeplerEphemeris, t gtime.GpsTime, kin keplerKinematics) (clk, clkRate float64) {
	mu, _ := constellationMu(e.Sid.Code.Constellation())
	tk := gtime.GpsDiffTime(t, gtime.MatchWeeks(e.Toc, t))
	ts := tk
	for i := 0; i < 2; i++ {
		tk = ts - (e.Af0 + e.Af1*tk + e.Af2*tk*tk)
	}
	clk = e.Af0 + e.Af1*tk + e.Af2*tk*tk
	relFactor := 2.0 * math.Sqrt(mu*kin.a) / sqr(lightSpeedMps)
	clk -= relFactor * kin.ecc * kin.sinE

	clkRate = e.Af1 + 2.0*e.Af2*tk
	clkRate -= relFactor * kin.ecc * kin.cosE * kin.dEdt
	return clk, clkRate
}
