package ephemeris

import (
	"math"

	"github.com/fxbgnss/gnsscore/gtime"
)

// gloDeriv is the GLONASS orbit differential equation, ref [2] A.3.1.2 (with
// the xdot[4]/xdot[5] sign fix the teacher notes). x is {pos,vel}, acc is the
// lunisolar perturbation. The last three components of the returned state
// are the gravity+J2+Earth-rotation+input acceleration — the same value
// gloPosVel reports back to the caller as the satellite's analytic
// acceleration, since it is already an exact evaluation of the force model
// at the integrated state (no finite differencing needed).
func gloDeriv(x [6]float64, acc [3]float64) (xdot [6]float64) {
	r2 := x[0]*x[0] + x[1]*x[1] + x[2]*x[2]
	if r2 <= 0.0 {
		return xdot
	}
	r3 := r2 * math.Sqrt(r2)
	omg2 := sqr(omegaEarthGLO)

	a := 1.5 * j2GLO * muGLO * sqr(earthRadiusGLO) / r2 / r3
	b := 5.0 * x[2] * x[2] / r2
	c := -muGLO/r3 - a*(1.0-b)

	xdot[0] = x[3]
	xdot[1] = x[4]
	xdot[2] = x[5]
	xdot[3] = (c+omg2)*x[0] + 2.0*omegaEarthGLO*x[4] + acc[0]
	xdot[4] = (c+omg2)*x[1] - 2.0*omegaEarthGLO*x[3] + acc[1]
	xdot[5] = (c-2.0*a)*x[2] + acc[2]
	return xdot
}

// gloRK4Step advances x by dt using 4th-order Runge-Kutta, matching the
// teacher's Glorbit.
func gloRK4Step(x [6]float64, dt float64, acc [3]float64) [6]float64 {
	k1 := gloDeriv(x, acc)
	var w [6]float64
	for i := range w {
		w[i] = x[i] + k1[i]*dt/2.0
	}
	k2 := gloDeriv(w, acc)
	for i := range w {
		w[i] = x[i] + k2[i]*dt/2.0
	}
	k3 := gloDeriv(w, acc)
	for i := range w {
		w[i] = x[i] + k3[i]*dt
	}
	k4 := gloDeriv(w, acc)
	var out [6]float64
	for i := range out {
		out[i] = x[i] + (k1[i]+2.0*k2[i]+2.0*k3[i]+k4[i])*dt/6.0
	}
	return out
}

// gloPosVel integrates the GLONASS state from Toe to t in TSTEP-sized hops,
// bounded at maxStepsGLO steps (so bounded work ≤ maxStepsGLO*tstepGLO
// seconds of propagation, spec.md §4.3), grounded on
// FengXuebin-gnssgo/src/ephemeris.go's GEph2Pos. Acceleration is the force
// model re-evaluated at the final integrated state, not a finite difference.
func gloPosVel(e *GlonassEphemeris, t gtime.GpsTime) (pos, vel, acc [3]float64) {
	tk := gtime.GpsDiffTime(t, gtime.MatchWeeks(e.Toe, t))

	var x [6]float64
	for i := 0; i < 3; i++ {
		x[i] = e.Pos[i]
		x[i+3] = e.Vel[i]
	}

	step := tstepGLO
	if tk < 0.0 {
		step = -tstepGLO
	}
	remaining := tk
	for i := 0; i < maxStepsGLO && math.Abs(remaining) > 1e-9; i++ {
		if math.Abs(remaining) < tstepGLO {
			step = remaining
		}
		x = gloRK4Step(x, step, e.AccLunisolar)
		remaining -= step
	}
	pos[0], pos[1], pos[2] = x[0], x[1], x[2]
	vel[0], vel[1], vel[2] = x[3], x[4], x[5]

	xdot := gloDeriv(x, e.AccLunisolar)
	acc[0], acc[1], acc[2] = xdot[3], xdot[4], xdot[5]
	return pos, vel, acc
}

// gloClock evaluates the GLONASS clock correction −τ + γ·dt − d_tau
// (spec.md §4.3, §6) and its drift γ.
func gloClock(e *GlonassEphemeris, t gtime.GpsTime) (clk, clkRate float64) {
	tk := gtime.GpsDiffTime(t, gtime.MatchWeeks(e.Toe, t))
	ts := tk
	for i := 0; i < 2; i++ {
		tk = ts - (-e.Tau + e.Gamma*tk)
	}
	clk = -e.Tau + e.Gamma*tk - e.DTau
	return clk, e.Gamma
}
