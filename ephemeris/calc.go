package ephemeris

import (
	"fmt"
	"math"

	"github.com/fxbgnss/gnsscore/gtime"
)

// SatState is the evaluated satellite state at one epoch: ECEF position,
// velocity and acceleration, clock bias and drift, and the broadcast
// position/clock variance (spec.md §4.3).
type SatState struct {
	Pos        [3]float64
	Vel        [3]float64
	Acc        [3]float64
	ClockBias  float64
	ClockDrift float64
	Variance   float64
}

// rotatingFrameAccel returns the two-body gravitational acceleration plus
// the Coriolis and centrifugal terms contributed by evaluating that gravity
// in the (rotating) ECEF frame: acc = -mu*r/|r|^3 - 2*Ω×v - Ω×(Ω×r), with
// Ω = (0,0,omega). This is the analytic acceleration companion to a Kepler
// position/velocity pair (the Cartesian path reports the broadcast
// acceleration instead), grounded on the same Coriolis/centrifugal structure gloDeriv
// already evaluates for GLONASS (glonass.go).
func rotatingFrameAccel(pos, vel [3]float64, mu, omega float64) [3]float64 {
	r2 := pos[0]*pos[0] + pos[1]*pos[1] + pos[2]*pos[2]
	r3 := r2 * math.Sqrt(r2)
	var acc [3]float64
	if r3 <= 0.0 {
		return acc
	}
	g := -mu / r3
	omg2 := omega * omega
	acc[0] = g*pos[0] + 2.0*omega*vel[1] + omg2*pos[0]
	acc[1] = g*pos[1] - 2.0*omega*vel[0] + omg2*pos[1]
	acc[2] = g * pos[2]
	return acc
}

func posVelClk(e Ephemeris, t gtime.GpsTime) (pos, vel, acc [3]float64, clk, clkRate, variance float64, err error) {
	switch v := e.(type) {
	case *KeplerEphemeris:
		var kin keplerKinematics
		pos, vel, kin, err = keplerPosVel(v, t)
		if err != nil {
			return pos, vel, acc, 0, 0, 0, err
		}
		clk, clkRate = keplerClock(v, t, kin)
		mu, omega := constellationMu(v.Sid.Code.Constellation())
		acc = rotatingFrameAccel(pos, vel, mu, omega)
		variance = uraVariance(v.Sid.Code.Constellation(), v.URA)
		return pos, vel, acc, clk, clkRate, variance, nil
	case *CartesianEphemeris:
		pos, vel, acc = cartesianPosVel(v, t)
		clk, clkRate = cartesianClock(v, t)
		variance = uraVariance(v.Sid.Code.Constellation(), v.URA)
		return pos, vel, acc, clk, clkRate, variance, nil
	case *GlonassEphemeris:
		pos, vel, acc = gloPosVel(v, t)
		clk, clkRate = gloClock(v, t)
		variance = sqr(errEphGLO)
		return pos, vel, acc, clk, clkRate, variance, nil
	default:
		return pos, vel, acc, 0, 0, 0, fmt.Errorf("ephemeris: unrecognized ephemeris type %T", e)
	}
}

// CalcSatStateN ("no validity gate") evaluates position, velocity,
// acceleration, clock bias and drift directly, without running the ordered
// status traversal first. pvt's light-time iteration calls this repeatedly
// per candidate transmission time; CalcSatState is the gated entry point for
// everything else. Velocity and acceleration are analytic derivatives of the
// position model (spec.md §4.3), never a finite difference.
func CalcSatStateN(e Ephemeris, t gtime.GpsTime) (SatState, error) {
	pos, vel, acc, clk, clkRate, variance, err := posVelClk(e, t)
	if err != nil {
		return SatState{}, err
	}
	return SatState{
		Pos:        pos,
		Vel:        vel,
		Acc:        acc,
		ClockBias:  clk,
		ClockDrift: clkRate,
		Variance:   variance,
	}, nil
}

// CalcSatState runs the ordered validity traversal and then evaluates the
// satellite state. The returned Status must be StatusValid for the state to
// be trustworthy; callers that want the raw numbers regardless of validity
// (e.g. to inspect a stale ephemeris) should use CalcSatStateN directly.
func CalcSatState(e Ephemeris, t gtime.GpsTime) (SatState, Status, error) {
	status := CalcStatus(e, t)
	st, err := CalcSatStateN(e, t)
	return st, status, err
}
