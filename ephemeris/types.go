// Package ephemeris evaluates a broadcast ephemeris record of one of four
// flavors (Keplerian for GPS/Galileo/BeiDou/QZSS, Cartesian with
// acceleration for SBAS, force-model integration for GLONASS) into
// satellite position, velocity, acceleration, and clock correction at a
// requested epoch (spec.md §1, §4.3).
//
// Grounded on FengXuebin-gnssgo/src/ephemeris.go's Eph/GEph/SEph structs and
// Eph2Pos/GEph2Pos/SEph2Pos/status-equivalent (SelEph's time-window test,
// the health checks inlined in pntpos.go's SatExclude), generalized into an
// exhaustive tagged-sum interface per Design Notes §9 instead of the
// teacher's C-style union dispatch.
package ephemeris

import (
	"github.com/fxbgnss/gnsscore/gtime"
	"github.com/fxbgnss/gnsscore/sid"
)

// Envelope is the data common to every ephemeris flavor (spec.md §3).
type Envelope struct {
	Sid           sid.SID
	Toe           gtime.GpsTime
	URA           int // broadcast URA/SISA index (GPS ref [1] 20.3.3.3.1.1, Galileo SISA ref [7] 5.1.11); -1 = unknown
	FitIntervalS  float64
	Valid         bool
	Health        uint8
	NavSource     string
}

// Ephemeris is the exhaustive tagged-sum dispatched on by CalcSatState,
// CalcSatStateN, CalcStatus and GetTGD. Every concrete type below implements it;
// the interface exists so dispatch sites can switch exhaustively rather
// than relying on runtime introspection of a union, per Design Notes §9.
type Ephemeris interface {
	Env() Envelope
	healthy() bool
	iodValid() bool
	window() (beforeHalf, afterFull bool) // true => [toe-fit/2,toe+fit/2]; false => [toe,toe+fit]
}

// GroupDelay is the per-constellation replacement for the teacher's
// overlapping Tgd[6]float64 union (Design Notes §9 "Group-delay union").
type GroupDelay interface{ isGroupDelay() }

// GpsTgd carries the single GPS/QZSS TGD term.
type GpsTgd struct{ TGD float64 }

// BdsTgd carries BeiDou's two group delays.
type BdsTgd struct{ TGD1, TGD2 float64 }

// GalBgd carries Galileo's two broadcast group delays.
type GalBgd struct{ E5a, E5b float64 }

func (GpsTgd) isGroupDelay() {}
func (BdsTgd) isGroupDelay() {}
func (GalBgd) isGroupDelay() {}

// BeidouOrbitHint disambiguates GEO/IGSO/MEO for BeiDou satellites, since
// the ephemeris payload alone does not always convey it (spec.md §9,
// Design Notes, Open Question #2). The hint is optional: with
// OrbitHintUnknown, keplerPosVel takes SqrtA as the absolute semi-major-axis
// root and isBdsGeoSlot picks the GEO rotation by PRN range (1-5, 59-63).
type BeidouOrbitHint int

const (
	OrbitHintUnknown BeidouOrbitHint = iota
	OrbitHintMEO
	OrbitHintIGSO
	OrbitHintGEO
)

// KeplerEphemeris is the GPS/Galileo/BeiDou/QZSS payload (spec.md §3).
type KeplerEphemeris struct {
	Envelope
	Toc gtime.GpsTime

	M0, Ecc, SqrtA                     float64
	Omega0, OmegaDot, Omega, Inc, IncDot float64
	Dn                                   float64
	Crc, Crs, Cuc, Cus, Cic, Cis         float64
	Af0, Af1, Af2                       float64

	Iodc, Iode int
	OrbitHint  BeidouOrbitHint
	Tgd        GroupDelay
}

func (e *KeplerEphemeris) Env() Envelope { return e.Envelope }

// CartesianEphemeris is the SBAS payload: ECEF position/velocity/
// acceleration at Toe plus a two-term clock model (spec.md §3).
type CartesianEphemeris struct {
	Envelope
	Pos, Vel, Acc [3]float64
	Agf0, Agf1    float64
}

func (e *CartesianEphemeris) Env() Envelope { return e.Envelope }

// GlonassEphemeris is the GLONASS payload (spec.md §3). Acc carries only the
// lunisolar perturbation term; the main gravity + J2 + Earth-rotation terms
// are added during RK4 integration (see glonass.go).
type GlonassEphemeris struct {
	Envelope
	Pos, Vel, AccLunisolar [3]float64
	Gamma, Tau, DTau       float64
	FCN                    int
	IOD                    int
}

func (e *GlonassEphemeris) Env() Envelope { return e.Envelope }
