package ephemeris

import (
	"fmt"

	"github.com/fxbgnss/gnsscore/sid"
)

// tgdGamma returns γ = (f_ref/f_code)², the frequency-ratio scale factor
// get_tgd applies to translate a TGD/BGD value (defined for ref's carrier)
// onto the queried signal's carrier (spec.md §4.3).
func tgdGamma(ref, code sid.Code) (float64, error) {
	fRef, err := sid.CarrierFreqHz(sid.SID{Code: ref}, nil)
	if err != nil {
		return 0, err
	}
	f, err := sid.CarrierFreqHz(sid.SID{Code: code}, nil)
	if err != nil {
		return 0, err
	}
	return sqr(fRef / f), nil
}

// GetTGD resolves the broadcast group-delay term (seconds) applicable to a
// given signal, scaled by the frequency ratio γ onto the query carrier,
// dispatching on the ephemeris's GroupDelay payload instead of the teacher's
// Tgd[6]float64 union indexed by a dtype constant (Design Notes §9;
// grounded on pntpos.go's GetTgd and Prange's per-constellation TGD/BGD
// selection). GLONASS inter-frequency bias is carried on the ephemeris
// itself (DTau) rather than a separate table, and applies only to L2;
// querying L1 always yields zero (spec.md §4.3).
func GetTGD(e Ephemeris, code sid.Code) (float64, error) {
	switch v := e.(type) {
	case *KeplerEphemeris:
		switch g := v.Tgd.(type) {
		case GpsTgd:
			if c := code.Constellation(); c != sid.GPS && c != sid.QZS {
				return 0, fmt.Errorf("ephemeris: code %v has no GPS/QZS group delay", code)
			}
			gamma, err := tgdGamma(sid.GpsL1CA, code)
			if err != nil {
				return 0, err
			}
			return gamma * g.TGD, nil
		case BdsTgd:
			switch code {
			case sid.BdsB1I:
				return g.TGD1, nil
			case sid.BdsB2I:
				return g.TGD2, nil
			default:
				return 0, fmt.Errorf("ephemeris: code %v has no BeiDou group delay", code)
			}
		case GalBgd:
			if code.Constellation() != sid.GAL {
				return 0, fmt.Errorf("ephemeris: code %v has no Galileo group delay", code)
			}
			gamma, err := tgdGamma(sid.GalE1B, code)
			if err != nil {
				return 0, err
			}
			switch code {
			case sid.GalE5a:
				return gamma * g.E5a, nil
			case sid.GalE5b:
				return gamma * g.E5b, nil
			default:
				return 0, fmt.Errorf("ephemeris: code %v has no Galileo group delay", code)
			}
		default:
			return 0, fmt.Errorf("ephemeris: no group delay recorded for %v", v.Sid)
		}
	case *GlonassEphemeris:
		switch code {
		case sid.GloL1OF:
			return 0, nil
		case sid.GloL2OF:
			return v.DTau, nil
		default:
			return 0, fmt.Errorf("ephemeris: code %v has no GLONASS group delay", code)
		}
	case *CartesianEphemeris:
		return 0, nil
	default:
		return 0, fmt.Errorf("ephemeris: unrecognized ephemeris type %T", e)
	}
}
