package ephemeris

import "github.com/fxbgnss/gnsscore/sid"

// uraValuesGPS is the GPS URA index -> 1-sigma accuracy (m) table (spec.md
// §6), a 16-level index (0-15); an index above 15 marks "unhealthy" per the
// GPS health rule in status.go.
var uraValuesGPS = []float64{
	2.0, 2.8, 4.0, 5.7, 8.0, 11.3, 16.0, 32.0, 64.0, 128.0, 256.0, 512.0, 1024.0, 2048.0, 4096.0, 6144.0,
}

const galNapaStd = 500.0

// uraVariance returns the broadcast-ephemeris position/clock variance (m^2)
// implied by a URA/SISA index. Galileo SISA uses the piecewise-linear
// mapping of ref [7] 5.1.11; every other constellation uses the same
// GPS-style table lookup the teacher applies uniformly across GPS/QZSS/
// BeiDou/SBAS.
func uraVariance(c sid.Constellation, ura int) float64 {
	if c == sid.GAL {
		switch {
		case ura < 0:
			return sqr(galNapaStd)
		case ura <= 49:
			return sqr(float64(ura) * 0.01)
		case ura <= 74:
			return sqr(0.5 + float64(ura-50)*0.02)
		case ura <= 99:
			return sqr(1.0 + float64(ura-75)*0.04)
		case ura <= 125:
			return sqr(2.0 + float64(ura-100)*0.16)
		default:
			return sqr(galNapaStd)
		}
	}
	if ura < 0 || ura >= len(uraValuesGPS) {
		return sqr(uraValuesGPS[len(uraValuesGPS)-1])
	}
	return sqr(uraValuesGPS[ura])
}
