// Package sid implements the signal identifier taxonomy of spec.md §4.2: a
// closed enumeration of constellation/code pairs, with per-code carrier
// frequency, chip rate, phase-alignment convention and the like looked up
// from a table instead of per-constellation switch functions.
//
// Grounded on FengXuebin-gnssgo/src/types.go's SYS_*/CODE_* constants and
// common.go's Code2Freq_GPS/GLO/GAL/QZS/BDS/IRN/SBS family, collapsed into
// one data table per Design Notes §9 ("sentinels vs explicit validity" and
// the general preference for explicit tables over repeated switches).
package sid

import "fmt"

// Constellation identifies a GNSS constellation.
type Constellation uint8

const (
	GPS Constellation = iota
	GLO
	GAL
	BDS
	QZS
	SBAS
)

func (c Constellation) String() string {
	switch c {
	case GPS:
		return "GPS"
	case GLO:
		return "GLONASS"
	case GAL:
		return "Galileo"
	case BDS:
		return "BeiDou"
	case QZS:
		return "QZSS"
	case SBAS:
		return "SBAS"
	default:
		return "UNKNOWN"
	}
}

// Code is a closed enumeration of signal codes (spec.md §4.2).
type Code uint8

const (
	GpsL1CA Code = iota
	GpsL2C
	GpsL5
	GloL1OF
	GloL2OF
	GalE1B
	GalE5a
	GalE5b
	BdsB1I
	BdsB2I
	BdsB3I
	QzsL1CA
	QzsL5
	SbasL1
)

// SID is a (code, satellite number) pair (spec.md §3 Data Model).
type SID struct {
	Code Code
	Sat  int
}

func (s SID) String() string {
	return fmt.Sprintf("%s-%d", s.Code, s.Sat)
}

func (c Code) String() string {
	if info, ok := codeTable[c]; ok {
		return info.name
	}
	return "UNKNOWN"
}

// Constellation returns the code's constellation.
func (c Code) Constellation() Constellation {
	return codeTable[c].constellation
}

// CodeInfo is the static per-code metadata spec.md §4.2 requires.
type CodeInfo struct {
	name                string
	constellation       Constellation
	firstSat, satCount  int
	signalsPerSat       int
	carrierFreqHz       float64
	chipCount           int
	chipRateHz          float64
	directAcquisition   bool
	prnPeriodMs         float64
	maxSvDopplerHz      float64
	phaseAlignCycles    float64 // RINEX 3.03 Table A23
	needsDataDecoder    bool
	fdma                bool // GLONASS L1/L2 OF: carrier depends on FCN
}

// These frequency/chip-rate constants match the teacher's FREQ1/FREQ2/FREQ5/
// FREQ1_GLO/DFRQ1_GLO/... family in FengXuebin-gnssgo/src/types.go.
const (
	freqL1       = 1.57542e9
	freqL2       = 1.22760e9
	freqL5       = 1.17645e9
	freqE5b      = 1.20714e9
	freqB1I      = 1.561098e9
	freqB2I      = 1.20714e9
	freqB3I      = 1.26852e9
	freqGloL1Ctr = 1.60200e9
	freqGloL1Dlt = 0.56250e6
	freqGloL2Ctr = 1.24600e9
	freqGloL2Dlt = 0.43750e6
	gloFcnOffset = 7 // FCN is broadcast as slot+8; centered at slot 0 => offset 7 (ICD convention)
)

var codeTable = map[Code]CodeInfo{
	GpsL1CA: {name: "GPS L1CA", constellation: GPS, firstSat: 1, satCount: 32, signalsPerSat: 1,
		carrierFreqHz: freqL1, chipCount: 1023, chipRateHz: 1.023e6, directAcquisition: true,
		prnPeriodMs: 1.0, maxSvDopplerHz: 4500, phaseAlignCycles: 0.0, needsDataDecoder: true},
	GpsL2C: {name: "GPS L2C", constellation: GPS, firstSat: 1, satCount: 32, signalsPerSat: 1,
		carrierFreqHz: freqL2, chipCount: 10230, chipRateHz: 1.023e6, directAcquisition: false,
		prnPeriodMs: 20.0, maxSvDopplerHz: 3500, phaseAlignCycles: 0.25, needsDataDecoder: true},
	GpsL5: {name: "GPS L5", constellation: GPS, firstSat: 1, satCount: 32, signalsPerSat: 1,
		carrierFreqHz: freqL5, chipCount: 10230, chipRateHz: 10.23e6, directAcquisition: false,
		prnPeriodMs: 1.0, maxSvDopplerHz: 3300, phaseAlignCycles: 0.25, needsDataDecoder: true},
	GloL1OF: {name: "GLONASS L1OF", constellation: GLO, firstSat: 1, satCount: 24, signalsPerSat: 1,
		chipCount: 511, chipRateHz: 0.511e6, directAcquisition: true, prnPeriodMs: 1.0,
		maxSvDopplerHz: 4000, phaseAlignCycles: 0.0, needsDataDecoder: true, fdma: true},
	GloL2OF: {name: "GLONASS L2OF", constellation: GLO, firstSat: 1, satCount: 24, signalsPerSat: 1,
		chipCount: 511, chipRateHz: 0.511e6, directAcquisition: true, prnPeriodMs: 1.0,
		maxSvDopplerHz: 3100, phaseAlignCycles: 0.0, needsDataDecoder: true, fdma: true},
	GalE1B: {name: "Galileo E1B", constellation: GAL, firstSat: 1, satCount: 36, signalsPerSat: 1,
		carrierFreqHz: freqL1, chipCount: 4092, chipRateHz: 1.023e6, directAcquisition: true,
		prnPeriodMs: 4.0, maxSvDopplerHz: 4500, phaseAlignCycles: 0.5, needsDataDecoder: true},
	GalE5a: {name: "Galileo E5a", constellation: GAL, firstSat: 1, satCount: 36, signalsPerSat: 1,
		carrierFreqHz: freqL5, chipCount: 10230, chipRateHz: 10.23e6, directAcquisition: false,
		prnPeriodMs: 1.0, maxSvDopplerHz: 3300, phaseAlignCycles: 0.0, needsDataDecoder: true},
	GalE5b: {name: "Galileo E5b", constellation: GAL, firstSat: 1, satCount: 36, signalsPerSat: 1,
		carrierFreqHz: freqE5b, chipCount: 10230, chipRateHz: 10.23e6, directAcquisition: false,
		prnPeriodMs: 1.0, maxSvDopplerHz: 3400, phaseAlignCycles: 0.0, needsDataDecoder: true},
	BdsB1I: {name: "BeiDou B1I", constellation: BDS, firstSat: 1, satCount: 63, signalsPerSat: 1,
		carrierFreqHz: freqB1I, chipCount: 2046, chipRateHz: 2.046e6, directAcquisition: true,
		prnPeriodMs: 1.0, maxSvDopplerHz: 4500, phaseAlignCycles: 0.0, needsDataDecoder: true},
	BdsB2I: {name: "BeiDou B2I", constellation: BDS, firstSat: 1, satCount: 63, signalsPerSat: 1,
		carrierFreqHz: freqB2I, chipCount: 2046, chipRateHz: 2.046e6, directAcquisition: true,
		prnPeriodMs: 1.0, maxSvDopplerHz: 3400, phaseAlignCycles: 0.0, needsDataDecoder: true},
	BdsB3I: {name: "BeiDou B3I", constellation: BDS, firstSat: 1, satCount: 63, signalsPerSat: 1,
		carrierFreqHz: freqB3I, chipCount: 10230, chipRateHz: 10.23e6, directAcquisition: true,
		prnPeriodMs: 1.0, maxSvDopplerHz: 3600, phaseAlignCycles: 0.0, needsDataDecoder: true},
	QzsL1CA: {name: "QZSS L1CA", constellation: QZS, firstSat: 193, satCount: 10, signalsPerSat: 1,
		carrierFreqHz: freqL1, chipCount: 1023, chipRateHz: 1.023e6, directAcquisition: true,
		prnPeriodMs: 1.0, maxSvDopplerHz: 1000, phaseAlignCycles: 0.0, needsDataDecoder: true},
	QzsL5: {name: "QZSS L5", constellation: QZS, firstSat: 193, satCount: 10, signalsPerSat: 1,
		carrierFreqHz: freqL5, chipCount: 10230, chipRateHz: 10.23e6, directAcquisition: false,
		prnPeriodMs: 1.0, maxSvDopplerHz: 900, phaseAlignCycles: 0.25, needsDataDecoder: true},
	SbasL1: {name: "SBAS L1", constellation: SBAS, firstSat: 120, satCount: 40, signalsPerSat: 1,
		carrierFreqHz: freqL1, chipCount: 1023, chipRateHz: 1.023e6, directAcquisition: true,
		prnPeriodMs: 1.0, maxSvDopplerHz: 2000, phaseAlignCycles: 0.0, needsDataDecoder: true},
}

// Info returns the static metadata for code.
func Info(c Code) (CodeInfo, bool) {
	info, ok := codeTable[c]
	return info, ok
}

func (ci CodeInfo) FirstSat() int            { return ci.firstSat }
func (ci CodeInfo) SatCount() int            { return ci.satCount }
func (ci CodeInfo) SignalsPerSat() int       { return ci.signalsPerSat }
func (ci CodeInfo) ChipCount() int           { return ci.chipCount }
func (ci CodeInfo) ChipRateHz() float64      { return ci.chipRateHz }
func (ci CodeInfo) DirectAcquisition() bool  { return ci.directAcquisition }
func (ci CodeInfo) PrnPeriodMs() float64     { return ci.prnPeriodMs }
func (ci CodeInfo) MaxSvDopplerHz() float64  { return ci.maxSvDopplerHz }
func (ci CodeInfo) PhaseAlignCycles() float64 { return ci.phaseAlignCycles }
func (ci CodeInfo) NeedsDataDecoder() bool   { return ci.needsDataDecoder }
func (ci CodeInfo) IsFdma() bool             { return ci.fdma }

// CarrierFreqHz returns the carrier frequency for a non-FDMA code, or for an
// FDMA (GLONASS) code given its resolved frequency channel number via fcnMap.
func CarrierFreqHz(s SID, fcnMap *FcnMap) (float64, error) {
	info, ok := codeTable[s.Code]
	if !ok {
		return 0, fmt.Errorf("sid: unknown code %v", s.Code)
	}
	if !info.fdma {
		return info.carrierFreqHz, nil
	}
	band := 1
	centerFreq, deltaFreq := freqGloL1Ctr, freqGloL1Dlt
	if s.Code == GloL2OF {
		band, centerFreq, deltaFreq = 2, freqGloL2Ctr, freqGloL2Dlt
	}
	fcn, ok := fcnMap.Lookup(s.Sat, band)
	if !ok {
		return 0, fmt.Errorf("sid: no FCN known for sat %d band %d", s.Sat, band)
	}
	return centerFreq + float64(fcn-gloFcnOffset)*deltaFreq, nil
}

// WavelengthM returns c/f for the resolved carrier frequency.
func WavelengthM(s SID, fcnMap *FcnMap, lightSpeedMps float64) (float64, error) {
	f, err := CarrierFreqHz(s, fcnMap)
	if err != nil {
		return 0, err
	}
	return lightSpeedMps / f, nil
}
