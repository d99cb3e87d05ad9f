// Package channel holds the neutral, radio-agnostic representation of a
// programmable memory slot and the bounded array of slots that makes up a
// radio's channel memory.
package channel

// Duplex describes the relationship between transmit and receive frequency.
type Duplex int

const (
	DuplexNone Duplex = iota
	DuplexPlus
	DuplexMinus
	DuplexSplit
	DuplexOff
)

func (d Duplex) String() string {
	switch d {
	case DuplexNone:
		return "none"
	case DuplexPlus:
		return "plus"
	case DuplexMinus:
		return "minus"
	case DuplexSplit:
		return "split"
	case DuplexOff:
		return "off"
	default:
		return "none"
	}
}

// ToneMode selects which squelch-tone fields on a Channel are meaningful.
type ToneMode int

const (
	ToneNone ToneMode = iota
	ToneTXCTCSS
	ToneCTCSSBoth
	ToneDTCS
	ToneDTCSReverse
	ToneTSQLReverse
	ToneCross
)

func (t ToneMode) String() string {
	switch t {
	case ToneNone:
		return "none"
	case ToneTXCTCSS:
		return "tx_ctcss"
	case ToneCTCSSBoth:
		return "ctcss_both"
	case ToneDTCS:
		return "dtcs"
	case ToneDTCSReverse:
		return "dtcs_reverse"
	case ToneTSQLReverse:
		return "tsql_reverse"
	case ToneCross:
		return "cross"
	default:
		return "none"
	}
}

// CrossMode names one of the eight labeled TX/RX tone-kind combinations
// used when ToneMode is ToneCross.
type CrossMode int

const (
	CrossToneToTone CrossMode = iota
	CrossToneToDTCS
	CrossDTCSToTone
	CrossNoneToTone
	CrossNoneToDTCS
	CrossDTCSToNone
	CrossDTCSToDTCS
	CrossToneToNone
)

func (c CrossMode) String() string {
	switch c {
	case CrossToneToTone:
		return "Tone->Tone"
	case CrossToneToDTCS:
		return "Tone->DTCS"
	case CrossDTCSToTone:
		return "DTCS->Tone"
	case CrossNoneToTone:
		return "->Tone"
	case CrossNoneToDTCS:
		return "->DTCS"
	case CrossDTCSToNone:
		return "DTCS->"
	case CrossDTCSToDTCS:
		return "DTCS->DTCS"
	case CrossToneToNone:
		return "Tone->"
	default:
		return "Tone->Tone"
	}
}

// Mode is the channel's modulation.
type Mode int

const (
	ModeFM Mode = iota
	ModeNFM
	ModeWFM
	ModeAM
	ModeNAM
	ModeDV
	ModeUSB
	ModeLSB
	ModeCW
	ModeRTTY
	ModeDIG
	ModePKT
	ModeDMR
)

var modeNames = [...]string{"FM", "NFM", "WFM", "AM", "NAM", "DV", "USB", "LSB", "CW", "RTTY", "DIG", "PKT", "DMR"}

func (m Mode) String() string {
	if int(m) < 0 || int(m) >= len(modeNames) {
		return "FM"
	}
	return modeNames[m]
}

// ModeFromString parses one of the modeNames labels, defaulting to ModeFM.
func ModeFromString(s string) Mode {
	for i, n := range modeNames {
		if n == s {
			return Mode(i)
		}
	}
	return ModeFM
}

// Skip is a scan-skip designation.
type Skip int

const (
	SkipNone Skip = iota
	SkipSkip
	SkipPriority
)

func (s Skip) String() string {
	switch s {
	case SkipSkip:
		return "S"
	case SkipPriority:
		return "P"
	default:
		return ""
	}
}

// SkipFromString parses a skip label ("", "S"/"Skip", "P"/"Priority").
func SkipFromString(s string) Skip {
	switch s {
	case "S", "Skip", "skip":
		return SkipSkip
	case "P", "Priority", "priority":
		return SkipPriority
	default:
		return SkipNone
	}
}

// TuningSteps is the fixed list of legal tuning-step values, in kHz.
var TuningSteps = []float64{5, 6.25, 10, 12.5, 15, 20, 25, 30, 50, 100}

// DTCSCodes is the fixed 104-entry list of legal DCS codes.
var DTCSCodes = []int{
	23, 25, 26, 31, 32, 36, 43, 47, 51, 53, 54, 65, 71, 72, 73, 74,
	114, 115, 116, 122, 125, 131, 132, 134, 143, 145, 152, 155, 156, 162, 165, 172, 174,
	205, 212, 223, 225, 226, 243, 244, 245, 246, 251, 252, 255, 261, 263, 265, 266, 271, 274,
	306, 311, 315, 325, 331, 332, 343, 346, 351, 356, 364, 365, 371,
	411, 412, 413, 423, 431, 432, 445, 446, 452, 454, 455, 462, 464, 465, 466,
	503, 506, 516, 523, 526, 532, 546, 565,
	606, 612, 624, 627, 631, 632, 654, 662, 664,
	703, 712, 723, 731, 732, 734, 743, 754,
}

// IsValidDTCSCode reports whether code is one of DTCSCodes.
func IsValidDTCSCode(code int) bool {
	for _, c := range DTCSCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Channel is one programmable memory slot.
type Channel struct {
	Index int // 1-based, fixed at creation
	Empty bool

	RxHz       int64
	TxOffsetHz int64
	Duplex     Duplex

	ToneMode     ToneMode
	RtoneDHz     int // CTCSS tx, tenths of Hz
	CtoneDHz     int // CTCSS rx, tenths of Hz
	DTCSTx       int
	DTCSRx       int
	DTCSPolarity string // two chars from {N,R}, e.g. "NN", "NR", "RN", "RR"
	CrossMode    CrossMode

	Mode Mode

	TuningStepKHz float64

	Skip  Skip
	Power string

	Name    string
	Comment string
}

// TxHz derives the transmit frequency from RxHz, TxOffsetHz and Duplex.
func (c Channel) TxHz() int64 {
	switch c.Duplex {
	case DuplexNone:
		return c.RxHz
	case DuplexOff:
		return 0
	case DuplexPlus:
		return c.RxHz + c.TxOffsetHz
	case DuplexMinus:
		return c.RxHz - c.TxOffsetHz
	case DuplexSplit:
		return c.TxOffsetHz
	default:
		return c.RxHz
	}
}

// DeriveDuplex computes Duplex and TxOffsetHz from a decoded (rx, tx) pair,
// matching the codec's decode step 3. splitThresholdHz bounds how far tx may
// diverge from rx before the pair is treated as an independent (split) pair
// rather than a +/- offset; the codec passes its fixed 70 MHz threshold.
func DeriveDuplex(rxHz, txHz int64, splitThresholdHz int64) (Duplex, int64) {
	switch {
	case txHz == rxHz:
		return DuplexNone, 0
	case txHz > rxHz:
		if txHz-rxHz > splitThresholdHz {
			return DuplexSplit, txHz
		}
		return DuplexPlus, txHz - rxHz
	default:
		if rxHz-txHz > splitThresholdHz {
			return DuplexSplit, txHz
		}
		return DuplexMinus, rxHz - txHz
	}
}
