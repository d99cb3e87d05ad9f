package codec

import "github.com/vicholz/chirp-web/channel"

// toneKind classifies a decoded tone_u16_le field.
type toneKind int

const (
	toneKindNone toneKind = iota
	toneKindCTCSS
	toneKindDCS
)

// toneField is one decoded TX or RX tone_u16_le slot.
type toneField struct {
	Kind     toneKind
	CTCSSDHz int  // tenths of Hz, toneKindCTCSS only
	DCSCode  int  // toneKindDCS only
	Reverse  bool // DCS "T" (reverse/inverted) flag, toneKindDCS only
}

// A tone_u16_le field packs CTCSS/DCS/none into 16 bits: bit 0x8000 marks
// DCS, bit 0x4000 marks reverse polarity, and the low 12 bits hold the DCS
// code; without 0x8000 the whole 16 bits are the CTCSS value in tenths of a
// Hz. 0 and 0xFFFF both mean "no tone".
const (
	toneDCSMarker     = 0x8000
	toneDCSReverseBit = 0x4000
	toneDCSMask       = 0x0FFF
)

func decodeToneU16(raw uint16) toneField {
	if raw == 0 || raw == 0xFFFF {
		return toneField{Kind: toneKindNone}
	}
	if raw&toneDCSMarker != 0 {
		return toneField{
			Kind:    toneKindDCS,
			DCSCode: int(raw & toneDCSMask),
			Reverse: raw&toneDCSReverseBit != 0,
		}
	}
	return toneField{Kind: toneKindCTCSS, CTCSSDHz: int(raw)}
}

func encodeToneU16(t toneField) uint16 {
	switch t.Kind {
	case toneKindCTCSS:
		return uint16(t.CTCSSDHz)
	case toneKindDCS:
		v := uint16(toneDCSMarker) | uint16(t.DCSCode&toneDCSMask)
		if t.Reverse {
			v |= toneDCSReverseBit
		}
		return v
	default:
		return 0
	}
}

// reconcileTones folds a decoded (tx, rx) tone pair into the neutral
// ToneMode/CrossMode/DTCS representation.
func reconcileTones(tx, rx toneField) (mode channel.ToneMode, cross channel.CrossMode,
	rtoneDHz, ctoneDHz, dtcsTx, dtcsRx int, polarity string) {

	pol := func(t toneField) byte {
		if t.Reverse {
			return 'R'
		}
		return 'N'
	}

	switch {
	case tx.Kind == toneKindNone && rx.Kind == toneKindNone:
		return channel.ToneNone, 0, 0, 0, 0, 0, ""

	case tx.Kind == toneKindCTCSS && rx.Kind == toneKindNone:
		return channel.ToneTXCTCSS, 0, tx.CTCSSDHz, 0, 0, 0, ""

	case tx.Kind == toneKindCTCSS && rx.Kind == toneKindCTCSS:
		return channel.ToneCTCSSBoth, 0, tx.CTCSSDHz, rx.CTCSSDHz, 0, 0, ""

	case tx.Kind == toneKindDCS && rx.Kind == toneKindDCS && tx.DCSCode == rx.DCSCode:
		return channel.ToneDTCS, 0, 0, 0, tx.DCSCode, rx.DCSCode, string([]byte{pol(tx), pol(rx)})

	default:
		var cm channel.CrossMode
		switch {
		case tx.Kind == toneKindCTCSS && rx.Kind == toneKindNone:
			cm = channel.CrossToneToNone
		case tx.Kind == toneKindNone && rx.Kind == toneKindCTCSS:
			cm = channel.CrossNoneToTone
		case tx.Kind == toneKindDCS && rx.Kind == toneKindNone:
			cm = channel.CrossDTCSToNone
		case tx.Kind == toneKindNone && rx.Kind == toneKindDCS:
			cm = channel.CrossNoneToDTCS
		case tx.Kind == toneKindCTCSS && rx.Kind == toneKindDCS:
			cm = channel.CrossToneToDTCS
		case tx.Kind == toneKindDCS && rx.Kind == toneKindCTCSS:
			cm = channel.CrossDTCSToTone
		case tx.Kind == toneKindDCS && rx.Kind == toneKindDCS:
			cm = channel.CrossDTCSToDTCS
		default:
			cm = channel.CrossToneToTone
		}
		return channel.ToneCross, cm, tx.CTCSSDHz, rx.CTCSSDHz, tx.DCSCode, rx.DCSCode,
			string([]byte{pol(tx), pol(rx)})
	}
}

// splitTones is the encode-side inverse of reconcileTones: given a Channel's
// neutral tone representation, reconstruct the (tx, rx) tone_u16_le pair to
// write back to the radio.
func splitTones(ch channel.Channel) (tx, rx toneField) {
	polKind := func(c byte) bool { return c == 'R' }
	var txPol, rxPol bool
	if len(ch.DTCSPolarity) == 2 {
		txPol, rxPol = polKind(ch.DTCSPolarity[0]), polKind(ch.DTCSPolarity[1])
	}

	switch ch.ToneMode {
	case channel.ToneNone:
		return toneField{Kind: toneKindNone}, toneField{Kind: toneKindNone}

	case channel.ToneTXCTCSS:
		return toneField{Kind: toneKindCTCSS, CTCSSDHz: ch.RtoneDHz}, toneField{Kind: toneKindNone}

	case channel.ToneCTCSSBoth:
		return toneField{Kind: toneKindCTCSS, CTCSSDHz: ch.RtoneDHz},
			toneField{Kind: toneKindCTCSS, CTCSSDHz: ch.CtoneDHz}

	case channel.ToneDTCS:
		return toneField{Kind: toneKindDCS, DCSCode: ch.DTCSTx, Reverse: txPol},
			toneField{Kind: toneKindDCS, DCSCode: ch.DTCSRx, Reverse: rxPol}

	case channel.ToneDTCSReverse:
		// DTCS-R: the TX and RX codes are written as set, both always
		// inverted — the mode itself carries the reversal, independent of
		// DTCSPolarity.
		return toneField{Kind: toneKindDCS, DCSCode: ch.DTCSTx, Reverse: true},
			toneField{Kind: toneKindDCS, DCSCode: ch.DTCSRx, Reverse: true}

	case channel.ToneTSQLReverse:
		// TSQL-R: reversed tone squelch decode is a receiver-side behavior
		// this wire format has no bit for; the tone_u16 pair it writes is
		// indistinguishable from ctcss_both.
		return toneField{Kind: toneKindCTCSS, CTCSSDHz: ch.RtoneDHz},
			toneField{Kind: toneKindCTCSS, CTCSSDHz: ch.CtoneDHz}

	case channel.ToneCross:
		switch ch.CrossMode {
		case channel.CrossToneToNone:
			return toneField{Kind: toneKindCTCSS, CTCSSDHz: ch.RtoneDHz}, toneField{Kind: toneKindNone}
		case channel.CrossNoneToTone:
			return toneField{Kind: toneKindNone}, toneField{Kind: toneKindCTCSS, CTCSSDHz: ch.CtoneDHz}
		case channel.CrossDTCSToNone:
			return toneField{Kind: toneKindDCS, DCSCode: ch.DTCSTx, Reverse: txPol}, toneField{Kind: toneKindNone}
		case channel.CrossNoneToDTCS:
			return toneField{Kind: toneKindNone}, toneField{Kind: toneKindDCS, DCSCode: ch.DTCSRx, Reverse: rxPol}
		case channel.CrossToneToDTCS:
			return toneField{Kind: toneKindCTCSS, CTCSSDHz: ch.RtoneDHz},
				toneField{Kind: toneKindDCS, DCSCode: ch.DTCSRx, Reverse: rxPol}
		case channel.CrossDTCSToTone:
			return toneField{Kind: toneKindDCS, DCSCode: ch.DTCSTx, Reverse: txPol},
				toneField{Kind: toneKindCTCSS, CTCSSDHz: ch.CtoneDHz}
		case channel.CrossDTCSToDTCS:
			return toneField{Kind: toneKindDCS, DCSCode: ch.DTCSTx, Reverse: txPol},
				toneField{Kind: toneKindDCS, DCSCode: ch.DTCSRx, Reverse: rxPol}
		default: // CrossToneToTone
			return toneField{Kind: toneKindCTCSS, CTCSSDHz: ch.RtoneDHz},
				toneField{Kind: toneKindCTCSS, CTCSSDHz: ch.CtoneDHz}
		}

	default:
		return toneField{Kind: toneKindNone}, toneField{Kind: toneKindNone}
	}
}
