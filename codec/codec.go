// Package codec turns a raw radio memory image into a channel.Array and
// back, entirely driven by a descriptor.MemoryFormat. No package here
// branches on a model or vendor name — every byte-level decision comes from
// the descriptor passed in.
package codec

import (
	"fmt"

	"github.com/vicholz/chirp-web/channel"
	"github.com/vicholz/chirp-web/descriptor"
	"github.com/vicholz/chirp-web/radioerr"
)

// splitThresholdHz bounds how far a decoded tx frequency may diverge from rx
// before DeriveDuplex treats the pair as independent (split) rather than a
// +/- offset. 70MHz comfortably covers every dual-band ham repeater shift.
const splitThresholdHz = 70_000_000

// canonical field names the codec looks for by convention, matching how
// every descriptor in descriptor/data names its fields. A descriptor is free
// to omit any of these; the codec treats the channel as lacking that
// property.
const (
	fieldRxFreq = "rx_freq"
	fieldTxFreq = "tx_freq"
	fieldRTone  = "rtone"
	fieldCTone  = "ctone"
	fieldName   = "name"
)

// Decode turns a raw memory image into a channel.Array. raw must cover at
// least mf.StartOffset; channels past the end of raw are returned empty
// rather than erroring, so partial reads still decode.
func Decode(raw []byte, mf descriptor.MemoryFormat) (*channel.Array, error) {
	arr := channel.NewArray(1, mf.NumChannels)

	for i := 0; i < mf.NumChannels; i++ {
		off := mf.StartOffset + i*mf.ChannelSize
		index := i + 1

		if off+mf.ChannelSize > len(raw) {
			continue // left empty by NewArray
		}
		rec := raw[off : off+mf.ChannelSize]

		if isEmptySlot(rec, mf) {
			continue
		}

		ch, err := decodeChannel(rec, raw, i, index, mf)
		if err != nil {
			return nil, radioerr.CodecErr(index, "", err.Error())
		}
		if err := arr.Set(index, ch); err != nil {
			return nil, radioerr.CodecErr(index, "", err.Error())
		}
	}
	arr.ClearDirty()
	return arr, nil
}

func isEmptySlot(rec []byte, mf descriptor.MemoryFormat) bool {
	fs, ok := mf.Fields[mf.EmptyCheck.Field]
	if !ok || fs.Offset+fs.Size > len(rec) {
		return false
	}
	field := rec[fs.Offset : fs.Offset+fs.Size]
	switch mf.EmptyCheck.Kind {
	case descriptor.EmptyCheckBCDAllFF:
		return isAllBytes(field, 0xFF)
	case descriptor.EmptyCheckBCDAllZero:
		return isAllBytes(field, 0x00)
	case descriptor.EmptyCheckIntSentinel:
		v := readSentinelInt(field, fs)
		for _, s := range mf.EmptyCheck.Sentinels {
			if v == s {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func readSentinelInt(field []byte, fs descriptor.FieldSpec) int {
	switch fs.Type {
	case descriptor.FieldU16LE:
		return int(readU16LE(field))
	case descriptor.FieldU16BE:
		return int(readU16BE(field))
	case descriptor.FieldU32LE:
		return int(readU32LE(field))
	case descriptor.FieldByte:
		return int(field[0])
	default:
		return int(readBCDLE(field))
	}
}

func decodeChannel(rec, raw []byte, i, index int, mf descriptor.MemoryFormat) (channel.Channel, error) {
	ch := channel.Channel{Index: index}

	rxHz, err := decodeFreq(rec, mf, fieldRxFreq)
	if err != nil {
		return channel.Channel{}, err
	}
	txHz, err := decodeFreq(rec, mf, fieldTxFreq)
	if err != nil {
		return channel.Channel{}, err
	}
	ch.RxHz = rxHz
	ch.Duplex, ch.TxOffsetHz = channel.DeriveDuplex(rxHz, txHz, splitThresholdHz)

	var tx, rx toneField
	if fs, ok := mf.Fields[fieldRTone]; ok {
		tx = decodeToneU16(readU16LE(rec[fs.Offset : fs.Offset+fs.Size]))
	}
	if fs, ok := mf.Fields[fieldCTone]; ok {
		rx = decodeToneU16(readU16LE(rec[fs.Offset : fs.Offset+fs.Size]))
	}
	ch.ToneMode, ch.CrossMode, ch.RtoneDHz, ch.CtoneDHz, ch.DTCSTx, ch.DTCSRx, ch.DTCSPolarity =
		reconcileTones(tx, rx)

	targetsSeen := map[string]bool{}
	for _, fm := range mf.FlagMappings {
		fs, ok := mf.Fields[fm.Field]
		if !ok || fs.Offset >= len(rec) {
			continue
		}
		targetsSeen[fm.Target] = true
		rawByte := rec[fs.Offset]
		v := (rawByte & fm.Mask) >> fm.Shift
		if fm.Invert {
			v = (^rawByte & fm.Mask) >> fm.Shift
		}
		label := ""
		if int(v) < len(fm.Values) {
			label = fm.Values[v]
		}
		applyFlagTarget(&ch, fm.Target, label)
	}

	if fs, ok := mf.Fields[fieldName]; ok && fs.Offset+fs.Size <= len(rec) {
		ch.Name = readString(rec[fs.Offset : fs.Offset+fs.Size])
	} else if mf.NameTable != nil {
		off := mf.NameTable.Offset + i*mf.NameTable.Stride
		if off+mf.NameTable.Stride <= len(raw) {
			ch.Name = readString(raw[off : off+mf.NameTable.Stride])
		}
	}

	applyDefaults(&ch, mf, targetsSeen)
	return ch, nil
}

func decodeFreq(rec []byte, mf descriptor.MemoryFormat, name string) (int64, error) {
	fs, ok := mf.Fields[name]
	if !ok {
		return 0, nil
	}
	if fs.Offset+fs.Size > len(rec) {
		return 0, fmt.Errorf("field %s out of bounds", name)
	}
	buf := rec[fs.Offset : fs.Offset+fs.Size]
	unit := fs.Unit
	if unit == 0 {
		unit = 1
	}
	switch fs.Type {
	case descriptor.FieldBCDLE:
		return readBCDLE(buf) * int64(unit), nil
	case descriptor.FieldU32LE:
		return int64(readU32LE(buf)) * int64(unit), nil
	default:
		return 0, fmt.Errorf("field %s: unsupported frequency type", name)
	}
}

func applyFlagTarget(ch *channel.Channel, target, label string) {
	switch target {
	case "mode":
		ch.Mode = channel.ModeFromString(label)
	case "skip":
		ch.Skip = channel.SkipFromString(label)
	case "power":
		ch.Power = label
	}
}

func applyDefaults(ch *channel.Channel, mf descriptor.MemoryFormat, targetsSeen map[string]bool) {
	if mf.Defaults == nil {
		return
	}
	if v, ok := mf.Defaults["mode"]; ok && !targetsSeen["mode"] {
		ch.Mode = channel.ModeFromString(v)
	}
	if v, ok := mf.Defaults["skip"]; ok && !targetsSeen["skip"] {
		ch.Skip = channel.SkipFromString(v)
	}
	if v, ok := mf.Defaults["power"]; ok && !targetsSeen["power"] && ch.Power == "" {
		ch.Power = v
	}
	if v, ok := mf.Defaults["tuning_step_khz"]; ok && ch.TuningStepKHz == 0 {
		var f float64
		fmt.Sscanf(v, "%f", &f)
		ch.TuningStepKHz = f
	}
}

// Encode writes arr back over a copy of original, touching only the bytes
// owned by declared fields and the name table. Unused padding, reserved
// bytes and unrelated regions of original pass through untouched.
func Encode(arr *channel.Array, mf descriptor.MemoryFormat, original []byte) ([]byte, error) {
	if !mf.Lossless {
		return nil, radioerr.New(radioerr.CodecError, "memory format is not lossless; upload refused")
	}
	out := make([]byte, len(original))
	copy(out, original)

	for _, ch := range arr.All() {
		if ch.Empty {
			continue
		}
		i := ch.Index - 1
		off := mf.StartOffset + i*mf.ChannelSize
		if off+mf.ChannelSize > len(out) {
			return nil, radioerr.CodecErr(ch.Index, "", "channel beyond image bounds")
		}
		rec := out[off : off+mf.ChannelSize]
		if err := encodeChannel(rec, out, i, ch, mf); err != nil {
			return nil, radioerr.CodecErr(ch.Index, "", err.Error())
		}
	}
	return out, nil
}

func encodeChannel(rec, full []byte, i int, ch channel.Channel, mf descriptor.MemoryFormat) error {
	if err := encodeFreq(rec, mf, fieldRxFreq, ch.RxHz); err != nil {
		return err
	}
	if err := encodeFreq(rec, mf, fieldTxFreq, ch.TxHz()); err != nil {
		return err
	}

	tx, rx := splitTones(ch)
	if fs, ok := mf.Fields[fieldRTone]; ok {
		writeU16LE(rec[fs.Offset:fs.Offset+fs.Size], encodeToneU16(tx))
	}
	if fs, ok := mf.Fields[fieldCTone]; ok {
		writeU16LE(rec[fs.Offset:fs.Offset+fs.Size], encodeToneU16(rx))
	}

	for _, fm := range mf.FlagMappings {
		fs, ok := mf.Fields[fm.Field]
		if !ok || fs.Offset >= len(rec) {
			continue
		}
		idx := flagValueIndex(fm, targetValue(ch, fm.Target))
		v := byte(idx) << fm.Shift
		if fm.Invert {
			v = (^byte(idx)) << fm.Shift
		}
		rec[fs.Offset] = rec[fs.Offset]&^fm.Mask | v&fm.Mask
	}

	if fs, ok := mf.Fields[fieldName]; ok {
		writeString(rec[fs.Offset:fs.Offset+fs.Size], ch.Name, 0xFF)
	} else if mf.NameTable != nil {
		off := mf.NameTable.Offset + i*mf.NameTable.Stride
		if off+mf.NameTable.Stride <= len(full) {
			writeString(full[off:off+mf.NameTable.Stride], ch.Name, 0xFF)
		}
	}
	return nil
}

func encodeFreq(rec []byte, mf descriptor.MemoryFormat, name string, hz int64) error {
	fs, ok := mf.Fields[name]
	if !ok {
		return nil
	}
	unit := fs.Unit
	if unit == 0 {
		unit = 1
	}
	buf := rec[fs.Offset : fs.Offset+fs.Size]
	switch fs.Type {
	case descriptor.FieldBCDLE:
		writeBCDLE(buf, hz/int64(unit))
	case descriptor.FieldU32LE:
		writeU32LE(buf, uint32(hz/int64(unit)))
	default:
		return fmt.Errorf("field %s: unsupported frequency type", name)
	}
	return nil
}

func targetValue(ch channel.Channel, target string) string {
	switch target {
	case "mode":
		return ch.Mode.String()
	case "skip":
		return ch.Skip.String()
	case "power":
		return ch.Power
	default:
		return ""
	}
}

// flagValueIndex finds label's position in fm.Values, defaulting to 0 (the
// descriptor's first/default enumerated value) when the channel's current
// value isn't one of the mapping's known labels.
func flagValueIndex(fm descriptor.FlagMapping, label string) int {
	for i, v := range fm.Values {
		if v == label {
			return i
		}
	}
	return 0
}
