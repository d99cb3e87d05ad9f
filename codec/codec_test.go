package codec

import (
	"testing"

	"github.com/vicholz/chirp-web/channel"
	"github.com/vicholz/chirp-web/descriptor"
)

func testFormat() descriptor.MemoryFormat {
	return descriptor.MemoryFormat{
		ChannelSize: 16,
		NumChannels: 4,
		StartOffset: 0,
		Fields: map[string]descriptor.FieldSpec{
			"rx_freq": {Name: "rx_freq", Offset: 0, Size: 4, Type: descriptor.FieldBCDLE, Unit: 10},
			"tx_freq": {Name: "tx_freq", Offset: 4, Size: 4, Type: descriptor.FieldBCDLE, Unit: 10},
			"rtone":   {Name: "rtone", Offset: 8, Size: 2, Type: descriptor.FieldToneU16LE},
			"ctone":   {Name: "ctone", Offset: 10, Size: 2, Type: descriptor.FieldToneU16LE},
			"flags":   {Name: "flags", Offset: 12, Size: 1, Type: descriptor.FieldByte},
			"name":    {Name: "name", Offset: 13, Size: 3, Type: descriptor.FieldString, MaxLen: 3},
		},
		FlagMappings: []descriptor.FlagMapping{
			{Field: "flags", Target: "mode", Mask: 0x08, Shift: 3, Values: []string{"FM", "NFM"}},
			{Field: "flags", Target: "skip", Mask: 0x30, Shift: 4, Values: []string{"", "S", "P", ""}},
		},
		EmptyCheck: descriptor.EmptyCheck{Kind: descriptor.EmptyCheckBCDAllFF, Field: "rx_freq"},
		Defaults:   map[string]string{"power": "High"},
		Lossless:   true,
	}
}

func TestBCDFrequencyRoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	writeBCDLE(buf, 146_520_000/10)
	got := readBCDLE(buf) * 10
	if got != 146_520_000 {
		t.Fatalf("BCD round trip: got %d, want 146520000", got)
	}
}

func TestBCDAllFFIsEmpty(t *testing.T) {
	mf := testFormat()
	raw := make([]byte, mf.ChannelSize*mf.NumChannels)
	for i := range raw {
		raw[i] = 0xFF
	}
	arr, err := Decode(raw, mf)
	if err != nil {
		t.Fatal(err)
	}
	for _, ch := range arr.All() {
		if !ch.Empty {
			t.Fatalf("channel %d: expected empty, got %+v", ch.Index, ch)
		}
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	mf := testFormat()
	raw := make([]byte, mf.ChannelSize*mf.NumChannels)
	for i := range raw {
		raw[i] = 0xFF // start all-empty
	}

	rec := raw[0:16]
	writeBCDLE(rec[0:4], 146_520_000/10)
	writeBCDLE(rec[4:8], 146_520_000/10) // simplex: rx == tx
	writeU16LE(rec[8:10], 1000)          // 100.0Hz CTCSS on tx
	writeU16LE(rec[10:12], 0)            // no rx tone -> tx_ctcss
	rec[12] = 0x00                       // FM, no skip
	writeString(rec[13:16], "AB", 0xFF)

	arr, err := Decode(raw, mf)
	if err != nil {
		t.Fatal(err)
	}
	ch, err := arr.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Empty {
		t.Fatal("channel 1 should not be empty")
	}
	if ch.RxHz != 146_520_000 || ch.TxHz() != 146_520_000 {
		t.Fatalf("frequency mismatch: rx=%d tx=%d", ch.RxHz, ch.TxHz())
	}
	if ch.RtoneDHz != 1000 {
		t.Fatalf("rtone mismatch: %d", ch.RtoneDHz)
	}
	if ch.Name != "AB" {
		t.Fatalf("name mismatch: %q", ch.Name)
	}
	if ch.Power != "High" {
		t.Fatalf("default power not applied: %q", ch.Power)
	}

	out, err := Encode(arr, mf, raw)
	if err != nil {
		t.Fatal(err)
	}
	arr2, err := Decode(out, mf)
	if err != nil {
		t.Fatal(err)
	}
	ch2, _ := arr2.Get(1)
	if ch2.RxHz != ch.RxHz || ch2.Name != ch.Name || ch2.RtoneDHz != ch.RtoneDHz {
		t.Fatalf("encode/decode round trip mismatch: %+v vs %+v", ch, ch2)
	}

	// bytes outside the populated channel must be untouched by Encode.
	for i := mf.ChannelSize; i < len(raw); i++ {
		if out[i] != 0xFF {
			t.Fatalf("byte %d modified outside its channel: 0x%02x", i, out[i])
		}
	}
}

func TestFlagMappingRoundTrip(t *testing.T) {
	mf := testFormat()
	raw := make([]byte, mf.ChannelSize*mf.NumChannels)
	for i := range raw {
		raw[i] = 0xFF
	}
	rec := raw[0:16]
	writeBCDLE(rec[0:4], 100_000_000/10)
	writeBCDLE(rec[4:8], 100_000_000/10)
	rec[12] = 0x08 // NFM bit set

	arr, err := Decode(raw, mf)
	if err != nil {
		t.Fatal(err)
	}
	ch, _ := arr.Get(1)
	if ch.Mode.String() != "NFM" {
		t.Fatalf("mode mismatch: %s", ch.Mode)
	}

	out, err := Encode(arr, mf, raw)
	if err != nil {
		t.Fatal(err)
	}
	if out[12]&0x08 == 0 {
		t.Fatal("NFM flag bit not preserved on encode")
	}
}

func TestEncodeRefusesNonLossless(t *testing.T) {
	mf := testFormat()
	mf.Lossless = false
	raw := make([]byte, mf.ChannelSize*mf.NumChannels)
	arr, err := Decode(raw, mf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Encode(arr, mf, raw); err == nil {
		t.Fatal("expected Encode to refuse a non-lossless format")
	}
}

func TestToneDCSMatchYieldsDTCS(t *testing.T) {
	tx := decodeToneU16(encodeToneU16(toneField{Kind: toneKindDCS, DCSCode: 23}))
	rx := decodeToneU16(encodeToneU16(toneField{Kind: toneKindDCS, DCSCode: 23}))
	mode, _, _, _, dtcsTx, dtcsRx, pol := reconcileTones(tx, rx)
	if mode.String() != "dtcs" || dtcsTx != 23 || dtcsRx != 23 || pol != "NN" {
		t.Fatalf("unexpected DTCS reconcile: mode=%s tx=%d rx=%d pol=%s", mode, dtcsTx, dtcsRx, pol)
	}
}

func TestToneCrossCombination(t *testing.T) {
	tx := decodeToneU16(encodeToneU16(toneField{Kind: toneKindCTCSS, CTCSSDHz: 885}))
	rx := decodeToneU16(encodeToneU16(toneField{Kind: toneKindDCS, DCSCode: 71}))
	mode, cross, _, _, _, dtcsRx, _ := reconcileTones(tx, rx)
	if mode.String() != "cross" || cross.String() != "Tone->DTCS" || dtcsRx != 71 {
		t.Fatalf("unexpected cross reconcile: mode=%s cross=%s dtcsRx=%d", mode, cross, dtcsRx)
	}
}

// TestSplitTonesDTCSReverse and TestSplitTonesTSQLReverse guard against
// splitTones silently dropping the two tone modes reconcileTones never
// produces but a caller (e.g. a CSV import) may still set directly.
func TestSplitTonesDTCSReverse(t *testing.T) {
	ch := channel.Channel{ToneMode: channel.ToneDTCSReverse, DTCSTx: 23, DTCSRx: 65, DTCSPolarity: "NN"}
	tx, rx := splitTones(ch)
	if tx.Kind != toneKindDCS || tx.DCSCode != 23 || !tx.Reverse {
		t.Fatalf("unexpected tx tone: %+v", tx)
	}
	if rx.Kind != toneKindDCS || rx.DCSCode != 65 || !rx.Reverse {
		t.Fatalf("unexpected rx tone: %+v", rx)
	}
}

func TestSplitTonesTSQLReverse(t *testing.T) {
	ch := channel.Channel{ToneMode: channel.ToneTSQLReverse, RtoneDHz: 1000, CtoneDHz: 885}
	tx, rx := splitTones(ch)
	if tx.Kind != toneKindCTCSS || tx.CTCSSDHz != 1000 {
		t.Fatalf("unexpected tx tone: %+v", tx)
	}
	if rx.Kind != toneKindCTCSS || rx.CTCSSDHz != 885 {
		t.Fatalf("unexpected rx tone: %+v", rx)
	}
}
