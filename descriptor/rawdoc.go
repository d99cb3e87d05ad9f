package descriptor

import (
	"fmt"
	"time"
)

// The rawXxx types below mirror the descriptor/data/*.yaml schema field for
// field. They exist only to give yaml.v3 something concrete to decode into;
// toProtocol/toModel convert them into the immutable types in types.go that
// the rest of the engine consumes. Keeping the two representations separate
// means an unknown handshake variant, layout, obfuscation, field type or
// empty-check kind, or a variant missing its parameter block, fails at
// registry load time with the protocol named. Unknown keys are not
// rejected: yaml.v3 ignores them and the field keeps its zero value.

type rawFile struct {
	Protocols []rawProtocol `yaml:"protocols"`
	Models    []rawModel    `yaml:"models"`
}

type rawHandshake struct {
	Variant string          `yaml:"variant"`
	Magic   *rawMagic       `yaml:"magic"`
	Program *rawProgram     `yaml:"program"`
	UV17Pro *rawUV17Pro     `yaml:"uv17pro"`
}

type rawMagic struct {
	Candidates     []HexBytes `yaml:"candidates"`
	InterByteDelay Dur        `yaml:"inter_byte_delay"`
	AckByte        HexByte    `yaml:"ack_byte"`
	AckTimeout     Dur        `yaml:"ack_timeout"`
	IdentCommand   HexBytes   `yaml:"ident_command"`
	IdentMaxLen    int        `yaml:"ident_max_len"`
	IdentMinLen    int        `yaml:"ident_min_len"`
	IdentSentinel  *HexByte   `yaml:"ident_sentinel"`
	AckAfterIdent  bool       `yaml:"ack_after_ident"`
}

type rawProgram struct {
	PreCommand    HexBytes `yaml:"pre_command"`
	PreDelay      Dur      `yaml:"pre_delay"`
	Phrase        HexBytes `yaml:"phrase"`
	AckByte       HexByte  `yaml:"ack_byte"`
	AckRetries    int      `yaml:"ack_retries"`
	AckWindow     Dur      `yaml:"ack_window"`
	HasIdent      bool     `yaml:"has_ident"`
	IdentCommand  HexBytes `yaml:"ident_command"`
	IdentMaxLen   int      `yaml:"ident_max_len"`
	IdentMinLen   int      `yaml:"ident_min_len"`
	IdentSentinel *HexByte `yaml:"ident_sentinel"`
	IdentPrefix   HexBytes `yaml:"ident_prefix"`
}

type rawFollowUp struct {
	Name        string   `yaml:"name"`
	Command     HexBytes `yaml:"command"`
	ResponseLen int      `yaml:"response_len"`
}

type rawUV17Pro struct {
	IdentCandidates []HexBytes    `yaml:"ident_candidates"`
	Fingerprint     HexBytes      `yaml:"fingerprint"`
	InitialWait     Dur           `yaml:"initial_wait"`
	PollInterval    Dur           `yaml:"poll_interval"`
	PollAttempts    int           `yaml:"poll_attempts"`
	FollowUps       []rawFollowUp `yaml:"follow_ups"`
	FollowUpDelay   Dur           `yaml:"follow_up_delay"`
}

type rawRead struct {
	Cmd           HexByte `yaml:"cmd"`
	BlockSize     int     `yaml:"block_size"`
	HeaderEcho    bool    `yaml:"header_echo"`
	AckAfterBlock bool    `yaml:"ack_after_block"`
	AckByte       HexByte `yaml:"ack_byte"`
	PostAckDelay  Dur     `yaml:"post_ack_delay"`
	StripPrefix   int     `yaml:"strip_prefix"`
	BlockDeadline Dur     `yaml:"block_deadline"`
}

type rawWrite struct {
	Cmd          HexByte `yaml:"cmd"`
	BlockSize    int     `yaml:"block_size"`
	AckByte      HexByte `yaml:"ack_byte"`
	PostAckDelay Dur     `yaml:"post_ack_delay"`
	AckDeadline  Dur     `yaml:"ack_deadline"`
}

type rawRegion struct {
	Start int `yaml:"start"`
	Size  int `yaml:"size"`
}

type rawLayout struct {
	Kind      string      `yaml:"kind"`
	MainStart int         `yaml:"main_start"`
	MainEnd   int         `yaml:"main_end"`
	HasAux    bool        `yaml:"has_aux"`
	AuxStart  int         `yaml:"aux_start"`
	AuxEnd    int         `yaml:"aux_end"`
	Regions   []rawRegion `yaml:"regions"`
	TotalSize int         `yaml:"total_size"`
}

type rawObfuscation struct {
	Kind        string  `yaml:"kind"`
	SymbolIndex int     `yaml:"symbol_index"`
	InitXOR     HexByte `yaml:"init_xor"`
}

type rawFieldSpec struct {
	Offset int    `yaml:"offset"`
	Size   int    `yaml:"size"`
	Type   string `yaml:"type"`
	Unit   int    `yaml:"unit"`
	MaxLen int    `yaml:"max_len"`
}

type rawFlagMapping struct {
	Field  string   `yaml:"field"`
	Target string   `yaml:"target"`
	Mask   HexByte  `yaml:"mask"`
	Shift  uint     `yaml:"shift"`
	Invert bool     `yaml:"invert"`
	Values []string `yaml:"values"`
}

type rawEmptyCheck struct {
	Kind      string `yaml:"kind"`
	Field     string `yaml:"field"`
	Sentinels []int  `yaml:"sentinels"`
}

type rawNameTable struct {
	Offset int `yaml:"offset"`
	Stride int `yaml:"stride"`
}

type rawMemoryFormat struct {
	ChannelSize  int                     `yaml:"channel_size"`
	NumChannels  int                     `yaml:"num_channels"`
	StartOffset  int                     `yaml:"start_offset"`
	NameTable    *rawNameTable           `yaml:"name_table"`
	Fields       map[string]rawFieldSpec `yaml:"fields"`
	FlagMappings []rawFlagMapping        `yaml:"flag_mappings"`
	EmptyCheck   rawEmptyCheck           `yaml:"empty_check"`
	Defaults     map[string]string       `yaml:"defaults"`
	Lossless     bool                    `yaml:"lossless"`
}

type rawProtocol struct {
	ID           string          `yaml:"id"`
	Baud         int             `yaml:"baud"`
	Handshake    rawHandshake    `yaml:"handshake"`
	Read         rawRead         `yaml:"read"`
	Write        rawWrite        `yaml:"write"`
	Layout       rawLayout       `yaml:"layout"`
	Obfuscation  rawObfuscation  `yaml:"obfuscation"`
	MemoryFormat rawMemoryFormat `yaml:"memory_format"`
}

type rawModel struct {
	Vendor            string `yaml:"vendor"`
	Model             string `yaml:"model"`
	DisplayName       string `yaml:"display_name"`
	ProtocolID        string `yaml:"protocol_id"`
	MemorySize        int    `yaml:"memory_size"`
	NameMaxLength     int    `yaml:"name_max_length"`
	MinFirmware       string `yaml:"min_firmware"`
	FirmwarePattern   string `yaml:"firmware_pattern"`
	BaudOverride      *int   `yaml:"baud_override"`
	BlockSizeOverride *int   `yaml:"block_size_override"`
}

func toBytesSlice(in []HexBytes) [][]byte {
	out := make([][]byte, len(in))
	for i, v := range in {
		out[i] = []byte(v)
	}
	return out
}

func (r rawProtocol) toProtocol() (Protocol, error) {
	p := Protocol{
		ID:   r.ID,
		Baud: r.Baud,
		Read: ReadFraming{
			Cmd:           byte(r.Read.Cmd),
			BlockSize:     r.Read.BlockSize,
			HeaderEcho:    r.Read.HeaderEcho,
			AckAfterBlock: r.Read.AckAfterBlock,
			AckByte:       byte(r.Read.AckByte),
			PostAckDelay:  time.Duration(r.Read.PostAckDelay),
			StripPrefix:   r.Read.StripPrefix,
			BlockDeadline: time.Duration(r.Read.BlockDeadline),
		},
		Write: WriteFraming{
			Cmd:          byte(r.Write.Cmd),
			BlockSize:    r.Write.BlockSize,
			AckByte:      byte(r.Write.AckByte),
			PostAckDelay: time.Duration(r.Write.PostAckDelay),
			AckDeadline:  time.Duration(r.Write.AckDeadline),
		},
	}

	switch r.Handshake.Variant {
	case "magic":
		if r.Handshake.Magic == nil {
			return p, fmt.Errorf("protocol %s: variant magic missing magic params", r.ID)
		}
		m := r.Handshake.Magic
		mp := &MagicParams{
			Candidates:     toBytesSlice(m.Candidates),
			InterByteDelay: time.Duration(m.InterByteDelay),
			AckByte:        byte(m.AckByte),
			AckTimeout:     time.Duration(m.AckTimeout),
			IdentCommand:   []byte(m.IdentCommand),
			IdentMaxLen:    m.IdentMaxLen,
			IdentMinLen:    m.IdentMinLen,
			AckAfterIdent:  m.AckAfterIdent,
		}
		if m.IdentSentinel != nil {
			mp.IdentSentinel = byte(*m.IdentSentinel)
			mp.HasSentinel = true
		}
		p.Handshake = Handshake{Variant: VariantMagic, Magic: mp}
	case "program":
		if r.Handshake.Program == nil {
			return p, fmt.Errorf("protocol %s: variant program missing program params", r.ID)
		}
		pr := r.Handshake.Program
		pp := &ProgramParams{
			PreCommand:   []byte(pr.PreCommand),
			PreDelay:     time.Duration(pr.PreDelay),
			Phrase:       []byte(pr.Phrase),
			AckByte:      byte(pr.AckByte),
			AckRetries:   pr.AckRetries,
			AckWindow:    time.Duration(pr.AckWindow),
			HasIdent:     pr.HasIdent,
			IdentCommand: []byte(pr.IdentCommand),
			IdentMaxLen:  pr.IdentMaxLen,
			IdentMinLen:  pr.IdentMinLen,
			IdentPrefix:  []byte(pr.IdentPrefix),
		}
		if pr.IdentSentinel != nil {
			pp.IdentSentinel = byte(*pr.IdentSentinel)
			pp.HasSentinel = true
		}
		p.Handshake = Handshake{Variant: VariantProgram, Program: pp}
	case "uv17pro":
		if r.Handshake.UV17Pro == nil {
			return p, fmt.Errorf("protocol %s: variant uv17pro missing uv17pro params", r.ID)
		}
		u := r.Handshake.UV17Pro
		up := &UV17ProParams{
			IdentCandidates: toBytesSlice(u.IdentCandidates),
			Fingerprint:     []byte(u.Fingerprint),
			InitialWait:     time.Duration(u.InitialWait),
			PollInterval:    time.Duration(u.PollInterval),
			PollAttempts:    u.PollAttempts,
			FollowUpDelay:   time.Duration(u.FollowUpDelay),
		}
		for _, f := range u.FollowUps {
			up.FollowUps = append(up.FollowUps, UV17FollowUp{
				Name:        f.Name,
				Command:     []byte(f.Command),
				ResponseLen: f.ResponseLen,
			})
		}
		p.Handshake = Handshake{Variant: VariantUV17Pro, UV17Pro: up}
	default:
		return p, fmt.Errorf("protocol %s: unknown handshake variant %q", r.ID, r.Handshake.Variant)
	}

	switch r.Layout.Kind {
	case "main_aux":
		p.Layout = Layout{
			Kind:      LayoutMainAux,
			MainStart: r.Layout.MainStart,
			MainEnd:   r.Layout.MainEnd,
			HasAux:    r.Layout.HasAux,
			AuxStart:  r.Layout.AuxStart,
			AuxEnd:    r.Layout.AuxEnd,
		}
	case "regions":
		l := Layout{Kind: LayoutRegions, TotalSize: r.Layout.TotalSize}
		for _, reg := range r.Layout.Regions {
			l.Regions = append(l.Regions, Region{Start: reg.Start, Size: reg.Size})
		}
		p.Layout = l
	default:
		return p, fmt.Errorf("protocol %s: unknown layout kind %q", r.ID, r.Layout.Kind)
	}

	switch r.Obfuscation.Kind {
	case "none", "":
		p.Obfuscation = Obfuscation{Kind: ObfuscationNone}
	case "uv17pro":
		p.Obfuscation = Obfuscation{Kind: ObfuscationUV17Pro, SymbolIndex: r.Obfuscation.SymbolIndex}
	case "wouxun":
		p.Obfuscation = Obfuscation{Kind: ObfuscationWouxun, InitXOR: byte(r.Obfuscation.InitXOR)}
	default:
		return p, fmt.Errorf("protocol %s: unknown obfuscation kind %q", r.ID, r.Obfuscation.Kind)
	}

	mf, err := r.MemoryFormat.toMemoryFormat(r.ID)
	if err != nil {
		return p, err
	}
	p.MemoryFormat = mf

	return p, nil
}

func fieldType(id, name, s string) (FieldType, error) {
	switch s {
	case "bcd_le":
		return FieldBCDLE, nil
	case "u16_le":
		return FieldU16LE, nil
	case "u16_be":
		return FieldU16BE, nil
	case "u32_le":
		return FieldU32LE, nil
	case "byte":
		return FieldByte, nil
	case "tone_u16_le":
		return FieldToneU16LE, nil
	case "string":
		return FieldString, nil
	default:
		return 0, fmt.Errorf("protocol %s: field %s: unknown type %q", id, name, s)
	}
}

func (r rawMemoryFormat) toMemoryFormat(protocolID string) (MemoryFormat, error) {
	mf := MemoryFormat{
		ChannelSize: r.ChannelSize,
		NumChannels: r.NumChannels,
		StartOffset: r.StartOffset,
		Fields:      map[string]FieldSpec{},
		Defaults:    r.Defaults,
		Lossless:    r.Lossless,
	}
	if r.NameTable != nil {
		mf.NameTable = &NameTable{Offset: r.NameTable.Offset, Stride: r.NameTable.Stride}
	}
	for name, f := range r.Fields {
		ft, err := fieldType(protocolID, name, f.Type)
		if err != nil {
			return mf, err
		}
		mf.Fields[name] = FieldSpec{
			Name:   name,
			Offset: f.Offset,
			Size:   f.Size,
			Type:   ft,
			Unit:   f.Unit,
			MaxLen: f.MaxLen,
		}
	}
	for _, fm := range r.FlagMappings {
		mf.FlagMappings = append(mf.FlagMappings, FlagMapping{
			Field:  fm.Field,
			Target: fm.Target,
			Mask:   byte(fm.Mask),
			Shift:  fm.Shift,
			Invert: fm.Invert,
			Values: fm.Values,
		})
	}
	switch r.EmptyCheck.Kind {
	case "bcd_all_ff":
		mf.EmptyCheck = EmptyCheck{Kind: EmptyCheckBCDAllFF, Field: r.EmptyCheck.Field}
	case "bcd_all_zero":
		mf.EmptyCheck = EmptyCheck{Kind: EmptyCheckBCDAllZero, Field: r.EmptyCheck.Field}
	case "int_sentinel":
		mf.EmptyCheck = EmptyCheck{Kind: EmptyCheckIntSentinel, Field: r.EmptyCheck.Field, Sentinels: r.EmptyCheck.Sentinels}
	default:
		return mf, fmt.Errorf("protocol %s: unknown empty_check kind %q", protocolID, r.EmptyCheck.Kind)
	}
	return mf, nil
}

func (r rawModel) toModel() Model {
	return Model{
		Vendor:            r.Vendor,
		Model:             r.Model,
		DisplayName:       r.DisplayName,
		ProtocolID:        r.ProtocolID,
		MemorySize:        r.MemorySize,
		NameMaxLength:     r.NameMaxLength,
		MinFirmware:       r.MinFirmware,
		FirmwarePattern:   r.FirmwarePattern,
		BaudOverride:      r.BaudOverride,
		BlockSizeOverride: r.BlockSizeOverride,
	}
}
