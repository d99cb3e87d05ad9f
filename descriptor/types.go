// Package descriptor holds the immutable, data-driven description of every
// supported clone protocol and radio model. Nothing in this package branches
// on a model name: adding a radio means adding a YAML document under
// descriptor/data, never a code change.
package descriptor

import "time"

// HandshakeVariant selects one of the three handshake state machines.
type HandshakeVariant int

const (
	VariantMagic HandshakeVariant = iota
	VariantProgram
	VariantUV17Pro
)

func (v HandshakeVariant) String() string {
	switch v {
	case VariantMagic:
		return "magic"
	case VariantProgram:
		return "program"
	case VariantUV17Pro:
		return "uv17pro"
	default:
		return "unknown"
	}
}

// MagicParams parametrizes Variant M (§4.3).
type MagicParams struct {
	Candidates      [][]byte
	InterByteDelay  time.Duration
	AckByte         byte
	AckTimeout      time.Duration
	IdentCommand    []byte
	IdentMaxLen     int
	IdentMinLen     int
	IdentSentinel   byte
	HasSentinel     bool
	AckAfterIdent   bool
}

// ProgramParams parametrizes Variant P (§4.3).
type ProgramParams struct {
	PreCommand    []byte
	PreDelay      time.Duration
	Phrase        []byte
	AckByte       byte
	AckRetries    int
	AckWindow     time.Duration
	HasIdent      bool
	IdentCommand  []byte
	IdentMaxLen   int
	IdentMinLen   int
	IdentSentinel byte
	HasSentinel   bool
	IdentPrefix   []byte // warning-only assertion, not fatal
}

// UV17FollowUp is one post-handshake "magic command" with its declared
// response length (§4.3 Variant U).
type UV17FollowUp struct {
	Name        string
	Command     []byte
	ResponseLen int
}

// UV17ProParams parametrizes Variant U (§4.3).
type UV17ProParams struct {
	IdentCandidates  [][]byte
	Fingerprint      []byte
	InitialWait      time.Duration
	PollInterval     time.Duration
	PollAttempts     int
	FollowUps        []UV17FollowUp
	FollowUpDelay    time.Duration
}

// Handshake bundles the selected variant with its parameters. Exactly one of
// Magic/Program/UV17Pro is populated, matching Variant.
type Handshake struct {
	Variant  HandshakeVariant
	Magic    *MagicParams
	Program  *ProgramParams
	UV17Pro  *UV17ProParams
}

// ReadFraming describes the block-read wire format (§4.4 Read, §6).
type ReadFraming struct {
	Cmd            byte
	BlockSize      int
	HeaderEcho     bool
	AckAfterBlock  bool
	AckByte        byte
	PostAckDelay   time.Duration
	StripPrefix    int // 0 means no header stripping
	BlockDeadline  time.Duration
}

// WriteFraming describes the block-write wire format (§4.4 Write, §6).
type WriteFraming struct {
	Cmd          byte
	BlockSize    int
	AckByte      byte
	PostAckDelay time.Duration
	AckDeadline  time.Duration
}

// LayoutKind selects between the two memory-layout shapes (§3).
type LayoutKind int

const (
	LayoutMainAux LayoutKind = iota
	LayoutRegions
)

// Region is one non-contiguous memory region (start, size).
type Region struct {
	Start int
	Size  int
}

// Layout describes where channel memory lives on the radio (§3, §4.4).
type Layout struct {
	Kind LayoutKind

	// LayoutMainAux
	MainStart, MainEnd int
	HasAux             bool
	AuxStart, AuxEnd   int

	// LayoutRegions
	Regions   []Region
	TotalSize int
}

// ObfuscationKind selects the block obfuscation scheme (§3).
type ObfuscationKind int

const (
	ObfuscationNone ObfuscationKind = iota
	ObfuscationUV17Pro
	ObfuscationWouxun
)

// Obfuscation names the obfuscation scheme and its one parameter.
type Obfuscation struct {
	Kind        ObfuscationKind
	SymbolIndex int  // ObfuscationUV17Pro
	InitXOR     byte // ObfuscationWouxun
}

// FieldType selects a memory-codec field's binary encoding (§4.5).
type FieldType int

const (
	FieldBCDLE FieldType = iota
	FieldU16LE
	FieldU16BE
	FieldU32LE
	FieldByte
	FieldToneU16LE
	FieldString
)

// FieldSpec is one entry in a memory-format descriptor's field map (§4.5).
type FieldSpec struct {
	Name   string
	Offset int
	Size   int
	Type   FieldType
	Unit   int // post-decode multiplier, e.g. 10 for a deciHertz BCD field
	MaxLen int // FieldString only
}

// FlagMapping is one symbolic bit field over a named byte field (§4.5).
type FlagMapping struct {
	Field  string // the FieldSpec this bit field reads/writes
	Target string // the Channel field this maps to: "mode", "power", "skip"
	Mask   byte
	Shift  uint
	Invert bool
	Values []string // index -> domain label
}

// EmptyCheckKind selects how a memory-format descriptor detects an unused slot.
type EmptyCheckKind int

const (
	EmptyCheckBCDAllFF EmptyCheckKind = iota
	EmptyCheckBCDAllZero
	EmptyCheckIntSentinel
)

// EmptyCheck describes how to detect that a channel slot is unused (§4.5).
type EmptyCheck struct {
	Kind      EmptyCheckKind
	Field     string
	Sentinels []int // EmptyCheckIntSentinel only
}

// NameTable describes a separate fixed-stride name table outside the channel
// record (§4.5).
type NameTable struct {
	Offset int
	Stride int
}

// MemoryFormat is the data-driven descriptor the codec runs (§4.5).
type MemoryFormat struct {
	ChannelSize  int
	NumChannels  int
	StartOffset  int
	NameTable    *NameTable
	Fields       map[string]FieldSpec
	FlagMappings []FlagMapping
	EmptyCheck   EmptyCheck
	Defaults     map[string]string
	// Lossless marks the format as round-trip safe; upload must be refused
	// otherwise.
	Lossless bool
}

// Protocol is the immutable per-family descriptor (§3).
type Protocol struct {
	ID   string
	Baud int

	Handshake Handshake

	Read  ReadFraming
	Write WriteFraming

	Layout      Layout
	Obfuscation Obfuscation

	MemoryFormat MemoryFormat
}

// Model maps one radio to a protocol plus per-model overrides (§3).
type Model struct {
	Vendor      string
	Model       string
	DisplayName string
	ProtocolID  string
	MemorySize  int

	// NameMaxLength overrides the channel name's max length for this model.
	NameMaxLength int

	// MinFirmware, if set, is compared against a firmware token extracted
	// from the post-handshake identification bytes via FirmwarePattern.
	// A mismatch is a warning, never fatal.
	MinFirmware     string
	FirmwarePattern string

	// BaudOverride and BlockSizeOverride let a model diverge from its
	// protocol family's defaults without forking the protocol.
	BaudOverride      *int
	BlockSizeOverride *int
}
