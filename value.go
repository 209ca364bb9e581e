package mptree

import "fmt"

// BasicType is a coarse category derived from a Value's concrete variant.
// It exists for external consumers (interchange documents, tooling); decode
// and encode never branch on it.
type BasicType string

const (
	TypeNull   BasicType = "Null"
	TypeBool   BasicType = "Bool"
	TypeNumber BasicType = "Number"
	TypeString BasicType = "String"
	TypeBin    BasicType = "Bin"
	TypeArray  BasicType = "Array"
	TypeMap    BasicType = "Map"
)

// Valuer exposes the underlying Value. Entry and every Value variant
// implement it, so encoding recurses uniformly over either a wrapped entry
// or a bare value.
type Valuer interface {
	Value() Value
}

// Value is the closed union of MessagePack payload shapes. One concrete type
// per wire variant, so a decoded tree remembers exactly which width it came
// from. Extension types are intentionally absent.
type Value interface {
	Valuer
	isValue()
}

type (
	// Null is the nil format (0xC0).
	Null struct{}
	// Bool covers both the false (0xC2) and true (0xC3) markers.
	Bool bool
	// FixPos is a positive fixint: the marker byte itself carries 0..127.
	FixPos uint8
	// FixNeg is a negative fixint: the marker byte itself carries -32..-1.
	FixNeg int8

	U8  uint8
	U16 uint16
	U32 uint32
	U64 uint64

	I8  int8
	I16 int16
	I32 int32
	I64 int64

	F32 float32
	F64 float64

	// FixStr carries its length (0..31) in the low 5 bits of the marker.
	FixStr string
	Str8   string
	Str16  string
	Str32  string

	Bin8  []byte
	Bin16 []byte
	Bin32 []byte

	// FixArray carries its length (0..15) in the low 4 bits of the marker.
	FixArray []Entry
	Array16  []Entry
	Array32  []Entry
)

// Pair is one map entry. Maps are ordered pair slices, never Go maps:
// wire order and duplicate keys must survive a round trip.
type Pair struct {
	Key Entry
	Val Entry
}

type (
	// FixMap carries its pair count (0..15) in the low 4 bits of the marker.
	FixMap []Pair
	Map16  []Pair
	Map32  []Pair
)

func (v Null) Value() Value     { return v }
func (v Bool) Value() Value     { return v }
func (v FixPos) Value() Value   { return v }
func (v FixNeg) Value() Value   { return v }
func (v U8) Value() Value       { return v }
func (v U16) Value() Value      { return v }
func (v U32) Value() Value      { return v }
func (v U64) Value() Value      { return v }
func (v I8) Value() Value       { return v }
func (v I16) Value() Value      { return v }
func (v I32) Value() Value      { return v }
func (v I64) Value() Value      { return v }
func (v F32) Value() Value      { return v }
func (v F64) Value() Value      { return v }
func (v FixStr) Value() Value   { return v }
func (v Str8) Value() Value     { return v }
func (v Str16) Value() Value    { return v }
func (v Str32) Value() Value    { return v }
func (v Bin8) Value() Value     { return v }
func (v Bin16) Value() Value    { return v }
func (v Bin32) Value() Value    { return v }
func (v FixArray) Value() Value { return v }
func (v Array16) Value() Value  { return v }
func (v Array32) Value() Value  { return v }
func (v FixMap) Value() Value   { return v }
func (v Map16) Value() Value    { return v }
func (v Map32) Value() Value    { return v }

func (Null) isValue()     {}
func (Bool) isValue()     {}
func (FixPos) isValue()   {}
func (FixNeg) isValue()   {}
func (U8) isValue()       {}
func (U16) isValue()      {}
func (U32) isValue()      {}
func (U64) isValue()      {}
func (I8) isValue()       {}
func (I16) isValue()      {}
func (I32) isValue()      {}
func (I64) isValue()      {}
func (F32) isValue()      {}
func (F64) isValue()      {}
func (FixStr) isValue()   {}
func (Str8) isValue()     {}
func (Str16) isValue()    {}
func (Str32) isValue()    {}
func (Bin8) isValue()     {}
func (Bin16) isValue()    {}
func (Bin32) isValue()    {}
func (FixArray) isValue() {}
func (Array16) isValue()  {}
func (Array32) isValue()  {}
func (FixMap) isValue()   {}
func (Map16) isValue()    {}
func (Map32) isValue()    {}

// Entry pairs a decoded Value with the exact marker byte it was read from
// (or will be written as) and its derived BasicType.
//
// BasicType is always the derivation of Data's variant. Build entries with
// NewEntry; a hand-assembled Entry with a mismatched BasicType is malformed.
type Entry struct {
	RawMarker byte
	BasicType BasicType
	Data      Value
}

// NewEntry wraps value with its marker byte, deriving BasicType.
func NewEntry(marker byte, value Value) Entry {
	return Entry{RawMarker: marker, BasicType: basicTypeOf(value), Data: value}
}

func (e Entry) Value() Value { return e.Data }

// basicTypeOf is the pure variant -> category mapping. Total over the union.
func basicTypeOf(v Value) BasicType {
	switch v.(type) {
	case Null:
		return TypeNull
	case Bool:
		return TypeBool
	case FixPos, FixNeg, U8, U16, U32, U64, I8, I16, I32, I64, F32, F64:
		return TypeNumber
	case FixStr, Str8, Str16, Str32:
		return TypeString
	case Bin8, Bin16, Bin32:
		return TypeBin
	case FixArray, Array16, Array32:
		return TypeArray
	case FixMap, Map16, Map32:
		return TypeMap
	default:
		panic(fmt.Sprintf("mptree: value variant %T outside the closed union", v))
	}
}
