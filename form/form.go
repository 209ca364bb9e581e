// Package form renders mptree entries as tagged interchange documents and
// parses them back, for passing trees across process or language boundaries.
//
// The document schema is the same for both encodings:
//
//	{"raw_marker": <0-255>, "basic_type": "Null"|"Bool"|"Number"|"String"|"Bin"|"Array"|"Map",
//	 "data": {"type": <variant name>, "value": <payload>}}
//
// Null carries no "value" field. Map payloads are arrays of two-element
// [key, value] document arrays. Binary payloads are arrays of 0-255 integers
// in JSON and native byte strings in CBOR, so exact byte sequences survive
// either way.
//
// The core codec never depends on this package; it only consumes and
// produces mptree.Entry values.
package form

import (
	"fmt"

	"github.com/unkn0wn-root/mptree"
)

// Variant names used in the "type" field of a document.
const (
	nameNull     = "Null"
	nameBool     = "Bool"
	nameFixPos   = "FixPos"
	nameFixNeg   = "FixNeg"
	nameU8       = "U8"
	nameU16      = "U16"
	nameU32      = "U32"
	nameU64      = "U64"
	nameI8       = "I8"
	nameI16      = "I16"
	nameI32      = "I32"
	nameI64      = "I64"
	nameF32      = "F32"
	nameF64      = "F64"
	nameFixStr   = "FixStr"
	nameStr8     = "Str8"
	nameStr16    = "Str16"
	nameStr32    = "Str32"
	nameBin8     = "Bin8"
	nameBin16    = "Bin16"
	nameBin32    = "Bin32"
	nameFixArray = "FixArray"
	nameArray16  = "Array16"
	nameArray32  = "Array32"
	nameFixMap   = "FixMap"
	nameMap16    = "Map16"
	nameMap32    = "Map32"
)

// shaper supplies the encoding-specific shapes used while building a
// document: how binary payloads appear and how a child entry becomes a
// nested document value.
type shaper struct {
	bin func([]byte) any
	doc func(mptree.Entry) (any, error)
}

// payloadOf maps a Value to its variant name and document payload.
// Null is the only variant without a payload (nil).
func payloadOf(v mptree.Value, s shaper) (string, any, error) {
	switch v := v.(type) {
	case mptree.Null:
		return nameNull, nil, nil
	case mptree.Bool:
		return nameBool, bool(v), nil
	case mptree.FixPos:
		return nameFixPos, uint8(v), nil
	case mptree.FixNeg:
		return nameFixNeg, int8(v), nil
	case mptree.U8:
		return nameU8, uint8(v), nil
	case mptree.U16:
		return nameU16, uint16(v), nil
	case mptree.U32:
		return nameU32, uint32(v), nil
	case mptree.U64:
		return nameU64, uint64(v), nil
	case mptree.I8:
		return nameI8, int8(v), nil
	case mptree.I16:
		return nameI16, int16(v), nil
	case mptree.I32:
		return nameI32, int32(v), nil
	case mptree.I64:
		return nameI64, int64(v), nil
	case mptree.F32:
		return nameF32, float32(v), nil
	case mptree.F64:
		return nameF64, float64(v), nil
	case mptree.FixStr:
		return nameFixStr, string(v), nil
	case mptree.Str8:
		return nameStr8, string(v), nil
	case mptree.Str16:
		return nameStr16, string(v), nil
	case mptree.Str32:
		return nameStr32, string(v), nil
	case mptree.Bin8:
		return nameBin8, s.bin(v), nil
	case mptree.Bin16:
		return nameBin16, s.bin(v), nil
	case mptree.Bin32:
		return nameBin32, s.bin(v), nil
	case mptree.FixArray:
		ds, err := docsOf(v, s)
		return nameFixArray, ds, err
	case mptree.Array16:
		ds, err := docsOf(v, s)
		return nameArray16, ds, err
	case mptree.Array32:
		ds, err := docsOf(v, s)
		return nameArray32, ds, err
	case mptree.FixMap:
		ds, err := pairsOf(v, s)
		return nameFixMap, ds, err
	case mptree.Map16:
		ds, err := pairsOf(v, s)
		return nameMap16, ds, err
	case mptree.Map32:
		ds, err := pairsOf(v, s)
		return nameMap32, ds, err
	default:
		return "", nil, fmt.Errorf("form: value variant %T outside the closed union", v)
	}
}

func docsOf(elems []mptree.Entry, s shaper) ([]any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		d, err := s.doc(e)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func pairsOf(pairs []mptree.Pair, s shaper) ([][2]any, error) {
	out := make([][2]any, len(pairs))
	for i, p := range pairs {
		k, err := s.doc(p.Key)
		if err != nil {
			return nil, err
		}
		v, err := s.doc(p.Val)
		if err != nil {
			return nil, err
		}
		out[i] = [2]any{k, v}
	}
	return out, nil
}

// parser supplies the encoding-specific raw-payload readers used while
// rebuilding a tree from a document.
type parser struct {
	dec     func(raw []byte, into any) error
	bin     func(raw []byte) ([]byte, error)
	entries func(raw []byte) ([]mptree.Entry, error)
	pairs   func(raw []byte) ([]mptree.Pair, error)
}

func decPayload[T any](raw []byte, typ string, p parser) (T, error) {
	var v T
	if err := p.dec(raw, &v); err != nil {
		return v, fmt.Errorf("form: decode %s payload: %w", typ, err)
	}
	return v, nil
}

// valueFrom rebuilds a Value from its variant name and raw payload bytes.
func valueFrom(typ string, raw []byte, p parser) (mptree.Value, error) {
	if typ == nameNull {
		return mptree.Null{}, nil
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("form: variant %s missing value", typ)
	}
	switch typ {
	case nameBool:
		v, err := decPayload[bool](raw, typ, p)
		return mptree.Bool(v), err
	case nameFixPos:
		v, err := decPayload[uint8](raw, typ, p)
		return mptree.FixPos(v), err
	case nameFixNeg:
		v, err := decPayload[int8](raw, typ, p)
		return mptree.FixNeg(v), err
	case nameU8:
		v, err := decPayload[uint8](raw, typ, p)
		return mptree.U8(v), err
	case nameU16:
		v, err := decPayload[uint16](raw, typ, p)
		return mptree.U16(v), err
	case nameU32:
		v, err := decPayload[uint32](raw, typ, p)
		return mptree.U32(v), err
	case nameU64:
		v, err := decPayload[uint64](raw, typ, p)
		return mptree.U64(v), err
	case nameI8:
		v, err := decPayload[int8](raw, typ, p)
		return mptree.I8(v), err
	case nameI16:
		v, err := decPayload[int16](raw, typ, p)
		return mptree.I16(v), err
	case nameI32:
		v, err := decPayload[int32](raw, typ, p)
		return mptree.I32(v), err
	case nameI64:
		v, err := decPayload[int64](raw, typ, p)
		return mptree.I64(v), err
	case nameF32:
		v, err := decPayload[float32](raw, typ, p)
		return mptree.F32(v), err
	case nameF64:
		v, err := decPayload[float64](raw, typ, p)
		return mptree.F64(v), err
	case nameFixStr:
		v, err := decPayload[string](raw, typ, p)
		return mptree.FixStr(v), err
	case nameStr8:
		v, err := decPayload[string](raw, typ, p)
		return mptree.Str8(v), err
	case nameStr16:
		v, err := decPayload[string](raw, typ, p)
		return mptree.Str16(v), err
	case nameStr32:
		v, err := decPayload[string](raw, typ, p)
		return mptree.Str32(v), err
	case nameBin8:
		b, err := p.bin(raw)
		return mptree.Bin8(b), err
	case nameBin16:
		b, err := p.bin(raw)
		return mptree.Bin16(b), err
	case nameBin32:
		b, err := p.bin(raw)
		return mptree.Bin32(b), err
	case nameFixArray:
		es, err := p.entries(raw)
		return mptree.FixArray(es), err
	case nameArray16:
		es, err := p.entries(raw)
		return mptree.Array16(es), err
	case nameArray32:
		es, err := p.entries(raw)
		return mptree.Array32(es), err
	case nameFixMap:
		ps, err := p.pairs(raw)
		return mptree.FixMap(ps), err
	case nameMap16:
		ps, err := p.pairs(raw)
		return mptree.Map16(ps), err
	case nameMap32:
		ps, err := p.pairs(raw)
		return mptree.Map32(ps), err
	default:
		return nil, fmt.Errorf("form: unknown value variant %q", typ)
	}
}

// checkedEntry wraps v through the Entry constructor and verifies the
// document's basic_type against the derived one. A mismatched document is
// malformed, not silently corrected.
func checkedEntry(marker uint8, basicType, variant string, v mptree.Value) (mptree.Entry, error) {
	e := mptree.NewEntry(marker, v)
	if string(e.BasicType) != basicType {
		return mptree.Entry{}, fmt.Errorf("form: basic_type %q does not match variant %s (want %q)",
			basicType, variant, e.BasicType)
	}
	return e, nil
}

func byteInts(b []byte) []int {
	out := make([]int, len(b))
	for i, c := range b {
		out[i] = int(c)
	}
	return out
}

func intBytes(ns []int) ([]byte, error) {
	out := make([]byte, len(ns))
	for i, n := range ns {
		if n < 0 || n > 255 {
			return nil, fmt.Errorf("form: binary payload element %d out of byte range: %d", i, n)
		}
		out[i] = byte(n)
	}
	return out, nil
}
