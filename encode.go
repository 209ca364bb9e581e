package mptree

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// Pack encodes v into a fresh buffer. Encoding an in-memory tree cannot
// fail: the wire shape recorded in each Value variant is reproduced exactly,
// and collection length fields always come from len(children), never from a
// stored count.
//
// Pack is the inverse of Unpack: for any decoded tree, Pack returns the
// original bytes bit for bit.
func Pack(v Valuer) []byte {
	var buf bytes.Buffer
	writeValue(&buf, v.Value())
	return buf.Bytes()
}

// Write encodes v to w. The tree itself cannot fail to encode; only a sink
// failure is reported, and it is fatal (no partial-write recovery).
func Write(w io.Writer, v Valuer) error {
	_, err := w.Write(Pack(v))
	return err
}

// writeValue emits marker, length field if any, and payload, recursing into
// collection children. One case per union variant; the width recorded in the
// variant is written verbatim, not the shortest fit.
func writeValue(buf *bytes.Buffer, v Value) {
	switch v := v.(type) {
	case Null:
		buf.WriteByte(mkNull)
	case Bool:
		if v {
			buf.WriteByte(mkTrue)
		} else {
			buf.WriteByte(mkFalse)
		}

	case FixPos:
		buf.WriteByte(byte(v) & 0x7F) // low 7 bits carry the value
	case FixNeg:
		// Low 5 bits carry the value; 0xE0 restores the fixneg bit pattern
		// so the two's-complement sign survives.
		buf.WriteByte(byte(v)&0x1F | 0xE0)

	case U8:
		buf.WriteByte(mkU8)
		buf.WriteByte(byte(v))
	case U16:
		buf.WriteByte(mkU16)
		writeUint16(buf, uint16(v))
	case U32:
		buf.WriteByte(mkU32)
		writeUint32(buf, uint32(v))
	case U64:
		buf.WriteByte(mkU64)
		writeUint64(buf, uint64(v))

	case I8:
		buf.WriteByte(mkI8)
		buf.WriteByte(byte(v))
	case I16:
		buf.WriteByte(mkI16)
		writeUint16(buf, uint16(v))
	case I32:
		buf.WriteByte(mkI32)
		writeUint32(buf, uint32(v))
	case I64:
		buf.WriteByte(mkI64)
		writeUint64(buf, uint64(v))

	case F32:
		buf.WriteByte(mkF32)
		writeUint32(buf, math.Float32bits(float32(v)))
	case F64:
		buf.WriteByte(mkF64)
		writeUint64(buf, math.Float64bits(float64(v)))

	case FixStr:
		buf.WriteByte(byte(len(v))&0x1F | 0xA0) // low 5 bits carry the length
		buf.WriteString(string(v))
	case Str8:
		buf.WriteByte(mkStr8)
		buf.WriteByte(byte(len(v)))
		buf.WriteString(string(v))
	case Str16:
		buf.WriteByte(mkStr16)
		writeUint16(buf, uint16(len(v)))
		buf.WriteString(string(v))
	case Str32:
		buf.WriteByte(mkStr32)
		writeUint32(buf, uint32(len(v)))
		buf.WriteString(string(v))

	case Bin8:
		buf.WriteByte(mkBin8)
		buf.WriteByte(byte(len(v)))
		buf.Write(v)
	case Bin16:
		buf.WriteByte(mkBin16)
		writeUint16(buf, uint16(len(v)))
		buf.Write(v)
	case Bin32:
		buf.WriteByte(mkBin32)
		writeUint32(buf, uint32(len(v)))
		buf.Write(v)

	case FixArray:
		buf.WriteByte(byte(len(v))&0x0F | 0x90) // low 4 bits carry the length
		writeElems(buf, v)
	case Array16:
		buf.WriteByte(mkArray16)
		writeUint16(buf, uint16(len(v)))
		writeElems(buf, v)
	case Array32:
		buf.WriteByte(mkArray32)
		writeUint32(buf, uint32(len(v)))
		writeElems(buf, v)

	case FixMap:
		buf.WriteByte(byte(len(v))&0x0F | 0x80) // low 4 bits carry the pair count
		writePairs(buf, v)
	case Map16:
		buf.WriteByte(mkMap16)
		writeUint16(buf, uint16(len(v)))
		writePairs(buf, v)
	case Map32:
		buf.WriteByte(mkMap32)
		writeUint32(buf, uint32(len(v)))
		writePairs(buf, v)
	}
}

func writeElems(buf *bytes.Buffer, elems []Entry) {
	for _, e := range elems {
		writeValue(buf, e.Data)
	}
}

func writePairs(buf *bytes.Buffer, pairs []Pair) {
	for _, p := range pairs {
		writeValue(buf, p.Key.Data)
		writeValue(buf, p.Val.Data)
	}
}

func writeUint16(buf *bytes.Buffer, n uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], n)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, n uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, n uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	buf.Write(b[:])
}
