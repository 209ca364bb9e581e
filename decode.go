package mptree

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// DefaultMaxDepth bounds value nesting for Unpack. Every array or map level
// costs one unit. Deeply nested adversarial input fails with ErrDepth
// instead of exhausting the stack.
const DefaultMaxDepth = 512

// Decoder carries decode configuration. The zero value is ready to use.
type Decoder struct {
	// MaxDepth caps value nesting; 0 means DefaultMaxDepth.
	MaxDepth int
	// Logger, when set, records decode failures at Debug level.
	// Nil disables logging.
	Logger Logger
}

// Unpack reads one complete MessagePack value from the start of data using
// default settings. Trailing bytes after the value are ignored.
func Unpack(data []byte) (Entry, error) {
	return Decoder{}.Unpack(data)
}

// Unpack reads one complete MessagePack value from the start of data.
// It either returns a fully built tree or fails atomically; partial trees
// are never returned.
func (d Decoder) Unpack(data []byte) (Entry, error) {
	r := &reader{buf: data, maxDepth: coalesce(d.MaxDepth, DefaultMaxDepth)}
	e, err := r.readValue(1)
	if err != nil {
		lg := d.Logger
		if lg == nil {
			lg = NopLogger{}
		}
		var de *DecodeError
		if errors.As(err, &de) {
			lg.Debug("unpack failed", Fields{"offset": de.Offset, "marker": de.Marker, "err": de.Err})
		} else {
			lg.Debug("unpack failed", Fields{"err": err})
		}
		return Entry{}, err
	}
	return e, nil
}

// reader is a bounds-checked cursor over the input buffer.
type reader struct {
	buf      []byte
	off      int
	maxDepth int
}

func (r *reader) readByte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

// readN returns a view into the input; callers must copy anything they keep.
func (r *reader) readN(n int) ([]byte, error) {
	if n > len(r.buf)-r.off {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) readUint16() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) readUint32() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) readUint64() (uint64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// readValue reads one marker and its payload, recursing into collection
// children. depth is the nesting level of the value being read, starting
// at 1 for the root.
func (r *reader) readValue(depth int) (Entry, error) {
	start := r.off
	marker, err := r.readByte()
	if err != nil {
		return Entry{}, &DecodeError{Offset: start, Err: fmt.Errorf("read marker: %w", err)}
	}
	if depth > r.maxDepth {
		return Entry{}, &DecodeError{Offset: start, Marker: marker, Err: ErrDepth}
	}

	var v Value
	switch f := markerFormat(marker); f {
	case fmtNull:
		v = Null{}
	case fmtFalse:
		v = Bool(false)
	case fmtTrue:
		v = Bool(true)
	case fmtFixPos:
		v = FixPos(marker)
	case fmtFixNeg:
		v = FixNeg(int8(marker))
	case fmtU8, fmtU16, fmtU32, fmtU64:
		v, err = r.readUint(f)
	case fmtI8, fmtI16, fmtI32, fmtI64:
		v, err = r.readInt(f)
	case fmtF32, fmtF64:
		v, err = r.readFloat(f)
	case fmtFixStr, fmtStr8, fmtStr16, fmtStr32:
		v, err = r.readStr(marker, f)
	case fmtBin8, fmtBin16, fmtBin32:
		v, err = r.readBin(f)
	case fmtFixArray, fmtArray16, fmtArray32:
		v, err = r.readArray(marker, f, depth)
	case fmtFixMap, fmtMap16, fmtMap32:
		v, err = r.readMap(marker, f, depth)
	case fmtExt:
		err = ErrUnsupported
	default:
		err = ErrReserved
	}
	if err != nil {
		return Entry{}, wrapDecode(start, marker, err)
	}
	return NewEntry(marker, v), nil
}

func (r *reader) readUint(f format) (Value, error) {
	switch f {
	case fmtU8:
		b, err := r.readByte()
		if err != nil {
			return nil, fmt.Errorf("read u8: %w", err)
		}
		return U8(b), nil
	case fmtU16:
		n, err := r.readUint16()
		if err != nil {
			return nil, fmt.Errorf("read u16: %w", err)
		}
		return U16(n), nil
	case fmtU32:
		n, err := r.readUint32()
		if err != nil {
			return nil, fmt.Errorf("read u32: %w", err)
		}
		return U32(n), nil
	default:
		n, err := r.readUint64()
		if err != nil {
			return nil, fmt.Errorf("read u64: %w", err)
		}
		return U64(n), nil
	}
}

func (r *reader) readInt(f format) (Value, error) {
	switch f {
	case fmtI8:
		b, err := r.readByte()
		if err != nil {
			return nil, fmt.Errorf("read i8: %w", err)
		}
		return I8(int8(b)), nil
	case fmtI16:
		n, err := r.readUint16()
		if err != nil {
			return nil, fmt.Errorf("read i16: %w", err)
		}
		return I16(int16(n)), nil
	case fmtI32:
		n, err := r.readUint32()
		if err != nil {
			return nil, fmt.Errorf("read i32: %w", err)
		}
		return I32(int32(n)), nil
	default:
		n, err := r.readUint64()
		if err != nil {
			return nil, fmt.Errorf("read i64: %w", err)
		}
		return I64(int64(n)), nil
	}
}

func (r *reader) readFloat(f format) (Value, error) {
	if f == fmtF32 {
		n, err := r.readUint32()
		if err != nil {
			return nil, fmt.Errorf("read f32: %w", err)
		}
		return F32(math.Float32frombits(n)), nil
	}
	n, err := r.readUint64()
	if err != nil {
		return nil, fmt.Errorf("read f64: %w", err)
	}
	return F64(math.Float64frombits(n)), nil
}

// readStr reads the length (embedded in a fixstr marker, or a trailing
// big-endian field), then the payload. The payload must be valid UTF-8 and
// is copied out of the input buffer.
func (r *reader) readStr(marker byte, f format) (Value, error) {
	var n int
	switch f {
	case fmtFixStr:
		n = int(marker & 0x1F) // low 5 bits carry the length
	case fmtStr8:
		b, err := r.readByte()
		if err != nil {
			return nil, fmt.Errorf("read str8 length: %w", err)
		}
		n = int(b)
	case fmtStr16:
		l, err := r.readUint16()
		if err != nil {
			return nil, fmt.Errorf("read str16 length: %w", err)
		}
		n = int(l)
	default:
		l, err := r.readUint32()
		if err != nil {
			return nil, fmt.Errorf("read str32 length: %w", err)
		}
		n = int(l)
	}

	raw, err := r.readN(n)
	if err != nil {
		return nil, fmt.Errorf("read string payload (%d bytes): %w", n, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w (first invalid byte at payload offset %d)", ErrInvalidUTF8, invalidUTF8Index(raw))
	}
	s := string(raw)

	switch f {
	case fmtFixStr:
		return FixStr(s), nil
	case fmtStr8:
		return Str8(s), nil
	case fmtStr16:
		return Str16(s), nil
	default:
		return Str32(s), nil
	}
}

func (r *reader) readBin(f format) (Value, error) {
	var n int
	switch f {
	case fmtBin8:
		b, err := r.readByte()
		if err != nil {
			return nil, fmt.Errorf("read bin8 length: %w", err)
		}
		n = int(b)
	case fmtBin16:
		l, err := r.readUint16()
		if err != nil {
			return nil, fmt.Errorf("read bin16 length: %w", err)
		}
		n = int(l)
	default:
		l, err := r.readUint32()
		if err != nil {
			return nil, fmt.Errorf("read bin32 length: %w", err)
		}
		n = int(l)
	}

	raw, err := r.readN(n)
	if err != nil {
		return nil, fmt.Errorf("read binary payload (%d bytes): %w", n, err)
	}
	buf := make([]byte, n)
	copy(buf, raw) // detach from the input buffer

	switch f {
	case fmtBin8:
		return Bin8(buf), nil
	case fmtBin16:
		return Bin16(buf), nil
	default:
		return Bin32(buf), nil
	}
}

func (r *reader) readArray(marker byte, f format, depth int) (Value, error) {
	var n int
	switch f {
	case fmtFixArray:
		n = int(marker & 0x0F) // low 4 bits carry the length
	case fmtArray16:
		l, err := r.readUint16()
		if err != nil {
			return nil, fmt.Errorf("read array16 length: %w", err)
		}
		n = int(l)
	default:
		l, err := r.readUint32()
		if err != nil {
			return nil, fmt.Errorf("read array32 length: %w", err)
		}
		n = int(l)
	}

	// Every element needs at least one byte, so the remaining input bounds
	// the pre-allocation against hostile length claims.
	elems := make([]Entry, 0, min(n, len(r.buf)-r.off))
	for i := 0; i < n; i++ {
		e, err := r.readValue(depth + 1)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}

	switch f {
	case fmtFixArray:
		return FixArray(elems), nil
	case fmtArray16:
		return Array16(elems), nil
	default:
		return Array32(elems), nil
	}
}

func (r *reader) readMap(marker byte, f format, depth int) (Value, error) {
	var n int
	switch f {
	case fmtFixMap:
		n = int(marker & 0x0F) // low 4 bits carry the pair count
	case fmtMap16:
		l, err := r.readUint16()
		if err != nil {
			return nil, fmt.Errorf("read map16 length: %w", err)
		}
		n = int(l)
	default:
		l, err := r.readUint32()
		if err != nil {
			return nil, fmt.Errorf("read map32 length: %w", err)
		}
		n = int(l)
	}

	pairs := make([]Pair, 0, min(n, (len(r.buf)-r.off)/2))
	for i := 0; i < n; i++ {
		k, err := r.readValue(depth + 1)
		if err != nil {
			return nil, err
		}
		v, err := r.readValue(depth + 1)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{Key: k, Val: v})
	}

	switch f {
	case fmtFixMap:
		return FixMap(pairs), nil
	case fmtMap16:
		return Map16(pairs), nil
	default:
		return Map32(pairs), nil
	}
}

func invalidUTF8Index(b []byte) int {
	for i := 0; i < len(b); {
		c, size := utf8.DecodeRune(b[i:])
		if c == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
