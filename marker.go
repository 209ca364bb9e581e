package mptree

// Marker bytes for formats whose marker carries no embedded bits. The Fix*
// families embed value or length bits and are matched by range instead.
const (
	mkNull  byte = 0xC0
	mkFalse byte = 0xC2
	mkTrue  byte = 0xC3

	mkBin8  byte = 0xC4
	mkBin16 byte = 0xC5
	mkBin32 byte = 0xC6

	mkF32 byte = 0xCA
	mkF64 byte = 0xCB

	mkU8  byte = 0xCC
	mkU16 byte = 0xCD
	mkU32 byte = 0xCE
	mkU64 byte = 0xCF

	mkI8  byte = 0xD0
	mkI16 byte = 0xD1
	mkI32 byte = 0xD2
	mkI64 byte = 0xD3

	mkStr8  byte = 0xD9
	mkStr16 byte = 0xDA
	mkStr32 byte = 0xDB

	mkArray16 byte = 0xDC
	mkArray32 byte = 0xDD

	mkMap16 byte = 0xDE
	mkMap32 byte = 0xDF
)

// format is the marker family of a byte, width variants kept distinct.
type format uint8

const (
	fmtNull format = iota
	fmtFalse
	fmtTrue
	fmtFixPos
	fmtFixNeg
	fmtU8
	fmtU16
	fmtU32
	fmtU64
	fmtI8
	fmtI16
	fmtI32
	fmtI64
	fmtF32
	fmtF64
	fmtFixStr
	fmtStr8
	fmtStr16
	fmtStr32
	fmtBin8
	fmtBin16
	fmtBin32
	fmtFixArray
	fmtArray16
	fmtArray32
	fmtFixMap
	fmtMap16
	fmtMap32
	fmtExt      // any ext family marker; decoding refuses these
	fmtReserved // 0xC1
)

// markerFormat classifies a marker byte. Pure range/bitmask dispatch over
// the MessagePack marker table; total over all 256 byte values.
func markerFormat(b byte) format {
	switch {
	case b <= 0x7F:
		return fmtFixPos
	case b >= 0xE0:
		return fmtFixNeg
	case b <= 0x8F:
		return fmtFixMap // 0x80..0x8F
	case b <= 0x9F:
		return fmtFixArray // 0x90..0x9F
	case b <= 0xBF:
		return fmtFixStr // 0xA0..0xBF
	}

	switch b {
	case mkNull:
		return fmtNull
	case mkFalse:
		return fmtFalse
	case mkTrue:
		return fmtTrue
	case mkBin8:
		return fmtBin8
	case mkBin16:
		return fmtBin16
	case mkBin32:
		return fmtBin32
	case mkF32:
		return fmtF32
	case mkF64:
		return fmtF64
	case mkU8:
		return fmtU8
	case mkU16:
		return fmtU16
	case mkU32:
		return fmtU32
	case mkU64:
		return fmtU64
	case mkI8:
		return fmtI8
	case mkI16:
		return fmtI16
	case mkI32:
		return fmtI32
	case mkI64:
		return fmtI64
	case mkStr8:
		return fmtStr8
	case mkStr16:
		return fmtStr16
	case mkStr32:
		return fmtStr32
	case mkArray16:
		return fmtArray16
	case mkArray32:
		return fmtArray32
	case mkMap16:
		return fmtMap16
	case mkMap32:
		return fmtMap32
	case 0xC7, 0xC8, 0xC9, 0xD4, 0xD5, 0xD6, 0xD7, 0xD8:
		return fmtExt // ext8/16/32, fixext1/2/4/8/16
	}
	return fmtReserved // 0xC1
}
