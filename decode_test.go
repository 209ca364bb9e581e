package mptree

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustUnpack(t *testing.T, b []byte) Entry {
	t.Helper()
	e, err := Unpack(b)
	if err != nil {
		t.Fatalf("Unpack(% X): %v", b, err)
	}
	return e
}

func TestUnpackKnownBuffers(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want Entry
	}{
		{"nil", []byte{0xC0}, NewEntry(0xC0, Null{})},
		{"false", []byte{0xC2}, NewEntry(0xC2, Bool(false))},
		{"true", []byte{0xC3}, NewEntry(0xC3, Bool(true))},
		{"fixpos 1", []byte{0x01}, NewEntry(0x01, FixPos(1))},
		{"fixpos 127", []byte{0x7F}, NewEntry(0x7F, FixPos(127))},
		{"fixneg -1", []byte{0xFF}, NewEntry(0xFF, FixNeg(-1))},
		{"fixneg -32", []byte{0xE0}, NewEntry(0xE0, FixNeg(-32))},
		{"u8", []byte{0xCC, 0xFE}, NewEntry(0xCC, U8(0xFE))},
		{"u16", []byte{0xCD, 0x12, 0x34}, NewEntry(0xCD, U16(0x1234))},
		{"u32", []byte{0xCE, 0x00, 0x01, 0x02, 0x03}, NewEntry(0xCE, U32(0x00010203))},
		{"u64", []byte{0xCF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, NewEntry(0xCF, U64(1<<64-1))},
		{"i8", []byte{0xD0, 0xFF}, NewEntry(0xD0, I8(-1))},
		{"i16", []byte{0xD1, 0xFF, 0xFE}, NewEntry(0xD1, I16(-2))},
		{"i32", []byte{0xD2, 0xFF, 0xFF, 0xFF, 0xFD}, NewEntry(0xD2, I32(-3))},
		{"i64", []byte{0xD3, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFC}, NewEntry(0xD3, I64(-4))},
		{"f32 1.5", []byte{0xCA, 0x3F, 0xC0, 0x00, 0x00}, NewEntry(0xCA, F32(1.5))},
		{"f64 1.5", []byte{0xCB, 0x3F, 0xF8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, NewEntry(0xCB, F64(1.5))},
		{"fixstr empty", []byte{0xA0}, NewEntry(0xA0, FixStr(""))},
		{"fixstr foo", []byte{0xA3, 'f', 'o', 'o'}, NewEntry(0xA3, FixStr("foo"))},
		{"str8", []byte{0xD9, 0x02, 'h', 'i'}, NewEntry(0xD9, Str8("hi"))},
		{"str16", []byte{0xDA, 0x00, 0x01, 'x'}, NewEntry(0xDA, Str16("x"))},
		{"str32", []byte{0xDB, 0x00, 0x00, 0x00, 0x01, 'y'}, NewEntry(0xDB, Str32("y"))},
		{"bin8", []byte{0xC4, 0x03, 0x01, 0x02, 0x03}, NewEntry(0xC4, Bin8{1, 2, 3})},
		{"bin16", []byte{0xC5, 0x00, 0x01, 0xFF}, NewEntry(0xC5, Bin16{0xFF})},
		{"bin32", []byte{0xC6, 0x00, 0x00, 0x00, 0x01, 0x00}, NewEntry(0xC6, Bin32{0x00})},
		{"fixarray", []byte{0x92, 0xC0, 0xC3}, NewEntry(0x92, FixArray{
			NewEntry(0xC0, Null{}),
			NewEntry(0xC3, Bool(true)),
		})},
		{"array16", []byte{0xDC, 0x00, 0x01, 0xC0}, NewEntry(0xDC, Array16{NewEntry(0xC0, Null{})})},
		{"array32", []byte{0xDD, 0x00, 0x00, 0x00, 0x01, 0x01}, NewEntry(0xDD, Array32{NewEntry(0x01, FixPos(1))})},
		{"fixmap empty", []byte{0x80}, NewEntry(0x80, FixMap{})},
		{"fixmap", []byte{0x81, 0xA1, 'a', 0x01}, NewEntry(0x81, FixMap{
			{Key: NewEntry(0xA1, FixStr("a")), Val: NewEntry(0x01, FixPos(1))},
		})},
		{"map16", []byte{0xDE, 0x00, 0x01, 0xA1, 'k', 0xC2}, NewEntry(0xDE, Map16{
			{Key: NewEntry(0xA1, FixStr("k")), Val: NewEntry(0xC2, Bool(false))},
		})},
		{"map32", []byte{0xDF, 0x00, 0x00, 0x00, 0x01, 0xC0, 0xC0}, NewEntry(0xDF, Map32{
			{Key: NewEntry(0xC0, Null{}), Val: NewEntry(0xC0, Null{})},
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustUnpack(t, tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("tree mismatch (-want +got):\n%s", diff)
			}
			if back := Pack(got); !bytes.Equal(back, tc.in) {
				t.Fatalf("re-encode mismatch: got % X want % X", back, tc.in)
			}
		})
	}
}

func TestUnpackIgnoresTrailingBytes(t *testing.T) {
	e := mustUnpack(t, []byte{0xC3, 0xDE, 0xAD})
	if e.Data != Value(Bool(true)) {
		t.Fatalf("got %#v, want Bool(true)", e.Data)
	}
}

func TestUnpackTruncated(t *testing.T) {
	cases := [][]byte{
		{},                 // no marker at all
		{0xCC},             // u8 with no payload
		{0xCD, 0x01},       // u16 with half a payload
		{0xCF, 0x01, 0x02}, // u64 cut short
		{0xCA, 0x3F},       // f32 cut short
		{0xD9},             // str8 missing its length byte
		{0xDA, 0x00},       // str16 with half a length field
		{0xA3, 'f'},        // fixstr payload cut short
		{0xC4, 0x02, 0x01}, // bin8 payload cut short
		{0xDC, 0x00},       // array16 with half a length field
		{0x92, 0xC0},       // fixarray missing its second element
		{0x81, 0xA1, 'a'},  // fixmap missing the value of a pair
	}
	for _, in := range cases {
		if _, err := Unpack(in); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("Unpack(% X): err = %v, want io.ErrUnexpectedEOF", in, err)
		}
	}
}

func TestUnpackRejectsExtMarkers(t *testing.T) {
	for _, m := range []byte{0xC7, 0xC8, 0xC9, 0xD4, 0xD5, 0xD6, 0xD7, 0xD8} {
		if _, err := Unpack([]byte{m, 0x00, 0x00, 0x00}); !errors.Is(err, ErrUnsupported) {
			t.Errorf("marker 0x%02X: err = %v, want ErrUnsupported", m, err)
		}
	}
}

func TestUnpackRejectsReservedMarker(t *testing.T) {
	if _, err := Unpack([]byte{0xC1}); !errors.Is(err, ErrReserved) {
		t.Fatalf("err = %v, want ErrReserved", err)
	}
}

func TestUnpackInvalidUTF8(t *testing.T) {
	cases := [][]byte{
		{0xA2, 0xFF, 0xFE},       // fixstr
		{0xD9, 0x01, 0x80},       // str8, lone continuation byte
		{0x91, 0xD9, 0x01, 0x80}, // nested in an array
	}
	for _, in := range cases {
		if _, err := Unpack(in); !errors.Is(err, ErrInvalidUTF8) {
			t.Errorf("Unpack(% X): err = %v, want ErrInvalidUTF8", in, err)
		}
	}
	// binary payloads carry no such constraint
	if _, err := Unpack([]byte{0xC4, 0x02, 0xFF, 0xFE}); err != nil {
		t.Fatalf("bin payload should accept any bytes: %v", err)
	}
}

// nestedArrays returns n fixarray markers wrapping a single nil.
func nestedArrays(n int) []byte {
	b := make([]byte, 0, n+1)
	for i := 0; i < n; i++ {
		b = append(b, 0x91)
	}
	return append(b, 0xC0)
}

func TestUnpackDepthGuard(t *testing.T) {
	d := Decoder{MaxDepth: 4}
	if _, err := d.Unpack(nestedArrays(3)); err != nil {
		t.Fatalf("3 levels within MaxDepth 4: %v", err)
	}
	if _, err := d.Unpack(nestedArrays(4)); !errors.Is(err, ErrDepth) {
		t.Fatalf("4 levels past MaxDepth 4: err = %v, want ErrDepth", err)
	}
	if _, err := Unpack(nestedArrays(DefaultMaxDepth)); !errors.Is(err, ErrDepth) {
		t.Fatalf("default guard: err = %v, want ErrDepth", err)
	}
	// maps consume depth the same way
	if _, err := (Decoder{MaxDepth: 1}).Unpack([]byte{0x81, 0xC0, 0xC0}); !errors.Is(err, ErrDepth) {
		t.Fatalf("map children past MaxDepth 1: err = %v, want ErrDepth", err)
	}
}

func TestDecodeErrorContext(t *testing.T) {
	_, err := Unpack([]byte{0x92, 0xC0, 0xC1})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
	if de.Offset != 2 || de.Marker != 0xC1 {
		t.Fatalf("context = offset %d marker 0x%02X, want offset 2 marker 0xC1", de.Offset, de.Marker)
	}
}

type captureLogger struct {
	debugs []string
	fields []Fields
}

func (c *captureLogger) Debug(msg string, f Fields) {
	c.debugs = append(c.debugs, msg)
	c.fields = append(c.fields, f)
}
func (c *captureLogger) Info(string, Fields)  {}
func (c *captureLogger) Warn(string, Fields)  {}
func (c *captureLogger) Error(string, Fields) {}

func TestDecoderLogsFailures(t *testing.T) {
	lg := &captureLogger{}
	if _, err := (Decoder{Logger: lg}).Unpack([]byte{0xC1}); err == nil {
		t.Fatal("expected decode error")
	}
	if len(lg.debugs) != 1 {
		t.Fatalf("logged %d debug lines, want 1", len(lg.debugs))
	}
	if _, ok := lg.fields[0]["marker"]; !ok {
		t.Fatalf("debug fields missing marker: %v", lg.fields[0])
	}
	// success path stays quiet
	if _, err := (Decoder{Logger: lg}).Unpack([]byte{0xC0}); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if len(lg.debugs) != 1 {
		t.Fatalf("successful decode should not log, got %d lines", len(lg.debugs))
	}
}

func TestMarkerFormatBoundaries(t *testing.T) {
	cases := []struct {
		b    byte
		want format
	}{
		{0x00, fmtFixPos},
		{0x7F, fmtFixPos},
		{0x80, fmtFixMap},
		{0x8F, fmtFixMap},
		{0x90, fmtFixArray},
		{0x9F, fmtFixArray},
		{0xA0, fmtFixStr},
		{0xBF, fmtFixStr},
		{0xC1, fmtReserved},
		{0xC7, fmtExt},
		{0xD4, fmtExt},
		{0xD8, fmtExt},
		{0xE0, fmtFixNeg},
		{0xFF, fmtFixNeg},
	}
	for _, tc := range cases {
		if got := markerFormat(tc.b); got != tc.want {
			t.Errorf("markerFormat(0x%02X) = %d, want %d", tc.b, got, tc.want)
		}
	}
}
