package form

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/unkn0wn-root/mptree"
)

// CBOR document encoding uses RFC 8949 Core Deterministic options so the
// same tree always produces the same bytes.
var (
	cborEnc = mustEncMode()
	cborDec = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func mustDecMode() cbor.DecMode {
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

// cborDoc is the CBOR shape of one entry. Binary payloads stay native byte
// strings instead of the integer arrays the JSON form uses.
type cborDoc struct {
	RawMarker uint8      `cbor:"raw_marker"`
	BasicType string     `cbor:"basic_type"`
	Data      cborTagged `cbor:"data"`
}

type cborTagged struct {
	Type  string          `cbor:"type"`
	Value cbor.RawMessage `cbor:"value,omitempty"`
}

// MarshalCBOR renders e as an interchange document in CBOR.
func MarshalCBOR(e mptree.Entry) ([]byte, error) {
	doc, err := cborFromEntry(e)
	if err != nil {
		return nil, err
	}
	return cborEnc.Marshal(doc)
}

// UnmarshalCBOR parses a CBOR interchange document back into an Entry.
func UnmarshalCBOR(data []byte) (mptree.Entry, error) {
	var d cborDoc
	if err := cborDec.Unmarshal(data, &d); err != nil {
		return mptree.Entry{}, fmt.Errorf("form: parse document: %w", err)
	}
	return cborToEntry(d)
}

func cborFromEntry(e mptree.Entry) (cborDoc, error) {
	typ, payload, err := payloadOf(e.Data, shaper{
		bin: func(b []byte) any { return b },
		doc: func(child mptree.Entry) (any, error) { return cborFromEntry(child) },
	})
	if err != nil {
		return cborDoc{}, err
	}
	d := cborDoc{
		RawMarker: e.RawMarker,
		BasicType: string(e.BasicType),
		Data:      cborTagged{Type: typ},
	}
	if payload != nil {
		raw, err := cborEnc.Marshal(payload)
		if err != nil {
			return cborDoc{}, fmt.Errorf("form: marshal %s payload: %w", typ, err)
		}
		d.Data.Value = raw
	}
	return d, nil
}

func cborToEntry(d cborDoc) (mptree.Entry, error) {
	v, err := valueFrom(d.Data.Type, d.Data.Value, parser{
		dec: func(raw []byte, into any) error { return cborDec.Unmarshal(raw, into) },
		bin: func(raw []byte) ([]byte, error) {
			var b []byte
			if err := cborDec.Unmarshal(raw, &b); err != nil {
				return nil, fmt.Errorf("form: decode binary payload: %w", err)
			}
			return b, nil
		},
		entries: cborChildEntries,
		pairs:   cborChildPairs,
	})
	if err != nil {
		return mptree.Entry{}, err
	}
	return checkedEntry(d.RawMarker, d.BasicType, d.Data.Type, v)
}

func cborChildEntries(raw []byte) ([]mptree.Entry, error) {
	var ds []cborDoc
	if err := cborDec.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("form: decode array payload: %w", err)
	}
	out := make([]mptree.Entry, len(ds))
	for i, d := range ds {
		e, err := cborToEntry(d)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func cborChildPairs(raw []byte) ([]mptree.Pair, error) {
	var ds [][2]cborDoc
	if err := cborDec.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("form: decode map payload: %w", err)
	}
	out := make([]mptree.Pair, len(ds))
	for i, kv := range ds {
		k, err := cborToEntry(kv[0])
		if err != nil {
			return nil, err
		}
		v, err := cborToEntry(kv[1])
		if err != nil {
			return nil, err
		}
		out[i] = mptree.Pair{Key: k, Val: v}
	}
	return out, nil
}
