package form

import (
	"encoding/json"
	"fmt"

	"github.com/unkn0wn-root/mptree"
)

// jsonDoc is the JSON shape of one entry. Field order matches the schema.
type jsonDoc struct {
	RawMarker uint8      `json:"raw_marker"`
	BasicType string     `json:"basic_type"`
	Data      jsonTagged `json:"data"`
}

type jsonTagged struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON renders e as an interchange document.
func MarshalJSON(e mptree.Entry, pretty bool) (string, error) {
	doc, err := jsonFromEntry(e)
	if err != nil {
		return "", err
	}
	var out []byte
	if pretty {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// UnmarshalJSON parses an interchange document back into an Entry.
func UnmarshalJSON(doc string) (mptree.Entry, error) {
	var d jsonDoc
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		return mptree.Entry{}, fmt.Errorf("form: parse document: %w", err)
	}
	return jsonToEntry(d)
}

// UnpackJSON decodes MessagePack bytes and renders the interchange document
// in one call.
func UnpackJSON(data []byte, pretty bool) (string, error) {
	e, err := mptree.Unpack(data)
	if err != nil {
		return "", err
	}
	return MarshalJSON(e, pretty)
}

// PackJSON parses an interchange document and encodes it to MessagePack
// bytes in one call.
func PackJSON(doc string) ([]byte, error) {
	e, err := UnmarshalJSON(doc)
	if err != nil {
		return nil, err
	}
	return mptree.Pack(e), nil
}

func jsonFromEntry(e mptree.Entry) (jsonDoc, error) {
	typ, payload, err := payloadOf(e.Data, shaper{
		bin: func(b []byte) any { return byteInts(b) },
		doc: func(child mptree.Entry) (any, error) { return jsonFromEntry(child) },
	})
	if err != nil {
		return jsonDoc{}, err
	}
	d := jsonDoc{
		RawMarker: e.RawMarker,
		BasicType: string(e.BasicType),
		Data:      jsonTagged{Type: typ},
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return jsonDoc{}, fmt.Errorf("form: marshal %s payload: %w", typ, err)
		}
		d.Data.Value = raw
	}
	return d, nil
}

func jsonToEntry(d jsonDoc) (mptree.Entry, error) {
	v, err := valueFrom(d.Data.Type, d.Data.Value, parser{
		dec: func(raw []byte, into any) error { return json.Unmarshal(raw, into) },
		bin: func(raw []byte) ([]byte, error) {
			var ns []int
			if err := json.Unmarshal(raw, &ns); err != nil {
				return nil, fmt.Errorf("form: decode binary payload: %w", err)
			}
			return intBytes(ns)
		},
		entries: jsonChildEntries,
		pairs:   jsonChildPairs,
	})
	if err != nil {
		return mptree.Entry{}, err
	}
	return checkedEntry(d.RawMarker, d.BasicType, d.Data.Type, v)
}

func jsonChildEntries(raw []byte) ([]mptree.Entry, error) {
	var ds []jsonDoc
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("form: decode array payload: %w", err)
	}
	out := make([]mptree.Entry, len(ds))
	for i, d := range ds {
		e, err := jsonToEntry(d)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func jsonChildPairs(raw []byte) ([]mptree.Pair, error) {
	var ds [][2]jsonDoc
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("form: decode map payload: %w", err)
	}
	out := make([]mptree.Pair, len(ds))
	for i, kv := range ds {
		k, err := jsonToEntry(kv[0])
		if err != nil {
			return nil, err
		}
		v, err := jsonToEntry(kv[1])
		if err != nil {
			return nil, err
		}
		out[i] = mptree.Pair{Key: k, Val: v}
	}
	return out, nil
}
