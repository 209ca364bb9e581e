package mptree

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// FromAny marshals v with vmihailenco/msgpack and unpacks the bytes into a
// tree, giving a marker-level structural view of any Go value.
func FromAny(v any) (Entry, error) {
	raw, err := msgpack.Marshal(v)
	if err != nil {
		return Entry{}, fmt.Errorf("mptree: marshal to msgpack: %w", err)
	}
	return Unpack(raw)
}

// ToAny packs the tree and unmarshals the bytes into dst, following
// msgpack.Unmarshal conventions (dst is a pointer to the destination).
func ToAny(e Entry, dst any) error {
	return msgpack.Unmarshal(Pack(e), dst)
}
