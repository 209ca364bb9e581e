// Package mptree is a structural MessagePack codec: it decodes a buffer into
// a fully typed tree that records the exact wire shape of every value, and
// encodes that tree back into the identical bytes.
//
// Components:
//   - Value: closed union over every MessagePack wire variant. Width variants
//     (fixstr vs str8/16/32, fixmap vs map16/32, ...) are distinct types.
//   - Entry: a decoded value paired with its raw marker byte and a coarse
//     BasicType category for external consumers.
//   - Unpack / Pack: the decode and encode directions. Both are pure; decode
//     either yields a complete tree or fails atomically.
//
// Unlike conventional MessagePack libraries, mptree never re-normalizes
// widths: a value decoded from a str16 re-encodes as str16 even when it would
// fit in a fixstr. Maps stay ordered pair lists, so wire order and duplicate
// keys survive round trips. Extension types are rejected rather than
// partially supported.
//
// The form subpackage renders trees as tagged JSON or CBOR documents for
// crossing process or language boundaries; the log subpackages adapt common
// logging stacks to the optional decode-diagnostics Logger.
package mptree
