// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dicthash provides a default, pluggable hash/equality capability
// for string and []byte keys, for callers of internal/dict that don't
// need a custom Policy. It is not part of the dictionary engine itself:
// any type satisfying dict.Hasher and dict.Comparer works equally well.
package dicthash

import (
	"bytes"
	"hash/crc64"
)

var table = crc64.MakeTable(crc64.ISO)

// StringPolicy is a dict.Hasher/dict.Comparer for string or []byte keys
// and values, backed by a CRC-64 checksum. It stores keys and values
// verbatim (no duplication): it stands in for the original C benchmark's
// CRC-based dictType, a correct, unremarkable default, not a subject of
// this module's engineering.
//
// Unlike the original benchmark's compareCallback (which compares only
// the longer of the two keys' lengths of bytes, a documented bug), Equal
// here is a straightforward byte-for-byte comparison.
type StringPolicy struct{}

// OwningStringPolicy is StringPolicy plus dict.KeyDuplicator and
// dict.ValueDuplicator: every insertion stores an independent copy of the
// key and value rather than the caller's backing array. It is a distinct
// type, not a flag on StringPolicy, so that dict.New's capability
// detection genuinely sees duplication as present or absent rather than
// toggled by a field.
type OwningStringPolicy struct {
	StringPolicy
}

func toBytes(v any) []byte {
	switch k := v.(type) {
	case string:
		return []byte(k)
	case []byte:
		return k
	default:
		panic("dicthash: StringPolicy only accepts string or []byte keys/values")
	}
}

// Hash implements dict.Hasher.
func (StringPolicy) Hash(key any) uint64 {
	return crc64.Checksum(toBytes(key), table)
}

// Equal implements dict.Comparer.
func (StringPolicy) Equal(a, b any) bool {
	return bytes.Equal(toBytes(a), toBytes(b))
}

// DupKey implements dict.KeyDuplicator.
func (OwningStringPolicy) DupKey(key any) any {
	return dup(key)
}

// DupVal implements dict.ValueDuplicator.
func (OwningStringPolicy) DupVal(val any) any {
	return dup(val)
}

func dup(v any) any {
	b := toBytes(v)
	cp := make([]byte, len(b))
	copy(cp, b)

	if _, ok := v.(string); ok {
		return string(cp)
	}

	return cp
}
