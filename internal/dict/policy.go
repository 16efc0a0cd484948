// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import "errors"

// ErrMissingCapability is returned by New when the supplied capabilities
// value does not implement both Hasher and Comparer.
var ErrMissingCapability = errors.New("dict: policy is missing the required Hasher or Comparer capability")

// Hasher computes a deterministic hash for a key. Equal keys must hash
// equal; distribution quality is the implementer's concern. Required.
type Hasher interface {
	Hash(key any) uint64
}

// Comparer reports whether two keys are equivalent. Must be reflexive,
// symmetric and transitive. Required.
type Comparer interface {
	Equal(a, b any) bool
}

// KeyDuplicator, if implemented, is invoked on insertion to obtain an
// owned copy of the key. If absent, the dictionary stores the caller's key
// value verbatim and the caller must keep it alive for the entry's
// lifetime.
type KeyDuplicator interface {
	DupKey(key any) any
}

// ValueDuplicator is the value-side counterpart of KeyDuplicator.
type ValueDuplicator interface {
	DupVal(val any) any
}

// KeyReleaser, if implemented, is invoked on entry removal to release the
// key.
type KeyReleaser interface {
	FreeKey(key any)
}

// ValueReleaser is the value-side counterpart of KeyReleaser.
type ValueReleaser interface {
	FreeVal(val any)
}

// policy is the set of capabilities resolved once, at construction time,
// from a caller-supplied capabilities value. Optional hooks are nil when
// absent rather than encoded with sentinel values, matching spec.md's
// preference for a sum-typed "present vs absent" capability over a null
// function pointer.
type policy struct {
	hash    func(key any) uint64
	equal   func(a, b any) bool
	dupKey  func(key any) any
	dupVal  func(val any) any
	freeKey func(key any)
	freeVal func(val any)
}

// resolvePolicy inspects capabilities for the Hasher/Comparer/duplicator/
// releaser interfaces. capabilities is typically a single value
// implementing several of them, the way an http.ResponseWriter may also
// implement http.Flusher or http.Hijacker.
func resolvePolicy(capabilities any) (*policy, error) {
	hasher, ok := capabilities.(Hasher)
	if !ok {
		return nil, ErrMissingCapability
	}

	comparer, ok := capabilities.(Comparer)
	if !ok {
		return nil, ErrMissingCapability
	}

	p := &policy{
		hash:  hasher.Hash,
		equal: comparer.Equal,
	}

	if d, ok := capabilities.(KeyDuplicator); ok {
		p.dupKey = d.DupKey
	}

	if d, ok := capabilities.(ValueDuplicator); ok {
		p.dupVal = d.DupVal
	}

	if r, ok := capabilities.(KeyReleaser); ok {
		p.freeKey = r.FreeKey
	}

	if r, ok := capabilities.(ValueReleaser); ok {
		p.freeVal = r.FreeVal
	}

	return p, nil
}

func (p *policy) newEntry(key, val any) *Entry {
	if p.dupKey != nil {
		key = p.dupKey(key)
	}

	if p.dupVal != nil {
		val = p.dupVal(val)
	}

	return &Entry{key: key, value: val}
}

func (p *policy) release(e *Entry) {
	if p.freeKey != nil {
		p.freeKey(e.key)
	}

	if p.freeVal != nil {
		p.freeVal(e.value)
	}
}
