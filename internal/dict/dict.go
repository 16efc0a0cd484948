// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dict implements a hash-map container that grows by incremental
// (progressive) rehashing instead of a single large relocation: it holds
// two bucket tables at once while resizing and drains the old one a few
// slots at a time on the caller's own operations.
//
// Dict is single-threaded and non-reentrant: callers that share one Dict
// across goroutines must serialize access themselves.
package dict

import "time"

const (
	// minTableSize is the floor capacity for any allocated bucket table.
	minTableSize = 4

	// maxTableSize is the saturation point for requested capacities,
	// standing in for the original's platform-pointer-width ceiling.
	maxTableSize = 1 << 62

	// emptySkipMultiplier bounds how many empty source slots a single
	// rehash unit may pass over before returning control to the caller,
	// as a multiple of the unit size.
	emptySkipMultiplier = 10

	// bulkRehashBatch is the fixed batch size RehashFor performs between
	// wall-clock checks.
	bulkRehashBatch = 100

	// notRehashing is the rehash-cursor sentinel meaning "no rehash in
	// progress".
	notRehashing = -1
)

// Dict is a dual-table, incrementally-rehashing hash map from opaque keys
// to opaque values.
type Dict struct {
	policy *policy

	ht [2]bucketTable

	// rehashIdx is the next source slot in ht[0] to relocate, or
	// notRehashing.
	rehashIdx int64

	// iterators is the number of live cursors that have advanced at
	// least once. While positive, rehash progress is suspended.
	iterators uint32
}

// New creates an empty dictionary bound to capabilities, which must
// implement both Hasher and Comparer. capabilities may additionally
// implement KeyDuplicator, ValueDuplicator, KeyReleaser and/or
// ValueReleaser to opt into key/value ownership; any combination left
// unimplemented is treated as absent, not an error.
func New(capabilities any) (*Dict, error) {
	p, err := resolvePolicy(capabilities)
	if err != nil {
		return nil, err
	}

	return &Dict{
		policy:    p,
		rehashIdx: notRehashing,
	}, nil
}

// Destroy releases every live entry (via the policy's releasers, if any)
// and both bucket tables. The dictionary must not be used afterward.
func (d *Dict) Destroy() {
	d.ht[0].release(d.policy.release)
	d.ht[1].release(d.policy.release)
	d.rehashIdx = notRehashing
	d.iterators = 0
}

// Len returns the total number of live entries across both tables.
func (d *Dict) Len() int {
	return int(d.ht[0].filled + d.ht[1].filled)
}

// Cap returns the total slot capacity across both tables.
func (d *Dict) Cap() int {
	return int(d.ht[0].size + d.ht[1].size)
}

// IsRehashing reports whether a rehash is currently in progress.
func (d *Dict) IsRehashing() bool {
	return d.rehashIdx != notRehashing
}

// nextPow2 rounds size up to the next power of two, floored at
// minTableSize and saturating at maxTableSize.
func nextPow2(size uint64) uint64 {
	if size >= maxTableSize {
		return maxTableSize
	}

	n := uint64(minTableSize)
	for n < size {
		n *= 2
	}

	return n
}

// tryExpand applies the demand-driven expansion rule: allocate ht[0] at
// the floor capacity if uninitialized, begin a rehash to double the
// current fill if load factor has reached 1.0, otherwise do nothing.
func (d *Dict) tryExpand() error {
	if d.IsRehashing() {
		return nil
	}

	if d.ht[0].size == 0 {
		return d.expandTo(minTableSize)
	}

	if d.ht[0].filled >= d.ht[0].size {
		return d.expandTo(d.ht[0].filled * 2)
	}

	return nil
}

// expandTo begins growing the dictionary to the next power of two at or
// above requested. It is rejected if a rehash is already running or the
// active table's current fill already exceeds requested.
func (d *Dict) expandTo(requested uint64) error {
	if d.IsRehashing() || d.ht[0].filled > requested {
		return ErrExpansionRejected
	}

	size := nextPow2(requested)
	if size == d.ht[0].size {
		return ErrExpansionRejected
	}

	table := newBucketTable(size)

	if d.ht[0].entries == nil {
		d.ht[0] = *table
		return nil
	}

	d.ht[1] = *table
	d.rehashIdx = 0

	return nil
}

// rehashUnits relocates up to n source slots from ht[0] to ht[1], skipping
// empty slots under a bounded budget so a sparse table can't turn one unit
// into an unbounded scan. It returns false once rehashing has completed.
func (d *Dict) rehashUnits(n int) bool {
	if !d.IsRehashing() {
		return false
	}

	emptyBudget := n * emptySkipMultiplier

	for ; n > 0; n-- {
		if d.ht[0].filled == 0 {
			d.finishRehash()
			return false
		}

		for d.ht[0].entries[d.rehashIdx] == nil {
			d.rehashIdx++
			emptyBudget--
			if emptyBudget == 0 {
				return true
			}
		}

		e := d.ht[0].entries[d.rehashIdx]
		for e != nil {
			next := e.next

			idx := d.policy.hash(e.key) & d.ht[1].mask
			e.next = nil
			d.ht[1].insertHead(idx, e)
			d.ht[0].filled--

			e = next
		}

		d.ht[0].entries[d.rehashIdx] = nil
		d.rehashIdx++
	}

	if d.ht[0].filled == 0 {
		d.finishRehash()
		return false
	}

	return true
}

// finishRehash retires ht[0]'s array, promotes ht[1] to active, and clears
// the rehash cursor.
func (d *Dict) finishRehash() {
	d.ht[0].entries = nil
	d.ht[0] = d.ht[1]
	d.ht[1] = bucketTable{}
	d.rehashIdx = notRehashing
}

// rehashStep performs one unit of incremental rehash work, unless an
// iterator is currently live.
func (d *Dict) rehashStep() {
	if d.iterators == 0 {
		d.rehashUnits(1)
	}
}

// RehashFor performs rehashing in fixed-size batches until budget has
// elapsed or rehashing completes, and returns the number of units
// actually performed. It is intended for out-of-band "catch-up" work,
// independent of the caller's own operations. While an iterator is live
// it performs no work and returns 0.
func (d *Dict) RehashFor(budget time.Duration) int {
	if d.iterators > 0 {
		return 0
	}

	start := time.Now()
	performed := 0

	for d.rehashUnits(bulkRehashBatch) {
		performed += bulkRehashBatch

		if time.Since(start) > budget {
			break
		}
	}

	return performed
}

// locate returns the table index and slot containing key, and the chain
// predecessor of the matching entry (nil if it's the chain head). ok is
// false if key is not present in either table.
func (d *Dict) locate(key any) (table int, idx uint64, e, prev *Entry, ok bool) {
	h := d.policy.hash(key)

	tables := 1
	if d.IsRehashing() {
		tables = 2
	}

	for t := 0; t < tables; t++ {
		i := h & d.ht[t].mask

		var p *Entry
		for cur := d.ht[t].entries[i]; cur != nil; cur = cur.next {
			if d.policy.equal(key, cur.key) {
				return t, i, cur, p, true
			}

			p = cur
		}
	}

	return 0, 0, nil, nil, false
}

// Find performs one rehash step (unless an iterator is live) and returns
// the entry for key, if present.
func (d *Dict) Find(key any) (*Entry, bool) {
	if d.Len() == 0 {
		return nil, false
	}

	if d.IsRehashing() {
		d.rehashStep()
	}

	_, _, e, _, ok := d.locate(key)

	return e, ok
}

// Get is a convenience wrapper over Find returning just the value.
func (d *Dict) Get(key any) (any, bool) {
	e, ok := d.Find(key)
	if !ok {
		return nil, false
	}

	return e.Value(), true
}

// Add inserts key/val, failing with ErrKeyExists if key is already
// present. It never overwrites.
func (d *Dict) Add(key, val any) error {
	inserted, _, err := d.AddOrGetExisting(key, val)
	if err != nil {
		return err
	}

	if inserted == nil {
		return ErrKeyExists
	}

	return nil
}

// AddOrGetExisting inserts key/val if absent and returns the new entry, or
// if key is already present returns it via existing and inserted is nil.
func (d *Dict) AddOrGetExisting(key, val any) (inserted, existing *Entry, err error) {
	if d.IsRehashing() {
		d.rehashStep()
	}

	if err := d.tryExpand(); err != nil {
		return nil, nil, err
	}

	if _, _, e, _, ok := d.locate(key); ok {
		return nil, e, nil
	}

	h := d.policy.hash(key)

	target := 0
	if d.IsRehashing() {
		target = 1
	}

	e := d.policy.newEntry(key, val)
	d.ht[target].insertHead(h&d.ht[target].mask, e)

	return e, nil, nil
}

// UpdateOrAdd inserts key/val if absent, or overwrites the value of the
// existing entry. added reports which happened: true if a new entry was
// added, false if an existing one was updated. This mirrors the
// original's 1-for-added/0-for-updated status code; use UpdateOrAddEntry
// if the entry itself is needed.
func (d *Dict) UpdateOrAdd(key, val any) (added bool) {
	_, added = d.UpdateOrAddEntry(key, val)
	return added
}

// UpdateOrAddEntry is the enriched variant of UpdateOrAdd: it returns the
// affected entry along with the added/updated status.
func (d *Dict) UpdateOrAddEntry(key, val any) (e *Entry, added bool) {
	inserted, existing, err := d.AddOrGetExisting(key, val)
	if err != nil {
		// Expansion was rejected; nothing was mutated. Surface this the
		// same way a fresh, empty dictionary would: no entry, no-op.
		return nil, false
	}

	if inserted != nil {
		return inserted, true
	}

	newVal := val
	if d.policy.dupVal != nil {
		newVal = d.policy.dupVal(val)
	}

	prevVal := existing.value
	existing.value = newVal

	if d.policy.freeVal != nil {
		d.policy.freeVal(prevVal)
	}

	return existing, false
}

// EntryDelete locates and unlinks the entry for key. If retain is false
// (the common case) the entry's key/value are released through the
// policy and its storage is discarded; the returned entry is then only
// meaningful as a found/not-found signal. If retain is true the entry is
// left intact (its chain link cleared) and ownership passes to the
// caller, who must eventually call EntryFree.
func (d *Dict) EntryDelete(key any, retain bool) (*Entry, bool) {
	if d.Len() == 0 {
		return nil, false
	}

	if d.IsRehashing() {
		d.rehashStep()
	}

	table, idx, e, prev, ok := d.locate(key)
	if !ok {
		return nil, false
	}

	d.ht[table].unlink(idx, e, prev)
	e.next = nil

	if !retain {
		d.policy.release(e)
	}

	return e, true
}

// Delete is a convenience wrapper over EntryDelete(key, false).
func (d *Dict) Delete(key any) bool {
	_, ok := d.EntryDelete(key, false)
	return ok
}

// EntryFree releases a previously retained entry's key/value through the
// policy.
func (d *Dict) EntryFree(e *Entry) error {
	if e == nil {
		return ErrNilEntry
	}

	d.policy.release(e)

	return nil
}

// Set is a convenience wrapper over UpdateOrAdd that discards the status.
func (d *Dict) Set(key, val any) {
	d.UpdateOrAdd(key, val)
}
