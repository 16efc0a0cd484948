// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

// bucketTable is a fixed-capacity array of singly-linked bucket chains.
// Capacity is always zero (uninitialized) or a power of two >= minTableSize.
type bucketTable struct {
	entries []*Entry
	size    uint64
	mask    uint64
	filled  uint64
}

// newBucketTable allocates a cleared table of the given power-of-two size.
func newBucketTable(size uint64) *bucketTable {
	return &bucketTable{
		entries: make([]*Entry, size),
		size:    size,
		mask:    size - 1,
	}
}

// release walks every chain, invoking release on each entry before
// discarding the backing array. release may be nil.
func (t *bucketTable) release(release func(*Entry)) {
	if release != nil {
		for i := range t.entries {
			e := t.entries[i]
			for e != nil {
				next := e.next
				release(e)
				e = next
			}
		}
	}

	t.entries = nil
	t.size = 0
	t.mask = 0
	t.filled = 0
}

// insertHead prepends e to the chain at index idx.
func (t *bucketTable) insertHead(idx uint64, e *Entry) {
	e.next = t.entries[idx]
	t.entries[idx] = e
	t.filled++
}

// unlink removes e (whose predecessor in the chain is prev, or nil if e is
// the chain head) from the chain at index idx.
func (t *bucketTable) unlink(idx uint64, e, prev *Entry) {
	if prev == nil {
		t.entries[idx] = e.next
	} else {
		prev.next = e.next
	}

	t.filled--
}

// chainLength reports the number of entries in the chain at idx, for
// statistics reporting.
func (t *bucketTable) chainLength(idx uint64) int {
	n := 0
	for e := t.entries[idx]; e != nil; e = e.next {
		n++
	}

	return n
}
