// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

// Iterator is a cursor over every live entry in a dictionary, across both
// tables, in an order that is unspecified but stable for the cursor's
// lifetime. It holds a non-owning back-reference to its dictionary and
// must be closed before the dictionary is destroyed.
//
// Next is tolerant of the caller deleting (or freeing) the entry it just
// returned: the successor link is read before Next returns. Deleting any
// other entry, or adding entries, during iteration yields undefined
// results.
type Iterator struct {
	d *Dict

	table int
	idx   int64 // -1 is the Fresh-cursor sentinel, pointing at ht[0]

	entry *Entry
	next  *Entry

	// started tracks whether this cursor has ever advanced, so that
	// repeated Iterator/Close pairs with no Next call never touch the
	// dictionary's iterator count.
	started bool
}

// Iterator creates a cursor over d. It may trigger the same demand-driven
// expansion a mutation would (so that a never-written dictionary has an
// allocated table to scan), and fails only if that expansion is rejected.
func (d *Dict) Iterator() (*Iterator, error) {
	if err := d.tryExpand(); err != nil {
		return nil, err
	}

	return &Iterator{d: d, idx: -1}, nil
}

// Next advances the cursor to the next live entry and reports whether one
// was found. On the cursor's first advancement it suspends the
// dictionary's rehash progress until Rewind or Close is called.
func (it *Iterator) Next() bool {
	for {
		if it.entry == nil {
			if !it.started {
				it.d.iterators++
				it.started = true
			}

			it.idx++

			for it.idx >= int64(it.d.ht[it.table].size) {
				if it.table == 0 && it.d.IsRehashing() {
					it.table = 1
					it.idx = 0

					continue
				}

				return false
			}

			it.entry = it.d.ht[it.table].entries[it.idx]
		} else {
			it.entry = it.next
		}

		if it.entry != nil {
			it.next = it.entry.next
			return true
		}
	}
}

// Entry returns the entry Next last returned, or nil before the first
// call to Next or once iteration is exhausted.
func (it *Iterator) Entry() *Entry {
	return it.entry
}

// Rewind returns the cursor to its Fresh state, releasing the rehash
// suspension it may hold.
func (it *Iterator) Rewind() {
	it.release()

	it.table = 0
	it.idx = -1
	it.entry = nil
	it.next = nil
}

// Close releases the rehash suspension the cursor may hold. The cursor
// must not be used afterward.
func (it *Iterator) Close() {
	it.release()
}

func (it *Iterator) release() {
	if it.started {
		it.d.iterators--
		it.started = false
	}
}
