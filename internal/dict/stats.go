// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import (
	"fmt"
	"io"
	"strings"
)

// statsVecSize is the number of buckets in the chain-length histogram;
// chain lengths at or beyond this collapse into the last bucket.
const statsVecSize = 50

// Stats renders a human-readable report of both tables' slot usage,
// omitting the growing table when no rehash is in progress.
func (d *Dict) Stats() string {
	var b strings.Builder
	_, _ = d.WriteStats(&b)

	return b.String()
}

// WriteStats is the io.Writer-based counterpart of Stats, useful when the
// caller wants to stream the report without an intermediate allocation.
func (d *Dict) WriteStats(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	writeTableStats(cw, &d.ht[0], 0)

	if d.IsRehashing() {
		writeTableStats(cw, &d.ht[1], 1)
	}

	return cw.n, cw.err
}

// TableSnapshot is a structured rendering of one table's slot-usage
// statistics, suitable for deep comparison (e.g. with go-cmp) without
// parsing the human-readable report back apart.
type TableSnapshot struct {
	Table      int
	Size       uint64
	Filled     uint64
	Slots      uint64
	MaxChain   int
	TotalChain uint64
	Histogram  [statsVecSize]uint64
}

// Snapshot returns a structured snapshot of the active table, plus the
// growing table's snapshot when a rehash is in progress.
func (d *Dict) Snapshot() []TableSnapshot {
	snapshots := []TableSnapshot{snapshotTable(&d.ht[0], 0)}

	if d.IsRehashing() {
		snapshots = append(snapshots, snapshotTable(&d.ht[1], 1))
	}

	return snapshots
}

func snapshotTable(t *bucketTable, table int) TableSnapshot {
	s := TableSnapshot{Table: table, Size: t.size, Filled: t.filled}

	if t.filled == 0 {
		return s
	}

	for i := uint64(0); i < t.size; i++ {
		n := t.chainLength(i)
		if n == 0 {
			s.Histogram[0]++
			continue
		}

		s.Slots++
		s.TotalChain += uint64(n)

		if n > s.MaxChain {
			s.MaxChain = n
		}

		bucket := n
		if bucket >= statsVecSize {
			bucket = statsVecSize - 1
		}

		s.Histogram[bucket]++
	}

	return s
}

func writeTableStats(w io.Writer, t *bucketTable, table int) {
	s := snapshotTable(t, table)

	if s.Filled == 0 {
		fmt.Fprintf(w, "Hash table %d: empty\n", table)
		return
	}

	fmt.Fprintf(w, "Hash table %d:\n", table)
	fmt.Fprintf(w, " size: %d\n", s.Size)
	fmt.Fprintf(w, " filled: %d\n", s.Filled)
	fmt.Fprintf(w, " different slots: %d\n", s.Slots)
	fmt.Fprintf(w, " max chain length: %d\n", s.MaxChain)
	fmt.Fprintf(w, " avg chain length (counted): %.2f\n", float64(s.TotalChain)/float64(s.Slots))
	fmt.Fprintf(w, " avg chain length (computed): %.2f\n", float64(s.Filled)/float64(s.Slots))
	fmt.Fprintf(w, " chain length distribution:\n")

	for i := 1; i < statsVecSize; i++ {
		if s.Histogram[i] == 0 {
			continue
		}

		prefix := ""
		if i == statsVecSize-1 {
			prefix = ">= "
		}

		pct := float64(s.Histogram[i]) / float64(s.Size) * 100
		fmt.Fprintf(w, "   %s%d: %d (%.2f%%)\n", prefix, i, s.Histogram[i], pct)
	}
}

// countingWriter tracks total bytes written and the first error
// encountered, so WriteStats can report an (n, err) pair the way io.Copy
// does without aborting the report on a transient short write.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}

	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err

	return n, err
}
