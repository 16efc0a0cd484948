// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/zyhnesmr/rehashdict/internal/dict"
	"github.com/zyhnesmr/rehashdict/internal/dicthash"
	"github.com/zyhnesmr/rehashdict/pkg/log"
	"github.com/zyhnesmr/rehashdict/pkg/utils"
)

// runBenchmark reproduces the original DICT_BENCHMARK_MAIN scenarios:
// bulk insert, drain the rehash to completion, linear and random lookups
// of existing keys, a full iterate-then-rewind-then-reiterate pass,
// lookups of keys guaranteed absent, and a delete-and-reinsert-under-a
// shifted-key pass. It is a pure consumer of the public internal/dict
// contract: no part of it reaches into the engine's internals.
func runBenchmark(cfg config) error {
	count := cfg.Count

	d, err := dict.New(dicthash.StringPolicy{})
	if err != nil {
		return fmt.Errorf("dict.New: %w", err)
	}

	defer d.Destroy()

	timed("dictAdd", count, func() {
		for i := int64(0); i < count; i++ {
			key := strconv.FormatInt(i, 10)
			if err := d.Add(key, key); err != nil {
				log.Error("Add(%s): %v", key, err)
			}
		}
	})

	if d.Len() != int(count) {
		return fmt.Errorf("filled = %d, want %d", d.Len(), count)
	}

	rehashBudget := time.Duration(cfg.RehashMs) * time.Millisecond
	for d.IsRehashing() {
		d.RehashFor(rehashBudget)
	}

	timed("Linear access of existing elements", count, func() {
		for i := int64(0); i < count; i++ {
			key := strconv.FormatInt(i, 10)
			if _, ok := d.Find(key); !ok {
				log.Error("Find(%s): not found", key)
			}
		}
	})

	timed("Random access of existing elements", count, func() {
		for i := int64(0); i < count; i++ {
			key := strconv.FormatInt(rand.Int63n(count), 10)
			if _, ok := d.Find(key); !ok {
				log.Error("Find(%s): not found", key)
			}
		}
	})

	timed("iterate all elements", count, func() {
		if n := iterateCount(d); n != int(count) {
			log.Error("iterate visited %d elements, want %d", n, count)
		}
	})

	timed("iterate all elements after rewind", count, func() {
		it, err := d.Iterator()
		if err != nil {
			log.Error("Iterator: %v", err)
			return
		}
		defer it.Close()

		for it.Next() {
		}

		it.Rewind()

		n := 0
		for it.Next() {
			n++
		}

		if n != int(count) {
			log.Error("rewound iterate visited %d elements, want %d", n, count)
		}
	})

	timed("Accessing missing", count, func() {
		for i := int64(0); i < count; i++ {
			missing := []byte(strconv.FormatInt(rand.Int63n(count), 10))
			missing[0] = 'M'

			if _, ok := d.Find(string(missing)); ok {
				log.Error("Find(%s): found, want missing", missing)
			}
		}
	})

	timed("Removing and adding", count, func() {
		for i := int64(0); i < count; i++ {
			key := strconv.FormatInt(i, 10)
			if !d.Delete(key) {
				log.Error("Delete(%s): not found", key)
				continue
			}

			shifted := []byte(key)
			shifted[0] += 17 // first digit becomes a letter

			if err := d.Add(string(shifted), key); err != nil {
				log.Error("Add(%s): %v", shifted, err)
			}
		}
	})

	fmt.Println(d.Stats())

	return nil
}

func iterateCount(d *dict.Dict) int {
	it, err := d.Iterator()
	if err != nil {
		log.Error("Iterator: %v", err)
		return 0
	}
	defer it.Close()

	n := 0
	for it.Next() {
		n++
	}

	return n
}

func timed(label string, count int64, f func()) {
	start := time.Now()
	f()
	elapsed := time.Since(start)

	log.Info("%s: %d items in %s", label, count, utils.FormatDuration(elapsed))
}
