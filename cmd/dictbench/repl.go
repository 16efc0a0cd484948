// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/zyhnesmr/rehashdict/internal/dict"
	"github.com/zyhnesmr/rehashdict/internal/dicthash"
)

// repl is an interactive line-edited shell over a live dictionary,
// following cmd/sloty's liner-based prompt loop: read a line, dispatch on
// the first word, persist history across invocations.
type repl struct {
	d  *dict.Dict
	ln *liner.State
}

func newREPL() (*repl, error) {
	d, err := dict.New(dicthash.StringPolicy{})
	if err != nil {
		return nil, fmt.Errorf("dict.New: %w", err)
	}

	return &repl{d: d, ln: liner.NewLiner()}, nil
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".dictbench_history")
}

// Run starts the prompt loop. It returns nil on a clean exit (EOF,
// "quit", Ctrl-D) and an error only on an unrecoverable input failure.
func (r *repl) Run(out io.Writer) error {
	defer r.d.Destroy()
	defer r.ln.Close()

	r.ln.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile()); err == nil {
		r.ln.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(out, "rehashdict REPL. Type 'help' for commands.")

	for {
		line, err := r.ln.Prompt("dict> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				r.saveHistory()
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.ln.AppendHistory(line)

		if r.dispatch(out, line) {
			r.saveHistory()
			return nil
		}
	}
}

func (r *repl) saveHistory() {
	path := historyFile()
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil {
		r.ln.WriteHistory(f)
		f.Close()
	}
}

// dispatch runs one command line and reports whether the REPL should
// exit.
func (r *repl) dispatch(out io.Writer, line string) bool {
	parts := strings.Fields(line)
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "exit", "quit", "q":
		return true

	case "help", "?":
		fmt.Fprintln(out, "commands: add <k> <v> | get <k> | del <k> | len | cap | rehashing | stats | iterate | help | quit")

	case "add":
		if len(args) != 2 {
			fmt.Fprintln(out, "usage: add <key> <value>")
			return false
		}

		if err := r.d.Add(args[0], args[1]); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}

	case "get":
		if len(args) != 1 {
			fmt.Fprintln(out, "usage: get <key>")
			return false
		}

		if v, ok := r.d.Get(args[0]); ok {
			fmt.Fprintln(out, v)
		} else {
			fmt.Fprintln(out, "(not found)")
		}

	case "del":
		if len(args) != 1 {
			fmt.Fprintln(out, "usage: del <key>")
			return false
		}

		fmt.Fprintln(out, r.d.Delete(args[0]))

	case "len":
		fmt.Fprintln(out, r.d.Len())

	case "cap":
		fmt.Fprintln(out, r.d.Cap())

	case "rehashing":
		fmt.Fprintln(out, r.d.IsRehashing())

	case "stats":
		fmt.Fprint(out, r.d.Stats())

	case "iterate":
		r.iterate(out)

	default:
		fmt.Fprintf(out, "unknown command %q; type 'help'\n", cmd)
	}

	return false
}

func (r *repl) iterate(out io.Writer) {
	it, err := r.d.Iterator()
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	defer it.Close()

	n := 0

	for it.Next() {
		e := it.Entry()
		fmt.Fprintf(out, "%v = %v\n", e.Key(), e.Value())
		n++
	}

	fmt.Fprintln(out, strconv.Itoa(n)+" entries")
}
