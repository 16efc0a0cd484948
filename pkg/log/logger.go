// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log is a small leveled logger for command-line entry points.
// Library packages (internal/dict and friends) stay silent and never
// import this package: logging is a concern of the process driving them,
// not of the container itself.
package log

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Level is a logging threshold; only messages at or above the configured
// level are emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelNotice
	LevelWarning
	LevelError
)

var (
	mu     sync.RWMutex
	level  = LevelNotice
	output = log.New(os.Stdout, "", 0)
	file   *os.File
	pid    = os.Getpid()
)

// SetLevel sets the log level.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()

	level = l
}

// SetLevelString sets the log level from a config/flag string, defaulting
// to LevelNotice on an unrecognized value.
func SetLevelString(s string) {
	switch s {
	case "debug":
		SetLevel(LevelDebug)
	case "warning":
		SetLevel(LevelWarning)
	case "error":
		SetLevel(LevelError)
	default:
		SetLevel(LevelNotice)
	}
}

// SetOutput redirects log output to out, closing any previously opened
// log file.
func SetOutput(out *os.File) {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
	}

	if out != os.Stdout && out != os.Stderr {
		file = out
	} else {
		file = nil
	}

	output = log.New(out, "", 0)
}

// Close closes the log file, if one was opened via SetOutput.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
}

// Debug logs a debug-level message.
func Debug(format string, args ...any) { logAt(LevelDebug, "DEBUG", format, args...) }

// Info logs a notice-level message.
func Info(format string, args ...any) { logAt(LevelNotice, "NOTICE", format, args...) }

// Warn logs a warning-level message.
func Warn(format string, args ...any) { logAt(LevelWarning, "WARNING", format, args...) }

// Error logs an error-level message.
func Error(format string, args ...any) { logAt(LevelError, "ERROR", format, args...) }

func logAt(at Level, tag, format string, args ...any) {
	mu.RLock()
	enabled := level <= at
	out := output
	mu.RUnlock()

	if !enabled {
		return
	}

	out.Printf("%s [%d] %s %s", time.Now().Format("2006-01-02 15:04:05.000"), pid, tag, fmt.Sprintf(format, args...))
}
