// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger writes human-readable lines to stderr and, when file is set,
// JSON lines to a rotated log file.
func newLogger(file string, verbose bool) (zerolog.Logger, func() error) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	closer := func() error { return nil }
	if file != "" {
		rotated := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		w = zerolog.MultiLevelWriter(w, rotated)
		closer = rotated.Close
	}
	log := zerolog.New(w).Level(level).With().Timestamp().Str("app", "igctl").Logger()
	return log, closer
}
