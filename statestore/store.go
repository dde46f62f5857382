// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package statestore persists exported igx session state.
//
// A Store holds the mapping returned by igx.State.Export. [File] keeps it in
// a TOML file guarded by a file lock; [SQL] keeps named sessions in a
// SQLite database through gorm.
package statestore

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNotFound means nothing has been persisted yet.
var ErrNotFound = errors.New("statestore: no saved state")

// Store loads and saves one exported session.
type Store interface {
	Load(ctx context.Context) (map[string]any, error)
	Save(ctx context.Context, state map[string]any) error
}

// DefaultSession is the session name used by Open for SQL stores.
const DefaultSession = "default"

// Open returns the store for path: a SQL store for .db, .sqlite and
// .sqlite3 files, a TOML file store otherwise. The caller closes the
// returned closer.
func Open(path string, log zerolog.Logger) (Store, func() error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		s, err := OpenSQL(path, DefaultSession, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return NewFile(path), func() error { return nil }, nil
}
