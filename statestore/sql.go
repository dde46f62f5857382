// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package statestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// session is one persisted export, stored as JSON.
type session struct {
	Name      string `gorm:"primaryKey"`
	Data      string `gorm:"not null"`
	UpdatedAt time.Time
}

func (session) TableName() string {
	return "igx_sessions"
}

// SQL is a Store keeping named sessions in a SQLite database.
type SQL struct {
	db   *gorm.DB
	name string
}

// OpenSQL opens or creates the database at dsn and returns the store of
// the session called name.
func OpenSQL(dsn, name string, log zerolog.Logger) (*SQL, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newGormLogger(log)})
	if err != nil {
		return nil, fmt.Errorf("statestore: open %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&session{}); err != nil {
		return nil, fmt.Errorf("statestore: migrate %s: %w", dsn, err)
	}
	return &SQL{db: db, name: name}, nil
}

// Session returns a store for another session of the same database.
func (s *SQL) Session(name string) *SQL {
	return &SQL{db: s.db, name: name}
}

// Load implements Store. Numbers are decoded as json.Number.
func (s *SQL) Load(ctx context.Context) (map[string]any, error) {
	var row session
	err := s.db.WithContext(ctx).Where("name = ?", s.name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("statestore: load %s: %w", s.name, err)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(row.Data)))
	dec.UseNumber()
	var state map[string]any
	if err := dec.Decode(&state); err != nil {
		return nil, fmt.Errorf("statestore: decode %s: %w", s.name, err)
	}
	return state, nil
}

// Save implements Store, replacing the previous export of the session.
func (s *SQL) Save(ctx context.Context, state map[string]any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("statestore: encode %s: %w", s.name, err)
	}
	row := session{Name: s.name, Data: string(data)}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("statestore: save %s: %w", s.name, err)
	}
	return nil
}

// Delete removes the session.
func (s *SQL) Delete(ctx context.Context) error {
	return s.db.WithContext(ctx).Delete(&session{}, "name = ?", s.name).Error
}

// Close closes the database.
func (s *SQL) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
