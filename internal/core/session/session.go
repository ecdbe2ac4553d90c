// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-14
// Last Modified: 2026-10-19

// Package session persists the Jira context discovered by "prepare".
// The snapshot is a small versioned JSON file that every command and the
// webhook relay load before talking to Jira.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/natefinch/atomic"

	"github.com/similigh/gitssues/internal/integrations/jira"
)

// Version is the schema version written by Save.
const Version = 1

var (
	// ErrNotPrepared is returned when no session file exists.
	ErrNotPrepared = errors.New("session not prepared")
	// ErrIncompatible is returned when the file was written by another schema version.
	ErrIncompatible = errors.New("incompatible session file")
)

// Session is the resolved Jira context: project, board and issue type are
// fixed for the life of the session.
type Session struct {
	Version   int            `json:"version"`
	Project   jira.Project   `json:"project"`
	Board     jira.Board     `json:"board"`
	IssueType jira.IssueType `json:"issue_type"`
}

// Validate checks that all resolved entities are present.
func (s *Session) Validate() error {
	if s.Version != Version {
		return fmt.Errorf("%w: version %d, want %d", ErrIncompatible, s.Version, Version)
	}
	switch {
	case s.Project.ID == "":
		return fmt.Errorf("%w: project id missing", ErrIncompatible)
	case s.Board.ID == "":
		return fmt.Errorf("%w: board id missing", ErrIncompatible)
	case s.IssueType.ID == "":
		return fmt.Errorf("%w: issue type id missing", ErrIncompatible)
	}
	return nil
}

// Store reads and writes the session file.
type Store struct {
	path string
}

// NewStore creates a Store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a session file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the session. A missing file yields ErrNotPrepared.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotPrepared
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatible, err)
	}
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Save writes the session atomically, stamping the current schema version.
func (s *Store) Save(sess *Session) error {
	sess.Version = Version
	if err := sess.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing a missing session is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
