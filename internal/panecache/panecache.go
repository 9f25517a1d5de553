// Package panecache persists the mapping from session-command slots to live
// tmux pane ids, so re-invoking the same command reuses its pane instead of
// spawning a duplicate.
//
// On-disk format: one "slot:modeTag:paneID" record per line, no header.
// Field values must not contain the ':' delimiter.
package panecache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

// SplitMode is the pane layout a session command was bound with.
type SplitMode int

const (
	ModeWindow SplitMode = iota
	ModeVSplit
	ModeHSplit
)

// Tag returns the on-disk encoding of the mode.
func (m SplitMode) Tag() string {
	switch m {
	case ModeVSplit:
		return "vsplit"
	case ModeHSplit:
		return "hsplit"
	default:
		return "none"
	}
}

// ParseMode decodes an on-disk mode tag.
func ParseMode(tag string) (SplitMode, bool) {
	switch tag {
	case "none":
		return ModeWindow, true
	case "vsplit":
		return ModeVSplit, true
	case "hsplit":
		return ModeHSplit, true
	}
	return 0, false
}

// Key identifies one cache entry: at most one live pane per (slot, mode).
type Key struct {
	Slot int
	Mode SplitMode
}

// Entry is one cached binding.
type Entry struct {
	Key    Key
	PaneID string
}

// Store is the file-backed pane cache. A missing or empty backing file is an
// empty store. Mutations are written via temp-file-then-rename and the whole
// read-modify-write cycle runs under an advisory file lock.
type Store struct {
	path string
	lock *flock.Flock
}

// New creates a Store backed by the given file path.
func New(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Lookup returns the cached pane id for key, if any.
func (s *Store) Lookup(key Key) (string, bool, error) {
	if err := s.rlock(); err != nil {
		return "", false, err
	}
	defer s.unlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	for _, e := range entries {
		if e.Key == key {
			return e.PaneID, true, nil
		}
	}
	return "", false, nil
}

// Put upserts the entry for key: any prior entry for the same key is removed
// and the new one appended.
func (s *Store) Put(key Key, paneID string) error {
	if err := s.wlock(); err != nil {
		return err
	}
	defer s.unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Key != key {
			kept = append(kept, e)
		}
	}
	kept = append(kept, Entry{Key: key, PaneID: paneID})
	return s.write(kept)
}

// GC drops every entry whose pane id is not in the live set. Entries for
// live panes are left untouched.
func (s *Store) GC(live map[string]bool) error {
	if err := s.wlock(); err != nil {
		return err
	}
	defer s.unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if live[e.PaneID] {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return s.write(kept)
}

// Entries returns all cached bindings in file order.
func (s *Store) Entries() ([]Entry, error) {
	if err := s.rlock(); err != nil {
		return nil, err
	}
	defer s.unlock()
	return s.load()
}

func (s *Store) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pane cache: %w", err)
	}

	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entry, ok := parseLine(line)
		if !ok {
			// Malformed record: drop it on the next write.
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseLine(line string) (Entry, bool) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 {
		return Entry{}, false
	}
	slot, err := strconv.Atoi(parts[0])
	if err != nil || slot < 0 {
		return Entry{}, false
	}
	mode, ok := ParseMode(parts[1])
	if !ok || parts[2] == "" {
		return Entry{}, false
	}
	return Entry{Key: Key{Slot: slot, Mode: mode}, PaneID: parts[2]}, true
}

// write replaces the backing file atomically: write to a temp file, then
// rename over the old one.
func (s *Store) write(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%d:%s:%s\n", e.Key.Slot, e.Key.Mode.Tag(), e.PaneID)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write pane cache: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename pane cache: %w", err)
	}
	return nil
}

func (s *Store) wlock() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock pane cache: %w", err)
	}
	return nil
}

func (s *Store) rlock() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := s.lock.RLock(); err != nil {
		return fmt.Errorf("lock pane cache: %w", err)
	}
	return nil
}

func (s *Store) unlock() {
	_ = s.lock.Unlock()
}
