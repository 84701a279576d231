// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

// Package retrieval looks up citation snippets by id for use in
// explanations. It intentionally implements only keyed lookup, not
// relevance ranking — spec.md's Non-goals exclude retrieval search.
package retrieval

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"strings"

	"github.com/samber/oops"
)

// Snippet is a single citation source, keyed by ID.
type Snippet struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Line       string `json:"line,omitempty"`
	ShortQuote string `json:"short_quote"`
}

// Store holds snippets loaded from JSONL files, keyed by id.
type Store struct {
	snippets map[string]Snippet
}

// NewStore builds an empty Store.
func NewStore() *Store {
	return &Store{snippets: make(map[string]Snippet)}
}

// LoadDir loads every *.jsonl file directly under dir into the store.
func LoadDir(dirFS fs.FS, dir string) (*Store, error) {
	s := NewStore()
	entries, err := fs.ReadDir(dirFS, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, oops.Code("SNIPPETS_DIR_READ_FAILED").With("dir", dir).Wrap(err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		f, err := dirFS.Open(dir + "/" + e.Name())
		if err != nil {
			return nil, oops.Code("SNIPPETS_FILE_OPEN_FAILED").With("file", e.Name()).Wrap(err)
		}
		err = s.loadFrom(f)
		closeErr := f.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, oops.Code("SNIPPETS_FILE_CLOSE_FAILED").With("file", e.Name()).Wrap(closeErr)
		}
	}
	return s, nil
}

func (s *Store) loadFrom(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var snip Snippet
		if err := json.Unmarshal([]byte(line), &snip); err != nil {
			return oops.Code("SNIPPET_DECODE_FAILED").Wrap(err)
		}
		if snip.ID != "" {
			s.snippets[snip.ID] = snip
		}
	}
	return scanner.Err()
}

// Add inserts or replaces a snippet directly, for callers building a
// store in memory (e.g. tests) rather than from files.
func (s *Store) Add(snip Snippet) {
	s.snippets[snip.ID] = snip
}

// Get returns the snippet for id, and whether it was found.
func (s *Store) Get(id string) (Snippet, bool) {
	snip, ok := s.snippets[id]
	return snip, ok
}

// Lookup resolves each id in order, skipping ids with no match, and
// returns at most limit results — mirroring the "2-3 citations" cap
// spec.md describes for explanations.
func (s *Store) Lookup(ids []string, limit int) []Snippet {
	var out []Snippet
	for _, id := range ids {
		snip, ok := s.Get(id)
		if !ok {
			continue
		}
		out = append(out, snip)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
