package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/attachehq/attache/core"
)

// InMemoryBank is a volatile MemoryBank keeping summaries in a process-local
// map. One entry per key; later writes overwrite.
type InMemoryBank struct {
	mu      sync.RWMutex
	entries map[string]core.Summary
}

var _ core.MemoryBank = (*InMemoryBank)(nil)

// NewInMemoryBank constructs an empty bank.
func NewInMemoryBank() *InMemoryBank {
	return &InMemoryBank{entries: make(map[string]core.Summary)}
}

// Persist stores the summary under key, overwriting any previous entry.
func (b *InMemoryBank) Persist(_ context.Context, key, text string) error {
	if key == "" {
		return fmt.Errorf("summary key is empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[key] = core.Summary{
		Key:       key,
		Text:      text,
		UpdatedAt: time.Now().UTC(),
	}

	return nil
}

// Load returns the summary text stored under key.
func (b *InMemoryBank) Load(_ context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, ok := b.entries[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrSummaryNotFound, key)
	}

	return entry.Text, nil
}

// Keys returns all stored keys, sorted.
func (b *InMemoryBank) Keys(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.entries))
	for key := range b.entries {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys, nil
}

// Delete removes the entry under key.
func (b *InMemoryBank) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[key]; !ok {
		return fmt.Errorf("%w: %s", core.ErrSummaryNotFound, key)
	}

	delete(b.entries, key)

	return nil
}

// Find returns entries whose key or text contains the query,
// case-insensitive, sorted by key. An empty query returns everything.
func (b *InMemoryBank) Find(_ context.Context, query string) ([]core.Summary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return findEntries(b.entries, query), nil
}

// findEntries is the shared substring search over a bank snapshot.
func findEntries(entries map[string]core.Summary, query string) []core.Summary {
	q := strings.ToLower(query)

	matches := make([]core.Summary, 0, len(entries))
	for _, entry := range entries {
		if q == "" ||
			strings.Contains(strings.ToLower(entry.Key), q) ||
			strings.Contains(strings.ToLower(entry.Text), q) {
			matches = append(matches, entry)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Key < matches[j].Key
	})

	return matches
}
