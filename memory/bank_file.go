package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/logging"
)

// FileBankOptions configures a FileBank.
type FileBankOptions struct {
	// Logger reports quarantined files and write failures.
	Logger logging.Logger
}

// FileBank is a MemoryBank backed by a single JSON file. The whole bank is
// rewritten on every mutation via a temp file rename, so readers never see a
// partial write. A file that fails to parse on open is renamed aside with a
// .corrupt suffix and the bank starts empty instead of refusing to boot.
type FileBank struct {
	mu      sync.Mutex
	path    string
	entries map[string]core.Summary
	logger  logging.Logger
}

var _ core.MemoryBank = (*FileBank)(nil)

// NewFileBank opens or creates the bank file at path.
func NewFileBank(path string, optFns ...func(o *FileBankOptions)) (*FileBank, error) {
	opts := FileBankOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	b := &FileBank{
		path:    path,
		entries: make(map[string]core.Summary),
		logger:  opts.Logger,
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Fresh bank.
	case err != nil:
		return nil, fmt.Errorf("open memory bank: %w", err)
	default:
		if parseErr := json.Unmarshal(data, &b.entries); parseErr != nil {
			quarantine := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
			if renameErr := os.Rename(path, quarantine); renameErr != nil {
				return nil, fmt.Errorf("quarantine corrupt memory bank: %w", renameErr)
			}

			b.logger.Warn("memory.bank.quarantined",
				"path", path,
				"moved_to", quarantine,
				"error", parseErr.Error(),
			)

			b.entries = make(map[string]core.Summary)
		}
	}

	return b, nil
}

// Path returns the bank file location.
func (b *FileBank) Path() string {
	return b.path
}

// Persist stores the summary under key and flushes the file.
func (b *FileBank) Persist(_ context.Context, key, text string) error {
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

	return b.flushLocked()
}

// Load returns the summary text stored under key.
func (b *FileBank) Load(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrSummaryNotFound, key)
	}

	return entry.Text, nil
}

// Keys returns all stored keys, sorted.
func (b *FileBank) Keys(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]string, 0, len(b.entries))
	for key := range b.entries {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys, nil
}

// Delete removes the entry under key and flushes the file.
func (b *FileBank) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[key]; !ok {
		return fmt.Errorf("%w: %s", core.ErrSummaryNotFound, key)
	}

	delete(b.entries, key)

	return b.flushLocked()
}

// Find returns entries matching the query, sorted by key.
func (b *FileBank) Find(_ context.Context, query string) ([]core.Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return findEntries(b.entries, query), nil
}

// flushLocked writes the bank atomically; the caller holds the lock.
func (b *FileBank) flushLocked() error {
	data, err := json.MarshalIndent(b.entries, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, b.path)
}
