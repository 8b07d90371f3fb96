package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/attachehq/attache/core"
)

func TestInMemoryBank_OneEntryPerKey(t *testing.T) {
	ctx := context.Background()
	bank := NewInMemoryBank()

	if err := bank.Persist(ctx, "q3", "first draft"); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if err := bank.Persist(ctx, "q3", "final numbers"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	text, err := bank.Load(ctx, "q3")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if text != "final numbers" {
		t.Fatalf("expected overwritten text, got %q", text)
	}

	keys, _ := bank.Keys(ctx)
	if len(keys) != 1 || keys[0] != "q3" {
		t.Fatalf("expected single key, got %v", keys)
	}

	if err := bank.Persist(ctx, "", "anything"); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestInMemoryBank_NotFound(t *testing.T) {
	ctx := context.Background()
	bank := NewInMemoryBank()

	if _, err := bank.Load(ctx, "missing"); !errors.Is(err, core.ErrSummaryNotFound) {
		t.Fatalf("expected ErrSummaryNotFound, got %v", err)
	}
	if err := bank.Delete(ctx, "missing"); !errors.Is(err, core.ErrSummaryNotFound) {
		t.Fatalf("expected ErrSummaryNotFound, got %v", err)
	}

	_ = bank.Persist(ctx, "present", "text")
	if err := bank.Delete(ctx, "present"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := bank.Load(ctx, "present"); !errors.Is(err, core.ErrSummaryNotFound) {
		t.Fatalf("expected ErrSummaryNotFound after delete, got %v", err)
	}
}

func TestInMemoryBank_Find(t *testing.T) {
	ctx := context.Background()
	bank := NewInMemoryBank()

	_ = bank.Persist(ctx, "q3-report", "Revenue grew strongly")
	_ = bank.Persist(ctx, "hiring", "Two new engineers joined")
	_ = bank.Persist(ctx, "roadmap", "REVENUE targets for next year")

	hits, err := bank.Find(ctx, "revenue")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(hits) != 2 || hits[0].Key != "q3-report" || hits[1].Key != "roadmap" {
		t.Fatalf("unexpected hits: %#v", hits)
	}

	byKey, _ := bank.Find(ctx, "hir")
	if len(byKey) != 1 || byKey[0].Key != "hiring" {
		t.Fatalf("expected key match, got %#v", byKey)
	}

	all, _ := bank.Find(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected all entries on empty query, got %d", len(all))
	}

	none, _ := bank.Find(ctx, "nothing-here")
	if len(none) != 0 {
		t.Fatalf("expected no hits, got %#v", none)
	}
}

func TestFileBank_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bank.json")

	bank, err := NewFileBank(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if err := bank.Persist(ctx, "q3", "quarter summary"); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if err := bank.Persist(ctx, "team", "hiring summary"); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file left behind after flush")
	}

	reopened, err := NewFileBank(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}

	text, err := reopened.Load(ctx, "q3")
	if err != nil {
		t.Fatalf("load after reopen failed: %v", err)
	}
	if text != "quarter summary" {
		t.Fatalf("unexpected text: %q", text)
	}

	keys, _ := reopened.Keys(ctx)
	if len(keys) != 2 || keys[0] != "q3" || keys[1] != "team" {
		t.Fatalf("unexpected keys: %v", keys)
	}

	if err := reopened.Delete(ctx, "q3"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	third, _ := NewFileBank(path)
	if _, err := third.Load(ctx, "q3"); !errors.Is(err, core.ErrSummaryNotFound) {
		t.Fatalf("expected delete to persist, got %v", err)
	}
}

func TestFileBank_QuarantinesCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.json")

	if err := os.WriteFile(path, []byte("{ not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	bank, err := NewFileBank(path)
	if err != nil {
		t.Fatalf("expected corrupt file to be quarantined, got %v", err)
	}

	keys, _ := bank.Keys(ctx)
	if len(keys) != 0 {
		t.Fatalf("expected empty bank after quarantine, got %v", keys)
	}

	quarantined, _ := filepath.Glob(path + ".corrupt-*")
	if len(quarantined) != 1 {
		t.Fatalf("expected one quarantined file, got %v", quarantined)
	}

	if err := bank.Persist(ctx, "fresh", "usable again"); err != nil {
		t.Fatalf("persist after quarantine failed: %v", err)
	}
}

func TestFileBank_CreatesParentDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "deeper", "bank.json")

	bank, err := NewFileBank(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := bank.Persist(ctx, "k", "v"); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected bank file to exist: %v", err)
	}
}
