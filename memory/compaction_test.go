package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/model"
)

func stampedMessages(n int) []core.Message {
	msgs := make([]core.Message, n)
	for i := range msgs {
		msgs[i] = core.Message{
			ID:        core.NewID(),
			Seq:       i + 1,
			Role:      core.RoleUser,
			Content:   fmt.Sprintf("m%d", i+1),
			Timestamp: time.Now().UTC(),
		}
	}

	return msgs
}

func TestRecencyStrategy_KeepsNewest(t *testing.T) {
	s := NewRecencyStrategy(10)

	kept, err := s.Compact(context.Background(), stampedMessages(15))
	if err != nil {
		t.Fatalf("compact failed: %v", err)
	}
	if len(kept) != 10 {
		t.Fatalf("expected 10 survivors, got %d", len(kept))
	}
	if kept[0].Content != "m6" || kept[9].Content != "m15" {
		t.Fatalf("unexpected window: first %q last %q", kept[0].Content, kept[9].Content)
	}
	for i := 1; i < len(kept); i++ {
		if kept[i].Seq <= kept[i-1].Seq {
			t.Fatal("survivor order violated")
		}
	}
}

func TestRecencyStrategy_NoopUnderMax(t *testing.T) {
	s := NewRecencyStrategy(10)

	msgs := stampedMessages(4)
	kept, err := s.Compact(context.Background(), msgs)
	if err != nil {
		t.Fatalf("compact failed: %v", err)
	}
	if len(kept) != 4 {
		t.Fatalf("expected all 4 survivors, got %d", len(kept))
	}

	// Default kicks in for a non-positive max.
	if NewRecencyStrategy(0).max != DefaultRecencyKeep {
		t.Fatal("expected default keep count")
	}
}

func TestImportanceStrategy_ScoresSurvivors(t *testing.T) {
	old := time.Now().UTC().Add(-time.Hour)
	recent := time.Now().UTC()

	msgs := []core.Message{
		{ID: core.NewID(), Seq: 1, Role: core.RoleUser, Content: "plain old", Timestamp: old},
		{ID: core.NewID(), Seq: 2, Role: core.RoleTool, Content: "tool result", Timestamp: old},
		{ID: core.NewID(), Seq: 3, Role: core.RoleUser, Content: "key decision", Timestamp: old,
			Metadata: map[string]string{core.MetaImportance: "high"}},
		{ID: core.NewID(), Seq: 4, Role: core.RoleUser, Content: "noise", Timestamp: old},
		{ID: core.NewID(), Seq: 5, Role: core.RoleUser, Content: "fresh question", Timestamp: recent},
		{ID: core.NewID(), Seq: 6, Role: core.RoleUser, Content: "more noise", Timestamp: old},
	}

	s := NewImportanceStrategy(3)

	kept, err := s.Compact(context.Background(), msgs)
	if err != nil {
		t.Fatalf("compact failed: %v", err)
	}
	if len(kept) != 3 {
		t.Fatalf("expected 3 survivors, got %d", len(kept))
	}

	// Tool result (2), high importance (3) and the fresh message (1)
	// outscore the noise, and come back in log order.
	if kept[0].Seq != 2 || kept[1].Seq != 3 || kept[2].Seq != 5 {
		t.Fatalf("unexpected survivors: %d %d %d", kept[0].Seq, kept[1].Seq, kept[2].Seq)
	}
}

func TestImportanceStrategy_TiesFavorNewer(t *testing.T) {
	old := time.Now().UTC().Add(-time.Hour)

	msgs := make([]core.Message, 4)
	for i := range msgs {
		msgs[i] = core.Message{
			ID: core.NewID(), Seq: i + 1, Role: core.RoleUser,
			Content: fmt.Sprintf("m%d", i+1), Timestamp: old,
		}
	}

	kept, err := NewImportanceStrategy(2).Compact(context.Background(), msgs)
	if err != nil {
		t.Fatalf("compact failed: %v", err)
	}
	if len(kept) != 2 || kept[0].Seq != 3 || kept[1].Seq != 4 {
		t.Fatalf("expected the two newest on a tie, got %#v", kept)
	}
}

func TestSummarizerStrategy_FoldsOlderMessages(t *testing.T) {
	mock := model.NewMockModel("mock-model", "mock")

	msgs := stampedMessages(8)
	s := NewSummarizerStrategy(mock)

	kept, err := s.Compact(context.Background(), msgs)
	if err != nil {
		t.Fatalf("compact failed: %v", err)
	}

	// One synthetic summary plus the newest five.
	if len(kept) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(kept))
	}

	head := kept[0]
	if head.Role != core.RoleAgent {
		t.Fatalf("summary message has role %q", head.Role)
	}
	if !strings.HasPrefix(head.Content, "Conversation summary:") {
		t.Fatalf("unexpected summary content: %q", head.Content)
	}
	if head.Metadata[core.MetaType] != "summary" {
		t.Fatal("summary message not tagged")
	}

	for i := 0; i < 5; i++ {
		if kept[i+1].ID != msgs[3+i].ID {
			t.Fatalf("tail message %d does not match original", i)
		}
	}

	if mock.Calls() != 1 {
		t.Fatalf("expected one model call, got %d", mock.Calls())
	}
}

func TestSummarizerStrategy_FallsBackToRecencyOnModelError(t *testing.T) {
	mock := model.NewMockModel("mock-model", "mock")
	mock.FailWith(errors.New("model down"))

	msgs := stampedMessages(8)

	kept, err := NewSummarizerStrategy(mock).Compact(context.Background(), msgs)
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(kept) != 5 {
		t.Fatalf("expected recency fallback of 5, got %d", len(kept))
	}
	for i := 0; i < 5; i++ {
		if kept[i].ID != msgs[3+i].ID {
			t.Fatalf("fallback survivor %d mismatch", i)
		}
	}
}

func TestSummarizerStrategy_NoopUnderKeep(t *testing.T) {
	mock := model.NewMockModel("mock-model", "mock")

	msgs := stampedMessages(4)
	kept, err := NewSummarizerStrategy(mock).Compact(context.Background(), msgs)
	if err != nil {
		t.Fatalf("compact failed: %v", err)
	}
	if len(kept) != 4 || mock.Calls() != 0 {
		t.Fatalf("expected untouched log and no model call, got %d msgs %d calls", len(kept), mock.Calls())
	}
}

func TestNewStrategy(t *testing.T) {
	if s, err := NewStrategy("", 0, nil); err != nil || s.Name() != "recency" {
		t.Fatalf("default strategy: %v %v", s, err)
	}
	if s, err := NewStrategy("importance", 5, nil); err != nil || s.Name() != "importance" {
		t.Fatalf("importance strategy: %v %v", s, err)
	}
	if _, err := NewStrategy("summarizer", 5, nil); err == nil {
		t.Fatal("expected error for summarizer without model")
	}
	if s, err := NewStrategy("summarizer", 5, model.NewMockModel("m", "mock")); err != nil || s.Name() != "summarizer" {
		t.Fatalf("summarizer strategy: %v %v", s, err)
	}
	if _, err := NewStrategy("galactic", 5, nil); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
