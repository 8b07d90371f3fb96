package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/model"
)

// Compaction defaults.
const (
	DefaultRecencyKeep        = 10
	DefaultImportanceWindow   = 10 * time.Minute
	DefaultSummarizerKeep     = 5
	DefaultSummarizerMaxChars = 4000
)

// Strategy decides which messages survive compaction. Implementations
// must preserve the relative order of survivors and never invent
// messages other than an explicit summary entry.
type Strategy interface {
	// Name identifies the strategy in logs and configuration.
	Name() string

	// Compact returns the surviving messages in log order.
	Compact(ctx context.Context, msgs []core.Message) ([]core.Message, error)
}

// NewStrategy returns the named compaction strategy with the given keep
// count. The summarizer strategy requires a model.
func NewStrategy(name string, keep int, m model.Model) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", "recency":
		return NewRecencyStrategy(keep), nil
	case "importance":
		return NewImportanceStrategy(keep), nil
	case "summarizer":
		if m == nil {
			return nil, fmt.Errorf("summarizer strategy requires a model")
		}
		return NewSummarizerStrategy(m, func(o *SummarizerOptions) {
			if keep > 0 {
				o.Keep = keep
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown compaction strategy: %s", name)
	}
}

// RecencyStrategy keeps the newest messages and drops the rest.
type RecencyStrategy struct {
	max int
}

var _ Strategy = (*RecencyStrategy)(nil)

// NewRecencyStrategy creates a recency strategy keeping up to max
// messages. max <= 0 falls back to DefaultRecencyKeep.
func NewRecencyStrategy(max int) *RecencyStrategy {
	if max <= 0 {
		max = DefaultRecencyKeep
	}

	return &RecencyStrategy{max: max}
}

// Name returns "recency".
func (s *RecencyStrategy) Name() string { return "recency" }

// Compact keeps the last max messages in order.
func (s *RecencyStrategy) Compact(_ context.Context, msgs []core.Message) ([]core.Message, error) {
	start := 0
	if len(msgs) > s.max {
		start = len(msgs) - s.max
	}

	kept := make([]core.Message, len(msgs)-start)
	copy(kept, msgs[start:])

	return kept, nil
}

// ImportanceOptions configures an ImportanceStrategy.
type ImportanceOptions struct {
	// Window is the age under which a message earns a recency point.
	Window time.Duration
}

// ImportanceStrategy scores messages and keeps the highest scored ones:
// importance=high metadata scores 3, tool messages 2, messages younger
// than the window 1. Survivors are re-emitted in log order.
type ImportanceStrategy struct {
	max    int
	window time.Duration
}

var _ Strategy = (*ImportanceStrategy)(nil)

// NewImportanceStrategy creates an importance strategy keeping up to max
// messages.
func NewImportanceStrategy(max int, optFns ...func(o *ImportanceOptions)) *ImportanceStrategy {
	opts := ImportanceOptions{
		Window: DefaultImportanceWindow,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if max <= 0 {
		max = DefaultRecencyKeep
	}

	return &ImportanceStrategy{max: max, window: opts.Window}
}

// Name returns "importance".
func (s *ImportanceStrategy) Name() string { return "importance" }

// Compact keeps the max highest-scoring messages. Ties resolve toward
// newer messages; survivors come back in their original order.
func (s *ImportanceStrategy) Compact(_ context.Context, msgs []core.Message) ([]core.Message, error) {
	if len(msgs) <= s.max {
		kept := make([]core.Message, len(msgs))
		copy(kept, msgs)
		return kept, nil
	}

	type scored struct {
		msg   core.Message
		score int
	}

	now := time.Now().UTC()

	list := make([]scored, len(msgs))
	for i, m := range msgs {
		sc := 0
		if m.Metadata[core.MetaImportance] == "high" {
			sc += 3
		}
		if m.Role == core.RoleTool {
			sc += 2
		}
		if now.Sub(m.Timestamp) < s.window {
			sc++
		}
		list[i] = scored{msg: m, score: sc}
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].msg.Seq > list[j].msg.Seq
	})

	kept := make([]core.Message, 0, s.max)
	for _, sc := range list[:s.max] {
		kept = append(kept, sc.msg)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Seq < kept[j].Seq
	})

	return kept, nil
}

const summarizerInstructions = "You condense conversation logs into short factual summaries."

// SummarizerOptions configures a SummarizerStrategy.
type SummarizerOptions struct {
	// Keep is how many of the newest messages survive verbatim.
	Keep int

	// MaxChars caps the transcript handed to the model.
	MaxChars int
}

// SummarizerStrategy folds everything but the newest messages into one
// synthetic summary message produced by the model. On model failure it
// degrades to plain recency so compaction never blocks a session.
type SummarizerStrategy struct {
	model    model.Model
	keep     int
	maxChars int
}

var _ Strategy = (*SummarizerStrategy)(nil)

// NewSummarizerStrategy creates a summarizer strategy backed by m.
func NewSummarizerStrategy(m model.Model, optFns ...func(o *SummarizerOptions)) *SummarizerStrategy {
	opts := SummarizerOptions{
		Keep:     DefaultSummarizerKeep,
		MaxChars: DefaultSummarizerMaxChars,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &SummarizerStrategy{
		model:    m,
		keep:     opts.Keep,
		maxChars: opts.MaxChars,
	}
}

// Name returns "summarizer".
func (s *SummarizerStrategy) Name() string { return "summarizer" }

// Compact summarizes the older part of the log into a single agent
// message placed ahead of the kept tail.
func (s *SummarizerStrategy) Compact(ctx context.Context, msgs []core.Message) ([]core.Message, error) {
	if len(msgs) <= s.keep {
		kept := make([]core.Message, len(msgs))
		copy(kept, msgs)
		return kept, nil
	}

	older := msgs[:len(msgs)-s.keep]
	recent := msgs[len(msgs)-s.keep:]

	transcript := renderTranscript(older, s.maxChars)

	prompt := "Condense the following conversation into one short paragraph. Preserve concrete figures, names and decisions.\n\n" + transcript

	resp, err := s.model.Complete(ctx, model.Prompt(summarizerInstructions, prompt))
	if err != nil {
		return NewRecencyStrategy(s.keep).Compact(ctx, msgs)
	}

	summary := core.NewAgentMessage("Conversation summary: " + strings.TrimSpace(resp.Text)).
		WithMetadata(core.MetaType, "summary")

	kept := make([]core.Message, 0, len(recent)+1)
	kept = append(kept, summary)
	kept = append(kept, recent...)

	return kept, nil
}

// renderTranscript flattens messages into "role: content" lines, cut at
// maxChars.
func renderTranscript(msgs []core.Message, maxChars int) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}

	transcript := b.String()
	if maxChars > 0 && len(transcript) > maxChars {
		transcript = transcript[:maxChars] + "\n[transcript truncated]"
	}

	return transcript
}
