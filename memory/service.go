package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/logging"
)

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// Store holds the per-session message logs.
	Store core.SessionStore

	// Bank holds summaries that outlive sessions.
	Bank core.MemoryBank

	// Strategy drives Compact when the caller does not pick one.
	Strategy Strategy

	// Logger receives memory events.
	Logger logging.Logger
}

// Service is the memory facade: the append-only session log, compaction
// and the long-term summary bank behind one set of operations. Append
// is unconditional; nothing is dropped until Compact runs.
type Service struct {
	store    core.SessionStore
	bank     core.MemoryBank
	strategy Strategy
	logger   logging.Logger
}

// NewService builds a memory service. Defaults: in-memory store and
// bank, recency compaction.
func NewService(optFns ...func(o *ServiceOptions)) *Service {
	opts := ServiceOptions{
		Store:    NewInMemorySessionStore(),
		Bank:     NewInMemoryBank(),
		Strategy: NewRecencyStrategy(DefaultRecencyKeep),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Service{
		store:    opts.Store,
		bank:     opts.Bank,
		strategy: opts.Strategy,
		logger:   opts.Logger,
	}
}

// Store exposes the underlying session store.
func (s *Service) Store() core.SessionStore { return s.store }

// Bank exposes the underlying memory bank.
func (s *Service) Bank() core.MemoryBank { return s.bank }

// Strategy returns the default compaction strategy.
func (s *Service) Strategy() Strategy { return s.strategy }

// StartSession registers a new session. An empty id gets a generated one.
func (s *Service) StartSession(sessionID string) (*core.Session, error) {
	return s.store.Create(sessionID)
}

// Sessions returns all known session IDs.
func (s *Service) Sessions() []string {
	return s.store.List()
}

// Append adds a message to the session log, creating the session when
// it does not exist yet. Every message is recorded; there is no
// filtering on this path.
func (s *Service) Append(sessionID string, msg core.Message) error {
	if err := s.store.Append(sessionID, msg); err != nil {
		return err
	}

	s.logger.Debug("memory.append",
		"session_id", sessionID,
		"role", string(msg.Role),
	)

	return nil
}

// History returns the last n messages of the session in insertion
// order; n <= 0 returns the full log. An unknown session yields an
// empty history, not an error.
func (s *Service) History(sessionID string, n int) ([]core.Message, error) {
	sess, err := s.store.Get(sessionID)
	if errors.Is(err, core.ErrSessionNotFound) {
		return []core.Message{}, nil
	}
	if err != nil {
		return nil, err
	}

	return sess.History(n), nil
}

// Compact shrinks the session log with the service's default strategy
// and returns how many messages were dropped.
func (s *Service) Compact(ctx context.Context, sessionID string) (int, error) {
	return s.CompactWith(ctx, sessionID, s.strategy)
}

// CompactWith shrinks the session log with the given strategy. The
// survivor order produced by the strategy is committed as-is.
func (s *Service) CompactWith(ctx context.Context, sessionID string, strategy Strategy) (int, error) {
	if strategy == nil {
		strategy = s.strategy
	}

	sess, err := s.store.Get(sessionID)
	if err != nil {
		return 0, err
	}

	msgs := sess.GetMessages()

	kept, err := strategy.Compact(ctx, msgs)
	if err != nil {
		return 0, fmt.Errorf("compact %s: %w", sessionID, err)
	}

	// The summarizer can rewrite without shrinking, so detect change by
	// identity rather than length alone.
	changed := len(kept) != len(msgs)
	if !changed {
		for i := range kept {
			if kept[i].ID != msgs[i].ID {
				changed = true
				break
			}
		}
	}

	if !changed {
		s.logger.Debug("memory.compact.noop", "session_id", sessionID)
		return 0, nil
	}

	if err := s.store.Replace(sessionID, kept); err != nil {
		return 0, err
	}

	removed := len(msgs) - len(kept)

	s.logger.Info("memory.compact",
		"session_id", sessionID,
		"strategy", strategy.Name(),
		"removed", removed,
		"kept", len(kept),
	)

	return removed, nil
}

// PersistSummary stores a summary in the bank under key, overwriting
// any previous entry.
func (s *Service) PersistSummary(ctx context.Context, key, text string) error {
	if err := s.bank.Persist(ctx, key, text); err != nil {
		return err
	}

	s.logger.Debug("memory.bank.persist", "key", key)

	return nil
}

// LoadSummary returns the summary stored under key.
func (s *Service) LoadSummary(ctx context.Context, key string) (string, error) {
	return s.bank.Load(ctx, key)
}

// SummaryKeys returns all bank keys.
func (s *Service) SummaryKeys(ctx context.Context) ([]string, error) {
	return s.bank.Keys(ctx)
}

// DeleteSummary removes the bank entry under key.
func (s *Service) DeleteSummary(ctx context.Context, key string) error {
	if err := s.bank.Delete(ctx, key); err != nil {
		return err
	}

	s.logger.Debug("memory.bank.delete", "key", key)

	return nil
}

// FindSummaries returns bank entries whose key or text contains the
// query, case-insensitive.
func (s *Service) FindSummaries(ctx context.Context, query string) ([]core.Summary, error) {
	return s.bank.Find(ctx, query)
}
