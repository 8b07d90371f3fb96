package cmd

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/attachehq/attache"
	"github.com/attachehq/attache/config"
	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/logging"
	"github.com/attachehq/attache/memory"
	"github.com/attachehq/attache/model"
	"github.com/attachehq/attache/model/anthropic"
	"github.com/attachehq/attache/model/openai"
)

// wireApp assembles the full application from configuration: logger,
// model adapter, memory stores and the agent catalog.
func wireApp(ctx context.Context, cfg *config.Config) (*attache.App, logging.Logger, error) {
	logger := logging.NewSlogLogger(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format, false)

	m, err := buildModel(cfg)
	if err != nil {
		return nil, nil, err
	}

	bank, err := buildBank(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	strategy, err := memory.NewStrategy(cfg.Memory.Strategy, cfg.Memory.Keep, m)
	if err != nil {
		return nil, nil, err
	}

	store := memory.NewInMemorySessionStore(func(o *memory.InMemorySessionStoreOptions) {
		o.CheckpointDir = cfg.Memory.CheckpointDir
	})

	app := attache.New(func(o *attache.Options) {
		o.Model = m
		o.SessionStore = store
		o.Bank = bank
		o.Strategy = strategy
		o.MaxModelCalls = cfg.Model.MaxCallsPerTurn
		o.FilesRoot = cfg.Tools.FilesRoot
		o.FileMaxBytes = cfg.Tools.FileMaxBytes
		o.EmailSignature = cfg.Tools.EmailSignature
		o.Logger = logger
	})

	return app, logger, nil
}

func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Model.Provider {
	case "mock":
		return model.NewMockModel("mock-model", "mock"), nil

	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model.Name != "" {
				o.Model = cfg.Model.Name
			}
			o.Temperature = cfg.Model.Temperature
			if cfg.Model.MaxTokens > 0 {
				o.MaxCompletionTokens = int64(cfg.Model.MaxTokens)
			}
			o.APIKey = cfg.Model.APIKey
		}), nil

	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Model.Name)
			}
			o.Temperature = cfg.Model.Temperature
			if cfg.Model.MaxTokens > 0 {
				o.MaxTokens = int64(cfg.Model.MaxTokens)
			}
			o.APIKey = cfg.Model.APIKey
		}), nil

	default:
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Model.Provider)
	}
}

func buildBank(ctx context.Context, cfg *config.Config) (core.MemoryBank, error) {
	switch cfg.Memory.Bank {
	case "memory":
		return memory.NewInMemoryBank(), nil

	case "file":
		return memory.NewFileBank(cfg.Memory.BankPath)

	case "redis":
		client, err := memory.DialRedis(ctx, cfg.Memory.Redis.Addr, cfg.Memory.Redis.Password, cfg.Memory.Redis.DB)
		if err != nil {
			return nil, err
		}
		return memory.NewRedisBank(client), nil

	default:
		return nil, fmt.Errorf("unknown memory bank: %s", cfg.Memory.Bank)
	}
}
