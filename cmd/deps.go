package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/engreader/internal/cache"
	"github.com/abhisek/engreader/internal/config"
	"github.com/abhisek/engreader/internal/content"
	"github.com/abhisek/engreader/internal/llm"
	"github.com/abhisek/engreader/internal/logger"
	"github.com/abhisek/engreader/internal/progress"
	"github.com/abhisek/engreader/internal/quiz"
	"github.com/abhisek/engreader/internal/quizgen"
	"github.com/abhisek/engreader/internal/store"
	"github.com/abhisek/engreader/internal/story"
	"github.com/abhisek/engreader/internal/storygen"
	"github.com/abhisek/engreader/internal/translate"
	"github.com/abhisek/engreader/internal/user"
)

// deps holds the services a command works with.
type deps struct {
	cfg   config.Config
	log   *logger.Logger
	store *store.Store
	cache cache.Cache

	progress   *progress.Service
	quizzes    *quiz.Service
	stories    *story.Service
	translator *translate.Service
	users      *user.Service
}

// loadConfig reads the environment and applies the --db flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	return cfg, nil
}

// openStore opens the configured database, resolving the default SQLite
// path when none was given.
func openStore(cfg config.Config) (*store.Store, error) {
	if cfg.DBDriver == store.DriverPostgres {
		return store.OpenPostgres(cfg.PostgresDSN)
	}
	path := cfg.DBPath
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create DB directory: %w", err)
	}
	return store.Open(path)
}

// setup builds the services. The LLM provider is only constructed when
// needLLM is set, so commands that never generate content work without
// an API key.
func setup(cmd *cobra.Command, needLLM bool) (*deps, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	c, err := cache.Open(ctx, cfg.Cache, log)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	var requester *content.Requester
	if needLLM {
		if err := cfg.LLM.Validate(); err != nil {
			c.Close()
			st.Close()
			return nil, fmt.Errorf("LLM provider not configured: %w", err)
		}
		p, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
		if err != nil {
			c.Close()
			st.Close()
			return nil, err
		}
		requester = content.NewRequester(p)
	}

	d := &deps{cfg: cfg, log: log, store: st, cache: c}
	d.progress = progress.NewService(st.Progress(), st.Quizzes(), st.EventRepo(), log)
	d.quizzes = quiz.NewService(st.Quizzes(), st.Stories(),
		quizgen.New(requester, quizgen.DefaultConfig(), log), d.progress, log)
	d.stories = story.NewService(st.Stories(),
		storygen.New(requester, storygen.NoopRetriever{}, storygen.DefaultConfig(), log), d.quizzes, d.progress, log)
	d.translator = translate.NewService(c, st.Translations(), requester, d.progress, cfg.Translate, log)
	d.users = user.NewService(st.Users(), log)
	return d, nil
}

func (d *deps) Close() {
	if err := d.cache.Close(); err != nil {
		d.log.Warn("close cache", "error", err)
	}
	if err := d.store.Close(); err != nil {
		d.log.Warn("close store", "error", err)
	}
	d.log.Sync()
}
