package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	appcfg "github.com/Mohampouraz/Zanjirvajeh/internal/config"
	"github.com/Mohampouraz/Zanjirvajeh/internal/dict"
	"github.com/Mohampouraz/Zanjirvajeh/internal/httpapi"
	"github.com/Mohampouraz/Zanjirvajeh/internal/leaderboard"
	"github.com/Mohampouraz/Zanjirvajeh/internal/obslog"
	"github.com/Mohampouraz/Zanjirvajeh/internal/userdb"
	"github.com/Mohampouraz/Zanjirvajeh/internal/wordchain"
)

func main() {
	_ = godotenv.Load()
	cfg := appcfg.Load()

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	d, err := dict.Load(cfg.DictFile)
	if err != nil {
		logger.Fatal("dict_load_error", zap.Error(err))
	}

	engine := wordchain.NewEngine(d, wordchain.NewSessionStore(), wordchain.NewUserRegistry(), wordchain.Config{
		DefaultTurnSeconds: cfg.DefaultTurnSeconds,
		MinTurnSeconds:     cfg.MinTurnSeconds,
		MaxTurnSeconds:     cfg.MaxTurnSeconds,
	}, logger)

	var opts []httpapi.Option
	if cfg.RedisURL != "" {
		board, err := leaderboard.New(cfg.RedisURL)
		if err != nil {
			logger.Fatal("leaderboard_init_error", zap.Error(err))
		}
		defer board.Close()
		opts = append(opts, httpapi.WithBoard(board), httpapi.WithRecorders(board))
	}
	if cfg.DatabaseURL != "" {
		repo, err := userdb.NewRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("userdb_init_error", zap.Error(err))
		}
		defer repo.Close()
		opts = append(opts, httpapi.WithRecorders(repo))
	}

	srv := httpapi.New(engine, logger, opts...)
	logger.Info("http_start", zap.String("addr", cfg.HTTPAddr), zap.Int("dict_words", d.Len()))
	if err := srv.Start(cfg.HTTPAddr); err != nil {
		logger.Fatal("http_serve_error", zap.Error(err))
	}
}
