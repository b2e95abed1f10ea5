package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Mohampouraz/Zanjirvajeh/internal/botapi"
	"github.com/Mohampouraz/Zanjirvajeh/internal/botfront"
	appcfg "github.com/Mohampouraz/Zanjirvajeh/internal/config"
	"github.com/Mohampouraz/Zanjirvajeh/internal/dict"
	"github.com/Mohampouraz/Zanjirvajeh/internal/leaderboard"
	"github.com/Mohampouraz/Zanjirvajeh/internal/msgcat"
	"github.com/Mohampouraz/Zanjirvajeh/internal/obslog"
	"github.com/Mohampouraz/Zanjirvajeh/internal/userdb"
	"github.com/Mohampouraz/Zanjirvajeh/internal/wordchain"
)

func main() {
	_ = godotenv.Load()
	cfg := appcfg.Load()
	if cfg.BotBaseURL == "" {
		log.Fatal("BOT_BASE_URL is required")
	}

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	d, err := dict.Load(cfg.DictFile)
	if err != nil {
		logger.Fatal("dict_load_error", zap.Error(err))
	}
	cat, err := msgcat.New(cfg.MessageDir)
	if err != nil {
		logger.Fatal("msgcat_load_error", zap.Error(err))
	}

	engine := wordchain.NewEngine(d, wordchain.NewSessionStore(), wordchain.NewUserRegistry(), wordchain.Config{
		DefaultTurnSeconds: cfg.DefaultTurnSeconds,
		MinTurnSeconds:     cfg.MinTurnSeconds,
		MaxTurnSeconds:     cfg.MaxTurnSeconds,
	}, logger)

	opts := []botfront.Option{
		botfront.WithPrefix(cfg.BotPrefix),
		botfront.WithChatFilter(cfg.ChatAllowed),
	}

	if cfg.RedisURL != "" {
		board, err := leaderboard.New(cfg.RedisURL)
		if err != nil {
			logger.Fatal("leaderboard_init_error", zap.Error(err))
		}
		defer board.Close()
		opts = append(opts, botfront.WithBoard(board), botfront.WithRecorders(board))
	}
	if cfg.DatabaseURL != "" {
		repo, err := userdb.NewRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("userdb_init_error", zap.Error(err))
		}
		defer repo.Close()
		opts = append(opts, botfront.WithRecorders(repo))
	}

	client := botapi.NewClient(cfg.BotBaseURL)
	router := botfront.NewRouter(engine, cat, client, logger, opts...)
	poller := botapi.NewPoller(client, router.HandleUpdate, cfg.BotPollTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot_start", zap.Int("dict_words", d.Len()))
	if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("bot_poll_fatal", zap.Error(err))
	}
	logger.Info("bot_stop")
}
