package config

import (
	"os"
	"strconv"
	"strings"
)

// AppConfig carries process configuration for both binaries. Fields a
// binary does not use stay zero; each main validates what it needs.
type AppConfig struct {
	// Bot transport
	BotBaseURL     string // e.g. https://tapi.bale.ai/bot<token>
	BotPrefix      string // optional command prefix; empty handles all text
	BotPollTimeout int    // long-poll timeout in seconds
	AllowedChats   []int64

	// HTTP server
	HTTPAddr string

	// Optional score mirrors
	RedisURL    string
	DatabaseURL string

	// Game tuning
	DefaultTurnSeconds int
	MinTurnSeconds     int
	MaxTurnSeconds     int

	// Assets
	DictFile   string
	MessageDir string
}

// Load reads the environment. It never fails on missing optional values;
// required fields are checked by the binary that needs them.
func Load() *AppConfig {
	cfg := &AppConfig{
		BotPollTimeout:     25,
		HTTPAddr:           ":8080",
		DefaultTurnSeconds: 30,
		MinTurnSeconds:     5,
		MaxTurnSeconds:     60,
	}

	cfg.BotBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("BOT_BASE_URL")), "/")
	cfg.BotPrefix = strings.TrimSpace(os.Getenv("BOT_PREFIX"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.DictFile = strings.TrimSpace(os.Getenv("DICT_FILE"))
	cfg.MessageDir = strings.TrimSpace(os.Getenv("MESSAGE_DIR"))

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if n, ok := envInt("BOT_POLL_TIMEOUT"); ok && n > 0 {
		cfg.BotPollTimeout = n
	}
	if n, ok := envInt("TURN_SECONDS"); ok && n > 0 {
		cfg.DefaultTurnSeconds = n
	}
	if n, ok := envInt("TURN_SECONDS_MIN"); ok && n > 0 {
		cfg.MinTurnSeconds = n
	}
	if n, ok := envInt("TURN_SECONDS_MAX"); ok && n > 0 {
		cfg.MaxTurnSeconds = n
	}

	if v := strings.TrimSpace(os.Getenv("ALLOWED_CHATS")); v != "" {
		for _, part := range strings.Split(v, ",") {
			s := strings.TrimSpace(part)
			if s == "" {
				continue
			}
			if id, err := strconv.ParseInt(s, 10, 64); err == nil {
				cfg.AllowedChats = append(cfg.AllowedChats, id)
			}
		}
	}
	return cfg
}

// ChatAllowed reports whether chatID may use the bot. An empty allow list
// admits every chat.
func (c *AppConfig) ChatAllowed(chatID int64) bool {
	if len(c.AllowedChats) == 0 {
		return true
	}
	for _, id := range c.AllowedChats {
		if id == chatID {
			return true
		}
	}
	return false
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
