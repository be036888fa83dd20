package config

import (
	"os"
	"strconv"
	"time"
)

const defaultLicenseURL = "https://play5.newradio.it/player/license/3992"

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func Load() (*Config, error) {
	token := os.Getenv("BOT_TOKEN")
	rawGuild := os.Getenv("GUILD_ID")
	if token == "" || rawGuild == "" {
		return nil, ErrConfig("BOT_TOKEN and GUILD_ID are required")
	}
	guildID, err := strconv.ParseInt(rawGuild, 10, 64)
	if err != nil {
		return nil, ErrConfig("GUILD_ID must be a valid integer")
	}

	pollSec, _ := strconv.Atoi(getenv("POLL_INTERVAL", "5"))
	if pollSec < 1 {
		pollSec = 5
	}

	cfg := &Config{
		BotToken:            token,
		GuildID:             guildID,
		DataDir:             getenv("DATA_DIR", "./data"),
		LicenseURL:          getenv("LICENSE_URL", defaultLicenseURL),
		PollInterval:        time.Duration(pollSec) * time.Second,
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
	}

	_ = os.MkdirAll(cfg.DataDir, 0o755)
	return cfg, nil
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
