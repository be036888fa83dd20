package config

import "time"

type Config struct {
	BotToken            string
	GuildID             int64
	DataDir             string
	LicenseURL          string
	PollInterval        time.Duration
	SpotifyClientID     string
	SpotifyClientSecret string
}
