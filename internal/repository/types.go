package repository

import (
	"database/sql"
	"time"
)

type Repo struct {
	db *sql.DB
}

type Settings struct {
	GuildID        string
	PanelEphemeral bool
}

type TrackPlay struct {
	ID       int64
	GuildID  string
	Title    string
	PlayedAt time.Time
}
