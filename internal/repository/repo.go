package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertSettings(ctx context.Context, guild string) (*Settings, error) {
	_, _ = r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings(guild_id) VALUES (?)`, guild,
	)
	return r.GetSettings(ctx, guild)
}

func (r *Repo) GetSettings(ctx context.Context, guild string) (*Settings, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT guild_id, panel_ephemeral FROM settings WHERE guild_id = ?`, guild)

	var s Settings
	var b1 int
	if err := row.Scan(&s.GuildID, &b1); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	s.PanelEphemeral = b1 != 0
	return &s, nil
}

func (r *Repo) UpdateSettings(ctx context.Context, s *Settings) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE settings SET panel_ephemeral=? WHERE guild_id=?`,
		boolToInt(s.PanelEphemeral), s.GuildID,
	)
	return err
}

// AppendHistory records one detected track change.
func (r *Repo) AppendHistory(ctx context.Context, guild, title string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO track_history(guild_id, title, played_at) VALUES (?,?,?)`,
		guild, title, time.Now().Unix(),
	)
	return err
}

// ListHistory returns the most recent track changes, newest first.
func (r *Repo) ListHistory(ctx context.Context, guild string, limit int) ([]TrackPlay, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, guild_id, title, played_at FROM track_history
		 WHERE guild_id=? ORDER BY played_at DESC, id DESC LIMIT ?`,
		guild, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrackPlay
	for rows.Next() {
		var t TrackPlay
		var unix int64
		if err := rows.Scan(&t.ID, &t.GuildID, &t.Title, &unix); err != nil {
			return nil, err
		}
		t.PlayedAt = time.Unix(unix, 0)
		out = append(out, t)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
