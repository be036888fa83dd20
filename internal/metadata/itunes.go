package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const itunesSearchURL = "https://itunes.apple.com/search"

// Lookup resolves album artwork for a track title, best effort. iTunes
// search is the primary source; a Spotify track search is used as fallback
// when client credentials are configured. Results, including misses, are
// cached so panel re-renders don't hammer the catalogs.
type Lookup struct {
	http      *http.Client
	searchURL string
	spotify   *spotifyClient
	cache     *Cache[string]
}

func NewLookup(spotifyClientID, spotifyClientSecret string) *Lookup {
	l := &Lookup{
		http:      &http.Client{Timeout: 8 * time.Second},
		searchURL: itunesSearchURL,
		cache:     NewCache[string](10 * time.Minute),
	}
	if spotifyClientID != "" && spotifyClientSecret != "" {
		sp, err := newSpotifyClient(spotifyClientID, spotifyClientSecret)
		if err != nil {
			slog.Warn("spotify client init failed", "err", err)
		} else {
			l.spotify = sp
		}
	}
	return l
}

// Artwork returns the best artwork URL known for title, or "" when nothing
// could be found. It never fails a render: every error degrades to "".
func (l *Lookup) Artwork(ctx context.Context, title string) string {
	if title == "" {
		return ""
	}
	if art, ok := l.cache.Get(title); ok {
		return art
	}

	art, err := l.itunesArtwork(ctx, title)
	if err != nil {
		slog.Debug("itunes lookup failed", "title", title, "err", err)
	}
	if art == "" && l.spotify != nil {
		art = l.spotify.artwork(ctx, title)
	}
	if art == "" {
		slog.Warn("no artwork found", "title", title)
	}

	l.cache.Set(title, art)
	return art
}

type itunesResult struct {
	ArtworkURL100 string `json:"artworkUrl100"`
	ArtworkURL60  string `json:"artworkUrl60"`
	ArtworkURL30  string `json:"artworkUrl30"`
}

func (l *Lookup) itunesArtwork(ctx context.Context, title string) (string, error) {
	u, _ := url.Parse(l.searchURL)
	q := u.Query()
	q.Set("term", title)
	q.Set("media", "music")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	req.Header.Set("Accept", "application/json")
	resp, err := l.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("itunes http %d", resp.StatusCode)
	}

	var payload struct {
		Results []itunesResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if len(payload.Results) == 0 {
		return "", nil
	}

	r := payload.Results[0]
	switch {
	case r.ArtworkURL100 != "":
		return r.ArtworkURL100, nil
	case r.ArtworkURL60 != "":
		return r.ArtworkURL60, nil
	default:
		return r.ArtworkURL30, nil
	}
}
