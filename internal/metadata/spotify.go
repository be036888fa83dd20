package metadata

import (
	"context"
	"log/slog"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

type spotifyClient struct {
	raw *spotify.Client
}

func newSpotifyClient(clientID, clientSecret string) (*spotifyClient, error) {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := cfg.Client(context.Background())
	cl := spotify.New(httpClient, spotify.WithRetry(true))
	return &spotifyClient{raw: cl}, nil
}

// artwork searches Spotify for title and returns the first track's largest
// album image, or "" when the search fails or matches nothing.
func (c *spotifyClient) artwork(ctx context.Context, title string) string {
	res, err := c.raw.Search(ctx, title, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		slog.Debug("spotify search failed", "title", title, "err", err)
		return ""
	}
	if res.Tracks == nil || len(res.Tracks.Tracks) == 0 {
		return ""
	}
	images := res.Tracks.Tracks[0].Album.Images
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
