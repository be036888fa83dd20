package radio

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Manifest is the decoded license payload: the current (time-limited) stream
// URL and the path of its now-playing text endpoint.
type Manifest struct {
	StreamURL    string
	TrackNameURL string
}

type Client struct {
	http       *http.Client
	licenseURL string
	baseURL    string
	now        func() time.Time
}

func NewClient(licenseURL string) *Client {
	base := ""
	if u, err := url.Parse(licenseURL); err == nil {
		base = u.Scheme + "://" + u.Host
	}
	return &Client{
		http:       &http.Client{Timeout: 10 * time.Second},
		licenseURL: licenseURL,
		baseURL:    base,
		now:        time.Now,
	}
}

type manifestPayload struct {
	Streams [][]struct {
		URL     string `json:"url"`
		TextURL string `json:"textUrl"`
	} `json:"streams"`
}

// Resolve fetches the license endpoint and decodes the base64+JSON manifest.
// The stream URL expires, so this runs again before every playback start.
func (c *Client) Resolve(ctx context.Context) (Manifest, error) {
	u, err := url.Parse(c.licenseURL)
	if err != nil {
		return Manifest{}, fmt.Errorf("license url: %w", err)
	}
	q := u.Query()
	q.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	resp, err := c.http.Do(req)
	if err != nil {
		return Manifest{}, fmt.Errorf("fetch license: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Manifest{}, fmt.Errorf("license http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Manifest{}, fmt.Errorf("read license: %w", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(string(body))
	if err != nil {
		return Manifest{}, fmt.Errorf("decode license: %w", err)
	}
	var payload manifestPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if len(payload.Streams) == 0 || len(payload.Streams[0]) == 0 {
		return Manifest{}, fmt.Errorf("manifest has no streams")
	}

	first := payload.Streams[0][0]
	return Manifest{StreamURL: first.URL, TrackNameURL: first.TextURL}, nil
}

// NowPlaying fetches the form-encoded now-playing resource and returns the
// URL-decoded title field. A missing field or an unresolved text URL yields
// UnknownTrack without an error.
func (c *Client) NowPlaying(ctx context.Context, textURL string) (string, error) {
	if textURL == "" {
		return UnknownTrack, nil
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+textURL, nil)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch now playing: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("now playing http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read now playing: %w", err)
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return "", fmt.Errorf("parse now playing: %w", err)
	}
	title := values.Get("title")
	if title == "" {
		return UnknownTrack, nil
	}
	return title, nil
}
