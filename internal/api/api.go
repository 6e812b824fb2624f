// Package api is the client of the music server's directory and audio
// endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/logging"
	"github.com/skyjuke/skyjuke/internal/metrics"
)

// Op is the name of a directory API operation.
type Op string

const (
	OpDir         Op = "dir"
	OpSearchTitle Op = "searchTitle"
	OpSearchDir   Op = "searchDir"
	OpSearchInDir Op = "searchInDir"
	OpAllInDir    Op = "getAllMp3InDir"
	OpAllInDirs   Op = "getAllMp3InDirs"
	OpAllDirs     Op = "getAllDirs"

	opAudio = "audio"
)

// Response status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 512

// Match is a single result of a recursive search.
type Match struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Dir   string `json:"dir"`
}

// Response is the envelope of every directory API answer. Only the fields of
// the requested operation are set.
type Response struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Dir     string   `json:"dir,omitempty"`
	Dirs    []string `json:"dirs,omitempty"`
	Files   []string `json:"files,omitempty"`
	Titles  []string `json:"titles,omitempty"`
	Matches []Match  `json:"matches,omitempty"`
	Count   int      `json:"count,omitempty"`
}

type request struct {
	Function Op     `json:"function"`
	Data     string `json:"data"`
}

// Listing is the content of one remote directory. Dirs and Files are names
// relative to Dir.
type Listing struct {
	Dir   string
	Dirs  []string
	Files []string
}

// Client talks to one music server.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient creates a client for the server at base. Each request is bounded
// by timeout.
func NewClient(base string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrap(err, "invalid server URL")
	}

	return &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the server URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) resolve(ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	return c.base.ResolveReference(r), nil
}

// Do calls an operation with the raw data string and returns the response.
// A response with status "error" is returned along with an *APIError.
func (c *Client) Do(ctx context.Context, op Op, data string) (*Response, error) {
	start := time.Now()

	resp, err := c.do(ctx, op, data)

	outcome := "ok"
	switch {
	case IsNetwork(err):
		outcome = "network_error"
	case IsAPI(err):
		outcome = "api_error"
	}

	metrics.APIRequestsTotal.WithLabelValues(string(op), outcome).Inc()
	metrics.APIRequestDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())

	logging.Debug("api: %s %q: %s in %v", op, data, outcome, time.Since(start))
	return resp, err
}

func (c *Client) do(ctx context.Context, op Op, data string) (*Response, error) {
	b, err := json.Marshal(request{Function: op, Data: data})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	u, err := c.resolve("/api")
	if err != nil {
		return nil, errors.Wrap(err, "failed to build URL")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", u.String(), bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	var resp Response
	if err := c.doJSON(req, &resp); err != nil {
		return nil, &NetworkError{Op: string(op), Err: err}
	}

	if resp.Status != StatusOK {
		return &resp, &APIError{Op: string(op), Message: resp.Message}
	}

	return &resp, nil
}

func (c *Client) doJSON(req *http.Request, v interface{}) error {
	r, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	if r.StatusCode < 200 || r.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(r.Body, maxErrorBody))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return errors.Errorf("HTTP error %d: %s", r.StatusCode, msg)
		}
		return errors.Errorf("HTTP error %d", r.StatusCode)
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "invalid response")
	}

	return nil
}

// Dir lists the directory at path. The root is the empty path; any other
// path ends with a slash.
func (c *Client) Dir(ctx context.Context, path string) (*Listing, error) {
	resp, err := c.Do(ctx, OpDir, path)
	if err != nil {
		return nil, err
	}

	dir := resp.Dir
	if dir == "" {
		dir = path
	}

	return &Listing{
		Dir:   dir,
		Dirs:  resp.Dirs,
		Files: resp.Files,
	}, nil
}

// SearchTitle returns the full paths of the tracks whose path contains term.
func (c *Client) SearchTitle(ctx context.Context, term string) ([]string, error) {
	resp, err := c.Do(ctx, OpSearchTitle, term)
	if err != nil {
		return nil, err
	}
	return resp.Titles, nil
}

// SearchDir returns the directories whose path contains term. Each ends with a
// slash.
func (c *Client) SearchDir(ctx context.Context, term string) ([]string, error) {
	resp, err := c.Do(ctx, OpSearchDir, term)
	if err != nil {
		return nil, err
	}
	return resp.Dirs, nil
}

// SearchInDir searches recursively below dir for at most limit tracks whose
// path contains term.
func (c *Client) SearchInDir(ctx context.Context, dir, term string, limit int) ([]Match, error) {
	b, err := json.Marshal(struct {
		Dir   string `json:"dir"`
		Term  string `json:"term"`
		Limit int    `json:"limit"`
	}{dir, term, limit})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode search")
	}

	resp, err := c.Do(ctx, OpSearchInDir, string(b))
	if err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// AllInDir returns every track below dir, recursively.
func (c *Client) AllInDir(ctx context.Context, dir string) ([]string, error) {
	b, err := json.Marshal(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode directory")
	}

	resp, err := c.Do(ctx, OpAllInDir, string(b))
	if err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// AllInDirs returns every track below each of dirs without duplicates.
func (c *Client) AllInDirs(ctx context.Context, dirs []string) ([]string, error) {
	b, err := json.Marshal(dirs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode directories")
	}

	resp, err := c.Do(ctx, OpAllInDirs, string(b))
	if err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// AllDirs returns every directory on the server. The root comes first as an
// empty string.
func (c *Client) AllDirs(ctx context.Context) ([]string, error) {
	resp, err := c.Do(ctx, OpAllDirs, "")
	if err != nil {
		return nil, err
	}
	return resp.Dirs, nil
}

// AudioURL resolves a track into an absolute URL the player can open.
func (c *Client) AudioURL(ctx context.Context, track string) (string, error) {
	start := time.Now()

	u, err := c.audioURL(ctx, track)

	outcome := "ok"
	if err != nil {
		outcome = "network_error"
	}

	metrics.APIRequestsTotal.WithLabelValues(opAudio, outcome).Inc()
	metrics.APIRequestDuration.WithLabelValues(opAudio).Observe(time.Since(start).Seconds())

	return u, err
}

func (c *Client) audioURL(ctx context.Context, track string) (string, error) {
	u, err := c.resolve("/audio/" + escapePath(track))
	if err != nil {
		return "", errors.Wrap(err, "failed to build URL")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	var resp struct {
		URL string `json:"url"`
	}

	if err := c.doJSON(req, &resp); err != nil {
		return "", &NetworkError{Op: opAudio, Err: err}
	}

	if resp.URL == "" {
		return "", &NetworkError{Op: opAudio, Err: errors.New("empty audio URL")}
	}

	// Local disk servers answer with a path relative to themselves.
	abs, err := c.resolve(resp.URL)
	if err != nil {
		return "", &NetworkError{Op: opAudio, Err: errors.Wrap(err, "invalid audio URL")}
	}

	return abs.String(), nil
}

// escapePath escapes each segment of a slash-separated track path.
func escapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
