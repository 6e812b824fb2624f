// Package apitest provides an in-memory music server for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/skyjuke/skyjuke/internal/api"
)

// Server serves a fixed tree of tracks. Directories are implied by the track
// paths.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	tracks []string
	calls  map[api.Op]int
	fail   map[api.Op]string
	down   bool
}

// New starts a server holding the given track paths.
func New(tracks ...string) *Server {
	s := &Server{
		tracks: append([]string(nil), tracks...),
		calls:  map[api.Op]int{},
		fail:   map[api.Op]string{},
	}
	sort.Strings(s.tracks)

	r := chi.NewRouter()
	r.Post("/api", s.handleAPI)
	r.Get("/audio/*", s.handleAudio)

	s.Server = httptest.NewServer(r)
	return s
}

// Calls returns how many times op was requested.
func (s *Server) Calls(op api.Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Fail makes op answer with status "error" and message. An empty message
// restores the operation.
func (s *Server) Fail(op api.Op, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message == "" {
		delete(s.fail, op)
	} else {
		s.fail[op] = message
	}
}

// SetDown makes every request fail with an HTTP 503.
func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Function api.Op `json:"function"`
		Data     string `json:"data"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, api.Response{Status: api.StatusError, Message: "Invalid JSON"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[req.Function]++

	if s.down {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	if msg, ok := s.fail[req.Function]; ok {
		writeJSON(w, api.Response{Status: api.StatusError, Message: msg})
		return
	}

	writeJSON(w, s.answer(req.Function, req.Data))
}

func (s *Server) answer(op api.Op, data string) api.Response {
	ok := api.Response{Status: api.StatusOK}

	switch op {
	case api.OpDir:
		ok.Dir = data
		ok.Dirs, ok.Files = s.list(data)

	case api.OpSearchTitle:
		term := strings.ToLower(strings.TrimSpace(data))
		if term == "" {
			return api.Response{Status: api.StatusError, Message: "Minimum search characters: 1"}
		}
		for _, track := range s.tracks {
			if strings.Contains(strings.ToLower(track), term) {
				ok.Titles = append(ok.Titles, track)
			}
		}

	case api.OpSearchDir:
		term := strings.ToLower(strings.TrimSpace(data))
		if term == "" {
			return api.Response{Status: api.StatusError, Message: "Minimum search characters: 1"}
		}
		for _, dir := range s.dirs() {
			if dir != "" && strings.Contains(strings.ToLower(dir), term) {
				ok.Dirs = append(ok.Dirs, dir+"/")
			}
		}

	case api.OpSearchInDir:
		var req struct {
			Dir   string `json:"dir"`
			Term  string `json:"term"`
			Limit int    `json:"limit"`
		}
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			return api.Response{Status: api.StatusError, Message: "Invalid request"}
		}
		term := strings.ToLower(strings.TrimSpace(req.Term))
		for _, track := range s.tracks {
			if !strings.HasPrefix(track, req.Dir) || !strings.Contains(strings.ToLower(track), term) {
				continue
			}
			dir := path.Dir(track) + "/"
			if dir == "./" {
				dir = ""
			}
			ok.Matches = append(ok.Matches, api.Match{Path: track, Title: path.Base(track), Dir: dir})
			if req.Limit > 0 && len(ok.Matches) >= req.Limit {
				break
			}
		}
		ok.Count = len(ok.Matches)

	case api.OpAllInDir:
		var dir string
		if err := json.Unmarshal([]byte(data), &dir); err != nil {
			return api.Response{Status: api.StatusError, Message: "Invalid directory path"}
		}
		ok.Files = s.below(dir)

	case api.OpAllInDirs:
		var dirs []string
		if err := json.Unmarshal([]byte(data), &dirs); err != nil {
			return api.Response{Status: api.StatusError, Message: "Invalid folder data"}
		}
		seen := map[string]bool{}
		for _, dir := range dirs {
			for _, track := range s.below(dir) {
				if !seen[track] {
					seen[track] = true
					ok.Files = append(ok.Files, track)
				}
			}
		}
		sort.Strings(ok.Files)

	case api.OpAllDirs:
		ok.Dirs = s.dirs()

	default:
		return api.Response{Status: api.StatusError, Message: "Unknown function"}
	}

	return ok
}

// list returns the names directly inside dir.
func (s *Server) list(dir string) (dirs, files []string) {
	seen := map[string]bool{}

	for _, track := range s.tracks {
		if !strings.HasPrefix(track, dir) {
			continue
		}

		rest := strings.TrimPrefix(track, dir)
		if i := strings.Index(rest, "/"); i >= 0 {
			if name := rest[:i]; !seen[name] {
				seen[name] = true
				dirs = append(dirs, name)
			}
			continue
		}

		files = append(files, rest)
	}

	return
}

func (s *Server) below(dir string) []string {
	dir = strings.TrimSuffix(dir, "/")
	if dir != "" {
		dir += "/"
	}

	var tracks []string
	for _, track := range s.tracks {
		if strings.HasPrefix(track, dir) {
			tracks = append(tracks, track)
		}
	}
	return tracks
}

// dirs returns every directory without a trailing slash, the root first.
func (s *Server) dirs() []string {
	seen := map[string]bool{}
	var dirs []string

	for _, track := range s.tracks {
		for dir := path.Dir(track); dir != "." && !seen[dir]; dir = path.Dir(dir) {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	sort.Strings(dirs)
	return append([]string{""}, dirs...)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	track := chi.URLParam(r, "*")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls["audio"]++

	if s.down {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	for _, t := range s.tracks {
		if t == track {
			writeJSON(w, map[string]string{"url": "/localdisk/" + track})
			return
		}
	}

	http.Error(w, "Audio not found", http.StatusNotFound)
}
