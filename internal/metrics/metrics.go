// Package metrics holds the Prometheus collectors of the player and the small
// HTTP server that exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API client metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyjuke_api_requests_total",
			Help: "Total number of directory API requests",
		},
		[]string{"operation", "outcome"}, // outcome: "ok", "network_error", "api_error"
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skyjuke_api_request_duration_seconds",
			Help:    "Directory API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	StaleResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyjuke_stale_responses_total",
			Help: "Total number of API responses discarded because a newer request was issued",
		},
		[]string{"operation"},
	)
)

// Playback metrics
var (
	TracksPlayedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyjuke_tracks_played_total",
			Help: "Total number of tracks started, by attached source",
		},
		[]string{"source"},
	)

	PlaybackErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skyjuke_playback_errors_total",
			Help: "Total number of tracks that failed to resolve or play",
		},
	)

	ShuffleEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skyjuke_shuffle_enabled",
			Help: "Whether shuffle is enabled (1) or not (0)",
		},
	)
)

// Playlist metrics
var (
	PlaylistSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyjuke_playlist_saves_total",
			Help: "Total number of playlist saves",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	PlaylistLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skyjuke_playlist_length",
			Help: "Number of tracks in the playlist",
		},
	)
)
