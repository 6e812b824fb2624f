package metrics

// Operations lists the directory API operations, used as label values.
var Operations = []string{
	"dir", "searchTitle", "searchDir", "searchInDir",
	"getAllMp3InDir", "getAllDirs", "audio",
}

// Sources lists the playback sources, used as label values.
var Sources = []string{"browser", "playlist", "search"}

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first scrape.
func InitializeMetrics() {
	for _, op := range Operations {
		for _, outcome := range []string{"ok", "network_error", "api_error"} {
			APIRequestsTotal.WithLabelValues(op, outcome)
		}
		APIRequestDuration.WithLabelValues(op)
		StaleResponsesTotal.WithLabelValues(op)
	}

	for _, src := range Sources {
		TracksPlayedTotal.WithLabelValues(src)
	}

	PlaylistSaves.WithLabelValues("ok")
	PlaylistSaves.WithLabelValues("error")
}
