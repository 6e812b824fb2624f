package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/api"
	"github.com/skyjuke/skyjuke/internal/config"
	"github.com/skyjuke/skyjuke/internal/logging"
	"github.com/skyjuke/skyjuke/internal/metrics"
	"github.com/skyjuke/skyjuke/internal/mpris"
	"github.com/skyjuke/skyjuke/internal/muse"
	"github.com/skyjuke/skyjuke/internal/state"
	"github.com/skyjuke/skyjuke/internal/state/kv"
	"github.com/skyjuke/skyjuke/internal/ui"
	"github.com/skyjuke/skyjuke/internal/ui/render"
	flag "github.com/spf13/pflag"

	_ "github.com/skyjuke/skyjuke/internal/muse/playlist/audpl"
	_ "github.com/skyjuke/skyjuke/internal/muse/playlist/m3u"
)

// redisPrefix namespaces the keys of the redis store.
const redisPrefix = "skyjuke:"

func main() {
	cfg, err := config.Parse(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if cfg.LogLevel != "" {
		l, _ := logging.ParseLevel(cfg.LogLevel)
		logging.SetLevel(l)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logging.Fatal("Failed to open the playlist store: %v", err)
	}
	defer store.Close()

	pl, err := state.LoadPlaylist(ctx, store, cfg.PlaylistTTL)
	if err != nil {
		logging.Error("Starting with an empty playlist: %v", err)
	}

	session := state.NewSession(pl)

	client, err := api.NewClient(cfg.Server, cfg.Timeout)
	if err != nil {
		logging.Fatal("Invalid server URL: %v", err)
	}

	m, err := muse.NewSession(cfg.MPV)
	if err != nil {
		logging.Fatal("Failed to create mpv session: %v", err)
	}
	defer m.Stop()

	console := ui.NewConsole(ui.Options{
		Session:     session,
		Client:      client,
		Player:      m,
		FilterLimit: cfg.FilterLimit,
		Output:      os.Stdout,
		Width:       func() int { return render.Width(os.Stdout) },
	})

	var handler muse.EventHandler = console

	if cfg.MPRIS {
		conn, err := mpris.New()
		if err != nil {
			logging.Warn("MPRIS disabled: %v", err)
		} else {
			defer conn.Close()

			handler = conn.PassthroughEvents(console, console)
			session.OnUpdate(func(s *state.Session) { conn.Update(s, m.Paused()) })
		}
	}

	// Start is non-blocking; the events are handled on the console's loop.
	m.SetHandler(handler, console.IdleAdd)
	m.Start()

	if cfg.MetricsAddr != "" {
		metrics.InitializeMetrics()

		srv := metrics.NewServer(cfg.MetricsAddr, console.Status)
		if err := srv.Start(); err != nil {
			logging.Error("Metrics disabled: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Stop(ctx)
			}()
		}
	}

	if err := console.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("Console stopped: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	switch cfg.Store {
	case config.StoreRedis:
		ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		return kv.NewRedis(ctx, cfg.RedisURL, redisPrefix)

	case config.StoreMemory:
		return kv.NewMemory(), nil

	default:
		if err := os.MkdirAll(cfg.StateDir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create state directory")
		}
		return kv.NewFile(cfg.PlaylistPath())
	}
}
