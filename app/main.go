package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lysyi3m/archive-comb/app/archive"
	"github.com/lysyi3m/archive-comb/app/cache"
	"github.com/lysyi3m/archive-comb/app/cfg"
	"github.com/lysyi3m/archive-comb/app/database"
	"github.com/lysyi3m/archive-comb/app/feed"
	"github.com/lysyi3m/archive-comb/app/locale"
	"github.com/lysyi3m/archive-comb/app/permalink"
)

// commandLineRequest names the request assembled from --type, --limit, ...
const commandLineRequest = "command-line"

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appCfg, os.Stdout); err != nil {
		slog.Error("Failed to render archives", "error", err)
		os.Exit(1)
	}
}

// setupLogger sends structured logs to stderr so stdout carries only markup
func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(ctx context.Context, c *cfg.Cfg, out io.Writer) error {
	slog.Debug("Starting archive-comb", "version", c.Version, "db", c.DBPath)

	db, err := database.NewConnection(c.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Debug("Database migrations applied", "version", version, "dirty", dirty)

	lru, err := cache.NewLRU(c.CacheSize)
	if err != nil {
		return err
	}
	tokens := cache.NewTokens(lru)
	posts := database.NewPostStore(db, tokens)

	if c.Import != "" {
		rules, err := feed.ParseRules(c.ImportIncludes, c.ImportExcludes)
		if err != nil {
			return fmt.Errorf("failed to parse import rules: %w", err)
		}
		if _, err := feed.NewImporter(posts, c.Location, rules).ImportFile(ctx, c.Import); err != nil {
			return fmt.Errorf("failed to import %s: %w", c.Import, err)
		}
	}

	if count, err := posts.GetPostCount(ctx); err == nil {
		slog.Debug("Posts available", "count", count)
	}

	site, err := locale.New(c.Locale)
	if err != nil {
		return err
	}
	slog.Debug("Locale selected", "requested", c.Locale, "locale", site)

	aggregator := archive.NewAggregator(archive.Options{
		Store:       database.NewArchiveStore(db),
		Cache:       lru,
		Tokens:      tokens,
		Links:       permalink.NewBuilder(c.HomeURL, c.PermalinkStructure),
		Locale:      site,
		Filters:     archive.NewFilters(),
		DateFormat:  c.DateFormat,
		StartOfWeek: c.StartOfWeek,
		Sink:        out,
	})

	requests, err := loadRequests(c)
	if err != nil {
		return err
	}

	for _, r := range requests {
		if err := ctx.Err(); err != nil {
			return err
		}

		markup, err := aggregator.Run(ctx, r)
		if err != nil {
			return fmt.Errorf("failed to render request %s: %w", r.Name, err)
		}
		if !r.Echo {
			slog.Info("Archive built without output", "request", r.Name, "bytes", len(markup))
		}
	}

	return nil
}

// loadRequests returns the named request files in the order given, or the
// command-line request when no names were passed
func loadRequests(c *cfg.Cfg) ([]archive.Request, error) {
	if len(c.RequestNames) == 0 {
		return []archive.Request{requestFromFlags(c.Request)}, nil
	}

	requestCache := archive.NewRequestCache(c.RequestsDir)
	if err := requestCache.Run(); err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	slog.Debug("Requests loaded", "dir", c.RequestsDir, "count", requestCache.GetRequestCount(), "names", requestCache.Names())

	requests := make([]archive.Request, 0, len(c.RequestNames))
	for _, name := range c.RequestNames {
		r, err := requestCache.GetRequest(name)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, nil
}

func requestFromFlags(r cfg.Request) archive.Request {
	if verbs := archive.UnsupportedImageVerbs(r.Image); len(verbs) > 0 {
		slog.Warn("Image template has directives that will be copied verbatim", "request", commandLineRequest, "verbs", verbs)
	}

	return archive.Request{
		Name:          commandLineRequest,
		Type:          archive.Type(r.Type),
		Limit:         archive.ParseLimit(r.Limit),
		Format:        archive.Format(r.Format),
		Before:        r.Before,
		After:         r.After,
		ShowPostCount: r.ShowPostCount,
		Echo:          r.Echo,
		Order:         r.Order,
		Image:         r.Image,
	}
}
