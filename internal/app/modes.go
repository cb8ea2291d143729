package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/server"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/server/handler"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/server/ws"
)

// shutdownGrace is how long in-flight HTTP requests get on shutdown.
const shutdownGrace = 10 * time.Second

// ServerMode runs the HTTP API and WebSocket hub without the background
// scan loop. Scans happen only on demand through POST /api/fetch-markets.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	g, gctx := errgroup.WithContext(ctx)
	a.startServer(gctx, g, deps)
	return waitGroup(g)
}

// ScanMode runs the headless detection loop plus the archive sweep. No API
// surface is exposed.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	g, gctx := errgroup.WithContext(ctx)
	a.startScanLoop(gctx, g, deps)
	a.startArchiveLoop(gctx, g, deps)
	return waitGroup(g)
}

// FullMode runs everything: API server, WebSocket hub, scan loop and
// archive sweep.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	g, gctx := errgroup.WithContext(ctx)
	a.startServer(gctx, g, deps)
	a.startScanLoop(gctx, g, deps)
	a.startArchiveLoop(gctx, g, deps)
	return waitGroup(g)
}

func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	hub := ws.NewHub(deps.EventBus, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(deps.DBPinger, deps.RedisPinger, a.logger),
		Scan:          handler.NewScanHandler(deps.Scanner, a.logger),
		Markets:       handler.NewMarketHandler(deps.QuoteCache, a.logger),
		Opportunities: handler.NewOpportunityHandler(deps.OpportunityStore, a.logger),
		Trades:        handler.NewTradeHandler(deps.Settlement, deps.TradeStore, a.logger),
		Alerts:        handler.NewAlertHandler(deps.Dispatcher, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func (a *App) startScanLoop(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	g.Go(func() error {
		return deps.Scanner.RunLoop(ctx, a.cfg.Scanner.Interval.Duration)
	})
}

func (a *App) startArchiveLoop(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	if deps.Archiver == nil {
		return
	}

	interval := a.cfg.Archive.Interval.Duration
	retention := time.Duration(a.cfg.Archive.RetentionDays) * 24 * time.Hour

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				cutoff := time.Now().UTC().Add(-retention)
				if _, err := deps.Archiver.ArchiveExpired(ctx, cutoff); err != nil {
					a.logger.ErrorContext(ctx, "archive sweep failed",
						slog.String("error", err.Error()),
					)
				}
			}
		}
	})
}

// waitGroup collapses the context-cancelled error a clean shutdown
// produces.
func waitGroup(g *errgroup.Group) error {
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
