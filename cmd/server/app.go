package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/clients/external"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/config"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine/rpgtoolkit"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/jobs"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/combat"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/clock"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/pkg/idgen"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/postgres"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/realtime"
	redisclient "github.com/HillPhelmuth/AgenticRpg-sub000/internal/redis"
	campaignstate "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/campaign_state"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/character"
	dicesession "github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/dice_session"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/narrative"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/tools"
)

const pingTimeout = 5 * time.Second

// app holds the wired services shared by the gRPC and MCP front ends
type app struct {
	cfg    config.Config
	logger *zap.Logger

	dice    dice.Service
	combat  combat.Service
	toolbox *tools.Toolbox
	hub     *realtime.Hub
	bridge  *realtime.Bridge
	jobs    *jobs.Runner

	closers []func()
}

// backends are the stores picked by configuration
type backends struct {
	states     campaignstate.Repository
	history    dicesession.Repository
	characters character.Repository
	narrative  narrative.Repository
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	clk := clock.New()
	b, err := a.openBackends(ctx, clk)
	if err != nil {
		return nil, err
	}

	a.hub = realtime.NewHub(&realtime.HubConfig{Logger: logger.Named("hub")})
	publisher := realtime.Fanout{a.hub}
	if a.bridge != nil {
		publisher = append(publisher, a.bridge)
	}

	a.dice, err = dice.NewOrchestrator(&dice.Config{
		Publisher:         publisher,
		Roller:            rpgtoolkit.NewRoller(&rpgtoolkit.RollerConfig{Logger: logger.Named("roller")}),
		IDGenerator:       idgen.NewUUID("win"),
		Clock:             clk,
		Logger:            logger.Named("dice"),
		RollHistory:       b.history,
		WindowTimeout:     cfg.Dice.WindowTimeout,
		FallbackOnTimeout: cfg.Dice.FallbackOnTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dice correlator: %w", err)
	}

	var spells external.Client
	if cfg.DnD5e.Enabled {
		spells, err = external.New(&external.Config{
			BaseURL:  cfg.DnD5e.BaseURL,
			CacheTTL: cfg.DnD5e.CacheTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create dnd5e client: %w", err)
		}
	}

	highlights, err := combat.NewNarrativeHighlights(b.narrative)
	if err != nil {
		return nil, fmt.Errorf("failed to create highlight generator: %w", err)
	}

	bus := events.NewBus()
	a.hub.SubscribeTo(bus)

	a.jobs = jobs.NewRunner(&jobs.Config{
		Logger:  logger.Named("jobs"),
		Timeout: cfg.Jobs.HighlightTimeout,
	})

	a.combat, err = combat.NewOrchestrator(&combat.Config{
		States:      b.states,
		Dice:        a.dice,
		Characters:  b.characters,
		Narrative:   b.narrative,
		RollHistory: b.history,
		Spells:      spells,
		Narrator:    &logNarrator{logger: logger.Named("narrator")},
		Highlights:  highlights,
		Jobs:        a.jobs,
		EventBus:    bus,
		IDGenerator: idgen.NewUUID("enc"),
		Clock:       clk,
		Logger:      logger.Named("combat"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create combat orchestrator: %w", err)
	}

	a.toolbox, err = tools.NewToolbox(&tools.Config{Combat: a.combat, Logger: logger.Named("tools")})
	if err != nil {
		return nil, fmt.Errorf("failed to create toolbox: %w", err)
	}

	return a, nil
}

// openBackends connects Redis and Postgres when enabled and falls back to
// in-memory stores otherwise
func (a *app) openBackends(ctx context.Context, clk clock.Clock) (*backends, error) {
	b := &backends{
		states:     campaignstate.NewInMemory(clk),
		characters: character.NewInMemory(clk),
		narrative:  narrative.NewInMemory(clk),
	}

	if a.cfg.Redis.Enabled {
		client, err := redisclient.NewClient(a.cfg.Redis.Addr, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		if err := redisclient.Ping(ctx, client, pingTimeout); err != nil {
			return nil, err
		}

		if b.states, err = campaignstate.NewRedisRepository(&campaignstate.Config{
			Client: client,
			Clock:  clk,
			TTL:    a.cfg.Redis.StateTTL,
		}); err != nil {
			return nil, fmt.Errorf("failed to create campaign state repository: %w", err)
		}
		if b.history, err = dicesession.NewRedisRepository(&dicesession.Config{Client: client}); err != nil {
			return nil, fmt.Errorf("failed to create roll history repository: %w", err)
		}
		if a.bridge, err = realtime.NewBridge(&realtime.BridgeConfig{
			Client: client,
			Logger: a.logger.Named("bridge"),
		}); err != nil {
			return nil, fmt.Errorf("failed to create redis bridge: %w", err)
		}
		a.logger.Info("using redis", zap.String("addr", a.cfg.Redis.Addr))
	}

	if a.cfg.Postgres.Enabled {
		pool, err := postgres.NewPool(ctx, a.cfg.Postgres.DSN, &postgres.Options{MaxConns: a.cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return nil, err
		}

		if b.characters, err = character.NewPostgresRepository(&character.PostgresConfig{DB: pool}); err != nil {
			return nil, fmt.Errorf("failed to create character repository: %w", err)
		}
		if b.narrative, err = narrative.NewPostgresRepository(&narrative.PostgresConfig{DB: pool}); err != nil {
			return nil, fmt.Errorf("failed to create narrative repository: %w", err)
		}
		a.logger.Info("using postgres")
	}

	return b, nil
}

// run starts the WebSocket channel, the Redis bridge and serve, and blocks
// until ctx ends or one of them fails
func (a *app) run(ctx context.Context, serve func(ctx context.Context) error) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	router := mux.NewRouter()
	a.hub.Routes(router, a.dice)
	httpServer := &http.Server{
		Addr:              a.cfg.Server.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		a.logger.Info("websocket channel starting", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.hub.Close()
		return httpServer.Shutdown(shutdownCtx)
	})

	if a.bridge != nil {
		g.Go(func() error {
			return a.bridge.Run(ctx, a.dice)
		})
	}

	// the front end returning ends the process
	g.Go(func() error {
		defer stop()
		return serve(ctx)
	})

	return g.Wait()
}

// close waits for background jobs and releases connections
func (a *app) close() {
	if a.jobs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		if err := a.jobs.Shutdown(ctx); err != nil {
			a.logger.Warn("background jobs did not finish", zap.Error(err))
		}
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
