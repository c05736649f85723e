package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"millionaire-service/internal/app"
	"millionaire-service/internal/config"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/infra/memory"
	pgstore "millionaire-service/internal/infra/postgres"
	redisstore "millionaire-service/internal/infra/redis"
	"millionaire-service/internal/questions"
	"millionaire-service/internal/solo"
	transport "millionaire-service/internal/transport/http"
)

func newStartCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
}

func runServer(ctx context.Context, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	port := opts.port
	if port == "" {
		port = cfg.Server.Port
	}
	if port == "" {
		port = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(domain.DefaultFFFCatalog)
	var archive app.ResultArchive = memory.NewResultArchive()
	if pool != nil {
		loader = pgstore.NewCatalogLoader(pool)
		archive = pgstore.NewResultArchive(pool)
	}

	var (
		rooms   app.RoomStore
		catalog app.CatalogRepository
	)
	if redisClient != nil {
		rooms = redisstore.NewRoomStore(redisClient, cfg.RoomTTL())
		catalog = redisstore.NewCatalogRepository(redisClient, loader, cfg.CatalogTTL())
	} else {
		rooms = memory.NewRoomStore()
		catalog = memory.NewCatalogRepository(loader, cfg.CatalogTTL())
	}

	gen := questions.Disabled
	if cfg.Generator.URL != "" {
		gen = questions.NewHTTPGenerator(cfg.Generator.URL, cfg.Generator.APIKey, cfg.GeneratorTimeout())
	} else {
		log.Warn("no question generator configured, every turn uses the fallback question")
	}
	provisioner := questions.NewProvisioner(gen, log.Named("questions"), cfg.GeneratorTimeout())

	service := app.NewService(rooms, catalog, archive, provisioner, log.Named("app"),
		app.WithRevealDelay(cfg.RevealDelay()))
	games := solo.NewManager(provisioner, nil, log.Named("solo"))

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           transport.NewRouter(service, games, log.Named("http")),
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting millionaire service", zap.String("addr", server.Addr),
			zap.Bool("redis", redisClient != nil), zap.Bool("postgres", pool != nil))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return games.Run(ctx, cfg.SoloIdle())
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
