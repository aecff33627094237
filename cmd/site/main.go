package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"

	"github.com/pershin-daniil/bsa-site/internal/config"
	"github.com/pershin-daniil/bsa-site/internal/rest"
	"github.com/pershin-daniil/bsa-site/internal/telegram"
	"github.com/pershin-daniil/bsa-site/pkg/fetcher"
	"github.com/pershin-daniil/bsa-site/pkg/logger"
	"github.com/pershin-daniil/bsa-site/pkg/memstore"
	"github.com/pershin-daniil/bsa-site/pkg/models"
	"github.com/pershin-daniil/bsa-site/pkg/notifier"
	"github.com/pershin-daniil/bsa-site/pkg/pgstore"
	"github.com/pershin-daniil/bsa-site/pkg/service"
	"github.com/pershin-daniil/bsa-site/pkg/worker"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.Panic(err)
	}
	log := logger.WithLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, db, closeStores := newStores(ctx, log, cfg.PgDSN)
	defer closeStores()

	previews := memstore.NewPreviews(cfg.PreviewTTL)

	var wg sync.WaitGroup
	var notify service.Notifier = notifier.New(log)
	if cfg.TgToken != "" && cfg.TgChatID != 0 {
		bot, err := telegram.NewBot(cfg.TgToken)
		if err != nil {
			log.Panic(err)
		}
		tg := telegram.New(log, bot, cfg.TgChatID)
		notify = tg
		wg.Add(1)
		go func() {
			defer wg.Done()
			tg.Run(ctx)
		}()
	}

	var verifier rest.TokenVerifier = rest.PresenceVerifier{}
	if cfg.AdminJWTPublicKey != "" {
		if verifier, err = rest.NewJWTVerifier(cfg.AdminJWTPublicKey); err != nil {
			log.Panic(err)
		}
	}

	app := service.NewAdminService(log, stores, previews, notify)
	api := fetcher.New(log, cfg.APIBaseURL, cfg.FetchTimeout)
	server, err := rest.NewServer(log, app, api, previews, verifier, rest.Options{
		Address:  cfg.Address,
		Version:  cfg.Version,
		Location: cfg.Location,
		DB:       db,
	})
	if err != nil {
		log.Panic(err)
	}

	sweeper := worker.New(log, previews, sweepInterval)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sweeper.SweepPreviews(ctx); err != nil {
			log.Warn(err)
		}
	}()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
		<-sigCh
		log.Info("Received signal, shutting down...")
		cancel()
	}()
	if err = server.Run(ctx); err != nil {
		log.Panic(err)
	}
	cancel()
	wg.Wait()
	log.Info("Server stopped")
}

// newStores keeps admin records in Postgres when dsn is set and in memory
// otherwise. The returned pinger is nil for memory.
func newStores(ctx context.Context, log *logrus.Logger, dsn string) (service.Stores, rest.Pinger, func()) {
	if dsn == "" {
		log.Info("PG_DSN is empty, admin records live in memory")
		return service.Stores{
			Executives: memstore.NewCollection[models.Executive](),
			Students:   memstore.NewCollection[models.Student](),
			Events:     memstore.NewCollection[models.Event](),
			Gallery:    memstore.NewCollection[models.GalleryEvent](),
			Resources:  memstore.NewCollection[models.Resource](),
		}, nil, func() {}
	}
	store, err := pgstore.NewStore(ctx, log, dsn)
	if err != nil {
		log.Panic(err)
	}
	if err = store.Migrate(migrate.Up); err != nil {
		log.Panic(err)
	}
	log.Warn("uploaded images are kept in memory only, image links in stored records expire with PREVIEW_TTL or a restart")
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Warnf("err during closing store: %v", err)
		}
	}
	return service.Stores{
		Executives: pgstore.NewCollection[models.Executive](store, models.Executives.Path),
		Students:   pgstore.NewCollection[models.Student](store, models.Students.Path),
		Events:     pgstore.NewCollection[models.Event](store, models.Events.Path),
		Gallery:    pgstore.NewCollection[models.GalleryEvent](store, models.Gallery.Path),
		Resources:  pgstore.NewCollection[models.Resource](store, models.Resources.Path),
	}, store, closeStore
}
