package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jiahe-site/auth"
	"jiahe-site/config"
	"jiahe-site/database"
	"jiahe-site/events"
	"jiahe-site/handlers"
	"jiahe-site/sitedata"
	"jiahe-site/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the website",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, log)
	},
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gin.SetMode(cfg.GinMode)

	remote, storeHandler, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher := openPublisher(cfg, log)
	defer publisher.Close()

	site := sitedata.NewController(remote, sitedata.Options{
		MinLoadingDelay: cfg.MinLoadingDelay,
		Publisher:       publisher,
		Log:             log,
	})
	go site.Hydrate(ctx)

	authSvc := auth.NewService(cfg.JWTSecretKey, site.Admin)
	h := handlers.New(site, authSvc, log)
	r := handlers.SetupRouter(h, handlers.RouterOptions{
		TemplateDir: cfg.TemplateDir,
		StaticDir:   cfg.StaticDir,
		Store:       storeHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Jiahe site on :%s", cfg.ServerPort)
		if cfg.LocalStore() {
			log.Infof("Store endpoint: http://localhost:%s/api/site-data", cfg.ServerPort)
		} else {
			log.Infof("Remote store: %s", cfg.StoreURL)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		return err
	case <-sigChan:
		log.Info("Received shutdown signal, closing application...")
	}

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

// openStore returns what the controller reads and writes through. With no
// STORE_URL the process is its own store: a database-backed document,
// optionally cached in Redis, also served over HTTP.
func openStore(cfg *config.Config, log *logrus.Logger) (sitedata.RemoteStore, *store.Handler, func(), error) {
	if !cfg.LocalStore() {
		return store.NewClient(cfg.StoreURL, cfg.StoreToken, cfg.StoreTimeout), nil, func() {}, nil
	}

	db, err := database.InitDB(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	closers := []func(){func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("close database")
		}
	}}

	var docs store.Documents = store.NewRepository(db)
	if cfg.RedisAddr != "" {
		client := store.NewRedisClient(cfg.RedisAddr, cfg.RedisDB)
		docs = store.NewCachedDocuments(docs, client, cfg.RedisTTL, log)
		closers = append(closers, func() { _ = client.Close() })
		log.Infof("Redis cache enabled (%s)", cfg.RedisAddr)
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return store.NewLocal(docs), store.NewHandler(docs, log, cfg.StoreToken), closeAll, nil
}

func openPublisher(cfg *config.Config, log *logrus.Logger) events.Publisher {
	if cfg.RabbitMQURL == "" {
		return events.LogPublisher{Log: log}
	}
	p, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		log.WithError(err).Warn("RabbitMQ unavailable, content events are only logged")
		return events.LogPublisher{Log: log}
	}
	log.Infof("Publishing content events to exchange %s", cfg.RabbitMQExchange)
	return p
}
