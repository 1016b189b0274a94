package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/devfolio/portfolio-backend/config"
	"github.com/devfolio/portfolio-backend/internal/bootstrap"
	"github.com/devfolio/portfolio-backend/internal/contacts"
	"github.com/devfolio/portfolio-backend/internal/kv"
	"github.com/devfolio/portfolio-backend/internal/logging"
	"github.com/devfolio/portfolio-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	bootstrap.SetGinMode(cfg.App.Environment)

	inj := bootstrap.BuildContainer(cfg, log)

	st, err := do.Invoke[store.Store](inj)
	if err != nil {
		return err
	}
	defer st.Close()

	cache, err := do.Invoke[kv.Store](inj)
	if err != nil {
		return err
	}
	defer cache.Close()

	engine, err := do.Invoke[*gin.Engine](inj)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Defaults.Seed {
		if err := seed(ctx, inj, cfg.Defaults); err != nil {
			log.Warn("seeding failed", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("auth", cfg.Auth.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// pending contact notifications
		return do.MustInvoke[*contacts.Service](inj).Wait(shutdownCtx)
	})

	return g.Wait()
}

func seed(ctx context.Context, inj *do.Injector, defs config.DefaultsConfig) error {
	content, err := bootstrap.ResolveSeedContent(defs)
	if err != nil {
		return err
	}
	seeder, err := do.Invoke[*bootstrap.Seeder](inj)
	if err != nil {
		return err
	}
	_, err = seeder.Seed(ctx, content)
	return err
}
