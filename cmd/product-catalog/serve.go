package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/fairyhunter13/product-catalog-manager/internal/http"
	"github.com/fairyhunter13/product-catalog-manager/internal/obs"
	"github.com/fairyhunter13/product-catalog-manager/internal/persist"
	"github.com/fairyhunter13/product-catalog-manager/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the catalog and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := obs.InitLogger(cfg.Log.Level); err != nil {
		return err
	}
	defer obs.Sync()
	obs.Logger.Infow("service_starting", "version", Version)

	backend, err := persist.Open(cfg.Storage, false)
	if err != nil {
		obs.Logger.Errorw("storage_open_failed", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path, "error", err)
		return err
	}
	defer backend.Close()

	st, err := store.Open(cmd.Context(), backend, store.Options{StampStartDate: cfg.StampStartDate()})
	if err != nil {
		obs.Logger.Errorw("store_load_failed", "path", backend.Path(), "error", err)
		return err
	}
	obs.Logger.Infow("store_loaded",
		"driver", cfg.Storage.Driver,
		"path", backend.Path(),
		"products", st.Len(),
		"start_date_source", cfg.StartDateSource,
	)

	app := httpapi.NewApp(cfg, st)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		obs.Logger.Infow("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obs.Logger.Errorw("http_server_error", "error", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		obs.Logger.Infow("shutdown_begin")
		app.StartShutdown()
		ctxSrv, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctxSrv); err != nil {
			obs.Logger.Errorw("http_shutdown_error", "error", err)
			return err
		}
		return nil
	})

	err = g.Wait()
	obs.Logger.Infow("service_stopped", "products", st.Len())
	return err
}
