package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	authapp "github.com/veltrix/storefront/internal/auth/app"
	"github.com/veltrix/storefront/internal/auth/infra/devprovider"
	"github.com/veltrix/storefront/internal/auth/infra/tokenid"
	catalogapp "github.com/veltrix/storefront/internal/catalog/app"
	"github.com/veltrix/storefront/internal/catalog/infra/static"
	checkoutapp "github.com/veltrix/storefront/internal/checkout/app"
	"github.com/veltrix/storefront/internal/checkout/infra/adapter"
	"github.com/veltrix/storefront/internal/checkout/infra/stubpay"
	"github.com/veltrix/storefront/internal/gateway"
	sessionapp "github.com/veltrix/storefront/internal/session/app"
	"github.com/veltrix/storefront/internal/session/domain"
	"github.com/veltrix/storefront/pkg/config"
	"github.com/veltrix/storefront/pkg/logger"
	"github.com/veltrix/storefront/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	store := sessionapp.NewStore(log)

	// Catalog
	catalogSvc := catalogapp.NewService(static.NewProductRepo(static.Seed()))

	// Auth
	provider := devprovider.New(devIdentity(cfg, log))
	bridge := authapp.NewBridge(provider, store, log)

	// Checkout
	cartReader := adapter.NewSessionCartReader(store)
	catalogReader := adapter.NewCatalogServiceReader(catalogSvc)
	payment := stubpay.New(cfg.CheckoutDelay)
	checkoutSvc := checkoutapp.NewService(cartReader, catalogReader, payment, 10, log)

	srv := gateway.NewServer(catalogSvc, store, bridge, checkoutSvc, log)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Feeds provider identity changes into the store for the whole
		// process lifetime; the first delivery resolves the loading state.
		err := bridge.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("exit with error", slog.Any("err", err))
	}
	log.Info("bye")
}

// devIdentity builds the canned identity the dev provider signs in with. An
// ID token from the environment wins over the built-in default.
func devIdentity(cfg config.Config, log *slog.Logger) domain.Identity {
	if cfg.DevIdentityToken != "" {
		id, err := tokenid.Decode(cfg.DevIdentityToken)
		if err == nil {
			return id
		}
		log.Warn("ignoring invalid DEV_IDENTITY_TOKEN", slog.Any("err", err))
	}

	return domain.Identity{
		DisplayName: "Dev User",
		Email:       "dev@veltrix.local",
		PhotoURL:    "https://picsum.photos/seed/dev/120/120",
	}
}
