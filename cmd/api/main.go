package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/pricing"
	cartrepo "storefront/internal/repository/cart"
	couponrepo "storefront/internal/repository/coupon"
	customerrepo "storefront/internal/repository/customer"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	anonymoussvc "storefront/internal/service/anonymous"
	cartsvc "storefront/internal/service/cart"
	customersvc "storefront/internal/service/customer"
	productsvc "storefront/internal/service/product"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		fallback := logging.New("api", "info", "json")
		fallback.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New("api", cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	couponRepo := couponrepo.NewPostgres(dbpool)
	customerRepo := customerrepo.NewPostgres(dbpool)
	tokenRepo := tokenrepo.NewPostgres(dbpool)

	policy := pricing.Policy{
		FreeShippingThresholdCents: cfg.FreeShippingThresholdCents,
		FlatShippingFeeCents:       cfg.FlatShippingFeeCents,
		TaxRate:                    decimal.NewFromFloat(cfg.TaxRatePercent).Div(decimal.NewFromInt(100)),
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:     cartsvc.New(cartRepo, productRepo, cfg.Currency),
		ProductSvc:  productsvc.New(productRepo),
		CustomerSvc: customersvc.New(customerRepo, tokenRepo),
		AnonSvc:     anonymoussvc.New(tokenRepo),
		Coupons:     couponRepo,
		Policy:      policy,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logger.Info().Msg("server stopped")
	}
}
