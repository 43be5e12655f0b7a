package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/notify"
	addressrepo "storefront/internal/repository/address"
	cartrepo "storefront/internal/repository/cart"
	customerrepo "storefront/internal/repository/customer"
	inventoryrepo "storefront/internal/repository/inventory"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	sessionrepo "storefront/internal/repository/session"
	addresssvc "storefront/internal/service/address"
	cartsvc "storefront/internal/service/cart"
	customersvc "storefront/internal/service/customer"
	devicesvc "storefront/internal/service/device"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	inventoryRepo := inventoryrepo.NewPostgres(dbpool, logger)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	addressRepo := addressrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	var mailClient notify.EmailClient
	if cfg.SendGridAPIKey != "" {
		mailClient = notify.NewSendGridClient(cfg.SendGridAPIKey, logger)
	} else {
		logger.Printf("SENDGRID_API_KEY not set, order emails are logged only")
		mailClient = notify.NewLogClient(logger)
	}

	addressService := addresssvc.New(addressRepo, logger)
	orderService := ordersvc.New(orderRepo, productRepo, customerRepo, addressService,
		ordersvc.WithDeliveryDays(cfg.DeliveryDays),
		ordersvc.WithNotifier(notify.NewMailer(mailClient, cfg.SendGridFrom, cfg.StoreName)),
		ordersvc.WithLogger(logger),
	)

	if cfg.AdminKeyHash == "" {
		logger.Printf("ADMIN_KEY_HASH not set, admin routes are locked")
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:      cartsvc.New(cartRepo, productRepo, logger),
		AddressSvc:   addressService,
		OrderSvc:     orderService,
		DeviceSvc:    devicesvc.New(cfg.DeviceSessionTTL, devicesvc.WithStore(sessionrepo.NewPostgres(dbpool, logger))),
		CustomerSvc:  customersvc.New(customerRepo),
		ProductSvc:   productsvc.New(productRepo, inventoryRepo),
		AdminKeyHash: cfg.AdminKeyHash,
		CORSOrigins:  cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
