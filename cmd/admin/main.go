package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/admincli"
	"storefront/internal/config"
	"storefront/internal/db"
	addressrepo "storefront/internal/repository/address"
	customerrepo "storefront/internal/repository/customer"
	inventoryrepo "storefront/internal/repository/inventory"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	addresssvc "storefront/internal/service/address"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stderr, "[admin] ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		once    sync.Once
		pool    *pgxpool.Pool
		poolErr error
	)
	connect := func() (*pgxpool.Pool, error) {
		once.Do(func() {
			pool, poolErr = db.Connect(ctx, cfg.DBConnString)
		})
		return pool, poolErr
	}
	defer func() {
		if pool != nil {
			pool.Close()
		}
	}()

	deps := admincli.Deps{
		Orders: func() (admincli.OrderService, error) {
			p, err := connect()
			if err != nil {
				return nil, err
			}
			products := productrepo.NewPostgres(p, nil)
			addresses := addresssvc.New(addressrepo.NewPostgres(p, nil), nil)
			return ordersvc.New(orderrepo.NewPostgres(p, logger), products, customerrepo.NewPostgres(p, nil), addresses,
				ordersvc.WithLogger(logger),
				ordersvc.WithDeliveryDays(cfg.DeliveryDays),
			), nil
		},
		Stock: func() (admincli.StockService, error) {
			p, err := connect()
			if err != nil {
				return nil, err
			}
			return productsvc.New(productrepo.NewPostgres(p, nil), inventoryrepo.NewPostgres(p, logger)), nil
		},
	}

	if err := admincli.NewRootCommand(deps).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		if pool != nil {
			pool.Close()
		}
		os.Exit(1)
	}
}
