package main

import (
	"context"
	"flag"
	"log"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	customerrepo "storefront/internal/repository/customer"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/seed"
)

func main() {
	file := flag.String("file", "", "fixtures YAML file (defaults to the embedded set)")
	flag.Parse()

	cfg := config.Load()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	fixtures, err := loadFixtures(*file)
	if err != nil {
		logger.Fatalf("load fixtures: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	err = seed.Apply(ctx, fixtures, customerrepo.NewPostgres(pool, nil), productrepo.NewPostgres(pool, nil), logger)
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}

func loadFixtures(path string) (*seed.Fixtures, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.Parse(data)
}
