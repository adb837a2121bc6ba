package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/Apurer/go-gin-order-api/internal/app/api"
)

func main() {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("orders API exited: %v", err)
	}
}
