package main

import (
	"log"

	"ticketrelay/config"
	"ticketrelay/internal/app"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("config error: %s", err)
	}

	if err := app.Run(cfg); err != nil {
		log.Fatalf("app error: %s", err)
	}
}
