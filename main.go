package main

import (
	"log"

	"github.com/SundayYogurt/channel_service/config"
	"github.com/SundayYogurt/channel_service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	api.StartServer(cfg)
}
