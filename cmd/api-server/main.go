package main

import (
	"flag"
	"log"

	"github.com/yanryp/servicedesk-sub002/internal/app"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	application, err := app.Initialize(*configPath)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
