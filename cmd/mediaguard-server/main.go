package main

import (
	"log"
	"net/http"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/config"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/mockserver"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/storage"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	localStorage, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		log.Fatal("Failed to initialize storage: ", err)
	}

	app := mockserver.NewApp(localStorage, cfg.UploadDir, cfg.MaxUploadSize, cfg.AuthToken)
	router := mockserver.NewRouter(app)

	log.Printf("Starting analysis server on port %s", cfg.Port)
	log.Printf("Upload directory: %s", cfg.UploadDir)
	log.Printf("Max upload size: %d bytes", cfg.MaxUploadSize)

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal("Server failed to start: ", err)
	}
}
