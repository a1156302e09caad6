package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/arlo/localdash/internal/feed"
)

func main() {
	_ = godotenv.Load()

	addr := os.Getenv("FEEDD_ADDR")
	if addr == "" {
		addr = ":8921"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           feed.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("feedd listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
