// Command main runs the store seeder for Ricordi.
package main

import (
	"context"
	"flag"
	"log"

	"ricordi/internal/config"
	"ricordi/internal/seed"
	"ricordi/internal/store"
)

func main() {
	numPhotos := flag.Int("photos", 12, "Number of photos to create")
	commentsPerPhoto := flag.Int("comments", 3, "Comments per photo")
	numEntries := flag.Int("entries", 8, "Number of guestbook entries to create")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.StoreBackend != config.StoreBackendLocal {
		log.Fatalf("Seeding only targets the local store backend (STORE_BACKEND=%s)", cfg.StoreBackend)
	}

	st, err := store.NewLocal(store.LocalConfig{
		Driver:   cfg.LocalDBDriver,
		DSN:      cfg.LocalDBDSN,
		MediaDir: cfg.MediaDir,
	})
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}

	if err := seed.Seed(context.Background(), st, seed.Options{
		NumPhotos:           *numPhotos,
		CommentsPerPhoto:    *commentsPerPhoto,
		NumGuestbookEntries: *numEntries,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
