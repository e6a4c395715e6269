//go:build ignore

// One-off migration from a legacy monolithic content database into the
// per-content layout. The legacy schema kept every content row and its
// children in a single data/content.db; this splits them into
// data/contents/content-<id>.db files. Run with:
//
//	go run scripts/migrate_legacy.go -legacy data/content.db -data data
package main

import (
	"flag"
	"fmt"
	"log"

	"atelier/internal/models"
	"atelier/internal/repository"
	"atelier/internal/store"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	legacyPath := flag.String("legacy", "data/content.db", "path to the legacy monolithic database")
	dataDir := flag.String("data", "data", "target data directory")
	flag.Parse()

	legacy, err := gorm.Open(sqlite.Open(*legacyPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("open legacy database: %v", err)
	}

	var contents []models.Content
	if err := legacy.Find(&contents).Error; err != nil {
		log.Fatalf("read legacy contents: %v", err)
	}
	fmt.Printf("Found %d contents in %s\n", len(contents), *legacyPath)

	manager := store.NewManager(*dataDir)
	migrated := 0
	for _, content := range contents {
		full := models.FullContent{Content: content}
		if err := legacy.Where("content_id = ?", content.ID).Order("id").Find(&full.Media).Error; err != nil {
			log.Fatalf("read media for %s: %v", content.ID, err)
		}
		if err := legacy.Where("content_id = ?", content.ID).Order("tag").Find(&full.Tags).Error; err != nil {
			log.Fatalf("read tags for %s: %v", content.ID, err)
		}
		if err := legacy.Where("content_id = ?", content.ID).Order("position").Find(&full.Links).Error; err != nil {
			log.Fatalf("read links for %s: %v", content.ID, err)
		}
		if err := legacy.Where("content_id = ?", content.ID).Order("related_id, kind").Find(&full.Relations).Error; err != nil {
			log.Fatalf("read relations for %s: %v", content.ID, err)
		}

		err := manager.WithContent(content.ID, func(db *gorm.DB) error {
			return repository.NewContentRepository(db).SaveFull(&full)
		})
		if err != nil {
			log.Fatalf("migrate content %s: %v", content.ID, err)
		}
		migrated++
		fmt.Printf("Migrated %s (%d media, %d tags)\n", content.ID, len(full.Media), len(full.Tags))
	}

	fmt.Printf("Done: %d contents migrated into %s/contents\n", migrated, *dataDir)
}
