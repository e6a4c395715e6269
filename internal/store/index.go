package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"
)

// The legacy index.db carries a couple of lightweight lookup tables that the
// one-off migration scripts populated out of the old single-database layout.
// This core only ever reads them.

// DateOverride is a manually pinned publish date for a content id.
type DateOverride struct {
	ContentID   string    `gorm:"column:content_id;primaryKey"`
	PublishedAt time.Time `gorm:"column:published_at"`
}

func (DateOverride) TableName() string { return "date_overrides" }

// TagCatalogEntry is one entry of the site-wide tag catalog.
type TagCatalogEntry struct {
	Tag   string `gorm:"column:tag;primaryKey" json:"tag"`
	Label string `gorm:"column:label" json:"label"`
	Count int    `gorm:"column:count" json:"count"`
}

func (TagCatalogEntry) TableName() string { return "tag_catalog" }

// Index is a read-only view over index.db.
type Index struct {
	db *gorm.DB
}

// OpenIndex opens the lookup index. Returns os.ErrNotExist (wrapped) when no
// index database has been provisioned; callers treat that as an empty index.
func (m *Manager) OpenIndex() (*Index, error) {
	path := m.IndexDBPath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("lookup index: %w", err)
	}
	db, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	return &Index{db: db}, nil
}

// DateOverride returns the pinned publish date for a content id, or nil when
// none is recorded.
func (i *Index) DateOverride(contentID string) (*time.Time, error) {
	var override DateOverride
	err := i.db.Where("content_id = ?", contentID).First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &override.PublishedAt, nil
}

// TagCatalog returns every catalog entry ordered by tag.
func (i *Index) TagCatalog() ([]TagCatalogEntry, error) {
	var entries []TagCatalogEntry
	err := i.db.Order("tag asc").Find(&entries).Error
	return entries, err
}

func (i *Index) Close() error {
	return Close(i.db)
}
