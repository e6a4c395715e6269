package repository

import (
	"gorm.io/gorm"
)

// SearchRepository maintains the contents_fts index in the shared database.
// The index is derived data: it is rebuilt from the per-content databases and
// is never authoritative.
type SearchRepository struct {
	db *gorm.DB
}

func NewSearchRepository(db *gorm.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// UpdateIndex replaces the index entry for a content id.
func (r *SearchRepository) UpdateIndex(contentID, title, tokens string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM contents_fts WHERE content_id = ?`, contentID).Error; err != nil {
			return err
		}
		return tx.Exec(`INSERT INTO contents_fts (content_id, title, tokens) VALUES (?, ?, ?)`,
			contentID, title, tokens).Error
	})
}

// DeleteIndex removes the index entry for a content id.
func (r *SearchRepository) DeleteIndex(contentID string) error {
	return r.db.Exec(`DELETE FROM contents_fts WHERE content_id = ?`, contentID).Error
}

// Search returns content ids whose indexed text matches the FTS query, best
// rank first.
func (r *SearchRepository) Search(ftsQuery string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	var ids []string
	err := r.db.Raw(`SELECT content_id FROM contents_fts WHERE contents_fts MATCH ? ORDER BY rank LIMIT ?`,
		ftsQuery, limit).Scan(&ids).Error
	return ids, err
}

// Clear empties the whole index, used before a rebuild.
func (r *SearchRepository) Clear() error {
	return r.db.Exec(`DELETE FROM contents_fts`).Error
}
