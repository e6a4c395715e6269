package repository

import (
	"errors"
	"fmt"

	"atelier/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentRepository persists a content row and its dependent sets inside one
// per-content database handle.
type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Upsert writes the single contents row for an id without ever making it
// momentarily absent. The dependent tables declare ON DELETE CASCADE, so a
// replace-style statement (delete then insert) would silently wipe every
// media/tag/link/relation row on what the caller meant as a plain update.
func (r *ContentRepository) Upsert(content *models.Content) error {
	if content.ID == "" {
		return errors.New("content id is required")
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(content).Error
}

// Get returns the decoded content row, or (nil, nil) when the id has none.
func (r *ContentRepository) Get(id string) (*models.Content, error) {
	var content models.Content
	err := r.db.First(&content, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// Delete removes the contents row. This is the only path that cascades into
// the dependent tables.
func (r *ContentRepository) Delete(id string) error {
	return r.db.Delete(&models.Content{}, "id = ?", id).Error
}

// ReplaceMedia makes the media rows for a content id exactly equal the given
// set. An empty slice removes every existing row.
func (r *ContentRepository) ReplaceMedia(contentID string, media []models.Media) error {
	if err := r.db.Where("content_id = ?", contentID).Delete(&models.Media{}).Error; err != nil {
		return err
	}
	if len(media) == 0 {
		return nil
	}
	for i := range media {
		media[i].ContentID = contentID
	}
	return r.db.Create(&media).Error
}

// ReplaceTags makes the tag rows for a content id exactly equal the given
// set. Tags have set semantics; no order is defined.
func (r *ContentRepository) ReplaceTags(contentID string, tags []models.ContentTag) error {
	if err := r.db.Where("content_id = ?", contentID).Delete(&models.ContentTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	for i := range tags {
		tags[i].ContentID = contentID
	}
	return r.db.Create(&tags).Error
}

// ReplaceLinks makes the link rows for a content id exactly equal the given
// set, preserving the caller's ordering via the position column.
func (r *ContentRepository) ReplaceLinks(contentID string, links []models.ContentLink) error {
	if err := r.db.Where("content_id = ?", contentID).Delete(&models.ContentLink{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	for i := range links {
		links[i].ContentID = contentID
		links[i].Position = i
	}
	return r.db.Create(&links).Error
}

// ReplaceRelations makes the relation rows for a content id exactly equal the
// given set.
func (r *ContentRepository) ReplaceRelations(contentID string, relations []models.ContentRelation) error {
	if err := r.db.Where("content_id = ?", contentID).Delete(&models.ContentRelation{}).Error; err != nil {
		return err
	}
	if len(relations) == 0 {
		return nil
	}
	for i := range relations {
		relations[i].ContentID = contentID
	}
	return r.db.Create(&relations).Error
}

// SaveFull upserts the content row and replaces all four dependent sets in a
// single transaction. Readers observe either the fully-old or fully-new
// state; any failure rolls the whole save back.
func (r *ContentRepository) SaveFull(full *models.FullContent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := NewContentRepository(tx)
		if err := txRepo.Upsert(&full.Content); err != nil {
			return fmt.Errorf("upsert content %q: %w", full.Content.ID, err)
		}
		id := full.Content.ID
		if err := txRepo.ReplaceMedia(id, full.Media); err != nil {
			return fmt.Errorf("replace media for %q: %w", id, err)
		}
		if err := txRepo.ReplaceTags(id, full.Tags); err != nil {
			return fmt.Errorf("replace tags for %q: %w", id, err)
		}
		if err := txRepo.ReplaceLinks(id, full.Links); err != nil {
			return fmt.Errorf("replace links for %q: %w", id, err)
		}
		if err := txRepo.ReplaceRelations(id, full.Relations); err != nil {
			return fmt.Errorf("replace relations for %q: %w", id, err)
		}
		return nil
	})
}

// GetFull loads the content row and every dependent set, or (nil, nil) when
// the id has no row.
func (r *ContentRepository) GetFull(id string) (*models.FullContent, error) {
	content, err := r.Get(id)
	if err != nil || content == nil {
		return nil, err
	}

	full := &models.FullContent{Content: *content}
	if err := r.db.Where("content_id = ?", id).Order("id asc").Find(&full.Media).Error; err != nil {
		return nil, err
	}
	if err := r.db.Where("content_id = ?", id).Order("tag asc").Find(&full.Tags).Error; err != nil {
		return nil, err
	}
	if err := r.db.Where("content_id = ?", id).Order("position asc").Find(&full.Links).Error; err != nil {
		return nil, err
	}
	if err := r.db.Where("content_id = ?", id).Order("related_id asc, kind asc").Find(&full.Relations).Error; err != nil {
		return nil, err
	}
	return full, nil
}

// CountMedia reports how many media rows a content id currently owns.
func (r *ContentRepository) CountMedia(contentID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Media{}).Where("content_id = ?", contentID).Count(&count).Error
	return count, err
}
