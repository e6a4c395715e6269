package repository

import (
	"encoding/json"
	"errors"
	"time"

	"atelier/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MarkdownPageRepository maps MarkdownPage objects onto the markdown_pages
// table in the shared database.
type MarkdownPageRepository struct {
	db *gorm.DB
}

func NewMarkdownPageRepository(db *gorm.DB) *MarkdownPageRepository {
	return &MarkdownPageRepository{db: db}
}

// markdownPageRow is the raw row shape. Frontmatter stays an undecoded string
// here so a malformed value in one row is isolated to that row instead of
// failing the whole query.
type markdownPageRow struct {
	ID          string     `gorm:"column:id"`
	ContentID   *string    `gorm:"column:content_id"`
	Slug        string     `gorm:"column:slug"`
	Frontmatter *string    `gorm:"column:frontmatter"`
	Body        string     `gorm:"column:body"`
	HTMLCache   *string    `gorm:"column:html_cache"`
	Lang        string     `gorm:"column:lang"`
	Status      string     `gorm:"column:status"`
	Version     int        `gorm:"column:version"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (markdownPageRow) TableName() string { return "markdown_pages" }

// mapRowToPage decodes one row. Returns nil when the frontmatter column
// fails to parse, logging the slug, so callers can skip the row.
func mapRowToPage(row *markdownPageRow) *models.MarkdownPage {
	page := &models.MarkdownPage{
		ID:          row.ID,
		ContentID:   row.ContentID,
		Slug:        row.Slug,
		Body:        row.Body,
		HTMLCache:   row.HTMLCache,
		Lang:        row.Lang,
		Status:      models.NormalizePageStatus(row.Status),
		Version:     row.Version,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		PublishedAt: row.PublishedAt,
	}
	if row.Frontmatter != nil && *row.Frontmatter != "" {
		var frontmatter models.JSONMap
		if err := json.Unmarshal([]byte(*row.Frontmatter), &frontmatter); err != nil {
			log.WithError(err).WithField("slug", row.Slug).Warn("skipping markdown page with corrupt frontmatter")
			return nil
		}
		page.Frontmatter = frontmatter
	}
	return page
}

// Save upserts the page by primary key id and bumps its version. Same
// non-destructive discipline as the content upsert: the row is updated in
// place, never deleted and re-created.
func (r *MarkdownPageRepository) Save(page *models.MarkdownPage) error {
	if page.ID == "" {
		return errors.New("markdown page id is required")
	}
	page.Status = models.NormalizePageStatus(page.Status)

	return r.db.Transaction(func(tx *gorm.DB) error {
		var current markdownPageRow
		err := tx.Where("id = ?", page.ID).First(&current).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if page.Version == 0 {
				page.Version = 1
			}
		case err != nil:
			return err
		default:
			page.Version = current.Version + 1
			if page.CreatedAt.IsZero() {
				page.CreatedAt = current.CreatedAt
			}
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(page).Error
	})
}

// Get returns the page by id, or (nil, nil) when absent or corrupt.
func (r *MarkdownPageRepository) Get(id string) (*models.MarkdownPage, error) {
	var row markdownPageRow
	err := r.db.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapRowToPage(&row), nil
}

// FindBySlug returns the page with the given slug, or (nil, nil).
func (r *MarkdownPageRepository) FindBySlug(slug string) (*models.MarkdownPage, error) {
	var row markdownPageRow
	err := r.db.Where("slug = ?", slug).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapRowToPage(&row), nil
}

// List returns pages ordered by slug, optionally filtered by status. Rows
// with corrupt frontmatter are skipped, not fatal.
func (r *MarkdownPageRepository) List(status string) ([]models.MarkdownPage, error) {
	var rows []markdownPageRow
	query := r.db.Order("slug asc")
	if status != "" {
		query = query.Where("status = ?", models.NormalizePageStatus(status))
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	pages := make([]models.MarkdownPage, 0, len(rows))
	for i := range rows {
		if page := mapRowToPage(&rows[i]); page != nil {
			pages = append(pages, *page)
		}
	}
	return pages, nil
}

// Delete removes the page by id.
func (r *MarkdownPageRepository) Delete(id string) error {
	return r.db.Delete(&models.MarkdownPage{}, "id = ?", id).Error
}

// CheckSlugExistsForOtherPage reports whether another page already uses the
// slug.
func (r *MarkdownPageRepository) CheckSlugExistsForOtherPage(slug, id string) (bool, error) {
	var count int64
	err := r.db.Model(&models.MarkdownPage{}).Where("slug = ? AND id != ?", slug, id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
