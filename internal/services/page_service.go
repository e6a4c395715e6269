package services

import (
	"fmt"
	"time"

	"atelier/internal/models"
	"atelier/internal/repository"
	"atelier/internal/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// PageService manages markdown pages: slug assignment, HTML cache rendering
// and the version-bumping save path.
type PageService struct {
	repo *repository.MarkdownPageRepository
}

func NewPageService(repo *repository.MarkdownPageRepository) *PageService {
	return &PageService{repo: repo}
}

// SavePage fills in bookkeeping fields, renders the HTML cache and upserts
// the page. The stored version is bumped by the repository on every save.
func (s *PageService) SavePage(page *models.MarkdownPage) (*models.MarkdownPage, error) {
	if page.ID == "" {
		page.ID = uuid.NewString()
	}

	if page.Slug == "" {
		title := page.ID
		if raw, ok := page.Frontmatter["title"].(string); ok && raw != "" {
			title = raw
		}
		uniqueSlug, err := s.generateUniqueSlug(title, page.ID)
		if err != nil {
			return nil, err
		}
		page.Slug = uniqueSlug
	}

	rendered, err := utils.RenderMarkdown(page.Body)
	if err != nil {
		return nil, fmt.Errorf("render markdown for %q: %w", page.Slug, err)
	}
	page.HTMLCache = &rendered

	now := time.Now().UTC()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	if page.UpdatedAt.IsZero() {
		page.UpdatedAt = now
	}
	page.Status = models.NormalizePageStatus(page.Status)
	if page.Status == models.PageStatusPublished && page.PublishedAt == nil {
		page.PublishedAt = &now
	}

	if err := s.repo.Save(page); err != nil {
		return nil, err
	}
	return page, nil
}

// generateUniqueSlug appends a counter until the slug is free of collisions
// with other pages.
func (s *PageService) generateUniqueSlug(title, pageID string) (string, error) {
	baseSlug := slug.Make(title)
	if baseSlug == "" {
		baseSlug = "untitled"
	}
	finalSlug := baseSlug
	counter := 1
	for {
		exists, err := s.repo.CheckSlugExistsForOtherPage(finalSlug, pageID)
		if err != nil {
			return "", err
		}
		if !exists {
			return finalSlug, nil
		}
		finalSlug = fmt.Sprintf("%s-%d", baseSlug, counter)
		counter++
	}
}

// GetPage returns a page by id, or nil.
func (s *PageService) GetPage(id string) (*models.MarkdownPage, error) {
	return s.repo.Get(id)
}

// GetPageBySlug returns a page by slug, or nil.
func (s *PageService) GetPageBySlug(slug string) (*models.MarkdownPage, error) {
	return s.repo.FindBySlug(slug)
}

// ListPages returns pages, optionally filtered by status.
func (s *PageService) ListPages(status string) ([]models.MarkdownPage, error) {
	return s.repo.List(status)
}

// DeletePage removes a page by id.
func (s *PageService) DeletePage(id string) error {
	return s.repo.Delete(id)
}
