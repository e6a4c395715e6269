package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"atelier/internal/models"
	"atelier/internal/repository"
	"atelier/internal/store"
	"atelier/internal/utils"
	"atelier/internal/utils/tokenizer"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ContentService orchestrates full-content saves across the per-content
// databases and keeps the shared search index in step.
type ContentService struct {
	manager    *store.Manager
	searchRepo *repository.SearchRepository
	tokenizer  *tokenizer.Tokenizer
}

func NewContentService(manager *store.Manager, searchRepo *repository.SearchRepository, tok *tokenizer.Tokenizer) *ContentService {
	return &ContentService{
		manager:    manager,
		searchRepo: searchRepo,
		tokenizer:  tok,
	}
}

// SaveFull persists a content bundle. Missing bookkeeping fields are filled
// in (media ids, timestamps, derived search fields) before the transactional
// save; the search index update afterwards is best-effort, as the per-content
// database is the source of truth.
func (s *ContentService) SaveFull(full *models.FullContent) error {
	content := &full.Content
	if content.ID == "" {
		return errors.New("content id is required")
	}

	now := time.Now().UTC()
	if content.UpdatedAt.IsZero() {
		content.UpdatedAt = now
	}
	if content.CreatedAt.IsZero() {
		content.CreatedAt = content.UpdatedAt
	}
	if content.Version == 0 {
		content.Version = 1
	}
	if content.Status == "" {
		content.Status = models.ContentStatusDraft
	}
	if content.Visibility == "" {
		content.Visibility = models.VisibilityDraft
	}

	for i := range full.Media {
		if full.Media[i].ID == "" {
			full.Media[i].ID = uuid.NewString()
		}
		if full.Media[i].CreatedAt.IsZero() {
			full.Media[i].CreatedAt = content.UpdatedAt
		}
		if full.Media[i].UpdatedAt.IsZero() {
			full.Media[i].UpdatedAt = content.UpdatedAt
		}
	}

	s.deriveSearchFields(content)
	s.applyDateOverride(content)

	err := s.manager.WithContent(content.ID, func(db *gorm.DB) error {
		return repository.NewContentRepository(db).SaveFull(full)
	})
	if err != nil {
		return err
	}

	if err := s.searchRepo.UpdateIndex(content.ID, content.Title, content.SearchTokens); err != nil {
		log.WithError(err).WithField("content_id", content.ID).Warn("failed to update search index")
	}
	return nil
}

// deriveSearchFields fills search_full_text and search_tokens when the
// caller left them empty.
func (s *ContentService) deriveSearchFields(content *models.Content) {
	if content.SearchFullText == "" {
		parts := []string{content.Title, utils.PlainText(content.Summary)}
		content.SearchFullText = strings.TrimSpace(strings.Join(parts, " "))
	}
	if content.SearchTokens == "" {
		content.SearchTokens = s.tokenizer.TokenizeForIndex(content.SearchFullText)
	}
}

// applyDateOverride consults the legacy lookup index for a manually pinned
// publish date. Missing index or missing entry are both fine.
func (s *ContentService) applyDateOverride(content *models.Content) {
	if content.PublishedAt != nil {
		return
	}
	idx, err := s.manager.OpenIndex()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("failed to open lookup index")
		}
		return
	}
	defer idx.Close()

	override, err := idx.DateOverride(content.ID)
	if err != nil {
		log.WithError(err).WithField("content_id", content.ID).Warn("failed to read date override")
		return
	}
	if override != nil {
		content.PublishedAt = override
	}
}

// Get returns the decoded content row, or nil when the id has none.
func (s *ContentService) Get(id string) (*models.Content, error) {
	var content *models.Content
	err := s.manager.WithContent(id, func(db *gorm.DB) error {
		var err error
		content, err = repository.NewContentRepository(db).Get(id)
		return err
	})
	return content, err
}

// GetFull returns the content row with all dependent sets, or nil.
func (s *ContentService) GetFull(id string) (*models.FullContent, error) {
	var full *models.FullContent
	err := s.manager.WithContent(id, func(db *gorm.DB) error {
		var err error
		full, err = repository.NewContentRepository(db).GetFull(id)
		return err
	})
	return full, err
}

// Delete removes the content row (cascading into its dependent tables),
// drops the search index entry and unlinks the physical database file.
func (s *ContentService) Delete(id string) error {
	err := s.manager.WithContent(id, func(db *gorm.DB) error {
		return repository.NewContentRepository(db).Delete(id)
	})
	if err != nil {
		return err
	}

	if err := s.searchRepo.DeleteIndex(id); err != nil {
		log.WithError(err).WithField("content_id", id).Warn("failed to drop search index entry")
	}
	if err := os.Remove(s.manager.ContentDBPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove content db file: %w", err)
	}
	return nil
}

// List returns one page of content rows, newest update first. A non-empty
// query restricts the result to FTS matches.
func (s *ContentService) List(page, pageSize int, query string) ([]models.Content, int, error) {
	var ids []string
	var err error
	if query != "" {
		ids, err = s.searchRepo.Search(s.tokenizer.TokenizeForQuery(query), 0)
	} else {
		ids, err = s.manager.ListContentIDs()
	}
	if err != nil {
		return nil, 0, err
	}

	contents := make([]models.Content, 0, len(ids))
	for _, id := range ids {
		content, err := s.Get(id)
		if err != nil {
			return nil, 0, err
		}
		if content != nil {
			contents = append(contents, *content)
		}
	}

	sort.Slice(contents, func(i, j int) bool {
		return contents[i].UpdatedAt.After(contents[j].UpdatedAt)
	})

	total := len(contents)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []models.Content{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return contents[start:end], total, nil
}

// ExportAll reads every content bundle, ordered by id, for backups.
func (s *ContentService) ExportAll() ([]models.FullContent, error) {
	ids, err := s.manager.ListContentIDs()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	bundles := make([]models.FullContent, 0, len(ids))
	for _, id := range ids {
		full, err := s.GetFull(id)
		if err != nil {
			return nil, fmt.Errorf("export content %q: %w", id, err)
		}
		if full != nil {
			bundles = append(bundles, *full)
		}
	}
	return bundles, nil
}

// RebuildSearchIndex re-derives the whole contents_fts index from the
// per-content databases.
func (s *ContentService) RebuildSearchIndex() error {
	ids, err := s.manager.ListContentIDs()
	if err != nil {
		return err
	}
	if err := s.searchRepo.Clear(); err != nil {
		return err
	}
	for _, id := range ids {
		content, err := s.Get(id)
		if err != nil {
			return err
		}
		if content == nil {
			continue
		}
		tokens := content.SearchTokens
		if tokens == "" {
			tokens = s.tokenizer.TokenizeForIndex(content.SearchFullText)
		}
		if err := s.searchRepo.UpdateIndex(id, content.Title, tokens); err != nil {
			return err
		}
	}
	return nil
}

// TagCatalog lists the site-wide tag catalog out of the lookup index. An
// absent index yields an empty catalog.
func (s *ContentService) TagCatalog() ([]store.TagCatalogEntry, error) {
	idx, err := s.manager.OpenIndex()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []store.TagCatalogEntry{}, nil
		}
		return nil, err
	}
	defer idx.Close()
	return idx.TagCatalog()
}
