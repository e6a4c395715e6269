package repository

import (
	"testing"
	"time"

	"atelier/internal/models"
	"atelier/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openSharedDB(t *testing.T) *gorm.DB {
	t.Helper()
	manager := store.NewManager(t.TempDir())
	db, err := manager.OpenShared()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(db) })
	return db
}

func TestMarkdownPageSaveAndGet(t *testing.T) {
	db := openSharedDB(t)
	repo := NewMarkdownPageRepository(db)

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	page := &models.MarkdownPage{
		ID:          "page-1",
		Slug:        "about",
		Frontmatter: models.JSONMap{"title": "About"},
		Body:        "# About\n\nHello.",
		Status:      "published",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.Save(page))
	assert.Equal(t, 1, page.Version)

	got, err := repo.Get("page-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "about", got.Slug)
	assert.Equal(t, models.JSONMap{"title": "About"}, got.Frontmatter)
	assert.Equal(t, models.PageStatusPublished, got.Status)
}

func TestMarkdownPageSaveBumpsVersion(t *testing.T) {
	db := openSharedDB(t)
	repo := NewMarkdownPageRepository(db)

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	page := &models.MarkdownPage{ID: "page-1", Slug: "about", Body: "v1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Save(page))
	require.Equal(t, 1, page.Version)

	update := &models.MarkdownPage{ID: "page-1", Slug: "about", Body: "v2", UpdatedAt: now.Add(time.Hour)}
	require.NoError(t, repo.Save(update))
	assert.Equal(t, 2, update.Version)
	assert.WithinDuration(t, now, update.CreatedAt, time.Second, "creation time carries over from the stored row")

	got, err := repo.Get("page-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "v2", got.Body)
	assert.Equal(t, 2, got.Version)
}

func TestMarkdownPageSaveNormalizesStatus(t *testing.T) {
	db := openSharedDB(t)
	repo := NewMarkdownPageRepository(db)

	now := time.Now().UTC()
	page := &models.MarkdownPage{ID: "page-1", Slug: "s", Body: "b", Status: "Bogus", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Save(page))
	assert.Equal(t, models.PageStatusDraft, page.Status)
}

func TestMarkdownPageListSkipsCorruptFrontmatter(t *testing.T) {
	db := openSharedDB(t)
	repo := NewMarkdownPageRepository(db)

	now := time.Now().UTC()
	require.NoError(t, repo.Save(&models.MarkdownPage{ID: "ok", Slug: "good", Body: "b", CreatedAt: now, UpdatedAt: now}))

	err := db.Exec(`INSERT INTO markdown_pages (id, slug, frontmatter, body, lang, status, version, created_at, updated_at)
		VALUES ('bad', 'broken', '{not json', 'b', '', 'draft', 1, ?, ?)`, now, now).Error
	require.NoError(t, err)

	pages, err := repo.List("")
	require.NoError(t, err)
	require.Len(t, pages, 1, "the corrupt row is skipped, not fatal")
	assert.Equal(t, "good", pages[0].Slug)

	got, err := repo.Get("bad")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMarkdownPageListFiltersByStatus(t *testing.T) {
	db := openSharedDB(t)
	repo := NewMarkdownPageRepository(db)

	now := time.Now().UTC()
	require.NoError(t, repo.Save(&models.MarkdownPage{ID: "a", Slug: "a", Body: "b", Status: "published", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repo.Save(&models.MarkdownPage{ID: "b", Slug: "b", Body: "b", Status: "draft", CreatedAt: now, UpdatedAt: now}))

	pages, err := repo.List("published")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "a", pages[0].ID)
}

func TestMarkdownPageFindBySlugMissing(t *testing.T) {
	db := openSharedDB(t)
	repo := NewMarkdownPageRepository(db)

	got, err := repo.FindBySlug("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCheckSlugExistsForOtherPage(t *testing.T) {
	db := openSharedDB(t)
	repo := NewMarkdownPageRepository(db)

	now := time.Now().UTC()
	require.NoError(t, repo.Save(&models.MarkdownPage{ID: "a", Slug: "about", Body: "b", CreatedAt: now, UpdatedAt: now}))

	exists, err := repo.CheckSlugExistsForOtherPage("about", "a")
	require.NoError(t, err)
	assert.False(t, exists, "a page does not collide with itself")

	exists, err = repo.CheckSlugExistsForOtherPage("about", "other")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSearchRepository(t *testing.T) {
	db := openSharedDB(t)
	repo := NewSearchRepository(db)

	require.NoError(t, repo.UpdateIndex("c1", "Weather Station", "weather station esp32"))
	require.NoError(t, repo.UpdateIndex("c2", "Recipe Book", "recipe book cooking"))

	ids, err := repo.Search("weather", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids)

	// Re-indexing replaces the previous entry instead of duplicating it.
	require.NoError(t, repo.UpdateIndex("c1", "Weather Station v2", "weather station esp32"))
	ids, err = repo.Search("weather", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids)

	require.NoError(t, repo.DeleteIndex("c1"))
	ids, err = repo.Search("weather", 0)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.Clear())
	ids, err = repo.Search("recipe", 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
