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

func openContentDB(t *testing.T, id string) *gorm.DB {
	t.Helper()
	manager := store.NewManager(t.TempDir())
	db, err := manager.OpenContent(id)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(db) })
	return db
}

func exampleBundle(updatedAt time.Time) *models.FullContent {
	return &models.FullContent{
		Content: models.Content{
			ID:         "example",
			Title:      "Example",
			Summary:    "An example project",
			Status:     models.ContentStatusDraft,
			Visibility: models.VisibilityDraft,
			Version:    1,
			CreatedAt:  updatedAt,
			UpdatedAt:  updatedAt,
		},
		Media: []models.Media{
			{ID: "media_1", Filename: "cover.webp", MimeType: "image/webp", Size: 1024, CreatedAt: updatedAt, UpdatedAt: updatedAt},
		},
		Tags: []models.ContentTag{
			{Tag: "go"},
			{Tag: "sqlite"},
		},
		Links: []models.ContentLink{
			{Href: "https://example.com", Label: "Site", Primary: true},
			{Href: "https://example.com/docs", Label: "Docs"},
		},
		Relations: []models.ContentRelation{
			{RelatedID: "other", Kind: "see-also"},
		},
	}
}

func TestSaveFullRoundTrip(t *testing.T) {
	db := openContentDB(t, "example")
	repo := NewContentRepository(db)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bundle := exampleBundle(now)
	bundle.Content.Thumbnails = models.ThumbnailSet{"image": {Src: "/m/cover.webp"}}
	bundle.Content.Ext = models.JSONMap{"stars": float64(42)}
	bundle.Content.Permissions = &models.Permissions{Owner: "me"}
	require.NoError(t, repo.SaveFull(bundle))

	got, err := repo.GetFull("example")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Example", got.Content.Title)
	assert.Equal(t, models.ThumbnailSet{"image": {Src: "/m/cover.webp"}}, got.Content.Thumbnails)
	assert.Equal(t, models.JSONMap{"stars": float64(42)}, got.Content.Ext)
	require.NotNil(t, got.Content.Permissions)
	assert.Equal(t, "me", got.Content.Permissions.Owner)
	assert.WithinDuration(t, now, got.Content.UpdatedAt, time.Second)

	require.Len(t, got.Media, 1)
	assert.Equal(t, "media_1", got.Media[0].ID)
	assert.Equal(t, "example", got.Media[0].ContentID)
	assert.ElementsMatch(t, []models.ContentTag{
		{ContentID: "example", Tag: "go"},
		{ContentID: "example", Tag: "sqlite"},
	}, got.Tags)
	require.Len(t, got.Relations, 1)
	assert.Equal(t, "see-also", got.Relations[0].Kind)
}

// An update to the contents row must reach storage as ON CONFLICT DO UPDATE.
// A replace-style write would delete the row first and the cascading foreign
// keys would silently wipe every dependent row.
func TestUpsertPreservesDependents(t *testing.T) {
	db := openContentDB(t, "example")
	repo := NewContentRepository(db)

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveFull(exampleBundle(created)))

	updated := exampleBundle(created).Content
	updated.Title = "Example Updated"
	updated.UpdatedAt = created.Add(time.Hour)
	require.NoError(t, repo.Upsert(&updated))

	count, err := repo.CountMedia("example")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "row update must not cascade into media")

	got, err := repo.GetFull("example")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Example Updated", got.Content.Title)
	require.Len(t, got.Media, 1)
	assert.Equal(t, "media_1", got.Media[0].ID)
	assert.Len(t, got.Tags, 2)
	assert.Len(t, got.Links, 2)
	assert.Len(t, got.Relations, 1)
}

func TestSaveFullReplacesDependentsExactly(t *testing.T) {
	db := openContentDB(t, "example")
	repo := NewContentRepository(db)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveFull(exampleBundle(now)))

	next := exampleBundle(now)
	next.Media = []models.Media{
		{ID: "media_2", Filename: "new.webp", CreatedAt: now, UpdatedAt: now},
		{ID: "media_3", Filename: "extra.webp", CreatedAt: now, UpdatedAt: now},
	}
	next.Tags = []models.ContentTag{{Tag: "portfolio"}}
	next.Links = nil
	require.NoError(t, repo.SaveFull(next))

	got, err := repo.GetFull("example")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Media, 2)
	assert.ElementsMatch(t, []string{"media_2", "media_3"}, []string{got.Media[0].ID, got.Media[1].ID})
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "portfolio", got.Tags[0].Tag)
	assert.Empty(t, got.Links)
	require.Len(t, got.Relations, 1)
}

func TestSaveFullEmptySetsClearDependents(t *testing.T) {
	db := openContentDB(t, "example")
	repo := NewContentRepository(db)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveFull(exampleBundle(now)))

	bare := &models.FullContent{Content: exampleBundle(now).Content}
	require.NoError(t, repo.SaveFull(bare))

	got, err := repo.GetFull("example")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Example", got.Content.Title, "the row itself survives")
	assert.Empty(t, got.Media)
	assert.Empty(t, got.Tags)
	assert.Empty(t, got.Links)
	assert.Empty(t, got.Relations)
}

func TestSaveFullRollsBackOnFailure(t *testing.T) {
	db := openContentDB(t, "example")
	repo := NewContentRepository(db)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveFull(exampleBundle(now)))

	// Duplicate tags violate the (content_id, tag) primary key partway
	// through the save; everything written before the failure must roll back.
	bad := exampleBundle(now)
	bad.Content.Title = "Should Not Stick"
	bad.Media = []models.Media{{ID: "media_9", CreatedAt: now, UpdatedAt: now}}
	bad.Tags = []models.ContentTag{{Tag: "dup"}, {Tag: "dup"}}
	require.Error(t, repo.SaveFull(bad))

	got, err := repo.GetFull("example")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Example", got.Content.Title)
	require.Len(t, got.Media, 1)
	assert.Equal(t, "media_1", got.Media[0].ID)
	require.Len(t, got.Tags, 2)
	assert.ElementsMatch(t, []string{"go", "sqlite"}, []string{got.Tags[0].Tag, got.Tags[1].Tag})
}

func TestLinksKeepCallerOrder(t *testing.T) {
	db := openContentDB(t, "example")
	repo := NewContentRepository(db)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bundle := exampleBundle(now)
	bundle.Links = []models.ContentLink{
		{Href: "https://c.example"},
		{Href: "https://a.example"},
		{Href: "https://b.example"},
	}
	require.NoError(t, repo.SaveFull(bundle))

	got, err := repo.GetFull("example")
	require.NoError(t, err)
	require.Len(t, got.Links, 3)
	assert.Equal(t, "https://c.example", got.Links[0].Href)
	assert.Equal(t, "https://a.example", got.Links[1].Href)
	assert.Equal(t, "https://b.example", got.Links[2].Href)
	assert.Equal(t, []int{0, 1, 2}, []int{got.Links[0].Position, got.Links[1].Position, got.Links[2].Position})
}

func TestGetMissingReturnsNil(t *testing.T) {
	db := openContentDB(t, "example")
	repo := NewContentRepository(db)

	content, err := repo.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, content)

	full, err := repo.GetFull("nope")
	require.NoError(t, err)
	assert.Nil(t, full)
}

func TestDeleteCascades(t *testing.T) {
	db := openContentDB(t, "example")
	repo := NewContentRepository(db)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveFull(exampleBundle(now)))
	require.NoError(t, repo.Delete("example"))

	count, err := repo.CountMedia("example")
	require.NoError(t, err)
	assert.Zero(t, count)

	var tagCount int64
	require.NoError(t, db.Model(&models.ContentTag{}).Where("content_id = ?", "example").Count(&tagCount).Error)
	assert.Zero(t, tagCount)
}

func TestUpsertRequiresID(t *testing.T) {
	db := openContentDB(t, "example")
	repo := NewContentRepository(db)

	err := repo.Upsert(&models.Content{Title: "no id"})
	assert.Error(t, err)
}
