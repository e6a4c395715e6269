package store

import (
	"os"
	"path/filepath"
	"testing"

	"atelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSanitizeID(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"example", "example"},
		{"my-project_2024", "my-project_2024"},
		{"a/b\\c", "a_b_c"},
		{"../../etc/passwd", "______etc_passwd"},
		{"日本語", "___"},
		{"x y:z", "x_y_z"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SanitizeID(c.id), "id=%q", c.id)
	}
}

func TestSanitizeIDDeterministic(t *testing.T) {
	assert.Equal(t, SanitizeID("a/b"), SanitizeID("a/b"))
}

func TestContentDBPath(t *testing.T) {
	m := NewManager("data")
	assert.Equal(t, filepath.Join("data", "contents", "content-a_b.db"), m.ContentDBPath("a/b"))
}

func TestOpenContentProvisionsSchema(t *testing.T) {
	m := NewManager(t.TempDir())

	db, err := m.OpenContent("example")
	require.NoError(t, err)
	defer Close(db)

	for _, table := range []string{"contents", "media", "content_tags", "content_links", "content_relations"} {
		var count int64
		err := db.Raw(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count).Error
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "table %s missing", table)
	}

	_, err = os.Stat(m.ContentDBPath("example"))
	assert.NoError(t, err, "database file should exist on disk")
}

func TestOpenContentIdempotent(t *testing.T) {
	m := NewManager(t.TempDir())

	for i := 0; i < 2; i++ {
		db, err := m.OpenContent("twice")
		require.NoError(t, err)
		require.NoError(t, Close(db))
	}
}

func TestWithContentReleasesHandle(t *testing.T) {
	m := NewManager(t.TempDir())

	err := m.WithContent("scoped", func(db *gorm.DB) error {
		return db.Exec(`INSERT INTO contents (id, title, created_at, updated_at) VALUES ('scoped', 't', datetime('now'), datetime('now'))`).Error
	})
	require.NoError(t, err)

	// The file must be reopenable after the scoped call returns.
	err = m.WithContent("scoped", func(db *gorm.DB) error {
		var title string
		return db.Raw(`SELECT title FROM contents WHERE id = 'scoped'`).Scan(&title).Error
	})
	require.NoError(t, err)
}

func TestOpenSharedCreatesTables(t *testing.T) {
	m := NewManager(t.TempDir())

	db, err := m.OpenShared()
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.Create(&models.Setting{Key: "site_title", Value: "Atelier"}).Error)

	var count int64
	err = db.Raw(`SELECT count(*) FROM sqlite_master WHERE name = 'contents_fts'`).Scan(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListContentIDs(t *testing.T) {
	m := NewManager(t.TempDir())

	for _, id := range []string{"beta", "alpha"} {
		err := m.WithContent(id, func(db *gorm.DB) error {
			return db.Exec(`INSERT INTO contents (id, title, created_at, updated_at) VALUES (?, ?, datetime('now'), datetime('now'))`, id, id).Error
		})
		require.NoError(t, err)
	}

	// A provisioned but empty database contributes no id.
	db, err := m.OpenContent("empty")
	require.NoError(t, err)
	require.NoError(t, Close(db))

	ids, err := m.ListContentIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, ids)
}

func TestOpenIndexMissing(t *testing.T) {
	m := NewManager(t.TempDir())

	_, err := m.OpenIndex()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
