package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"atelier/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Manager resolves and lazily provisions the physical SQLite files backing
// the content store: one database per content id under <dataDir>/contents,
// plus the shared content.db (markdown pages, settings, search index) and the
// read-only index.db.
type Manager struct {
	dataDir string
}

func NewManager(dataDir string) *Manager {
	if dataDir == "" {
		dataDir = "data"
	}
	return &Manager{dataDir: dataDir}
}

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeID maps a content id to a filesystem-safe token. The mapping is
// deterministic so repeated calls for the same id resolve to the same file.
func SanitizeID(id string) string {
	return unsafePathChars.ReplaceAllString(id, "_")
}

// ContentDBPath returns the physical path for a content id's database file.
func (m *Manager) ContentDBPath(contentID string) string {
	return filepath.Join(m.dataDir, "contents", fmt.Sprintf("content-%s.db", SanitizeID(contentID)))
}

// SharedDBPath returns the path of the shared content.db.
func (m *Manager) SharedDBPath() string {
	return filepath.Join(m.dataDir, "content.db")
}

// IndexDBPath returns the path of the legacy lookup index database.
func (m *Manager) IndexDBPath() string {
	return filepath.Join(m.dataDir, "index.db")
}

// Every dependent table cascades on content deletion only. Updates to the
// contents row must never touch these tables, which is why saves go through
// ON CONFLICT DO UPDATE instead of any replace-style statement.
var contentSchema = []string{
	`CREATE TABLE IF NOT EXISTS contents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		lang TEXT NOT NULL DEFAULT '',
		parent_id TEXT,
		ancestor_ids TEXT,
		path TEXT NOT NULL DEFAULT '',
		depth INTEGER NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		child_count INTEGER NOT NULL DEFAULT 0,
		visibility TEXT NOT NULL DEFAULT 'draft',
		status TEXT NOT NULL DEFAULT 'draft',
		published_at DATETIME,
		unpublished_at DATETIME,
		search_full_text TEXT NOT NULL DEFAULT '',
		search_tokens TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 1,
		version_latest_id TEXT,
		version_previous_id TEXT,
		version_history_ref TEXT,
		permissions TEXT,
		thumbnails TEXT,
		searchable TEXT,
		i18n TEXT,
		seo TEXT,
		cache TEXT,
		private_data TEXT,
		ext TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		last_accessed_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS media (
		id TEXT PRIMARY KEY,
		content_id TEXT NOT NULL,
		filename TEXT NOT NULL DEFAULT '',
		mime_type TEXT NOT NULL DEFAULT '',
		size INTEGER NOT NULL DEFAULT 0,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		alt TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		tags TEXT,
		data BLOB,
		created_at DATETIME,
		updated_at DATETIME,
		FOREIGN KEY (content_id) REFERENCES contents(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_media_content_id ON media(content_id)`,
	`CREATE TABLE IF NOT EXISTS content_tags (
		content_id TEXT NOT NULL,
		tag TEXT NOT NULL,
		PRIMARY KEY (content_id, tag),
		FOREIGN KEY (content_id) REFERENCES contents(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS content_links (
		content_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		href TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		rel TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		is_primary INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (content_id, position),
		FOREIGN KEY (content_id) REFERENCES contents(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS content_relations (
		content_id TEXT NOT NULL,
		related_id TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (content_id, related_id, kind),
		FOREIGN KEY (content_id) REFERENCES contents(id) ON DELETE CASCADE
	)`,
}

func open(path string) (*gorm.DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}

// OpenContent opens (creating and provisioning on first access) the database
// for a content id. The caller owns the handle and must release it with
// Close; prefer WithContent for scoped access.
func (m *Manager) OpenContent(contentID string) (*gorm.DB, error) {
	path := m.ContentDBPath(contentID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create contents directory: %w", err)
	}

	db, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("open content db %s: %w", path, err)
	}

	for _, stmt := range contentSchema {
		if err := db.Exec(stmt).Error; err != nil {
			Close(db)
			return nil, fmt.Errorf("apply content schema: %w", err)
		}
	}
	return db, nil
}

// WithContent runs fn against the content id's database and releases the
// handle on every exit path.
func (m *Manager) WithContent(contentID string, fn func(db *gorm.DB) error) error {
	db, err := m.OpenContent(contentID)
	if err != nil {
		return err
	}
	defer Close(db)
	return fn(db)
}

// OpenShared opens the shared content.db holding markdown pages, settings and
// the cross-content search index.
func (m *Manager) OpenShared() (*gorm.DB, error) {
	if err := os.MkdirAll(m.dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := open(m.SharedDBPath())
	if err != nil {
		return nil, fmt.Errorf("open shared db: %w", err)
	}

	if err := db.AutoMigrate(&models.Setting{}, &models.MarkdownPage{}); err != nil {
		Close(db)
		return nil, fmt.Errorf("migrate shared db: %w", err)
	}

	// Application-level FTS index over every per-content database. Populated
	// by the content service, queried by the admin list; never authoritative.
	ftsTableSQL := `
	CREATE VIRTUAL TABLE IF NOT EXISTS contents_fts USING fts5(
		content_id UNINDEXED,
		title,
		tokens
	);`
	if err := db.Exec(ftsTableSQL).Error; err != nil {
		Close(db)
		return nil, fmt.Errorf("create fts table: %w", err)
	}

	return db, nil
}

// ListContentIDs enumerates the ids of every provisioned per-content
// database by reading the contents row out of each file.
func (m *Manager) ListContentIDs() ([]string, error) {
	pattern := filepath.Join(m.dataDir, "contents", "content-*.db")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(files))
	for _, file := range files {
		db, err := open(file)
		if err != nil {
			return nil, fmt.Errorf("open content db %s: %w", file, err)
		}
		var id string
		err = db.Table("contents").Select("id").Limit(1).Scan(&id).Error
		Close(db)
		if err != nil {
			return nil, fmt.Errorf("read content id from %s: %w", file, err)
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Close releases the underlying connection of a handle obtained from this
// manager.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
