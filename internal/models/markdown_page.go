package models

import (
	"strings"
	"time"
)

// Markdown page statuses
const (
	PageStatusDraft     = "draft"
	PageStatusPublished = "published"
	PageStatusArchived  = "archived"
)

// NormalizePageStatus maps a raw status value onto the known set. Anything
// unrecognized, including the empty string, falls back to draft so that a bad
// value can never accidentally publish a page.
func NormalizePageStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case PageStatusPublished:
		return PageStatusPublished
	case PageStatusArchived:
		return PageStatusArchived
	default:
		return PageStatusDraft
	}
}

// MarkdownPage maps a markdown document (frontmatter + body + cached HTML) to
// an optional content id and a site-unique slug.
type MarkdownPage struct {
	ID          string     `gorm:"column:id;primaryKey" json:"id"`
	ContentID   *string    `gorm:"column:content_id" json:"contentId,omitempty"`
	Slug        string     `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Frontmatter JSONMap    `gorm:"column:frontmatter;type:text" json:"frontmatter,omitempty"`
	Body        string     `gorm:"column:body;not null" json:"body"`
	HTMLCache   *string    `gorm:"column:html_cache" json:"htmlCache,omitempty"`
	Lang        string     `gorm:"column:lang" json:"lang"`
	Status      string     `gorm:"column:status" json:"status"`
	Version     int        `gorm:"column:version" json:"version"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"publishedAt,omitempty"`
}

func (MarkdownPage) TableName() string { return "markdown_pages" }

// IsPublished returns true if the page is in published status.
func (p *MarkdownPage) IsPublished() bool {
	return p.Status == PageStatusPublished
}
