package models

import "time"

// Content statuses
const (
	ContentStatusDraft     = "draft"
	ContentStatusPublished = "published"
	ContentStatusArchived  = "archived"
)

// Content visibilities
const (
	VisibilityDraft  = "draft"
	VisibilityPublic = "public"
)

// Content is the single row stored per content item (a portfolio entry, an
// article, a tool page). Nested objects live in JSON text columns; the
// hierarchy fields (ParentID, AncestorIDs, Path, Depth) and the version-chain
// pointers are stored and returned verbatim but never interpreted here.
//
// Timestamps are caller-supplied so migration scripts can backdate rows and
// tests stay deterministic; gorm's automatic tracking is switched off.
type Content struct {
	ID      string `gorm:"column:id;primaryKey" json:"id"`
	Title   string `gorm:"column:title;not null" json:"title"`
	Summary string `gorm:"column:summary" json:"summary"`
	Lang    string `gorm:"column:lang" json:"lang"`

	ParentID    *string    `gorm:"column:parent_id" json:"parentId,omitempty"`
	AncestorIDs StringList `gorm:"column:ancestor_ids;type:text" json:"ancestorIds,omitempty"`
	Path        string     `gorm:"column:path" json:"path"`
	Depth       int        `gorm:"column:depth" json:"depth"`
	SortOrder   int        `gorm:"column:sort_order" json:"order"`
	ChildCount  int        `gorm:"column:child_count" json:"childCount"`

	Visibility    string     `gorm:"column:visibility" json:"visibility"`
	Status        string     `gorm:"column:status" json:"status"`
	PublishedAt   *time.Time `gorm:"column:published_at" json:"publishedAt,omitempty"`
	UnpublishedAt *time.Time `gorm:"column:unpublished_at" json:"unpublishedAt,omitempty"`

	SearchFullText string `gorm:"column:search_full_text" json:"searchFullText"`
	SearchTokens   string `gorm:"column:search_tokens" json:"searchTokens"`

	Version           int     `gorm:"column:version" json:"version"`
	VersionLatestID   *string `gorm:"column:version_latest_id" json:"versionLatestId,omitempty"`
	VersionPreviousID *string `gorm:"column:version_previous_id" json:"versionPreviousId,omitempty"`
	VersionHistoryRef *string `gorm:"column:version_history_ref" json:"versionHistoryRef,omitempty"`

	Permissions *Permissions `gorm:"column:permissions;type:text" json:"permissions,omitempty"`
	Thumbnails  ThumbnailSet `gorm:"column:thumbnails;type:text" json:"thumbnails,omitempty"`
	Searchable  JSONMap      `gorm:"column:searchable;type:text" json:"searchable,omitempty"`
	I18n        JSONMap      `gorm:"column:i18n;type:text" json:"i18n,omitempty"`
	SEO         JSONMap      `gorm:"column:seo;type:text" json:"seo,omitempty"`
	Cache       JSONMap      `gorm:"column:cache;type:text" json:"cache,omitempty"`
	PrivateData JSONMap      `gorm:"column:private_data;type:text" json:"privateData,omitempty"`
	Ext         JSONMap      `gorm:"column:ext;type:text" json:"ext,omitempty"`

	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
	LastAccessedAt *time.Time `gorm:"column:last_accessed_at" json:"lastAccessedAt,omitempty"`
}

func (Content) TableName() string { return "contents" }

// Media is a binary/metadata row owned by exactly one content item. The
// content_id foreign key cascades on content deletion only.
type Media struct {
	ID          string     `gorm:"column:id;primaryKey" json:"id"`
	ContentID   string     `gorm:"column:content_id;not null;index" json:"contentId"`
	Filename    string     `gorm:"column:filename" json:"filename"`
	MimeType    string     `gorm:"column:mime_type" json:"mimeType"`
	Size        int64      `gorm:"column:size" json:"size"`
	Width       int        `gorm:"column:width" json:"width"`
	Height      int        `gorm:"column:height" json:"height"`
	Alt         string     `gorm:"column:alt" json:"alt"`
	Description string     `gorm:"column:description" json:"description"`
	Tags        StringList `gorm:"column:tags;type:text" json:"tags,omitempty"`
	Data        []byte     `gorm:"column:data" json:"data,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
}

func (Media) TableName() string { return "media" }

// ContentTag is one tag on a content item, unique per (content_id, tag).
type ContentTag struct {
	ContentID string `gorm:"column:content_id;primaryKey" json:"contentId"`
	Tag       string `gorm:"column:tag;primaryKey" json:"tag"`
}

func (ContentTag) TableName() string { return "content_tags" }

// ContentLink is an outbound link. Links are displayed in the order given by
// the caller; Position is stamped from the slice index on save.
type ContentLink struct {
	ContentID   string `gorm:"column:content_id;primaryKey" json:"contentId"`
	Position    int    `gorm:"column:position;primaryKey" json:"position"`
	Href        string `gorm:"column:href;not null" json:"href"`
	Label       string `gorm:"column:label" json:"label,omitempty"`
	Rel         string `gorm:"column:rel" json:"rel,omitempty"`
	Description string `gorm:"column:description" json:"description,omitempty"`
	Primary     bool   `gorm:"column:is_primary" json:"primary,omitempty"`
}

func (ContentLink) TableName() string { return "content_links" }

// ContentRelation is a typed edge between two content items.
type ContentRelation struct {
	ContentID string `gorm:"column:content_id;primaryKey" json:"contentId"`
	RelatedID string `gorm:"column:related_id;primaryKey" json:"relatedId"`
	Kind      string `gorm:"column:kind;primaryKey" json:"kind"`
}

func (ContentRelation) TableName() string { return "content_relations" }

// FullContent bundles a content row with the complete dependent sets the
// caller wants persisted. Saving replaces each dependent set wholesale; an
// empty (non-nil or nil) slice means "this content now has none".
type FullContent struct {
	Content   Content           `json:"content"`
	Media     []Media           `json:"media"`
	Tags      []ContentTag      `json:"tags"`
	Links     []ContentLink     `json:"links"`
	Relations []ContentRelation `json:"relations"`
}
