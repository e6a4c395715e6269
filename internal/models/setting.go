package models

import "gorm.io/gorm"

// Setting stores site-level key/value settings in the shared database.
type Setting struct {
	gorm.Model
	Key   string `gorm:"type:varchar(255);uniqueIndex"`
	Value string `gorm:"type:text"`
}

// SiteBackup is the JSON document written into backup archives.
type SiteBackup struct {
	Contents []FullContent     `json:"contents"`
	Pages    []MarkdownPage    `json:"pages"`
	Settings map[string]string `json:"settings"`
}
