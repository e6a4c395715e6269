package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// JSON column types for the content row. Absent values encode as SQL NULL,
// never as the literal string "null". Corrupt stored JSON must not fail the
// row: Scan logs a warning and leaves the field empty instead of returning
// an error, so one bad column cannot abort a whole query.

type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return string(data), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	raw, ok := rawJSON(value)
	if !ok {
		*m = nil
		return nil
	}
	var decoded JSONMap
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.WithError(err).Warnf("dropping corrupt json object column: %.80s", raw)
		*m = nil
		return nil
	}
	*m = decoded
	return nil
}

type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	raw, ok := rawJSON(value)
	if !ok {
		*l = nil
		return nil
	}
	var decoded StringList
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.WithError(err).Warnf("dropping corrupt json list column: %.80s", raw)
		*l = nil
		return nil
	}
	*l = decoded
	return nil
}

// Permissions controls who may read and edit a content item.
type Permissions struct {
	Readers []string `json:"readers,omitempty"`
	Editors []string `json:"editors,omitempty"`
	Owner   string   `json:"owner,omitempty"`
}

func (p Permissions) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode permissions column: %w", err)
	}
	return string(data), nil
}

func (p *Permissions) Scan(value interface{}) error {
	raw, ok := rawJSON(value)
	if !ok {
		*p = Permissions{}
		return nil
	}
	var decoded Permissions
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.WithError(err).Warnf("dropping corrupt permissions column: %.80s", raw)
		*p = Permissions{}
		return nil
	}
	*p = decoded
	return nil
}

// Thumbnail points at a media URL; Poster is only set for video kinds.
type Thumbnail struct {
	Src    string `json:"src"`
	Poster string `json:"poster,omitempty"`
}

// ThumbnailSet is keyed by kind (image, gif, webm).
type ThumbnailSet map[string]Thumbnail

func (t ThumbnailSet) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode thumbnails column: %w", err)
	}
	return string(data), nil
}

func (t *ThumbnailSet) Scan(value interface{}) error {
	raw, ok := rawJSON(value)
	if !ok {
		*t = nil
		return nil
	}
	var decoded ThumbnailSet
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.WithError(err).Warnf("dropping corrupt thumbnails column: %.80s", raw)
		*t = nil
		return nil
	}
	*t = decoded
	return nil
}

// rawJSON normalizes a driver value to JSON bytes. NULL and empty strings
// report ok=false so callers can reset the target field.
func rawJSON(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []byte:
		if len(v) == 0 {
			return nil, false
		}
		return v, true
	case string:
		if v == "" {
			return nil, false
		}
		return []byte(v), true
	default:
		log.Warnf("unexpected driver type %T for json column", value)
		return nil, false
	}
}
