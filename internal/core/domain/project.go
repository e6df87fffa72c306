package domain

import (
	"errors"
	"time"
)

var ErrProjectNotFound = errors.New("project not found")

// Project is a distributable software product owned by one developer. It
// carries the update metadata served to installed clients and owns a pool
// of license keys; deleting a project cascades to its keys and users.
type Project struct {
	ID            int64     `json:"id"`
	AppID         string    `json:"app_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	LatestVersion string    `json:"latest_version,omitempty"`
	DownloadURL   string    `json:"download_url,omitempty"`
	Announcement  string    `json:"announcement,omitempty"`
	ForceUpdate   bool      `json:"force_update"`
	DeveloperID   int64     `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
