package handler

import (
	"time"

	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

type createLicensesRequest struct {
	ProjectID     int64  `json:"project_id"     validate:"required,gt=0"`
	Quantity      int    `json:"quantity"       validate:"required,gt=0,max=1000"`
	DurationValue int    `json:"duration_value" validate:"required,gt=0"`
	DurationUnit  string `json:"duration_unit"  validate:"required,oneof=minutes hours days months"`
	Notes         string `json:"notes"`
}

type editLicenseRequest struct {
	DurationValue int    `json:"duration_value" validate:"required,gt=0"`
	DurationUnit  string `json:"duration_unit"  validate:"required,oneof=minutes hours days months"`
	Notes         string `json:"notes"`
	IsActive      bool   `json:"is_active"`
	IsBanned      bool   `json:"is_banned"`
}

type batchActionRequest struct {
	Action string  `json:"action" validate:"required,oneof=activate deactivate ban unban delete"`
	IDs    []int64 `json:"ids"    validate:"required,min=1"`
}

type batchActionResponse struct {
	Applied int `json:"applied"`
}

type licenseDetailResponse struct {
	ID              int64      `json:"id"`
	Key             string     `json:"key"`
	ProjectID       int64      `json:"project_id"`
	ProjectName     string     `json:"project_name,omitempty"`
	Status          string     `json:"status"`
	DurationMinutes int        `json:"duration_minutes"`
	IsActive        bool       `json:"is_active"`
	IsBanned        bool       `json:"is_banned"`
	ActivationTime  *time.Time `json:"activation_time,omitempty"`
	ExpiryTime      *time.Time `json:"expiry_time,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type activateLicenseRequest struct {
	AppID  string `json:"app_id" validate:"required"`
	Key    string `json:"key"    validate:"required"`
	Source string `json:"source"`
}

type activateLicenseResponse struct {
	Status          string    `json:"status"`
	DurationMinutes int       `json:"duration_minutes"`
	ExpiryTime      time.Time `json:"expiry_time"`
	ProjectName     string    `json:"project_name"`
}

type ownedKeyRequest struct {
	AppID string `json:"app_id" validate:"required"`
	DevID string `json:"dev_id" validate:"required"`
	Key   string `json:"key"    validate:"required"`
}

type licenseStatusResponse struct {
	Key    string `json:"key"`
	Status string `json:"status"`
}

// toLicenseDetail maps the service view to the wire shape.
func toLicenseDetail(d ports.LicenseDetail) licenseDetailResponse {
	return licenseDetailResponse{
		ID:              d.License.ID,
		Key:             d.License.Key,
		ProjectID:       d.License.ProjectID,
		ProjectName:     d.ProjectName,
		Status:          string(d.Status),
		DurationMinutes: d.License.DurationMinutes,
		IsActive:        d.License.IsActive,
		IsBanned:        d.License.IsBanned,
		ActivationTime:  d.License.ActivationTime,
		ExpiryTime:      d.License.ExpiryTime,
		Notes:           d.License.Notes,
		CreatedAt:       d.License.CreatedAt,
	}
}

func (r ownedKeyRequest) toInput() ports.OwnedKeyInput {
	return ports.OwnedKeyInput{AppID: r.AppID, DevID: r.DevID, Key: r.Key}
}
