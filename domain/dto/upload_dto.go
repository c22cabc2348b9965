package dto

import (
	"io"
	"time"
)

type Res struct {
	ResponseCode    string      `json:"responseCode"`
	ResponseMessage string      `json:"responseMessage"`
	Data            interface{} `json:"data,omitempty"`
}

type CreateSettingsRequest struct {
	Name string `json:"name"`
}

type CreateUploadRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	Tags          string     `json:"tags"`
	CategoryID    string     `json:"category_id"`
	PrivacyStatus string     `json:"privacy_status"`
	ScheduleDate  *time.Time `json:"schedule_date"`
}

type UpdateUploadRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Tags          *string    `json:"tags"`
	CategoryID    *string    `json:"category_id"`
	PrivacyStatus *string    `json:"privacy_status"`
	ScheduleDate  *time.Time `json:"schedule_date"`
	ClearSchedule bool       `json:"clear_schedule"`
}

type ListUploadsRequest struct {
	State  string `form:"state"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// YouTubeVideoUploadRequest is the metadata and media handed to the platform client.
type YouTubeVideoUploadRequest struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
	Media       io.Reader
	Size        int64
	MimeType    string
	// Progress receives the transferred fraction in [0,1].
	Progress func(fraction float64)
}

// OAuthStatus describes the cached platform credential without exposing it.
type OAuthStatus struct {
	Connected       bool       `json:"connected"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	Expired         bool       `json:"expired"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}
