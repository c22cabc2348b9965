package model

import (
	"fmt"
	"strings"
	"time"
)

type UploadState string

const (
	UploadStateDraft     UploadState = "draft"
	UploadStateScheduled UploadState = "scheduled"
	UploadStateUploaded  UploadState = "uploaded"
	UploadStateFailed    UploadState = "failed"
)

// uploadTransitions lists every allowed edge of the upload state machine.
var uploadTransitions = map[UploadState][]UploadState{
	UploadStateDraft:     {UploadStateScheduled, UploadStateUploaded, UploadStateFailed},
	UploadStateScheduled: {UploadStateUploaded, UploadStateFailed},
}

func (s UploadState) Valid() bool {
	switch s {
	case UploadStateDraft, UploadStateScheduled, UploadStateUploaded, UploadStateFailed:
		return true
	}
	return false
}

func (s UploadState) CanTransitionTo(next UploadState) bool {
	for _, allowed := range uploadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves the state.
func (s UploadState) Terminal() bool {
	return len(uploadTransitions[s]) == 0
}

type PrivacyStatus string

const (
	PrivacyPublic   PrivacyStatus = "public"
	PrivacyPrivate  PrivacyStatus = "private"
	PrivacyUnlisted PrivacyStatus = "unlisted"
)

func (p PrivacyStatus) Valid() bool {
	return p == PrivacyPublic || p == PrivacyPrivate || p == PrivacyUnlisted
}

const DefaultCategoryID = "22"

// Categories maps YouTube category ids to their labels.
var Categories = map[string]string{
	"1":  "Film & Animation",
	"2":  "Autos & Vehicles",
	"10": "Music",
	"15": "Pets & Animals",
	"17": "Sports",
	"19": "Travel & Events",
	"20": "Gaming",
	"22": "People & Blogs",
	"23": "Comedy",
	"24": "Entertainment",
	"25": "News & Politics",
	"26": "Howto & Style",
	"27": "Education",
	"28": "Science & Technology",
	"29": "Nonprofits & Activism",
}

// VideoUpload tracks one video's metadata, file reference and upload state.
type VideoUpload struct {
	ID                int64         `json:"id"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	Tags              string        `json:"tags"`
	CategoryID        string        `json:"category_id"`
	PrivacyStatus     PrivacyStatus `json:"privacy_status"`
	VideoAttachmentID *string       `json:"video_attachment_id,omitempty"`
	State             UploadState   `json:"state"`
	ScheduleDate      *time.Time    `json:"schedule_date,omitempty"`
	YouTubeVideoID    *string       `json:"youtube_video_id,omitempty"`
	ErrorMessage      *string       `json:"error_message,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// VideoUploadParams carries the user supplied fields of a new upload record.
type VideoUploadParams struct {
	Title         string
	Description   string
	Tags          string
	CategoryID    string
	PrivacyStatus string
	ScheduleDate  *time.Time
}

// NewVideoUpload validates params and returns a draft record.
func NewVideoUpload(p VideoUploadParams) (*VideoUpload, error) {
	u := &VideoUpload{State: UploadStateDraft}
	if err := u.apply(p); err != nil {
		return nil, err
	}
	return u, nil
}

// ApplyChanges validates and copies editable fields onto the record.
func (u *VideoUpload) ApplyChanges(p VideoUploadParams) error {
	if u.State.Terminal() {
		return fmt.Errorf("%w: upload is already %s", ErrPrecondition, u.State)
	}
	return u.apply(p)
}

func (u *VideoUpload) apply(p VideoUploadParams) error {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return ErrTitleRequired
	}
	category := strings.TrimSpace(p.CategoryID)
	if category == "" {
		category = DefaultCategoryID
	}
	if _, ok := Categories[category]; !ok {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	privacy := PrivacyStatus(strings.ToLower(strings.TrimSpace(p.PrivacyStatus)))
	if privacy == "" {
		privacy = PrivacyPrivate
	}
	if !privacy.Valid() {
		return fmt.Errorf("%w: unknown privacy status %q", ErrValidation, p.PrivacyStatus)
	}
	u.Title = title
	u.Description = p.Description
	u.Tags = p.Tags
	u.CategoryID = category
	u.PrivacyStatus = privacy
	if p.ScheduleDate != nil {
		at := p.ScheduleDate.UTC()
		u.ScheduleDate = &at
	} else {
		u.ScheduleDate = nil
	}
	return nil
}

// TransitionTo moves the record along an allowed edge.
func (u *VideoUpload) TransitionTo(next UploadState) error {
	if !u.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move upload from %s to %s", ErrPrecondition, u.State, next)
	}
	u.State = next
	return nil
}

// Schedule moves a draft with a schedule date to scheduled.
func (u *VideoUpload) Schedule() error {
	if u.ScheduleDate == nil {
		return ErrNoScheduleDate
	}
	if u.State != UploadStateDraft {
		return fmt.Errorf("%w: only draft uploads can be scheduled, upload is %s", ErrPrecondition, u.State)
	}
	return u.TransitionTo(UploadStateScheduled)
}

func (u *VideoUpload) MarkUploaded(videoID string) error {
	if err := u.TransitionTo(UploadStateUploaded); err != nil {
		return err
	}
	u.YouTubeVideoID = &videoID
	u.ErrorMessage = nil
	return nil
}

func (u *VideoUpload) MarkFailed(reason string) error {
	if err := u.TransitionTo(UploadStateFailed); err != nil {
		return err
	}
	u.ErrorMessage = &reason
	u.YouTubeVideoID = nil
	return nil
}

func (u *VideoUpload) HasVideo() bool {
	return u.VideoAttachmentID != nil && *u.VideoAttachmentID != ""
}

// IsDue reports whether a scheduled record should be picked up at now.
func (u *VideoUpload) IsDue(now time.Time) bool {
	return u.State == UploadStateScheduled && u.ScheduleDate != nil && !u.ScheduleDate.After(now)
}

func (u *VideoUpload) TagList() []string {
	return ParseTags(u.Tags)
}

// WatchURL returns the public link of an uploaded video.
func (u *VideoUpload) WatchURL() string {
	if u.YouTubeVideoID == nil || *u.YouTubeVideoID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + *u.YouTubeVideoID
}

// ParseTags splits a comma separated tag string. Blank entries are dropped
// and the result is never nil.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
