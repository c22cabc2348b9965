package model

import "time"

const (
	ResModelSettings = "youtube.api.settings"
	ResModelUpload   = "youtube.video.upload"
)

var videoMimeTypes = map[string]struct{}{
	"video/mp4":       {},
	"video/mov":       {},
	"video/quicktime": {},
	"video/avi":       {},
}

// Attachment is a stored binary blob with a declared content type.
type Attachment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	MimeType  string    `json:"mime_type" gorm:"type:varchar(128);not null"`
	Size      int64     `json:"size" gorm:"not null"`
	Data      []byte    `json:"-" gorm:"type:longblob"`
	ResModel  string    `json:"res_model" gorm:"type:varchar(64);index:idx_attachments_res"`
	ResID     int64     `json:"res_id" gorm:"index:idx_attachments_res"`
	CreatedAt time.Time `json:"created_at"`
}

func (Attachment) TableName() string { return "attachments" }

func IsVideoMimeType(mimeType string) bool {
	_, ok := videoMimeTypes[mimeType]
	return ok
}
