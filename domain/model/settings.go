package model

import (
	"strings"
	"time"
)

const (
	DefaultSettingsName   = "YouTube API Settings"
	ClientSecretsMimeType = "application/json"

	// SettingsSingletonID is the only primary key the settings table accepts.
	SettingsSingletonID = 1
)

// APISettings holds the OAuth client document used to bootstrap YouTube
// authorization. Only one instance exists per installation.
type APISettings struct {
	ID                        int64     `json:"id"`
	Name                      string    `json:"name"`
	ClientSecretsAttachmentID *string   `json:"client_secrets_attachment_id,omitempty"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

func NewAPISettings(name string) *APISettings {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultSettingsName
	}
	return &APISettings{ID: SettingsSingletonID, Name: name}
}

// AssignClientSecrets links the attachment as the client secrets document.
// Only JSON documents are accepted.
func (s *APISettings) AssignClientSecrets(att *Attachment) error {
	if att == nil || att.MimeType != ClientSecretsMimeType {
		return ErrClientSecretsType
	}
	id := att.ID
	s.ClientSecretsAttachmentID = &id
	return nil
}

func (s *APISettings) HasClientSecrets() bool {
	return s.ClientSecretsAttachmentID != nil && *s.ClientSecretsAttachmentID != ""
}
