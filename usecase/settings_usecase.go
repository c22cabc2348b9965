package usecase

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"youtube-auto-post/domain/model"
	"youtube-auto-post/domain/repository"
	"youtube-auto-post/infrastructure/logger"

	"github.com/google/uuid"
)

type ISettingsUsecase interface {
	CreateSettings(ctx context.Context, name string) (*model.APISettings, error)
	GetSettings(ctx context.Context) (*model.APISettings, error)
	UploadClientSecrets(ctx context.Context, fileName, mimeType string, data []byte) (*model.APISettings, error)
	RenameSettings(ctx context.Context, name string) (*model.APISettings, error)
	ClientSecrets(ctx context.Context) ([]byte, error)
}

type settingsUsecase struct {
	settings    repository.ISettings
	attachments repository.IAttachment
}

func NewSettingsUsecase(settings repository.ISettings, attachments repository.IAttachment) ISettingsUsecase {
	return &settingsUsecase{settings: settings, attachments: attachments}
}

// CreateSettings creates the single settings record. A second call fails
// and leaves the existing record untouched.
func (s *settingsUsecase) CreateSettings(ctx context.Context, name string) (*model.APISettings, error) {
	settings := model.NewAPISettings(name)
	if err := s.settings.Create(ctx, settings); err != nil {
		return nil, err
	}
	logger.GetLogger().WithField("name", settings.Name).Info("youtube api settings created")
	return settings, nil
}

func (s *settingsUsecase) GetSettings(ctx context.Context) (*model.APISettings, error) {
	return s.settings.Get(ctx)
}

func (s *settingsUsecase) UploadClientSecrets(ctx context.Context, fileName, mimeType string, data []byte) (*model.APISettings, error) {
	mimeType = normalizeMimeType(mimeType)
	if mimeType != model.ClientSecretsMimeType {
		return nil, model.ErrClientSecretsType
	}
	if len(data) == 0 {
		return nil, model.ErrEmptyAttachment
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	att := &model.Attachment{
		ID:       uuid.NewString(),
		Name:     fileName,
		MimeType: mimeType,
		Data:     data,
		ResModel: model.ResModelSettings,
		ResID:    settings.ID,
	}
	if err := settings.AssignClientSecrets(att); err != nil {
		return nil, err
	}
	if err := s.attachments.Create(ctx, att); err != nil {
		return nil, err
	}
	if err := s.settings.Update(ctx, settings); err != nil {
		return nil, err
	}
	logger.GetLogger().WithField("attachment_id", att.ID).Info("client secrets stored")
	return settings, nil
}

func (s *settingsUsecase) RenameSettings(ctx context.Context, name string) (*model.APISettings, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	settings.Name = name
	if err := s.settings.Update(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *settingsUsecase) ClientSecrets(ctx context.Context) ([]byte, error) {
	return loadClientSecrets(ctx, s.settings, s.attachments)
}

// loadClientSecrets returns the stored client secrets document. Every
// missing piece is reported as a configuration error.
func loadClientSecrets(ctx context.Context, settingsRepo repository.ISettings, attachments repository.IAttachment) ([]byte, error) {
	settings, err := settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.HasClientSecrets() {
		return nil, model.ErrClientSecretsUnset
	}
	att, err := attachments.GetByID(ctx, *settings.ClientSecretsAttachmentID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, model.ErrClientSecretsUnset
	}
	if err != nil {
		return nil, err
	}
	if len(att.Data) == 0 {
		return nil, model.ErrClientSecretsUnset
	}
	return att.Data, nil
}

func normalizeMimeType(raw string) string {
	if mediaType, _, err := mime.ParseMediaType(raw); err == nil {
		return mediaType
	}
	return strings.ToLower(strings.TrimSpace(raw))
}
