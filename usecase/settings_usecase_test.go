package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"youtube-auto-post/domain/model"
	"youtube-auto-post/usecase"
)

func TestCreateSettings(t *testing.T) {
	settings := new(MockSettingsRepo)
	settings.On("Create", mock.Anything, mock.MatchedBy(func(s *model.APISettings) bool {
		return s.Name == model.DefaultSettingsName && s.ID == model.SettingsSingletonID
	})).Return(nil).Once()
	settings.On("Create", mock.Anything, mock.Anything).Return(model.ErrSettingsExists)
	uc := usecase.NewSettingsUsecase(settings, new(MockAttachmentRepo))

	created, err := uc.CreateSettings(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettingsName, created.Name)

	_, err = uc.CreateSettings(context.Background(), "Second")
	assert.ErrorIs(t, err, model.ErrSettingsExists)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestGetSettings_Unconfigured(t *testing.T) {
	settings := new(MockSettingsRepo)
	settings.On("Get", mock.Anything).Return(nil, model.ErrSettingsNotFound)
	uc := usecase.NewSettingsUsecase(settings, new(MockAttachmentRepo))

	_, err := uc.GetSettings(context.Background())

	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestUploadClientSecrets_RejectsNonJSON(t *testing.T) {
	settings := new(MockSettingsRepo)
	attachments := new(MockAttachmentRepo)
	uc := usecase.NewSettingsUsecase(settings, attachments)

	_, err := uc.UploadClientSecrets(context.Background(), "secrets.txt", "text/plain", []byte("{}"))

	assert.ErrorIs(t, err, model.ErrClientSecretsType)
	assert.ErrorIs(t, err, model.ErrValidation)
	settings.AssertNotCalled(t, "Get", mock.Anything)
	attachments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUploadClientSecrets_Stores(t *testing.T) {
	settings := new(MockSettingsRepo)
	attachments := new(MockAttachmentRepo)
	current := model.NewAPISettings("")
	settings.On("Get", mock.Anything).Return(current, nil)
	settings.On("Update", mock.Anything, current).Return(nil)
	attachments.On("Create", mock.Anything, mock.MatchedBy(func(att *model.Attachment) bool {
		return att.MimeType == model.ClientSecretsMimeType && att.ResModel == model.ResModelSettings && att.Name == "client_secrets.json"
	})).Return(nil)
	uc := usecase.NewSettingsUsecase(settings, attachments)

	got, err := uc.UploadClientSecrets(context.Background(), "client_secrets.json", "application/json; charset=utf-8", []byte(`{"installed":{}}`))

	require.NoError(t, err)
	assert.True(t, got.HasClientSecrets())
	attachments.AssertExpectations(t)
	settings.AssertExpectations(t)
}

func TestUploadClientSecrets_WithoutSettings(t *testing.T) {
	settings := new(MockSettingsRepo)
	attachments := new(MockAttachmentRepo)
	settings.On("Get", mock.Anything).Return(nil, model.ErrSettingsNotFound)
	uc := usecase.NewSettingsUsecase(settings, attachments)

	_, err := uc.UploadClientSecrets(context.Background(), "client_secrets.json", "application/json", []byte("{}"))

	assert.ErrorIs(t, err, model.ErrConfiguration)
	attachments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRenameSettings(t *testing.T) {
	settings := new(MockSettingsRepo)
	current := model.NewAPISettings("")
	settings.On("Get", mock.Anything).Return(current, nil)
	settings.On("Update", mock.Anything, current).Return(nil)
	uc := usecase.NewSettingsUsecase(settings, new(MockAttachmentRepo))

	got, err := uc.RenameSettings(context.Background(), "Channel uploads")
	require.NoError(t, err)
	assert.Equal(t, "Channel uploads", got.Name)

	_, err = uc.RenameSettings(context.Background(), " ")
	assert.ErrorIs(t, err, model.ErrValidation)
}

type fakeAuthFlow struct {
	token       *model.OAuthToken
	gotSecrets  []byte
	gotRedirect string
	gotCode     string
}

func (f *fakeAuthFlow) AuthCodeURL(secrets []byte, redirectURL, state string) (string, error) {
	f.gotSecrets, f.gotRedirect = secrets, redirectURL
	return "https://accounts.example.com/auth?state=" + state, nil
}

func (f *fakeAuthFlow) Exchange(_ context.Context, secrets []byte, redirectURL, code string) (*model.OAuthToken, error) {
	f.gotSecrets, f.gotRedirect, f.gotCode = secrets, redirectURL, code
	return f.token, nil
}

func (f *fakeAuthFlow) Status(_ context.Context) (*model.OAuthToken, error) {
	return f.token, nil
}

func configuredSettingsUsecase() usecase.ISettingsUsecase {
	settings := new(MockSettingsRepo)
	attachments := new(MockAttachmentRepo)
	settings.On("Get", mock.Anything).Return(&model.APISettings{ID: 1, ClientSecretsAttachmentID: strPtr("s-1")}, nil)
	attachments.On("GetByID", mock.Anything, "s-1").Return(&model.Attachment{ID: "s-1", Data: []byte(`{"web":{}}`)}, nil)
	return usecase.NewSettingsUsecase(settings, attachments)
}

func TestAuthUsecase_Flow(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	flow := &fakeAuthFlow{token: &model.OAuthToken{AccessToken: "at", RefreshToken: "rt", ExpiresAt: &expiry}}
	uc := usecase.NewAuthUsecase(configuredSettingsUsecase(), flow, "http://localhost:8080/auth/youtube/callback")

	authURL, err := uc.BeginYouTubeAuth(context.Background(), "st")
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example.com/auth?state=st", authURL)
	assert.Equal(t, []byte(`{"web":{}}`), flow.gotSecrets)
	assert.Equal(t, "http://localhost:8080/auth/youtube/callback", flow.gotRedirect)

	status, err := uc.CompleteYouTubeAuth(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "code-1", flow.gotCode)
	assert.True(t, status.Connected)
	assert.True(t, status.HasRefreshToken)
	assert.False(t, status.Expired)

	_, err = uc.CompleteYouTubeAuth(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestAuthUsecase_Status(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	flow := &fakeAuthFlow{token: &model.OAuthToken{AccessToken: "at", ExpiresAt: &past}}
	uc := usecase.NewAuthUsecase(configuredSettingsUsecase(), flow, "")

	status, err := uc.YouTubeAuthStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.True(t, status.Expired)
	assert.False(t, status.HasRefreshToken)

	flow.token = nil
	status, err = uc.YouTubeAuthStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Connected)
}

func TestAuthUsecase_Unconfigured(t *testing.T) {
	settings := new(MockSettingsRepo)
	settings.On("Get", mock.Anything).Return(&model.APISettings{ID: 1}, nil)
	uc := usecase.NewAuthUsecase(usecase.NewSettingsUsecase(settings, new(MockAttachmentRepo)), &fakeAuthFlow{}, "")

	_, err := uc.BeginYouTubeAuth(context.Background(), "st")

	assert.ErrorIs(t, err, model.ErrClientSecretsUnset)
	assert.Equal(t, usecase.FailureConfiguration, usecase.FailureKindOf(fmt.Errorf("wrapped: %w", err)))
}
