package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"youtube-auto-post/domain/dto"
	"youtube-auto-post/domain/model"
	"youtube-auto-post/domain/repository"
)

type MockVideoUploadRepo struct {
	mock.Mock
}

func (m *MockVideoUploadRepo) Create(ctx context.Context, u *model.VideoUpload) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockVideoUploadRepo) GetByID(ctx context.Context, id int64) (*model.VideoUpload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoUpload), args.Error(1)
}

func (m *MockVideoUploadRepo) Update(ctx context.Context, u *model.VideoUpload, from model.UploadState) error {
	return m.Called(ctx, u, from).Error(0)
}

func (m *MockVideoUploadRepo) List(ctx context.Context, state model.UploadState, limit, offset int) ([]*model.VideoUpload, error) {
	args := m.Called(ctx, state, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.VideoUpload), args.Error(1)
}

func (m *MockVideoUploadRepo) FindDueScheduled(ctx context.Context, now time.Time) ([]*model.VideoUpload, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.VideoUpload), args.Error(1)
}

type MockAttachmentRepo struct {
	mock.Mock
}

func (m *MockAttachmentRepo) Create(ctx context.Context, att *model.Attachment) error {
	return m.Called(ctx, att).Error(0)
}

func (m *MockAttachmentRepo) GetByID(ctx context.Context, id string) (*model.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) Create(ctx context.Context, s *model.APISettings) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSettingsRepo) Get(ctx context.Context) (*model.APISettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.APISettings), args.Error(1)
}

func (m *MockSettingsRepo) Update(ctx context.Context, s *model.APISettings) error {
	return m.Called(ctx, s).Error(0)
}

type MockUploadMessageRepo struct {
	mock.Mock
}

func (m *MockUploadMessageRepo) Post(ctx context.Context, msg *model.UploadMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockUploadMessageRepo) ListByUpload(ctx context.Context, uploadID int64) ([]*model.UploadMessage, error) {
	args := m.Called(ctx, uploadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UploadMessage), args.Error(1)
}

type MockConnector struct {
	mock.Mock
}

func (m *MockConnector) Connect(ctx context.Context, clientSecrets []byte) (repository.IYouTubeUploader, error) {
	args := m.Called(ctx, clientSecrets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.IYouTubeUploader), args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadVideo(ctx context.Context, req *dto.YouTubeVideoUploadRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishUploadEvent(ctx context.Context, evt *model.UploadEvent) error {
	return m.Called(ctx, evt).Error(0)
}

type MockProgressPublisher struct {
	MockPublisher
}

func (m *MockProgressPublisher) AcceptsProgress() bool { return true }

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func messageBody(body string) interface{} {
	return mock.MatchedBy(func(msg *model.UploadMessage) bool { return msg.Body == body })
}
