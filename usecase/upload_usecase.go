package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"youtube-auto-post/domain/dto"
	"youtube-auto-post/domain/model"
	"youtube-auto-post/domain/repository"
	"youtube-auto-post/infrastructure/logger"
	"youtube-auto-post/infrastructure/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultListLimit   = 50
	maxListLimit       = 200
	defaultConcurrency = 2
)

var ErrScheduledWithoutDate = fmt.Errorf("%w: a scheduled upload needs a schedule date", model.ErrPrecondition)

type IUploadUsecase interface {
	CreateUpload(ctx context.Context, req *dto.CreateUploadRequest) (*model.VideoUpload, error)
	UpdateUpload(ctx context.Context, id int64, req *dto.UpdateUploadRequest) (*model.VideoUpload, error)
	AttachVideo(ctx context.Context, id int64, fileName, mimeType string, data []byte) (*model.VideoUpload, error)
	GetUpload(ctx context.Context, id int64) (*model.VideoUpload, error)
	ListUploads(ctx context.Context, req *dto.ListUploadsRequest) ([]*model.VideoUpload, error)
	ListMessages(ctx context.Context, id int64) ([]*model.UploadMessage, error)
	Schedule(ctx context.Context, id int64) (*model.VideoUpload, error)
	UploadNow(ctx context.Context, id int64) *UploadResult
	ProcessScheduledUploads(ctx context.Context) (*SweepReport, error)
}

type uploadUsecase struct {
	uploads     repository.IVideoUpload
	attachments repository.IAttachment
	settings    repository.ISettings
	connector   repository.IYouTubeConnector
	locker      repository.ILocker
	notifier    *Notifier
	concurrency int
	now         func() time.Time
}

type UploadUsecaseOption func(*uploadUsecase)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) UploadUsecaseOption {
	return func(u *uploadUsecase) { u.now = now }
}

// WithConcurrency bounds how many due uploads one sweep runs at once.
func WithConcurrency(n int) UploadUsecaseOption {
	return func(u *uploadUsecase) {
		if n > 0 {
			u.concurrency = n
		}
	}
}

func NewUploadUsecase(
	uploads repository.IVideoUpload,
	attachments repository.IAttachment,
	settings repository.ISettings,
	connector repository.IYouTubeConnector,
	locker repository.ILocker,
	notifier *Notifier,
	opts ...UploadUsecaseOption,
) IUploadUsecase {
	u := &uploadUsecase{
		uploads:     uploads,
		attachments: attachments,
		settings:    settings,
		connector:   connector,
		locker:      locker,
		notifier:    notifier,
		concurrency: defaultConcurrency,
		now:         utils.GetCurrentTime,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *uploadUsecase) CreateUpload(ctx context.Context, req *dto.CreateUploadRequest) (*model.VideoUpload, error) {
	rec, err := model.NewVideoUpload(model.VideoUploadParams{
		Title:         req.Title,
		Description:   req.Description,
		Tags:          req.Tags,
		CategoryID:    req.CategoryID,
		PrivacyStatus: req.PrivacyStatus,
		ScheduleDate:  req.ScheduleDate,
	})
	if err != nil {
		return nil, err
	}
	if err := u.uploads.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// lockRecord takes the per-record lock without waiting. Edits and uploads of
// the same record never overlap.
func (u *uploadUsecase) lockRecord(ctx context.Context, id int64) (func(), error) {
	release, ok, err := u.locker.TryLock(ctx, uploadLockKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to acquire upload lock: %w", err)
	}
	if !ok {
		return nil, model.ErrUploadInProgress
	}
	return release, nil
}

func (u *uploadUsecase) UpdateUpload(ctx context.Context, id int64, req *dto.UpdateUploadRequest) (*model.VideoUpload, error) {
	release, err := u.lockRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := u.uploads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := rec.State
	params := model.VideoUploadParams{
		Title:         rec.Title,
		Description:   rec.Description,
		Tags:          rec.Tags,
		CategoryID:    rec.CategoryID,
		PrivacyStatus: string(rec.PrivacyStatus),
		ScheduleDate:  rec.ScheduleDate,
	}
	if req.Title != nil {
		params.Title = *req.Title
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Tags != nil {
		params.Tags = *req.Tags
	}
	if req.CategoryID != nil {
		params.CategoryID = *req.CategoryID
	}
	if req.PrivacyStatus != nil {
		params.PrivacyStatus = *req.PrivacyStatus
	}
	if req.ScheduleDate != nil {
		params.ScheduleDate = req.ScheduleDate
	}
	if req.ClearSchedule {
		params.ScheduleDate = nil
	}
	if err := rec.ApplyChanges(params); err != nil {
		return nil, err
	}
	if rec.State == model.UploadStateScheduled && rec.ScheduleDate == nil {
		return nil, ErrScheduledWithoutDate
	}
	if err := u.uploads.Update(ctx, rec, from); err != nil {
		return nil, err
	}
	return rec, nil
}

func (u *uploadUsecase) AttachVideo(ctx context.Context, id int64, fileName, mimeType string, data []byte) (*model.VideoUpload, error) {
	mimeType = normalizeMimeType(mimeType)
	if !model.IsVideoMimeType(mimeType) {
		return nil, fmt.Errorf("%w: unsupported video type %q, use mp4, mov or avi", model.ErrValidation, mimeType)
	}
	if len(data) == 0 {
		return nil, model.ErrEmptyAttachment
	}
	release, err := u.lockRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := u.uploads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.State.Terminal() {
		return nil, fmt.Errorf("%w: upload is already %s", model.ErrPrecondition, rec.State)
	}
	att := &model.Attachment{
		ID:       uuid.NewString(),
		Name:     fileName,
		MimeType: mimeType,
		Data:     data,
		ResModel: model.ResModelUpload,
		ResID:    rec.ID,
	}
	if err := u.attachments.Create(ctx, att); err != nil {
		return nil, err
	}
	rec.VideoAttachmentID = &att.ID
	if err := u.uploads.Update(ctx, rec, rec.State); err != nil {
		return nil, err
	}
	return rec, nil
}

func (u *uploadUsecase) GetUpload(ctx context.Context, id int64) (*model.VideoUpload, error) {
	return u.uploads.GetByID(ctx, id)
}

func (u *uploadUsecase) ListUploads(ctx context.Context, req *dto.ListUploadsRequest) ([]*model.VideoUpload, error) {
	if req == nil {
		req = &dto.ListUploadsRequest{}
	}
	state := model.UploadState(strings.ToLower(strings.TrimSpace(req.State)))
	if state != "" && !state.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", model.ErrValidation, req.State)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	return u.uploads.List(ctx, state, limit, offset)
}

func (u *uploadUsecase) ListMessages(ctx context.Context, id int64) ([]*model.UploadMessage, error) {
	if _, err := u.uploads.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return u.notifier.History(ctx, id)
}

func (u *uploadUsecase) Schedule(ctx context.Context, id int64) (*model.VideoUpload, error) {
	release, err := u.lockRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := u.uploads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := rec.State
	if err := rec.Schedule(); err != nil {
		return nil, err
	}
	if err := u.uploads.Update(ctx, rec, from); err != nil {
		return nil, err
	}
	u.notifier.Post(ctx, rec, model.MessageKindInfo,
		fmt.Sprintf("Video upload scheduled for %s", rec.ScheduleDate.Format(time.RFC3339)))
	return rec, nil
}

func uploadLockKey(id int64) string {
	return fmt.Sprintf("upload:%d", id)
}

// UploadNow runs one upload attempt for the record. At most one attempt per
// record runs at a time; a concurrent caller gets a conflict result.
func (u *uploadUsecase) UploadNow(ctx context.Context, id int64) *UploadResult {
	return u.upload(ctx, id, false)
}

// upload runs one attempt under the record lock. With requireDue the record
// must still be scheduled and due once the lock is held.
func (u *uploadUsecase) upload(ctx context.Context, id int64, requireDue bool) *UploadResult {
	release, err := u.lockRecord(ctx, id)
	if err != nil {
		return newFailedResult(id, "", err)
	}
	defer release()

	rec, err := u.uploads.GetByID(ctx, id)
	if err != nil {
		return newFailedResult(id, "", err)
	}
	if requireDue && !rec.IsDue(u.now()) {
		return newFailedResult(rec.ID, rec.State, fmt.Errorf("%w: upload %d is no longer due", model.ErrPrecondition, rec.ID))
	}
	return u.drive(ctx, rec)
}

func (u *uploadUsecase) drive(ctx context.Context, rec *model.VideoUpload) *UploadResult {
	log := logger.GetLogger().WithField("upload_id", rec.ID)
	// outcome writes outlive the caller's context
	persistCtx := context.WithoutCancel(ctx)

	if rec.State.Terminal() {
		return newFailedResult(rec.ID, rec.State, fmt.Errorf("%w: upload already finished as %s", model.ErrPrecondition, rec.State))
	}
	if !rec.HasVideo() {
		return newFailedResult(rec.ID, rec.State, model.ErrNoVideoAttached)
	}

	secrets, err := loadClientSecrets(ctx, u.settings, u.attachments)
	if err != nil {
		if errors.Is(err, model.ErrConfiguration) {
			log.WithField("error", err).Warn("upload skipped, youtube api settings incomplete")
			u.notifier.Post(persistCtx, rec, model.MessageKindFailure, "Upload failed: "+err.Error())
		}
		return newFailedResult(rec.ID, rec.State, err)
	}

	from := rec.State
	videoID, err := u.transfer(ctx, rec, secrets)
	if err != nil {
		return u.fail(persistCtx, rec, from, err)
	}

	if err := rec.MarkUploaded(videoID); err != nil {
		return newFailedResult(rec.ID, rec.State, err)
	}
	if err := u.uploads.Update(persistCtx, rec, from); err != nil {
		log.WithField("youtube_video_id", videoID).WithField("error", err).Error("video uploaded but record could not be saved")
		return newFailedResult(rec.ID, rec.State, err)
	}
	log.WithField("youtube_video_id", videoID).Info("video uploaded")
	u.notifier.Post(persistCtx, rec, model.MessageKindSuccess,
		fmt.Sprintf("Video uploaded successfully. YouTube Video ID: %s", videoID))
	return &UploadResult{UploadID: rec.ID, State: rec.State, VideoID: videoID}
}

func (u *uploadUsecase) transfer(ctx context.Context, rec *model.VideoUpload, secrets []byte) (string, error) {
	video, err := u.attachments.GetByID(ctx, *rec.VideoAttachmentID)
	if err != nil {
		return "", fmt.Errorf("failed to load video file: %w", err)
	}
	if len(video.Data) == 0 {
		return "", errors.New("video file is empty")
	}

	uploader, err := u.connector.Connect(ctx, secrets)
	if err != nil {
		return "", err
	}

	lastPercent := -1
	return uploader.UploadVideo(ctx, &dto.YouTubeVideoUploadRequest{
		Title:       rec.Title,
		Description: rec.Description,
		Tags:        rec.TagList(),
		CategoryID:  rec.CategoryID,
		Privacy:     string(rec.PrivacyStatus),
		Media:       bytes.NewReader(video.Data),
		Size:        int64(len(video.Data)),
		MimeType:    video.MimeType,
		Progress: func(fraction float64) {
			percent := int(fraction * 100)
			if percent == lastPercent {
				return
			}
			lastPercent = percent
			logger.GetLogger().Infof("Uploaded %d%% for video %s", percent, rec.Title)
			u.notifier.Progress(ctx, rec, fraction)
		},
	})
}

func (u *uploadUsecase) fail(ctx context.Context, rec *model.VideoUpload, from model.UploadState, cause error) *UploadResult {
	reason := cause.Error()
	logger.GetLogger().WithField("upload_id", rec.ID).WithField("error", cause).Error("video upload failed")
	if err := rec.MarkFailed(reason); err != nil {
		return newFailedResult(rec.ID, rec.State, err)
	}
	if err := u.uploads.Update(ctx, rec, from); err != nil {
		logger.GetLogger().WithField("upload_id", rec.ID).WithField("error", err).Error("failed to record upload failure")
	}
	u.notifier.Post(ctx, rec, model.MessageKindFailure, "Upload failed: "+reason)
	return newFailedResult(rec.ID, rec.State, fmt.Errorf("%w: %v", model.ErrTransfer, cause))
}

// ProcessScheduledUploads uploads every scheduled record whose date has
// passed. Records are independent: one failure never stops the others.
func (u *uploadUsecase) ProcessScheduledUploads(ctx context.Context) (*SweepReport, error) {
	now := u.now()
	rows, err := u.uploads.FindDueScheduled(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find due uploads: %w", err)
	}
	due := make([]*model.VideoUpload, 0, len(rows))
	for _, rec := range rows {
		if rec.IsDue(now) {
			due = append(due, rec)
		}
	}

	results := make([]*UploadResult, len(due))
	var g errgroup.Group
	g.SetLimit(u.concurrency)
	for i, rec := range due {
		g.Go(func() error {
			results[i] = u.upload(ctx, rec.ID, true)
			return nil
		})
	}
	_ = g.Wait()

	report := &SweepReport{Processed: len(results), Results: results}
	for _, r := range results {
		if r.Succeeded() {
			report.Uploaded++
		} else {
			report.Failed++
		}
	}
	if report.Processed > 0 {
		logger.GetLogger().
			WithField("processed", report.Processed).
			WithField("uploaded", report.Uploaded).
			WithField("failed", report.Failed).
			Info("scheduled upload sweep finished")
	}
	return report, nil
}
