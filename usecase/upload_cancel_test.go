package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"youtube-auto-post/domain/model"
	"youtube-auto-post/infrastructure/lock"
	"youtube-auto-post/infrastructure/persistence"
	"youtube-auto-post/usecase"
)

var uploadRowColumns = []string{"id", "title", "description", "tags", "category_id", "privacy_status",
	"video_attachment_id", "state", "schedule_date", "youtube_video_id", "error_message", "created_at", "updated_at"}

func liveContext() interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
}

// newSQLUploadFixture runs the upload usecase over the Postgres repository
// backed by sqlmock, with the record 7 in draft and a video attached.
func newSQLUploadFixture(t *testing.T) (*uploadFixture, sqlmock.Sqlmock) {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &uploadFixture{
		attachments: new(MockAttachmentRepo),
		settings:    new(MockSettingsRepo),
		messages:    new(MockUploadMessageRepo),
		connector:   new(MockConnector),
		uploader:    new(MockUploader),
		locker:      lock.NewKeyedMutex(),
	}
	f.uc = usecase.NewUploadUsecase(persistence.NewVideoUploadRepository(db), f.attachments, f.settings, f.connector,
		f.locker, usecase.NewNotifier(f.messages), usecase.WithClock(func() time.Time { return fixedNow }))
	f.configured()
	f.withVideo("video-7")
	f.connector.On("Connect", mock.Anything, mock.Anything).Return(f.uploader, nil)

	sqlMock.ExpectQuery("SELECT (.+) FROM youtube_video_uploads WHERE id = \\$1").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(uploadRowColumns).
			AddRow(7, "Demo", "", "a", "22", "private", "video-7", "draft", nil, nil, nil, fixedNow, fixedNow))
	return f, sqlMock
}

func TestUploadNow_CallerCancelled(t *testing.T) {
	t.Run("during transfer", func(t *testing.T) {
		f, sqlMock := newSQLUploadFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		f.uploader.On("UploadVideo", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { cancel() }).
			Return("", context.Canceled)
		sqlMock.ExpectExec("UPDATE youtube_video_uploads SET (.+) WHERE id=\\$12 AND state=\\$13").
			WithArgs("Demo", "", "a", "22", "private", "video-7", "failed", nil, nil, context.Canceled.Error(), sqlmock.AnyArg(), int64(7), "draft").
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.messages.On("Post", liveContext(), mock.MatchedBy(func(msg *model.UploadMessage) bool {
			return msg.Kind == model.MessageKindFailure && msg.Body == "Upload failed: "+context.Canceled.Error()
		})).Return(nil)

		res := f.uc.UploadNow(ctx, 7)

		require.NotNil(t, res.Failure)
		assert.Equal(t, usecase.FailureTransfer, res.Failure.Kind)
		assert.Equal(t, model.UploadStateFailed, res.State)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		f.messages.AssertExpectations(t)
	})

	t.Run("after the video id came back", func(t *testing.T) {
		f, sqlMock := newSQLUploadFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		f.uploader.On("UploadVideo", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { cancel() }).
			Return("abc123", nil)
		sqlMock.ExpectExec("UPDATE youtube_video_uploads SET (.+) WHERE id=\\$12 AND state=\\$13").
			WithArgs("Demo", "", "a", "22", "private", "video-7", "uploaded", nil, "abc123", nil, sqlmock.AnyArg(), int64(7), "draft").
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.messages.On("Post", liveContext(), messageBody("Video uploaded successfully. YouTube Video ID: abc123")).Return(nil)

		res := f.uc.UploadNow(ctx, 7)

		require.True(t, res.Succeeded(), "unexpected failure: %+v", res.Failure)
		assert.Equal(t, "abc123", res.VideoID)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		f.messages.AssertExpectations(t)
	})
}
