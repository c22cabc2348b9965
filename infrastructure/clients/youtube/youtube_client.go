package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"youtube-auto-post/domain/dto"
	"youtube-auto-post/domain/repository"
	"youtube-auto-post/infrastructure/logger"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var _ repository.IYouTubeUploader = (*Client)(nil)

// Client uploads videos through the YouTube Data API v3.
type Client struct {
	service   *youtube.Service
	chunkSize int
}

// NewYouTubeClient binds a YouTube service to an authorised HTTP client.
// Extra options let tests point the service at a fake endpoint.
func NewYouTubeClient(ctx context.Context, httpClient *http.Client, chunkSize int, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service, chunkSize: chunkSize}, nil
}

// UploadVideo inserts the video with a resumable, chunked media upload and
// returns the id YouTube assigned to it.
func (c *Client) UploadVideo(ctx context.Context, req *dto.YouTubeVideoUploadRequest) (string, error) {
	if req.Media == nil {
		return "", errors.New("no media to upload")
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        tags,
			CategoryId:  req.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: req.Privacy,
		},
	}

	mediaOpts := []googleapi.MediaOption{googleapi.ChunkSize(c.chunkSize)}
	if req.MimeType != "" {
		mediaOpts = append(mediaOpts, googleapi.ContentType(req.MimeType))
	}
	call := c.service.Videos.Insert([]string{"snippet", "status"}, video).
		Media(req.Media, mediaOpts...).
		ProgressUpdater(func(current, total int64) {
			if total <= 0 {
				total = req.Size
			}
			if total <= 0 || req.Progress == nil {
				return
			}
			fraction := float64(current) / float64(total)
			if fraction > 1 {
				fraction = 1
			}
			req.Progress(fraction)
		}).
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		logger.GetLogger().WithField("title", req.Title).WithField("error", err).Error("youtube video insert failed")
		return "", fmt.Errorf("failed to upload video: %w", err)
	}
	if response.Id == "" {
		return "", errors.New("youtube response carried no video id")
	}
	return response.Id, nil
}
