package http

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"youtube-auto-post/domain/model"
	"youtube-auto-post/infrastructure/logger"
	"youtube-auto-post/usecase"

	"github.com/gin-gonic/gin"
)

const maxUploadFileBytes = 2 << 30

var kindStatus = map[usecase.FailureKind]int{
	usecase.FailureValidation:    http.StatusBadRequest,
	usecase.FailurePrecondition:  http.StatusPreconditionFailed,
	usecase.FailureNotFound:      http.StatusNotFound,
	usecase.FailureConflict:      http.StatusConflict,
	usecase.FailureConfiguration: http.StatusServiceUnavailable,
	usecase.FailureTransfer:      http.StatusOK,
	usecase.FailureInternal:      http.StatusInternalServerError,
}

// StatusFor maps a failure kind to the HTTP status the API answers with.
func StatusFor(kind usecase.FailureKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondError(ctx *gin.Context, err error) {
	kind := usecase.FailureKindOf(err)
	status := StatusFor(kind)
	if status == http.StatusOK {
		status = http.StatusBadGateway
	}
	entry := logger.GetLogger().WithField("path", ctx.FullPath()).WithField("error", err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}
	ctx.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}

func idParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload id", "kind": usecase.FailureValidation})
		return 0, false
	}
	return id, true
}

// readFormFile returns the "file" part of a multipart request with its
// declared content type.
func readFormFile(ctx *gin.Context) (*multipart.FileHeader, []byte, bool) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required", "kind": usecase.FailureValidation})
		return nil, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		respondError(ctx, err)
		return nil, nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadFileBytes))
	if err != nil {
		respondError(ctx, err)
		return nil, nil, false
	}
	if len(data) == 0 {
		respondError(ctx, model.ErrEmptyAttachment)
		return nil, nil, false
	}
	return fh, data, true
}
