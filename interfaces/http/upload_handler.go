package http

import (
	"net/http"

	"youtube-auto-post/domain/dto"
	"youtube-auto-post/domain/model"
	"youtube-auto-post/usecase"

	"github.com/gin-gonic/gin"
)

type IUploadHandler interface {
	CreateUpload(ctx *gin.Context)
	ListUploads(ctx *gin.Context)
	GetUpload(ctx *gin.Context)
	UpdateUpload(ctx *gin.Context)
	AttachVideo(ctx *gin.Context)
	Schedule(ctx *gin.Context)
	UploadNow(ctx *gin.Context)
	ListMessages(ctx *gin.Context)
	Sweep(ctx *gin.Context)
}

type UploadHandler struct {
	uploadUsecase usecase.IUploadUsecase
}

func NewUploadHandler(uc usecase.IUploadUsecase) IUploadHandler {
	return &UploadHandler{uploadUsecase: uc}
}

// uploadView adds the derived watch link to a record.
type uploadView struct {
	*model.VideoUpload
	WatchURL string `json:"watch_url,omitempty"`
}

func viewOf(u *model.VideoUpload) uploadView {
	return uploadView{VideoUpload: u, WatchURL: u.WatchURL()}
}

// CreateUpload handles POST /api/uploads
func (h *UploadHandler) CreateUpload(ctx *gin.Context) {
	var req dto.CreateUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": usecase.FailureValidation})
		return
	}
	rec, err := h.uploadUsecase.CreateUpload(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, viewOf(rec))
}

// ListUploads handles GET /api/uploads?state=&limit=&offset=
func (h *UploadHandler) ListUploads(ctx *gin.Context) {
	var req dto.ListUploadsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": usecase.FailureValidation})
		return
	}
	list, err := h.uploadUsecase.ListUploads(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	views := make([]uploadView, 0, len(list))
	for _, u := range list {
		views = append(views, viewOf(u))
	}
	ctx.JSON(http.StatusOK, gin.H{"uploads": views})
}

// GetUpload handles GET /api/uploads/:id
func (h *UploadHandler) GetUpload(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	rec, err := h.uploadUsecase.GetUpload(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, viewOf(rec))
}

// UpdateUpload handles PATCH /api/uploads/:id
func (h *UploadHandler) UpdateUpload(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	var req dto.UpdateUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": usecase.FailureValidation})
		return
	}
	rec, err := h.uploadUsecase.UpdateUpload(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, viewOf(rec))
}

// AttachVideo handles PUT /api/uploads/:id/video
func (h *UploadHandler) AttachVideo(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	fh, data, ok := readFormFile(ctx)
	if !ok {
		return
	}
	rec, err := h.uploadUsecase.AttachVideo(ctx.Request.Context(), id, fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, viewOf(rec))
}

// Schedule handles POST /api/uploads/:id/schedule
func (h *UploadHandler) Schedule(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	rec, err := h.uploadUsecase.Schedule(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, viewOf(rec))
}

// UploadNow handles POST /api/uploads/:id/upload. A transfer failure is
// still a completed attempt and answers 200 with the failed result.
func (h *UploadHandler) UploadNow(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	res := h.uploadUsecase.UploadNow(ctx.Request.Context(), id)
	status := http.StatusOK
	if res.Failure != nil {
		status = StatusFor(res.Failure.Kind)
	}
	ctx.JSON(status, res)
}

// ListMessages handles GET /api/uploads/:id/messages
func (h *UploadHandler) ListMessages(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	msgs, err := h.uploadUsecase.ListMessages(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if msgs == nil {
		msgs = []*model.UploadMessage{}
	}
	ctx.JSON(http.StatusOK, gin.H{"upload_id": id, "messages": msgs})
}

// Sweep handles POST /api/uploads/sweep
func (h *UploadHandler) Sweep(ctx *gin.Context) {
	report, err := h.uploadUsecase.ProcessScheduledUploads(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, report)
}
