package http

import (
	"net/http"

	"youtube-auto-post/domain/dto"
	"youtube-auto-post/usecase"

	"github.com/gin-gonic/gin"
)

type ISettingsHandler interface {
	CreateSettings(ctx *gin.Context)
	GetSettings(ctx *gin.Context)
	RenameSettings(ctx *gin.Context)
	UploadClientSecrets(ctx *gin.Context)
}

type SettingsHandler struct {
	settingsUsecase usecase.ISettingsUsecase
}

func NewSettingsHandler(uc usecase.ISettingsUsecase) ISettingsHandler {
	return &SettingsHandler{settingsUsecase: uc}
}

// CreateSettings handles POST /api/settings
func (h *SettingsHandler) CreateSettings(ctx *gin.Context) {
	var req dto.CreateSettingsRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": usecase.FailureValidation})
			return
		}
	}
	settings, err := h.settingsUsecase.CreateSettings(ctx.Request.Context(), req.Name)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, settings)
}

// GetSettings handles GET /api/settings
func (h *SettingsHandler) GetSettings(ctx *gin.Context) {
	settings, err := h.settingsUsecase.GetSettings(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, settings)
}

// RenameSettings handles PATCH /api/settings
func (h *SettingsHandler) RenameSettings(ctx *gin.Context) {
	var req dto.CreateSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": usecase.FailureValidation})
		return
	}
	settings, err := h.settingsUsecase.RenameSettings(ctx.Request.Context(), req.Name)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, settings)
}

// UploadClientSecrets handles PUT /api/settings/client-secrets
func (h *SettingsHandler) UploadClientSecrets(ctx *gin.Context) {
	fh, data, ok := readFormFile(ctx)
	if !ok {
		return
	}
	settings, err := h.settingsUsecase.UploadClientSecrets(ctx.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, settings)
}
