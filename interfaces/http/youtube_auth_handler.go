package http

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"youtube-auto-post/infrastructure/logger"
	"youtube-auto-post/usecase"

	"github.com/gin-gonic/gin"
)

const oauthStateCookie = "oauth_state"

// IYouTubeAuthHandler defines the interface for YouTube authentication handlers
type IYouTubeAuthHandler interface {
	GetAuthURL(ctx *gin.Context)
	HandleCallback(ctx *gin.Context)
	Status(ctx *gin.Context)
}

// YouTubeAuthHandler runs the web consent flow and stores the resulting
// token in the shared credential cache.
type YouTubeAuthHandler struct {
	authUsecase usecase.IAuthUsecase
}

func NewYouTubeAuthHandler(uc usecase.IAuthUsecase) IYouTubeAuthHandler {
	return &YouTubeAuthHandler{authUsecase: uc}
}

// GetAuthURL handles GET /auth/youtube
func (h *YouTubeAuthHandler) GetAuthURL(ctx *gin.Context) {
	state, err := generateRandomState()
	if err != nil {
		respondError(ctx, err)
		return
	}
	authURL, err := h.authUsecase.BeginYouTubeAuth(ctx.Request.Context(), state)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	ctx.JSON(http.StatusOK, gin.H{"auth_url": authURL})
}

// HandleCallback handles GET /auth/youtube/callback
func (h *YouTubeAuthHandler) HandleCallback(ctx *gin.Context) {
	if errorParam := ctx.Query("error"); errorParam != "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":       fmt.Sprintf("OAuth error: %s", errorParam),
			"description": ctx.Query("error_description"),
		})
		return
	}

	expected, err := ctx.Cookie(oauthStateCookie)
	if err != nil || expected == "" || ctx.Query("state") != expected {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":  "State parameter mismatch",
			"action": "Visit /auth/youtube to start over",
		})
		return
	}

	status, err := h.authUsecase.CompleteYouTubeAuth(ctx.Request.Context(), ctx.Query("code"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)
	logger.GetLogger().WithField("has_refresh_token", status.HasRefreshToken).Info("youtube authorization stored")
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Authentication successful! Scheduled uploads will use this account.",
		"status":  status,
	})
}

// Status handles GET /api/youtube/oauth/status
func (h *YouTubeAuthHandler) Status(ctx *gin.Context) {
	status, err := h.authUsecase.YouTubeAuthStatus(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, status)
}

func generateRandomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
