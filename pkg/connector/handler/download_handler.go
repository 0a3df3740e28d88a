package handler

import (
	"errors"
	"net/http"

	"github.com/docbridge/editor-connector/pkg/connector/middleware"
	"github.com/docbridge/editor-connector/pkg/connector/models"
	"github.com/docbridge/editor-connector/pkg/connector/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DownloadController streams file bytes to the editing service against a
// signed download link.
type DownloadController struct {
	Service *services.DownloadService
	Auth    *middleware.Authenticator
	Logger  zerolog.Logger
}

func NewDownloadController(s *services.DownloadService, auth *middleware.Authenticator, logger zerolog.Logger) *DownloadController {
	return &DownloadController{Service: s, Auth: auth, Logger: logger}
}

// Download handles GET /download/:key
func (c *DownloadController) Download(ctx *gin.Context) {
	if err := c.Auth.AuthenticateDownload(ctx.GetHeader(c.Auth.Header)); err != nil {
		message := "Invalid request token."
		if errors.Is(err, middleware.ErrMissingToken) {
			message = "The request token is missing."
		}
		c.Logger.Error().Err(err).Msg("download authentication failed")
		ctx.JSON(http.StatusUnauthorized, models.CallbackResult{Error: 1, Message: message})
		return
	}

	file, path, err := c.Service.ResolveDownload(ctx.Request.Context(), ctx.Param("key"))
	if err != nil {
		respondCallbackError(ctx, err)
		return
	}

	if file.MimeType != "" {
		ctx.Header("Content-Type", file.MimeType)
	}
	ctx.File(path)
}
