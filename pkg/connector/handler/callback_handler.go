package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/docbridge/editor-connector/pkg/connector/middleware"
	"github.com/docbridge/editor-connector/pkg/connector/models"
	"github.com/docbridge/editor-connector/pkg/connector/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CallbackController binds the editing service's status webhook to the
// CallbackService.
type CallbackController struct {
	Service *services.CallbackService
	Auth    *middleware.Authenticator
	Logger  zerolog.Logger
}

func NewCallbackController(s *services.CallbackService, auth *middleware.Authenticator, logger zerolog.Logger) *CallbackController {
	return &CallbackController{Service: s, Auth: auth, Logger: logger}
}

// Callback handles POST /callback/:key
func (c *CallbackController) Callback(ctx *gin.Context) {
	key := ctx.Param("key")

	raw, err := io.ReadAll(ctx.Request.Body)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 || !json.Valid(raw) {
		c.Logger.Error().Msg("the request body is missing")
		ctx.JSON(http.StatusBadRequest, models.CallbackResult{Error: 1, Message: "The request body is missing."})
		return
	}

	effective, err := c.Auth.AuthenticateCallback(raw, ctx.GetHeader(c.Auth.Header))
	if err != nil {
		message := "Invalid request token."
		if errors.Is(err, middleware.ErrMissingToken) {
			message = "The request token is missing."
		}
		c.Logger.Error().Err(err).Msg("callback authentication failed")
		ctx.JSON(http.StatusUnauthorized, models.CallbackResult{Error: 1, Message: message})
		return
	}

	var body models.CallbackBody
	if err := json.Unmarshal(effective, &body); err != nil {
		c.Logger.Error().Err(err).Msg("malformed callback body")
		ctx.JSON(http.StatusBadRequest, models.CallbackResult{Error: 1, Message: "The request body is missing."})
		return
	}

	result, err := c.Service.ProcessCallback(ctx.Request.Context(), key, &body)
	if err != nil {
		respondCallbackError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// respondCallbackError converts any failure into the envelope the editing
// service expects; nothing propagates to the transport layer uncaught.
func respondCallbackError(ctx *gin.Context, err error) {
	var cerr models.CallbackError
	if errors.As(err, &cerr) {
		ctx.JSON(cerr.Status, models.CallbackResult{Error: 1, Message: cerr.Message})
		return
	}
	ctx.JSON(http.StatusInternalServerError, models.CallbackResult{Error: 1, Message: err.Error()})
}
