package handler

import (
	"errors"

	"github.com/docbridge/editor-connector/pkg/connector/models"
	"github.com/docbridge/editor-connector/pkg/connector/repositories"
	"github.com/docbridge/editor-connector/pkg/connector/services"
	"github.com/gin-gonic/gin"
)

// EditorController serves the editor configuration the embedding page
// initializes the document editor with.
type EditorController struct {
	Service *services.EditorService
	Users   repositories.UserRepository
}

func NewEditorController(s *services.EditorService, users repositories.UserRepository) *EditorController {
	return &EditorController{Service: s, Users: users}
}

// GetEditorConfig handles GET /media/:id/editor
func (c *EditorController) GetEditorConfig(ctx *gin.Context, params *models.EditorParams) (*models.EditorConfigResponse, error) {
	user, err := c.Users.GetUserByID(ctx.Request.Context(), params.UserId)
	if err != nil {
		return nil, models.NewInternalServerError(err.Error())
	}
	if user == nil {
		user = models.Anonymous()
	}

	config, err := c.Service.BuildConfig(ctx.Request.Context(), params.Id, user, params.Mode, params.Lang)
	if errors.Is(err, services.ErrUnsupportedFormat) {
		return &models.EditorConfigResponse{
			Supported: false,
			Message:   "Sorry, this file format isn't supported.",
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &models.EditorConfigResponse{Supported: true, Config: config}, nil
}
