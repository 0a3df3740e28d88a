package services

import (
	"context"
	"path/filepath"

	"github.com/docbridge/editor-connector/pkg/connector/helpers/docstore"
	"github.com/docbridge/editor-connector/pkg/connector/helpers/signing"
	"github.com/docbridge/editor-connector/pkg/connector/models"
	"github.com/docbridge/editor-connector/pkg/connector/repositories"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DownloadService resolves a signed download link to a stored file the
// embedded user identity may read. The identity check runs against the
// user baked into the link, for the duration of this request only.
type DownloadService struct {
	media  repositories.MediaRepository
	users  repositories.UserRepository
	signer *signing.Signer
	writer *docstore.Writer
	logger zerolog.Logger
}

func NewDownloadService(
	media repositories.MediaRepository,
	users repositories.UserRepository,
	signer *signing.Signer,
	writer *docstore.Writer,
	logger zerolog.Logger,
) *DownloadService {
	return &DownloadService{media: media, users: users, signer: signer, writer: writer, logger: logger}
}

// ResolveDownload verifies the link key and returns the file record and
// the absolute path to stream it from.
func (s *DownloadService) ResolveDownload(ctx context.Context, key string) (*models.StoredFile, string, error) {
	parameters, err := s.signer.Verify(key)
	if err != nil || len(parameters) < 2 {
		s.logger.Error().Str("key", key).Msg("invalid link key")
		return nil, "", models.NewBadRequest("Invalid link key: " + key + ".")
	}

	fileUuid := parameters[0]
	userID := parameters[1]

	if uuid.Validate(fileUuid) != nil {
		s.logger.Error().Str("uuid", fileUuid).Msg("invalid parameter UUID")
		return nil, "", models.NewBadRequest("Invalid parameter UUID: " + fileUuid + ".")
	}

	file, err := s.media.GetFileByUuid(ctx, fileUuid)
	if err != nil {
		return nil, "", models.NewInternalServerError(err.Error())
	}
	if file == nil {
		s.logger.Error().Str("uuid", fileUuid).Msg("targeted resource does not exist")
		return nil, "", models.NewNotFound("The targeted resource with UUID " + fileUuid + " does not exist.")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, "", models.NewInternalServerError(err.Error())
	}
	if user == nil {
		user = models.Anonymous()
	}

	if !s.users.CanDownloadFile(user, file) {
		s.logger.Error().Str("file", file.Filename).Str("user", user.Id).Msg("denied access to view file")
		return nil, "", models.NewForbidden("Denied access to view " + file.Filename)
	}

	return file, filepath.Join(s.writer.Root(), filepath.FromSlash(file.Uri)), nil
}
