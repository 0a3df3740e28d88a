package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"regexp"
	"time"

	"github.com/docbridge/editor-connector/pkg/connector/helpers/docstore"
	"github.com/docbridge/editor-connector/pkg/connector/helpers/format"
	"github.com/docbridge/editor-connector/pkg/connector/helpers/httpclient"
	"github.com/docbridge/editor-connector/pkg/connector/helpers/signing"
	"github.com/docbridge/editor-connector/pkg/connector/models"
	"github.com/docbridge/editor-connector/pkg/connector/repositories"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var okResult = models.CallbackResult{Error: 0}

// CallbackService runs the status state machine behind the editing
// service's webhook. Every call is dispatched independently, no state is
// retained across requests beyond the stored revisions. The acting
// identity is resolved per request and travels as an explicit parameter.
type CallbackService struct {
	media       repositories.MediaRepository
	users       repositories.UserRepository
	submissions repositories.SubmissionRepository
	writer      *docstore.Writer
	signer      *signing.Signer
	markerTTL   time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

func NewCallbackService(
	media repositories.MediaRepository,
	users repositories.UserRepository,
	submissions repositories.SubmissionRepository,
	writer *docstore.Writer,
	signer *signing.Signer,
	markerTTL time.Duration,
	logger zerolog.Logger,
) *CallbackService {
	return &CallbackService{
		media:       media,
		users:       users,
		submissions: submissions,
		writer:      writer,
		signer:      signer,
		markerTTL:   markerTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// ProcessCallback resolves the signed link, the target media and the
// acting identity, then dispatches on the reported status. Failures come
// back as models.CallbackError so the handler can always emit the
// {error:1,message} envelope.
func (s *CallbackService) ProcessCallback(ctx context.Context, key string, body *models.CallbackBody) (models.CallbackResult, error) {
	parameters, err := s.signer.Verify(key)
	if err != nil {
		s.logger.Error().Str("key", key).Msg("invalid link key")
		return models.CallbackResult{}, models.NewBadRequest("Invalid link key: " + key + ".")
	}

	mediaUuid := parameters[0]
	if uuid.Validate(mediaUuid) != nil {
		s.logger.Error().Str("uuid", mediaUuid).Msg("invalid parameter UUID")
		return models.CallbackResult{}, models.NewBadRequest("Invalid parameter UUID: " + mediaUuid + ".")
	}

	media, err := s.media.GetMediaByUuid(ctx, mediaUuid)
	if err != nil {
		return models.CallbackResult{}, models.NewInternalServerError(err.Error())
	}
	if media == nil {
		s.logger.Error().Str("uuid", mediaUuid).Msg("targeted media resource does not exist")
		return models.CallbackResult{}, models.NewNotFound("The targeted media resource with UUID " + mediaUuid + " does not exist.")
	}

	user, err := s.users.GetUserByID(ctx, body.ActingUserID())
	if err != nil {
		return models.CallbackResult{}, models.NewInternalServerError(err.Error())
	}
	if user == nil {
		user = models.Anonymous()
	}

	switch body.Status {
	case models.StatusEditing:
		if len(body.Actions) > 0 {
			switch body.Actions[0].Type {
			case models.ActionDisconnected:
				s.logger.Info().Str("media", media.Name).Str("user", user.Id).Msg("disconnected from co-editing")
			case models.ActionConnected:
				s.logger.Info().Str("media", media.Name).Str("user", user.Id).Msg("connected to co-editing")
			}
		}
		return okResult, nil

	case models.StatusMustSave, models.StatusCorrupted:
		return s.processSave(ctx, body, media, user)

	case models.StatusClosed:
		s.logger.Info().Str("media", media.Name).Msg("closed with no changes")
		return okResult, nil

	case models.StatusMustForceSave, models.StatusCorruptedForceSave:
		return s.processForceSave(ctx, body, media, user)

	case models.StatusNotFound:
		return okResult, nil

	default:
		s.logger.Error().Int("status", int(body.Status)).Msg("unknown callback status")
		return models.CallbackResult{}, models.NewBadRequest(fmt.Sprintf("Unknown status: %d", int(body.Status)))
	}
}

// processSave handles MustSave and Corrupted: fetch the edited bytes and
// attach them to the media as a new revision.
func (s *CallbackService) processSave(ctx context.Context, body *models.CallbackBody, media *models.Media, user *models.User) (models.CallbackResult, error) {
	if !s.users.CanUpdateMedia(user, media) {
		s.logger.Error().Str("media", media.Name).Str("user", user.Id).Msg("denied access to edit media")
		return models.CallbackResult{}, models.NewForbidden("User does not have edit access to this media.")
	}

	if body.Url == "" {
		s.logger.Error().Str("media", media.Name).Msg("url parameter not found when saving media")
		return models.CallbackResult{}, models.NewBadRequest("Url parameter not found")
	}

	if media.File == nil {
		s.logger.Error().Str("media", media.Name).Msg("media has no source file")
		return models.CallbackResult{}, models.NewBadRequest("Media has no source file.")
	}

	data, err := httpclient.FetchDocument(ctx, body.Url)
	if err != nil {
		s.logger.Error().Str("url", body.Url).Err(err).Msg("error downloading edited document")
		return models.CallbackResult{}, models.NewBadRequest("Error download file from " + body.Url)
	}

	destination := path.Join(path.Dir(media.File.Uri), media.File.Filename)
	res, err := s.writer.Write(data, destination, docstore.Rename)
	if err != nil {
		s.logger.Error().Str("destination", destination).Err(err).Msg("error writing document")
		if errors.Is(err, docstore.ErrInvalidDestination) {
			return models.CallbackResult{}, models.NewBadRequest(err.Error())
		}
		return models.CallbackResult{}, models.NewInternalServerError(err.Error())
	}

	now := s.now()
	newFile := models.StoredFile{
		Filename:  res.Filename,
		Uri:       path.Join(path.Dir(media.File.Uri), res.Filename),
		MimeType:  media.File.MimeType,
		Size:      res.Size,
		OwnerID:   user.Id,
		Permanent: true,
		ChangedAt: now,
	}
	if err := s.media.SaveRevision(ctx, media, &newFile, user.Id, now); err != nil {
		s.logger.Error().Str("media", media.Name).Err(err).Msg("error saving revision")
		return models.CallbackResult{}, models.NewInternalServerError(err.Error())
	}

	s.logger.Info().Str("media", media.Name).Str("user", user.Id).Msg("media was successfully saved")
	return okResult, nil
}

var submissionNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// processForceSave handles MustForceSave and CorruptedForceSave. Only the
// form-submission variant (forcesavetype 3) persists anything; permission
// checks are deliberately omitted, submissions are a public-facing flow.
func (s *CallbackService) processForceSave(ctx context.Context, body *models.CallbackBody, media *models.Media, user *models.User) (models.CallbackResult, error) {
	if body.ForceSaveType == nil || *body.ForceSaveType != models.ForceSaveSubmitForm {
		s.logger.Info().Str("media", media.Name).Msg("force-save acknowledged without submission")
		return okResult, nil
	}

	if body.Url == "" {
		s.logger.Error().Str("media", media.Name).Msg("url parameter not found when saving submission")
		return models.CallbackResult{}, models.NewBadRequest("Url parameter not found")
	}

	if media.File == nil {
		s.logger.Error().Str("media", media.Name).Msg("media has no source file")
		return models.CallbackResult{}, models.NewBadRequest("Media has no source file.")
	}

	data, err := httpclient.FetchDocument(ctx, body.Url)
	if err != nil {
		s.logger.Error().Str("url", body.Url).Err(err).Msg("error downloading submission")
		return models.CallbackResult{}, models.NewBadRequest("Error download file from " + body.Url)
	}

	extension := format.Extension(media.File.Filename)
	sanitized := submissionNameSanitizer.ReplaceAllString(media.Name, "_")
	filename := fmt.Sprintf("%s_submission_%s.%s", sanitized, randomSuffix(), extension)
	destination := path.Join("submissions", media.Uuid, filename)

	res, err := s.writer.Write(data, destination, docstore.Rename)
	if err != nil {
		s.logger.Error().Str("destination", destination).Err(err).Msg("error writing submission")
		return models.CallbackResult{}, models.NewInternalServerError(err.Error())
	}

	now := s.now()
	file := models.StoredFile{
		Filename:  res.Filename,
		Uri:       path.Join("submissions", media.Uuid, res.Filename),
		MimeType:  media.File.MimeType,
		Size:      res.Size,
		OwnerID:   user.Id,
		Permanent: true,
		ChangedAt: now,
	}
	if err := s.media.CreateFile(ctx, &file); err != nil {
		return models.CallbackResult{}, models.NewInternalServerError(err.Error())
	}

	submission := models.Submission{
		MediaID:   media.Id,
		FileID:    file.Id,
		Uid:       user.Id,
		CreatedAt: now,
	}
	if err := s.submissions.CreateSubmission(ctx, &submission); err != nil {
		return models.CallbackResult{}, models.NewInternalServerError(err.Error())
	}

	if user.IsAnonymous() {
		if err := s.submissions.MarkSubmitted(ctx, media.Id, now.Add(s.markerTTL)); err != nil {
			return models.CallbackResult{}, models.NewInternalServerError(err.Error())
		}
	}

	s.logger.Info().Str("media", media.Name).Str("user", user.Id).Msg("form submission was successfully saved")
	return okResult, nil
}

func randomSuffix() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
