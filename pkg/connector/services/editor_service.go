package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/docbridge/editor-connector/pkg/connector/helpers/format"
	"github.com/docbridge/editor-connector/pkg/connector/models"
	"github.com/docbridge/editor-connector/pkg/connector/repositories"
	"github.com/golang-jwt/jwt/v4"
)

// ErrUnsupportedFormat marks a file the editing service cannot open. The
// caller surfaces this as an "unsupported format" state, not as a broken
// config with an empty document type.
var ErrUnsupportedFormat = errors.New("document format is not supported")

// EditorService builds the configuration object the embedded editor is
// initialized with.
type EditorService struct {
	settings *models.Settings
	links    *LinkService
	media    repositories.MediaRepository
	users    repositories.UserRepository
}

func NewEditorService(
	settings *models.Settings,
	links *LinkService,
	media repositories.MediaRepository,
	users repositories.UserRepository,
) *EditorService {
	return &EditorService{settings: settings, links: links, media: media, users: users}
}

// DocumentKey is stable for one file version and changes whenever the
// underlying bytes change.
func DocumentKey(file *models.StoredFile) string {
	changed := strconv.FormatInt(file.ChangedAt.Unix(), 10)
	return file.Uuid + "_" + base64.StdEncoding.EncodeToString([]byte(changed))
}

// BuildConfig assembles the editor configuration for one media entity and
// acting user. Mode falls back from edit to view when the format or the
// user's capabilities do not allow editing. With a shared secret set the
// whole config is signed and carried in the token field.
func (s *EditorService) BuildConfig(ctx context.Context, mediaUuid string, user *models.User, mode, lang string) (*models.EditorConfig, error) {
	media, err := s.media.GetMediaByUuid(ctx, mediaUuid)
	if err != nil {
		return nil, models.NewInternalServerError(err.Error())
	}
	if media == nil {
		return nil, models.NewNotFound("The targeted media resource with UUID " + mediaUuid + " does not exist.")
	}
	if media.File == nil {
		return nil, models.NewBadRequest("Media has no source file.")
	}

	extension := format.Extension(media.File.Filename)
	documentType := format.GetDocumentType(extension)
	if documentType == format.TypeNone {
		return nil, ErrUnsupportedFormat
	}

	if user == nil {
		user = models.Anonymous()
	}
	canEdit := format.IsEditable(extension) && s.users.CanUpdateMedia(user, media)
	if mode != "edit" || !canEdit {
		mode = "view"
	} else {
		mode = "edit"
	}
	if lang == "" {
		lang = "en"
	}

	downloadURL, err := s.links.DownloadURL(media.File, user.Id)
	if err != nil {
		return nil, models.NewInternalServerError(err.Error())
	}
	callbackURL, err := s.links.CallbackURL(media)
	if err != nil {
		return nil, models.NewInternalServerError(err.Error())
	}

	config := &models.EditorConfig{
		Type:         "desktop",
		Width:        "100%",
		Height:       "100%",
		DocumentType: string(documentType),
		Document: models.EditorDocument{
			Title:    media.File.Filename,
			Url:      downloadURL,
			FileType: extension,
			Key:      DocumentKey(media.File),
			Info: models.EditorDocInfo{
				Owner:    media.OwnerID,
				Uploaded: media.File.ChangedAt.Format("2006-01-02 15:04"),
			},
			Permissions: models.EditorPermissions{
				Download:  true,
				Edit:      canEdit,
				FillForms: format.IsFillableForm(extension),
			},
		},
		EditorConfig: models.EditorSettings{
			CallbackUrl: callbackURL,
			Mode:        mode,
			Lang:        lang,
			User: models.EditorUser{
				Id:   user.Id,
				Name: user.Name,
			},
		},
	}

	if s.settings.JwtEnabled() {
		token, err := signConfig(config, s.settings.JwtSecret)
		if err != nil {
			return nil, models.NewInternalServerError(err.Error())
		}
		config.Token = token
	}

	return config, nil
}

// signConfig signs the whole config object with HS256, the way the
// editing service validates inbound configs.
func signConfig(config *models.EditorConfig, secret string) (string, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return "", err
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
