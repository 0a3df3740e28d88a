package services

import (
	"strings"

	"github.com/docbridge/editor-connector/pkg/connector/helpers/signing"
	"github.com/docbridge/editor-connector/pkg/connector/models"
)

// LinkService issues the signed URLs handed to the document editing
// service. Authorization travels entirely in the link key, the resolving
// endpoints keep no session state.
type LinkService struct {
	signer  *signing.Signer
	baseURL string
}

func NewLinkService(signer *signing.Signer, baseURL string) *LinkService {
	return &LinkService{signer: signer, baseURL: strings.TrimRight(baseURL, "/")}
}

// DownloadURL returns the absolute URL the editing service uses to fetch
// the file bytes. The key binds the file and the acting user together.
func (s *LinkService) DownloadURL(file *models.StoredFile, userID string) (string, error) {
	key, err := s.signer.Sign([]string{file.Uuid, userID})
	if err != nil {
		return "", err
	}
	return s.baseURL + "/v1/download/" + key, nil
}

// CallbackURL returns the absolute URL the editing service posts status
// transitions to for one media entity.
func (s *LinkService) CallbackURL(media *models.Media) (string, error) {
	key, err := s.signer.Sign([]string{media.Uuid})
	if err != nil {
		return "", err
	}
	return s.baseURL + "/v1/callback/" + key, nil
}
