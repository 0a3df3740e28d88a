package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docbridge/editor-connector/pkg/connector/helpers/docstore"
	"github.com/docbridge/editor-connector/pkg/connector/helpers/signing"
	"github.com/docbridge/editor-connector/pkg/connector/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mediaUuid = "9a8b7c6d-0000-4000-8000-000000000002"
	fileUuid  = "0d1f2e3a-0000-4000-8000-000000000001"
)

// stubMediaRepo mocks MediaRepository for service tests
type stubMediaRepo struct {
	media         *models.Media
	file          *models.StoredFile
	savedRevision *models.StoredFile
	revisionUser  string
	createdFiles  []*models.StoredFile
}

func (s *stubMediaRepo) GetMediaByUuid(ctx context.Context, u string) (*models.Media, error) {
	if s.media != nil && s.media.Uuid == u {
		return s.media, nil
	}
	return nil, nil
}

func (s *stubMediaRepo) GetFileByUuid(ctx context.Context, u string) (*models.StoredFile, error) {
	if s.file != nil && s.file.Uuid == u {
		return s.file, nil
	}
	return nil, nil
}

func (s *stubMediaRepo) CreateFile(ctx context.Context, file *models.StoredFile) error {
	file.Id = "created-file"
	s.createdFiles = append(s.createdFiles, file)
	return nil
}

func (s *stubMediaRepo) SaveRevision(ctx context.Context, media *models.Media, file *models.StoredFile, userID string, at time.Time) error {
	file.Id = "revision-file"
	s.savedRevision = file
	s.revisionUser = userID
	return nil
}

// stubUserRepo mocks UserRepository
type stubUserRepo struct {
	users     map[string]*models.User
	canUpdate bool
}

func (s *stubUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.users[id], nil
}

func (s *stubUserRepo) CanUpdateMedia(user *models.User, media *models.Media) bool {
	return s.canUpdate && !user.IsAnonymous()
}

func (s *stubUserRepo) CanDownloadFile(user *models.User, file *models.StoredFile) bool {
	return !user.IsAnonymous()
}

// stubSubmissionRepo mocks SubmissionRepository
type stubSubmissionRepo struct {
	submissions []*models.Submission
	markers     map[string]time.Time
}

func (s *stubSubmissionRepo) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	if sub.Uid == "" {
		sub.Uid = models.AnonymousUserID
	}
	sub.Id = "sub1"
	s.submissions = append(s.submissions, sub)
	return nil
}

func (s *stubSubmissionRepo) MarkSubmitted(ctx context.Context, mediaID string, expiresAt time.Time) error {
	if s.markers == nil {
		s.markers = map[string]time.Time{}
	}
	s.markers[mediaID] = expiresAt
	return nil
}

func (s *stubSubmissionRepo) HasSubmitted(ctx context.Context, mediaID string, now time.Time) (bool, error) {
	exp, ok := s.markers[mediaID]
	return ok && exp.After(now), nil
}

func (s *stubSubmissionRepo) PurgeExpiredMarkers(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fixture struct {
	svc    *CallbackService
	signer *signing.Signer
	media  *stubMediaRepo
	users  *stubUserRepo
	subs   *stubSubmissionRepo
	root   string
	key    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	signer := signing.NewSigner("install-secret")

	media := &stubMediaRepo{
		media: &models.Media{
			Id: "m1", Uuid: mediaUuid, Name: "Quarterly Report", Bundle: "document", OwnerID: "10",
			File: &models.StoredFile{
				Id: "f1", Uuid: fileUuid, Filename: "report.docx",
				Uri: "docs/report.docx", Size: 10, OwnerID: "10",
				Permanent: true, ChangedAt: time.Now(),
			},
		},
	}
	users := &stubUserRepo{
		users:     map[string]*models.User{"10": {Id: "10", Name: "Owner", Role: "member"}},
		canUpdate: true,
	}
	subs := &stubSubmissionRepo{}

	svc := NewCallbackService(media, users, subs, docstore.NewWriter(root), signer, 7*24*time.Hour, zerolog.Nop())

	key, err := signer.Sign([]string{mediaUuid})
	require.NoError(t, err)

	return &fixture{svc: svc, signer: signer, media: media, users: users, subs: subs, root: root, key: key}
}

func docServer(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProcessCallbackInvalidLinkKey(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ProcessCallback(context.Background(), "garbage", &models.CallbackBody{Status: models.StatusClosed})
	var cerr models.CallbackError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 400, cerr.Status)
	assert.Contains(t, cerr.Message, "Invalid link key")
}

func TestProcessCallbackInvalidUuid(t *testing.T) {
	f := newFixture(t)
	key, err := f.signer.Sign([]string{"not-a-uuid"})
	require.NoError(t, err)

	_, err = f.svc.ProcessCallback(context.Background(), key, &models.CallbackBody{Status: models.StatusClosed})
	var cerr models.CallbackError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 400, cerr.Status)
	assert.Contains(t, cerr.Message, "Invalid parameter UUID")
}

func TestProcessCallbackMediaNotFound(t *testing.T) {
	f := newFixture(t)
	key, err := f.signer.Sign([]string{"11111111-2222-4333-8444-555555555555"})
	require.NoError(t, err)

	_, err = f.svc.ProcessCallback(context.Background(), key, &models.CallbackBody{Status: models.StatusClosed})
	var cerr models.CallbackError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 404, cerr.Status)
	assert.Contains(t, cerr.Message, "does not exist")
}

func TestProcessCallbackStatusCompleteness(t *testing.T) {
	f := newFixture(t)

	for _, status := range []models.CallbackStatus{models.StatusNotFound, models.StatusEditing, models.StatusClosed} {
		res, err := f.svc.ProcessCallback(context.Background(), f.key, &models.CallbackBody{
			Status:  status,
			Actions: []models.CallbackAction{{Type: models.ActionConnected, UserID: "10"}},
		})
		require.NoError(t, err, "status %d", status)
		assert.Equal(t, 0, res.Error)
	}

	for _, status := range []int{5, 99, -1} {
		_, err := f.svc.ProcessCallback(context.Background(), f.key, &models.CallbackBody{Status: models.CallbackStatus(status)})
		var cerr models.CallbackError
		require.ErrorAs(t, err, &cerr, "status %d", status)
		assert.Equal(t, 400, cerr.Status)
		assert.Contains(t, cerr.Message, "Unknown status")
	}
}

func TestProcessSaveRequiresUrl(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ProcessCallback(context.Background(), f.key, &models.CallbackBody{
		Status:  models.StatusMustSave,
		Actions: []models.CallbackAction{{Type: models.ActionConnected, UserID: "10"}},
	})
	var cerr models.CallbackError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 400, cerr.Status)
	assert.Contains(t, cerr.Message, "Url parameter not found")
	assert.Nil(t, f.media.savedRevision, "nothing must be written without a url")
}

func TestProcessSaveRequiresEditAccess(t *testing.T) {
	f := newFixture(t)
	f.users.canUpdate = false
	srv := docServer(t, []byte("edited"))

	_, err := f.svc.ProcessCallback(context.Background(), f.key, &models.CallbackBody{
		Status:  models.StatusMustSave,
		Url:     srv.URL,
		Actions: []models.CallbackAction{{Type: models.ActionConnected, UserID: "10"}},
	})
	var cerr models.CallbackError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 403, cerr.Status)
	assert.Contains(t, cerr.Message, "edit access")
	assert.Nil(t, f.media.savedRevision)

	entries, err := os.ReadDir(f.root)
	require.NoError(t, err)
	assert.Empty(t, entries, "no bytes may reach storage on a denied save")
}

func TestProcessSaveSuccess(t *testing.T) {
	f := newFixture(t)
	edited := []byte("edited document bytes")
	srv := docServer(t, edited)

	res, err := f.svc.ProcessCallback(context.Background(), f.key, &models.CallbackBody{
		Status:  models.StatusMustSave,
		Url:     srv.URL,
		Actions: []models.CallbackAction{{Type: models.ActionConnected, UserID: "10"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Error)

	require.NotNil(t, f.media.savedRevision)
	assert.Equal(t, "report.docx", f.media.savedRevision.Filename)
	assert.Equal(t, int64(len(edited)), f.media.savedRevision.Size)
	assert.Equal(t, "10", f.media.savedRevision.OwnerID)
	assert.Equal(t, "10", f.media.revisionUser)
	assert.True(t, f.media.savedRevision.Permanent)

	got, err := os.ReadFile(filepath.Join(f.root, "docs", "report.docx"))
	require.NoError(t, err)
	assert.Equal(t, edited, got)
}

func TestProcessSaveRenamesOnCollision(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "docs", "report.docx"), []byte("old"), 0o644))

	edited := []byte("new version")
	srv := docServer(t, edited)

	_, err := f.svc.ProcessCallback(context.Background(), f.key, &models.CallbackBody{
		Status:  models.StatusCorrupted,
		Url:     srv.URL,
		Actions: []models.CallbackAction{{Type: models.ActionConnected, UserID: "10"}},
	})
	require.NoError(t, err)

	require.NotNil(t, f.media.savedRevision)
	assert.Equal(t, "report_0.docx", f.media.savedRevision.Filename)
	assert.Equal(t, "docs/report_0.docx", f.media.savedRevision.Uri)
	assert.Equal(t, int64(len(edited)), f.media.savedRevision.Size)
}

func TestProcessSaveFetchFailure(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := f.svc.ProcessCallback(context.Background(), f.key, &models.CallbackBody{
		Status:  models.StatusMustSave,
		Url:     srv.URL,
		Actions: []models.CallbackAction{{Type: models.ActionConnected, UserID: "10"}},
	})
	var cerr models.CallbackError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 400, cerr.Status)
	assert.Contains(t, cerr.Message, "Error download file from")
	assert.Nil(t, f.media.savedRevision)
}

func TestProcessForceSavePlainIsAcknowledged(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.ProcessCallback(context.Background(), f.key, &models.CallbackBody{
		Status: models.StatusMustForceSave,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Error)
	assert.Empty(t, f.subs.submissions)
}

func TestProcessForceSaveAnonymousSubmission(t *testing.T) {
	f := newFixture(t)
	submitted := []byte("filled form")
	srv := docServer(t, submitted)
	forceSaveType := models.ForceSaveSubmitForm

	res, err := f.svc.ProcessCallback(context.Background(), f.key, &models.CallbackBody{
		Status:        models.StatusMustForceSave,
		Url:           srv.URL,
		ForceSaveType: &forceSaveType,
		// no resolvable userid: acting identity stays anonymous
		Actions: []models.CallbackAction{{Type: models.ActionConnected, UserID: "999"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Error)

	require.Len(t, f.subs.submissions, 1)
	sub := f.subs.submissions[0]
	assert.Equal(t, models.AnonymousUserID, sub.Uid)
	assert.Equal(t, "m1", sub.MediaID)
	assert.Equal(t, "created-file", sub.FileID)

	require.Len(t, f.media.createdFiles, 1)
	file := f.media.createdFiles[0]
	assert.Regexp(t, `^Quarterly_Report_submission_[0-9a-f]{8}\.docx$`, file.Filename)
	assert.Equal(t, int64(len(submitted)), file.Size)

	exp, ok := f.subs.markers["m1"]
	require.True(t, ok, "anonymous submission must leave a marker")
	assert.True(t, exp.After(time.Now()))

	got, err := os.ReadFile(filepath.Join(f.root, "submissions", mediaUuid, file.Filename))
	require.NoError(t, err)
	assert.Equal(t, submitted, got)
}

func TestProcessForceSaveSubmissionByKnownUser(t *testing.T) {
	f := newFixture(t)
	srv := docServer(t, []byte("filled form"))
	forceSaveType := models.ForceSaveSubmitForm

	_, err := f.svc.ProcessCallback(context.Background(), f.key, &models.CallbackBody{
		Status:        models.StatusCorruptedForceSave,
		Url:           srv.URL,
		ForceSaveType: &forceSaveType,
		Actions:       []models.CallbackAction{{Type: models.ActionConnected, UserID: "10"}},
	})
	require.NoError(t, err)

	require.Len(t, f.subs.submissions, 1)
	assert.Equal(t, "10", f.subs.submissions[0].Uid)
	assert.Empty(t, f.subs.markers, "authenticated submitters get no marker")
}

func TestProcessForceSaveSubmissionRequiresUrl(t *testing.T) {
	f := newFixture(t)
	forceSaveType := models.ForceSaveSubmitForm

	_, err := f.svc.ProcessCallback(context.Background(), f.key, &models.CallbackBody{
		Status:        models.StatusMustForceSave,
		ForceSaveType: &forceSaveType,
	})
	var cerr models.CallbackError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 400, cerr.Status)
	assert.Contains(t, cerr.Message, "Url parameter not found")
}
