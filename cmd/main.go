package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/rs/zerolog"

	"github.com/docbridge/editor-connector/pkg/connector"
	"github.com/docbridge/editor-connector/pkg/connector/database"
	"github.com/docbridge/editor-connector/pkg/connector/handler"
	"github.com/docbridge/editor-connector/pkg/connector/helpers/docstore"
	"github.com/docbridge/editor-connector/pkg/connector/helpers/signing"
	"github.com/docbridge/editor-connector/pkg/connector/middleware"
	"github.com/docbridge/editor-connector/pkg/connector/models"
	"github.com/docbridge/editor-connector/pkg/connector/repositories"
	"github.com/docbridge/editor-connector/pkg/connector/services"
	"github.com/docbridge/editor-connector/pkg/jobs"
)

const apiVersion = "1.0.0"

func init() {
	tonic.SetErrorHook(func(c *gin.Context, err error) (int, interface{}) {
		if cerr, ok := err.(models.CallbackError); ok {
			return cerr.Status, models.CallbackResult{Error: 1, Message: cerr.Message}
		}
		return http.StatusInternalServerError, models.CallbackResult{Error: 1, Message: err.Error()}
	})
}

func loadSettings() *models.Settings {
	markerTTL := 7 * 24 * time.Hour
	if raw := os.Getenv("SUBMISSION_MARKER_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			markerTTL = parsed
		}
	}

	return &models.Settings{
		BaseURL:             os.Getenv("BASE_URL"),
		DocServerURL:        os.Getenv("DOC_SERVER_URL"),
		ServerSecret:        os.Getenv("SERVER_SECRET"),
		JwtSecret:           os.Getenv("JWT_SECRET"),
		JwtHeader:           os.Getenv("JWT_HEADER"),
		StorageRoot:         os.Getenv("STORAGE_ROOT"),
		SubmissionMarkerTTL: markerTTL,
	}
}

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	settings := loadSettings()
	if settings.ServerSecret == "" {
		logger.Fatal().Msg("SERVER_SECRET must be configured, signed links depend on it")
	}

	dbcon := "postgres://" +
		os.Getenv("DB_USERNAME") + ":" +
		os.Getenv("DB_PASSWORD") + "@" +
		os.Getenv("DB_HOSTNAME") + "/" +
		os.Getenv("DB_DBNAME")
	db, err := database.Connect(dbcon)
	if err != nil {
		logger.Fatal().Err(err).Msg("no database connection")
	}

	mediaRepo := repositories.NewMediaRepository(db)
	userRepo := repositories.NewUserRepository(db)
	submissionRepo := repositories.NewSubmissionRepository(db)

	signer := signing.NewSigner(settings.ServerSecret)
	writer := docstore.NewWriter(settings.StorageRoot)
	auth := middleware.NewAuthenticator(settings.JwtSecret, settings.TokenHeader())
	links := services.NewLinkService(signer, settings.BaseURL)

	callbackService := services.NewCallbackService(
		mediaRepo, userRepo, submissionRepo, writer, signer, settings.SubmissionMarkerTTL, logger)
	downloadService := services.NewDownloadService(mediaRepo, userRepo, signer, writer, logger)
	editorService := services.NewEditorService(settings, links, mediaRepo, userRepo)

	callbackController := handler.NewCallbackController(callbackService, auth, logger)
	downloadController := handler.NewDownloadController(downloadService, auth, logger)
	editorController := handler.NewEditorController(editorService, userRepo)

	jobs.ScheduleDailyCleanup(context.Background(), submissionRepo, settings.StorageRoot, logger)

	router := connector.NewRouter(apiVersion, callbackController, downloadController, editorController)

	logger.Info().Msg("Server is running on port 1337")
	if err := http.ListenAndServe(":1337", router); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
