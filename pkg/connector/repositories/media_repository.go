package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/docbridge/editor-connector/pkg/connector/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaRepository is the narrow storage surface the callback and download
// flows need: resolve entities by UUID and attach a freshly written file
// as a new revision.
type MediaRepository interface {
	GetMediaByUuid(ctx context.Context, mediaUuid string) (*models.Media, error)
	GetFileByUuid(ctx context.Context, fileUuid string) (*models.StoredFile, error)
	CreateFile(ctx context.Context, file *models.StoredFile) error
	SaveRevision(ctx context.Context, media *models.Media, file *models.StoredFile, userID string, at time.Time) error
}

type mediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) GetMediaByUuid(ctx context.Context, mediaUuid string) (*models.Media, error) {
	var media models.Media
	err := r.db.WithContext(ctx).Preload("File").Where("uuid = ?", mediaUuid).First(&media).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *mediaRepository) GetFileByUuid(ctx context.Context, fileUuid string) (*models.StoredFile, error) {
	var file models.StoredFile
	err := r.db.WithContext(ctx).Where("uuid = ?", fileUuid).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *mediaRepository) CreateFile(ctx context.Context, file *models.StoredFile) error {
	if file.Id == "" {
		file.Id = uuid.NewString()
	}
	if file.Uuid == "" {
		file.Uuid = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(file).Error
}

// SaveRevision makes file the media's current file and records the
// revision, all in one transaction. The revision log message stays empty,
// matching what the editing flow writes.
func (r *mediaRepository) SaveRevision(ctx context.Context, media *models.Media, file *models.StoredFile, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if file.Id == "" {
			file.Id = uuid.NewString()
		}
		if file.Uuid == "" {
			file.Uuid = uuid.NewString()
		}
		if err := tx.Create(file).Error; err != nil {
			return err
		}

		media.FileID = &file.Id
		media.File = file
		media.UpdatedAt = at
		if err := tx.Model(&models.Media{}).
			Where("id = ?", media.Id).
			Updates(map[string]any{"file_id": file.Id, "updated_at": at}).Error; err != nil {
			return err
		}

		revision := models.MediaRevision{
			MediaID:   media.Id,
			FileID:    file.Id,
			UserID:    userID,
			CreatedAt: at,
		}
		return tx.Create(&revision).Error
	})
}
