package repositories

import (
	"context"
	"time"

	"github.com/docbridge/editor-connector/pkg/connector/models"
	"github.com/teris-io/shortid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionRepository stores form submission records and the anonymous
// "already submitted" markers.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, submission *models.Submission) error
	MarkSubmitted(ctx context.Context, mediaID string, expiresAt time.Time) error
	HasSubmitted(ctx context.Context, mediaID string, now time.Time) (bool, error)
	PurgeExpiredMarkers(ctx context.Context, now time.Time) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	if submission.Id == "" {
		submission.Id = shortid.MustGenerate()
	}
	if submission.Uid == "" {
		submission.Uid = models.AnonymousUserID
	}
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) MarkSubmitted(ctx context.Context, mediaID string, expiresAt time.Time) error {
	marker := models.SubmissionMarker{MediaID: mediaID, ExpiresAt: expiresAt}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "media_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"expires_at"}),
		}).
		Create(&marker).Error
}

func (r *submissionRepository) HasSubmitted(ctx context.Context, mediaID string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SubmissionMarker{}).
		Where("media_id = ? AND expires_at > ?", mediaID, now).
		Count(&count).Error
	return count > 0, err
}

func (r *submissionRepository) PurgeExpiredMarkers(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.SubmissionMarker{})
	return res.RowsAffected, res.Error
}
