package repositories

import (
	"context"
	"errors"

	"github.com/docbridge/editor-connector/pkg/connector/models"
	"gorm.io/gorm"
)

// RoleEditor may update any media; every other role only its own.
const RoleEditor = "editor"

// UserRepository resolves acting identities and answers capability checks
// for them. The identity is always passed in explicitly, the repository
// holds no notion of a current user.
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CanUpdateMedia(user *models.User, media *models.Media) bool
	CanDownloadFile(user *models.User, file *models.StoredFile) bool
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetUserByID returns nil (no error) for unknown or empty ids; callers
// fall back to the anonymous identity.
func (r *userRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, nil
	}
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) CanUpdateMedia(user *models.User, media *models.Media) bool {
	if user.IsAnonymous() {
		return false
	}
	return user.Role == RoleEditor || user.Id == media.OwnerID
}

func (r *userRepository) CanDownloadFile(user *models.User, file *models.StoredFile) bool {
	if user.IsAnonymous() {
		return false
	}
	return user.Role == RoleEditor || user.Id == file.OwnerID
}
