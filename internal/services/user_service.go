package services

import (
	"context"
	"errors"

	"socialshop/internal/apperror"
	"socialshop/internal/models"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UserProfile is the public view of a user; the email stays private.
type UserProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	PostCount    int64  `json:"postCount"`
	CommentCount int64  `json:"commentCount"`
	LikeCount    int64  `json:"likeCount"`
}

// FindByEmail resolves the caller. A missing user is Unauthorized, not
// NotFound: the email is the caller's credential.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, apperror.Unauthorized()
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized()
		}
		return nil, apperror.Internal(err)
	}
	return &user, nil
}

func (s *UserService) Profile(ctx context.Context, id string) (*UserProfile, error) {
	tx := s.db.WithContext(ctx)

	var user models.User
	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(apperror.MsgUserNotFound)
		}
		return nil, apperror.Internal(err)
	}

	profile := &UserProfile{ID: user.ID, Name: user.Name, Image: user.Image}
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.Post{}, &profile.PostCount},
		{&models.Comment{}, &profile.CommentCount},
		{&models.Like{}, &profile.LikeCount},
	}
	for _, c := range counts {
		if err := tx.Model(c.model).Where("user_id = ?", user.ID).Count(c.dst).Error; err != nil {
			return nil, apperror.Internal(err)
		}
	}
	return profile, nil
}
