package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialshop/internal/apperror"
	"socialshop/internal/models"
	"socialshop/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	PostPageSize = 10

	postCachePrefix = "posts:"
)

// PostInput is the writable part of a post. Every field is written as given,
// so an omitted field is cleared.
type PostInput struct {
	Title   string
	Content string
	Images  []string
}

type CommentView struct {
	CommentID string `json:"commentId"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	UserImage string `json:"userImage"`
	Content   string `json:"content"`
}

type LikeView struct {
	UserID string `json:"userId"`
}

type PostView struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	ContentHTML string        `json:"contentHtml"`
	Images      []string      `json:"images"`
	UserID      string        `json:"userId"`
	CreatedAt   time.Time     `json:"createdAt"`
	User        string        `json:"user"`
	UserImage   string        `json:"userImage"`
	Comments    []CommentView `json:"comments"`
	Likes       []LikeView    `json:"likes"`
}

type PostPage struct {
	Size  int64      `json:"size"`
	Posts []PostView `json:"posts"`
}

type PostService struct {
	db       *gorm.DB
	users    *UserService
	cache    utils.Cache
	cacheTTL time.Duration
	events   *EventDispatcher
}

// NewPostService wires the posts resource. cache and events may be nil.
func NewPostService(db *gorm.DB, users *UserService, cache utils.Cache, cacheTTL time.Duration, events *EventDispatcher) *PostService {
	return &PostService{
		db:       db,
		users:    users,
		cache:    cache,
		cacheTTL: cacheTTL,
		events:   events,
	}
}

// List returns one page of posts, newest first, with the total post count.
func (s *PostService) List(ctx context.Context, page int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}

	cacheKey := fmt.Sprintf("%spage:%d", postCachePrefix, page)
	if s.cacheEnabled() {
		var cached PostPage
		if s.cache.Get(ctx, cacheKey, &cached) {
			return &cached, nil
		}
	}

	tx := s.db.WithContext(ctx)

	var total int64
	if err := tx.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	var posts []models.Post
	err := withPostRelations(tx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(PostPageSize).
		Offset((page - 1) * PostPageSize).
		Find(&posts).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}

	result := &PostPage{Size: total, Posts: make([]PostView, 0, len(posts))}
	for i := range posts {
		result.Posts = append(result.Posts, newPostView(&posts[i]))
	}

	if s.cacheEnabled() {
		s.cache.Set(ctx, cacheKey, result, s.cacheTTL)
	}
	return result, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*PostView, error) {
	var post models.Post
	err := withPostRelations(s.db.WithContext(ctx)).First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(apperror.MsgPostNotFound)
		}
		return nil, apperror.Internal(err)
	}
	view := newPostView(&post)
	return &view, nil
}

// Create stores a post owned by the user with the given email. Title and
// content are not validated.
func (s *PostService) Create(ctx context.Context, email string, in PostInput) (*models.Post, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		Title:   in.Title,
		Content: in.Content,
		Images:  normalizeImages(in.Images),
		UserID:  user.ID,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	s.afterWrite(ctx, EventPostCreated, &post)
	return &post, nil
}

// Update overwrites title, content and images of a post the caller owns.
// A post owned by someone else is reported as not found.
func (s *PostService) Update(ctx context.Context, email, postID string, in PostInput) (*models.Post, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx)

	post, err := findOwnedPost(tx, postID, user.ID)
	if err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Content = in.Content
	post.Images = normalizeImages(in.Images)
	if err := tx.Model(post).Select("title", "content", "images").Updates(post).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	s.afterWrite(ctx, EventPostUpdated, post)
	return post, nil
}

// Delete removes a post the caller owns together with its comments and likes.
// All steps share one transaction.
func (s *PostService) Delete(ctx context.Context, email, postID string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	var post *models.Post
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if post, err = findOwnedPost(tx, postID, user.ID); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", post.ID).Error
	})
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return err
		}
		return apperror.Internal(err)
	}

	s.afterWrite(ctx, EventPostDeleted, post)
	return nil
}

func (s *PostService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

// afterWrite drops every cached page before the write is acknowledged, then
// announces it.
func (s *PostService) afterWrite(ctx context.Context, eventType string, post *models.Post) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, postCachePrefix)
	}
	s.events.Schedule(PostEvent{Type: eventType, PostID: post.ID, UserID: post.UserID})
	zap.L().Debug("post written", zap.String("event", eventType), zap.String("post_id", post.ID))
}

func findOwnedPost(tx *gorm.DB, postID, userID string) (*models.Post, error) {
	var post models.Post
	if err := tx.Where("id = ? AND user_id = ?", postID, userID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(apperror.MsgPostNotFound)
		}
		return nil, apperror.Internal(err)
	}
	return &post, nil
}

func withPostRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Comments.User").
		Preload("Likes")
}

func newPostView(p *models.Post) PostView {
	view := PostView{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		ContentHTML: utils.RenderMarkdown(p.Content),
		Images:      normalizeImages(p.Images),
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
		User:        p.User.Name,
		UserImage:   p.User.Image,
		Comments:    make([]CommentView, 0, len(p.Comments)),
		Likes:       make([]LikeView, 0, len(p.Likes)),
	}
	for _, c := range p.Comments {
		view.Comments = append(view.Comments, CommentView{
			CommentID: c.ID,
			UserID:    c.UserID,
			Username:  c.User.Name,
			UserImage: c.User.Image,
			Content:   c.Content,
		})
	}
	for _, l := range p.Likes {
		view.Likes = append(view.Likes, LikeView{UserID: l.UserID})
	}
	return view
}

func normalizeImages(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
