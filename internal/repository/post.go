// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"discusshub/internal/cache"
	"discusshub/internal/models"

	"gorm.io/gorm"
)

// Sort modes accepted by PostRepository.List.
const (
	SortRecency    = "recency"
	SortPopularity = "popularity"
)

// postListSelect aliases the comment-sequence length into the non-persisted
// CommentsCount field in the same query, so the count can never drift from
// the stored sequence.
const postListSelect = "posts.*, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count"

// PostRepository defines persistence operations for posts and their derived
// aggregates.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	List(ctx context.Context, sort string) ([]*models.Post, error)
	ListAll(ctx context.Context) ([]*models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	IncrementVote(ctx context.Context, id uint, direction models.VoteDirection) error
	AppendComment(ctx context.Context, id uint, body string) error
	CountByAuthorEmail(ctx context.Context, email string) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	SumVotes(ctx context.Context) (int64, error)
	CountComments(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// applySort appends the ORDER BY clause for the requested sort mode. Net
// score is computed in the store; ties break on descending ID so the order
// is total and stable.
func (r *postRepository) applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case SortPopularity:
		return db.Order("(upvote_count - downvote_count) DESC, id DESC")
	default: // recency and anything unrecognized
		return db.Order("time DESC, id DESC")
	}
}

func (r *postRepository) List(ctx context.Context, sort string) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applySort(
		r.db.WithContext(ctx).Model(&models.Post{}).Select(postListSelect),
		sort,
	).Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		}).
		Order("id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("comments.id ASC")
			}).
			First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// IncrementVote bumps exactly one counter by one in a single field-level
// UPDATE, so concurrent votes on the same post are never lost.
func (r *postRepository) IncrementVote(ctx context.Context, id uint, direction models.VoteDirection) error {
	var column string
	switch direction {
	case models.VoteUp:
		column = "upvote_count"
	case models.VoteDown:
		column = "downvote_count"
	default:
		return models.NewValidationError("unknown vote direction")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// AppendComment adds the text to the end of the post's comment sequence.
// The insert itself is the atomic step; existing entries are never touched.
func (r *postRepository) AppendComment(ctx context.Context, id uint, body string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return models.NewInternalError(err)
	}
	if count == 0 {
		return models.NewNotFoundError("Post", id)
	}

	comment := models.Comment{PostID: id, Body: body}
	if err := r.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) CountByAuthorEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) SumVotes(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("COALESCE(SUM(upvote_count + downvote_count), 0)").
		Scan(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

func (r *postRepository) CountComments(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
