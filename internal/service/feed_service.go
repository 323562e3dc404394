// Package service holds the business logic between the HTTP handlers and the
// repositories.
package service

import (
	"context"
	"time"

	"discusshub/internal/models"
	"discusshub/internal/repository"
)

// FeedService ranks posts, applies votes and comments, and computes the
// site-wide aggregates.
type FeedService struct {
	posts repository.PostRepository
	users repository.UserRepository
}

// NewFeedService returns a FeedService backed by the given repositories.
func NewFeedService(posts repository.PostRepository, users repository.UserRepository) *FeedService {
	return &FeedService{posts: posts, users: users}
}

// ListPosts returns every post as a summary projection, ordered by the
// requested sort mode. Unknown modes fall back to recency.
func (s *FeedService) ListPosts(ctx context.Context, sortBy string) ([]models.PostSummary, error) {
	posts, err := s.posts.List(ctx, sortBy)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, p.Summary())
	}
	return summaries, nil
}

// GetPost returns the full post document, comments included.
func (s *FeedService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// CreatePost stores a new post. A zero Time is stamped with the current time
// so feeds sorted by recency never see a zero-valued entry.
func (s *FeedService) CreatePost(ctx context.Context, post *models.Post) error {
	if post.Time.IsZero() {
		post.Time = time.Now().UTC()
	}
	return s.posts.Create(ctx, post)
}

// DeletePost removes a post and its comments.
func (s *FeedService) DeletePost(ctx context.Context, id uint) error {
	return s.posts.Delete(ctx, id)
}

// Upvote increments the post's upvote counter by one.
func (s *FeedService) Upvote(ctx context.Context, id uint) error {
	return s.posts.IncrementVote(ctx, id, models.VoteUp)
}

// Downvote increments the post's downvote counter by one.
func (s *FeedService) Downvote(ctx context.Context, id uint) error {
	return s.posts.IncrementVote(ctx, id, models.VoteDown)
}

// AddComment appends a comment to the post's comment sequence.
func (s *FeedService) AddComment(ctx context.Context, id uint, body string) error {
	return s.posts.AppendComment(ctx, id, body)
}

// CountByAuthor reports how many posts carry the given author email. An
// unknown email yields zero, not an error.
func (s *FeedService) CountByAuthor(ctx context.Context, email string) (int64, error) {
	return s.posts.CountByAuthorEmail(ctx, email)
}

// AllPosts returns every post with its full comment sequence, no ranking
// applied.
func (s *FeedService) AllPosts(ctx context.Context) ([]*models.Post, error) {
	return s.posts.ListAll(ctx)
}

// SiteStats recomputes the four site-wide totals from the store. The result
// is all-or-nothing: if any aggregate fails, no partial stats are returned.
func (s *FeedService) SiteStats(ctx context.Context) (*models.SiteStats, error) {
	totalPosts, err := s.posts.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	totalVotes, err := s.posts.SumVotes(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.users.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	totalComments, err := s.posts.CountComments(ctx)
	if err != nil {
		return nil, err
	}
	return &models.SiteStats{
		TotalPosts:    totalPosts,
		TotalVotes:    totalVotes,
		TotalUsers:    totalUsers,
		TotalComments: totalComments,
	}, nil
}
