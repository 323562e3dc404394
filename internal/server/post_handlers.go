package server

import (
	"discusshub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /posts. With ?sortBy=popularity the feed orders by
// net score; otherwise newest first. Each entry is the summary projection,
// full comment bodies stay out of the listing.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	summaries, err := s.feeds.ListPosts(c.UserContext(), c.Query("sortBy"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(summaries)
}

// GetAllPosts handles GET /allposts and returns every full post document.
func (s *Server) GetAllPosts(c *fiber.Ctx) error {
	posts, err := s.feeds.AllPosts(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// GetPostDetail handles GET /detailspost/:id.
func (s *Server) GetPostDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return fail(c, err)
	}

	post, err := s.feeds.GetPost(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// CreatePost handles POST /posts.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var post models.Post
	if err := c.BodyParser(&post); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	post.ID = 0

	if err := s.feeds.CreatePost(c.UserContext(), &post); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// DeletePost handles DELETE /posts/:id.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return fail(c, err)
	}

	if err := s.feeds.DeletePost(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post deleted successfully"})
}

// Upvote handles POST /upvote/:id.
func (s *Server) Upvote(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return fail(c, err)
	}

	if err := s.feeds.Upvote(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post upvoted successfully"})
}

// Downvote handles POST /downvote/:id.
func (s *Server) Downvote(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return fail(c, err)
	}

	if err := s.feeds.Downvote(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post downvoted successfully"})
}

// CommentRequest is the payload for appending a comment to a post.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// AddComment handles POST /comment/:id. The comment text is opaque; it is
// appended to the post's comment sequence as-is.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return fail(c, err)
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.feeds.AddComment(c.UserContext(), id, req.Comment); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Comment added successfully"})
}

// CountPostsByAuthor handles GET /posts/count/:email.
func (s *Server) CountPostsByAuthor(c *fiber.Ctx) error {
	count, err := s.feeds.CountByAuthor(c.UserContext(), c.Params("email"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"count": count})
}

// GetStats handles GET /stats. The four totals are recomputed from the store
// on every call.
func (s *Server) GetStats(c *fiber.Ctx) error {
	stats, err := s.feeds.SiteStats(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}
