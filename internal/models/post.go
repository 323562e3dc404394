// Package models contains data structures for the application's domain models.
package models

import (
	"encoding/json"
	"time"
)

// Post represents a forum post. Author identity (name, email, avatar) is
// denormalized onto the row, matching the stored document shape. The two
// vote counters are only ever incremented; the net score and votes_count
// are always derived, never stored.
type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Author        string    `gorm:"not null" json:"author"`
	Email         string    `gorm:"index;not null" json:"email"`
	AuthorImg     string    `json:"author_img"`
	Title         string    `gorm:"column:post_title;not null" json:"post_title"`
	Tags          []string  `gorm:"serializer:json" json:"tags"`
	Time          time.Time `json:"time"`
	UpvoteCount   int       `gorm:"not null;default:0" json:"upvote_count"`
	DownvoteCount int       `gorm:"not null;default:0" json:"downvote_count"`
	Comments      []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments"`
	// CommentsCount is not persisted; computed at query time from the
	// comments table so it can never drift from the sequence length.
	CommentsCount int `gorm:"->" json:"-"`
}

// Comment is one entry in a post's append-only comment sequence. Insertion
// order is the auto-increment ID order. A comment serializes as its bare
// text, so a post's comments render as an ordered array of strings.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PostID    uint      `gorm:"not null;index" json:"-"`
	Body      string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `json:"-"`
}

// MarshalJSON renders the comment as its text only.
func (c Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Body)
}

// UnmarshalJSON restores a comment from its text form, so cached post
// documents round-trip.
func (c *Comment) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &c.Body)
}

// PostSummary is the list-view projection of a post: identifying fields plus
// derived counters, without comment bodies.
type PostSummary struct {
	ID            uint      `json:"id"`
	Author        string    `json:"author"`
	Title         string    `json:"post_title"`
	Tags          []string  `json:"tags"`
	Time          time.Time `json:"time"`
	CommentsCount int       `json:"comments_count"`
	UpvoteCount   int       `json:"upvote_count"`
	DownvoteCount int       `json:"downvote_count"`
	VotesCount    int       `json:"votes_count"`
	AuthorImg     string    `json:"author_img"`
}

// Summary builds the list-view projection for the post. CommentsCount must
// already be populated by the query.
func (p *Post) Summary() PostSummary {
	return PostSummary{
		ID:            p.ID,
		Author:        p.Author,
		Title:         p.Title,
		Tags:          p.Tags,
		Time:          p.Time,
		CommentsCount: p.CommentsCount,
		UpvoteCount:   p.UpvoteCount,
		DownvoteCount: p.DownvoteCount,
		VotesCount:    p.UpvoteCount + p.DownvoteCount,
		AuthorImg:     p.AuthorImg,
	}
}

// VoteDirection selects which of the two vote counters an increment targets.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)
