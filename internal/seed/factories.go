// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"discusshub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ClearAll removes every seeded row. Comment rows go first so the post
// deletes never trip the foreign key.
func (f *Factory) ClearAll() error {
	for _, model := range []any{
		&models.Comment{}, &models.Post{}, &models.Announcement{}, &models.User{},
	} {
		if err := f.db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Name: gofakeit.Name(),
		// Numeric suffix keeps generated addresses clear of the unique index.
		Email:  fmt.Sprintf("%s%d@%s", gofakeit.Username(), gofakeit.Number(1000, 9999), gofakeit.DomainName()),
		Avatar: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample post authored by the given
// user, with a creation time spread over the past 90 days and a handful of
// votes already applied.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	daysBack := f.r.Intn(90)
	hoursBack := f.r.Intn(24)

	post := &models.Post{
		Author:        user.Name,
		Email:         user.Email,
		AuthorImg:     user.Avatar,
		Title:         gofakeit.Sentence(6),
		Tags:          []string{gofakeit.Word(), gofakeit.Word()},
		Time:          time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour),
		UpvoteCount:   f.r.Intn(50),
		DownvoteCount: f.r.Intn(20),
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment appends a generated comment to the given post.
func (f *Factory) CreateComment(post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID: post.ID,
		Body:   gofakeit.Sentence(8),
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateAnnouncement constructs and persists a sample announcement.
func (f *Factory) CreateAnnouncement(overrides ...func(*models.Announcement)) (*models.Announcement, error) {
	announcement := &models.Announcement{
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Paragraph(1, 2, 8, " "),
		Author:      gofakeit.Name(),
		AuthorImg:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(announcement)
	}

	if err := f.db.Create(announcement).Error; err != nil {
		return nil, err
	}
	return announcement, nil
}

// Populate fills the database with a connected data set: users, posts with
// comments, and a few announcements. The first user is promoted to admin so
// the privileged endpoints are exercisable out of the box.
func (f *Factory) Populate(numUsers, numPosts int) error {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		var user *models.User
		var err error
		if i == 0 {
			user, err = f.CreateUser(func(u *models.User) { u.Role = models.RoleAdmin })
		} else {
			user, err = f.CreateUser()
		}
		if err != nil {
			return fmt.Errorf("seeding user %d: %w", i, err)
		}
		users = append(users, user)
	}

	for i := 0; i < numPosts; i++ {
		author := users[f.r.Intn(len(users))]
		post, err := f.CreatePost(author)
		if err != nil {
			return fmt.Errorf("seeding post %d: %w", i, err)
		}
		for j := 0; j < f.r.Intn(6); j++ {
			if _, err := f.CreateComment(post); err != nil {
				return fmt.Errorf("seeding comment on post %d: %w", post.ID, err)
			}
		}
	}

	for i := 0; i < 3; i++ {
		if _, err := f.CreateAnnouncement(); err != nil {
			return fmt.Errorf("seeding announcement %d: %w", i, err)
		}
	}

	return nil
}
