package models

import "time"

// Announcement is a sitewide notice. Fields are free-form; no derived
// computation is performed over announcements.
type Announcement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Author      string    `json:"author"`
	AuthorImg   string    `json:"author_img"`
	CreatedAt   time.Time `json:"created_at"`
}
