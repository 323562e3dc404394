package seed

import (
	"testing"

	"discusshub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}, &models.Announcement{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func TestPopulateCreatesConnectedData(t *testing.T) {
	db := setupSeedTestDB(t)
	f := NewFactory(db)

	require.NoError(t, f.Populate(5, 10))

	var userCount, postCount, announcementCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.NoError(t, db.Model(&models.Announcement{}).Count(&announcementCount).Error)

	assert.Equal(t, int64(5), userCount)
	assert.Equal(t, int64(10), postCount)
	assert.Equal(t, int64(3), announcementCount)

	// Exactly one seeded admin, so privileged routes work out of the box.
	var adminCount int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount).Error)
	assert.Equal(t, int64(1), adminCount)

	// Every post's author is a seeded user.
	var orphaned int64
	require.NoError(t, db.Model(&models.Post{}).
		Where("email NOT IN (?)", db.Model(&models.User{}).Select("email")).
		Count(&orphaned).Error)
	assert.Equal(t, int64(0), orphaned)
}

func TestClearAllEmptiesEveryTable(t *testing.T) {
	db := setupSeedTestDB(t)
	f := NewFactory(db)
	require.NoError(t, f.Populate(2, 4))

	require.NoError(t, f.ClearAll())

	for _, model := range []any{&models.User{}, &models.Post{}, &models.Comment{}, &models.Announcement{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	}
}
