package services

import (
	"fmt"
	"strings"
	"testing"

	"emberboard/internal/db"
	"emberboard/internal/models"
	"emberboard/internal/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 每个测试一个独立的内存 sqlite，替换全局 db.DB
func setupTestDB(t *testing.T) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	if err := db.SeedSettings(gdb); err != nil {
		t.Fatalf("Failed to seed settings: %v", err)
	}

	db.DB = gdb
	utils.GetCache().Purge()
}

func createTestUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := models.User{
		Username:          strings.Split(email, "@")[0],
		Email:             email,
		Password:          "x",
		NotifyBell:        true,
		NotifyEmailDigest: true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return &user
}

// createTestPost 建齐 forum/topic/post 三层，返回帖子
func createTestPost(t *testing.T, author *models.User) *models.Post {
	t.Helper()

	forum := models.Forum{Name: fmt.Sprintf("forum-%d-%d", author.ID, len(t.Name()))}
	if err := db.DB.FirstOrCreate(&forum, models.Forum{Name: forum.Name}).Error; err != nil {
		t.Fatalf("Failed to create forum: %v", err)
	}

	topic := models.Topic{ForumID: forum.ID, UserID: author.ID, Title: "test topic"}
	if err := db.DB.Create(&topic).Error; err != nil {
		t.Fatalf("Failed to create topic: %v", err)
	}

	post := models.Post{
		Pid:     utils.RandString(8),
		TopicID: topic.ID,
		ForumID: forum.ID,
		UserID:  author.ID,
		Content: "<p>hello</p>",
	}
	if err := db.DB.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return &post
}

func mustPostInfo(t *testing.T, postID uint) *PostInfo {
	t.Helper()
	info, err := GetPostInfo(postID)
	if err != nil {
		t.Fatalf("GetPostInfo(%d) failed: %v", postID, err)
	}
	return info
}
