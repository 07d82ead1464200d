package services

import (
	"testing"
	"time"

	"emberboard/internal/db"
	"emberboard/internal/models"
)

func countReactions(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := db.DB.Model(&models.Reaction{}).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count reactions: %v", err)
	}
	return n
}

func TestAddReactionDuplicate(t *testing.T) {
	setupTestDB(t)

	author := createTestUser(t, "author@example.com")
	reacter := createTestUser(t, "reacter@example.com")
	post := createTestPost(t, author)
	info := mustPostInfo(t, post.ID)

	if err := AddReaction(reacter, info, "👍"); err != nil {
		t.Fatalf("First add failed: %v", err)
	}
	if err := AddReaction(reacter, info, "👍"); err != ErrDuplicate {
		t.Fatalf("Expected ErrDuplicate, got %v", err)
	}
	if n := countReactions(t); n != 1 {
		t.Errorf("Expected exactly 1 row, got %d", n)
	}
}

func TestAddReactionPostQuota(t *testing.T) {
	setupTestDB(t)
	if err := SetSetting(models.SettingMaxPerPost, "2"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	author := createTestUser(t, "author@example.com")
	userA := createTestUser(t, "a@example.com")
	userB := createTestUser(t, "b@example.com")
	post := createTestPost(t, author)
	info := mustPostInfo(t, post.ID)

	// A 👍 -> 1 种
	if err := AddReaction(userA, info, "👍"); err != nil {
		t.Fatalf("A add 👍 failed: %v", err)
	}
	// B 👍 -> 仍然 1 种
	if err := AddReaction(userB, info, "👍"); err != nil {
		t.Fatalf("B add 👍 failed: %v", err)
	}
	// A ❤️ -> 2 种，达到上限
	if err := AddReaction(userA, info, "❤️"); err != nil {
		t.Fatalf("A add ❤️ failed: %v", err)
	}
	// B 😂 -> 第 3 种，拒绝
	if err := AddReaction(userB, info, "😂"); err != ErrPostQuota {
		t.Fatalf("Expected ErrPostQuota, got %v", err)
	}
	// B ❤️ -> 已有类型，达到上限也允许
	if err := AddReaction(userB, info, "❤️"); err != nil {
		t.Fatalf("B add existing ❤️ failed: %v", err)
	}

	counts, err := GetReactionCounts(post.ID)
	if err != nil {
		t.Fatalf("GetReactionCounts failed: %v", err)
	}
	if len(counts) != 2 {
		t.Errorf("Expected 2 distinct emoji, got %d", len(counts))
	}

	// A 移除 👍 -> 👍 还剩 B 的一条
	if err := RemoveReaction(userA, info, "👍"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	counts, _ = GetReactionCounts(post.ID)
	if counts["👍"] != 1 {
		t.Errorf("Expected 👍 count 1 after A removed, got %d", counts["👍"])
	}
}

func TestAddReactionUserQuota(t *testing.T) {
	setupTestDB(t)
	if err := SetSetting(models.SettingMaxPerUser, "3"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	author := createTestUser(t, "author@example.com")
	reacter := createTestUser(t, "reacter@example.com")
	post := createTestPost(t, author)
	info := mustPostInfo(t, post.ID)

	for _, e := range []string{"👍", "❤️", "😂"} {
		if err := AddReaction(reacter, info, e); err != nil {
			t.Fatalf("Add %s failed: %v", e, err)
		}
	}
	if err := AddReaction(reacter, info, "🎉"); err != ErrUserQuota {
		t.Fatalf("Expected ErrUserQuota, got %v", err)
	}
	if n := countReactions(t); n != 3 {
		t.Errorf("Expected 3 rows, got %d", n)
	}
}

func TestRemoveReactionIdempotent(t *testing.T) {
	setupTestDB(t)

	author := createTestUser(t, "author@example.com")
	reacter := createTestUser(t, "reacter@example.com")
	post := createTestPost(t, author)
	info := mustPostInfo(t, post.ID)

	// 不存在的行，删除也应该成功
	if err := RemoveReaction(reacter, info, "👍"); err != nil {
		t.Fatalf("Expected idempotent remove, got %v", err)
	}
	if n := countReactions(t); n != 0 {
		t.Errorf("Expected table unchanged, got %d rows", n)
	}
}

func TestSettingsReadLivePerOperation(t *testing.T) {
	setupTestDB(t)
	if err := SetSetting(models.SettingMaxPerPost, "1"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	author := createTestUser(t, "author@example.com")
	reacter := createTestUser(t, "reacter@example.com")
	post := createTestPost(t, author)
	info := mustPostInfo(t, post.ID)

	if err := AddReaction(reacter, info, "👍"); err != nil {
		t.Fatalf("First add failed: %v", err)
	}
	if err := AddReaction(reacter, info, "❤️"); err != ErrPostQuota {
		t.Fatalf("Expected ErrPostQuota with limit 1, got %v", err)
	}

	// 管理员调大上限，下一次 add 立即生效
	if err := SetSetting(models.SettingMaxPerPost, "5"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := AddReaction(reacter, info, "❤️"); err != nil {
		t.Fatalf("Expected add to honor raised limit, got %v", err)
	}
}

func TestGetReactionUsersOrdering(t *testing.T) {
	setupTestDB(t)

	author := createTestUser(t, "author@example.com")
	first := createTestUser(t, "first@example.com")
	second := createTestUser(t, "second@example.com")
	post := createTestPost(t, author)

	// 手工指定时间确保顺序稳定
	base := time.Now().Add(-time.Hour)
	rows := []models.Reaction{
		{PostID: post.ID, TopicID: post.TopicID, UserID: second.ID, Emoji: "👍", CreatedAt: base.Add(time.Minute)},
		{PostID: post.ID, TopicID: post.TopicID, UserID: first.ID, Emoji: "👍", CreatedAt: base},
	}
	for i := range rows {
		if err := db.DB.Create(&rows[i]).Error; err != nil {
			t.Fatalf("Failed to insert reaction: %v", err)
		}
	}

	users, err := GetReactionUsers(post.ID, "👍")
	if err != nil {
		t.Fatalf("GetReactionUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}
	if users[0].UserID != first.ID || users[1].UserID != second.ID {
		t.Errorf("Expected ascending reaction time order, got %+v", users)
	}
}

func TestUserReacted(t *testing.T) {
	setupTestDB(t)

	author := createTestUser(t, "author@example.com")
	reacter := createTestUser(t, "reacter@example.com")
	post := createTestPost(t, author)
	info := mustPostInfo(t, post.ID)

	if UserReacted(post.ID, reacter.ID, "👍") {
		t.Error("Expected no reaction yet")
	}
	if err := AddReaction(reacter, info, "👍"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !UserReacted(post.ID, reacter.ID, "👍") {
		t.Error("Expected reaction to be recorded")
	}
}

func TestInvalidateTopicPostInfo(t *testing.T) {
	setupTestDB(t)

	author := createTestUser(t, "author@example.com")
	post := createTestPost(t, author)

	// 先把缓存填上
	info := mustPostInfo(t, post.ID)
	if info.TopicLocked {
		t.Fatal("Expected topic unlocked initially")
	}

	if err := db.DB.Model(&models.Topic{}).Where("id = ?", post.TopicID).
		Update("locked", true).Error; err != nil {
		t.Fatalf("Failed to lock topic: %v", err)
	}

	// 未失效前缓存仍是旧值
	if mustPostInfo(t, post.ID).TopicLocked {
		t.Fatal("Expected cached info before invalidation")
	}

	InvalidateTopicPostInfo(post.TopicID)
	if !mustPostInfo(t, post.ID).TopicLocked {
		t.Error("Expected fresh info to see the lock after invalidation")
	}
}

func TestReactionUniqueIndexEnforced(t *testing.T) {
	setupTestDB(t)

	author := createTestUser(t, "author@example.com")
	reacter := createTestUser(t, "reacter@example.com")
	post := createTestPost(t, author)

	// 绕过 AddReaction 的提前查重，直接写库，验证唯一索引本身兜底
	row := models.Reaction{PostID: post.ID, TopicID: post.TopicID, UserID: reacter.ID, Emoji: "👍"}
	if err := db.DB.Create(&row).Error; err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	dup := models.Reaction{PostID: post.ID, TopicID: post.TopicID, UserID: reacter.ID, Emoji: "👍"}
	err := db.DB.Create(&dup).Error
	if err == nil {
		t.Fatal("Expected unique index to reject duplicate insert")
	}
	if !isDuplicateKeyErr(err) {
		t.Errorf("Expected duplicate key error, got %v", err)
	}
	if n := countReactions(t); n != 1 {
		t.Errorf("Expected exactly 1 row, got %d", n)
	}
}

func TestAddReactionCreatesImmediateNotification(t *testing.T) {
	setupTestDB(t)

	author := createTestUser(t, "author@example.com")
	reacter := createTestUser(t, "reacter@example.com")
	post := createTestPost(t, author)
	info := mustPostInfo(t, post.ID)

	if err := AddReaction(reacter, info, "👍"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	var notifications []models.Notification
	db.DB.Where("user_id = ?", author.ID).Find(&notifications)
	if len(notifications) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifications))
	}
	n := notifications[0]
	if n.Type != models.NotificationTypeReaction || n.Emoji != "👍" || n.PostID != post.ID {
		t.Errorf("Unexpected notification: %+v", n)
	}

	// 自己点自己的帖子不通知
	if err := AddReaction(author, info, "❤️"); err != nil {
		t.Fatalf("Self add failed: %v", err)
	}
	var count int64
	db.DB.Model(&models.Notification{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected self-reaction to be skipped, got %d notifications", count)
	}
}

func TestAddReactionSucceedsWhenNotifyFails(t *testing.T) {
	setupTestDB(t)

	author := createTestUser(t, "author@example.com")
	reacter := createTestUser(t, "reacter@example.com")
	post := createTestPost(t, author)
	info := mustPostInfo(t, post.ID)

	// 通知表不可用，即时通知必然失败，但 add 本身不受影响
	if err := db.DB.Migrator().DropTable(&models.Notification{}); err != nil {
		t.Fatalf("Failed to drop notifications table: %v", err)
	}

	if err := AddReaction(reacter, info, "👍"); err != nil {
		t.Fatalf("Expected add to succeed despite notify failure, got %v", err)
	}
	if n := countReactions(t); n != 1 {
		t.Errorf("Expected reaction row to be inserted, got %d", n)
	}
}
