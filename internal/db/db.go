package db

import (
	"log"
	"os"

	"emberboard/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=emberboard port=5432 sslmode=disable TimeZone=UTC"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedForums()

	if err := SeedSettings(DB); err != nil {
		log.Printf("Failed to seed settings: %v", err)
	}
}

// Migrate 执行全部模型的 AutoMigrate，测试里也复用这份清单
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		&models.User{},
		&models.Forum{},
		&models.Topic{},
		&models.Post{},
		&models.Reaction{},
		&models.Notification{},
		&models.Setting{},
	)
}

func seedForums() {
	// 检查是否已有版块数据
	var count int64
	DB.Model(&models.Forum{}).Count(&count)
	if count > 0 {
		log.Println("Forums already seeded, skipping")
		return
	}

	forums := []models.Forum{
		{Name: "general", Description: "General discussion"},
		{Name: "feedback", Description: "Site feedback and announcements"},
	}

	for _, forum := range forums {
		if err := DB.Create(&forum).Error; err != nil {
			log.Printf("Failed to create forum %s: %v", forum.Name, err)
		}
	}
	log.Println("Initial forums created successfully")
}

// SeedSettings 写入缺失的默认配置，已存在的键不覆盖
func SeedSettings(d *gorm.DB) error {
	defaults := []models.Setting{
		{Name: models.SettingAntispamMinutes, Value: "15"},
		{Name: models.SettingMaxPerPost, Value: "20"},
		{Name: models.SettingMaxPerUser, Value: "10"},
	}
	for _, s := range defaults {
		var count int64
		d.Model(&models.Setting{}).Where("name = ?", s.Name).Count(&count)
		if count > 0 {
			continue
		}
		if err := d.Create(&s).Error; err != nil {
			return err
		}
	}
	return nil
}
