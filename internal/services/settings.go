package services

import (
	"strconv"
	"strings"

	"emberboard/internal/db"
	"emberboard/internal/models"
)

// 配置每次实时读库，不做进程内缓存：调用量很低，
// 换来的是管理员改完立即生效。

func GetSettingInt(name string, fallback int) int {
	var s models.Setting
	if err := db.DB.Where("name = ?", name).First(&s).Error; err != nil {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(s.Value))
	if err != nil {
		return fallback
	}
	return v
}

// AntispamMinutes 摘要通知的冷却窗口（分钟），0 表示关闭摘要
func AntispamMinutes() int {
	return GetSettingInt(models.SettingAntispamMinutes, 15)
}

// MaxReactionsPerPost 每帖允许的不同 emoji 数上限
func MaxReactionsPerPost() int {
	return GetSettingInt(models.SettingMaxPerPost, 20)
}

// MaxReactionsPerUser 每人每帖允许的 reaction 总数上限
func MaxReactionsPerUser() int {
	return GetSettingInt(models.SettingMaxPerUser, 10)
}

// SetSetting 更新或创建配置项
func SetSetting(name, value string) error {
	var existing models.Setting
	if err := db.DB.Where("name = ?", name).First(&existing).Error; err != nil {
		return db.DB.Create(&models.Setting{Name: name, Value: value}).Error
	}
	return db.DB.Model(&models.Setting{}).Where("name = ?", name).Update("value", value).Error
}
