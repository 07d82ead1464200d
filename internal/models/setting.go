package models

// Setting 管理员可调配置，存数据库而非环境变量，
// 每次操作实时读取，不做进程内缓存。
type Setting struct {
	Name  string `gorm:"primaryKey;size:64" json:"name"`
	Value string `gorm:"size:255;not null" json:"value"`
}

// 预置配置键
const (
	SettingAntispamMinutes = "reactions_antispam_minutes" // 0 = 关闭摘要通知
	SettingMaxPerPost      = "reactions_max_per_post"     // 每帖不同 emoji 上限
	SettingMaxPerUser      = "reactions_max_per_user"     // 每人每帖 reaction 上限
)
