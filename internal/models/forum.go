package models

type Forum struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:200" json:"description"`
	Locked      bool   `gorm:"default:false" json:"locked"`
}
