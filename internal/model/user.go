package model

import "time"

// User 用户资料，首次访问时创建
type User struct {
	Email     string    `json:"email" gorm:"primaryKey;type:varchar(255)"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;default:'User'"`
	PhotoURL  string    `json:"photoURL" gorm:"column:photo_url;type:text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (User) TableName() string { return "users" }
