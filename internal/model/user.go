package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

type User struct {
	gorm.Model
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string   `gorm:"size:255;not null" json:"-"`
	Role     UserRole `gorm:"type:enum('student','teacher','admin');default:'student'" json:"role"`
	// StudentUniqueID 前端使用的稳定学生标识，进度与配额均以它为主键维度
	StudentUniqueID string     `gorm:"size:64;uniqueIndex" json:"studentUniqueId"`
	LastSeenAt      *time.Time `json:"lastSeenAt,omitempty"`
}

func (User) TableName() string {
	return "users"
}
