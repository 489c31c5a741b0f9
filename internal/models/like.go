package models

import (
	"time"
)

// Like has no identity beyond the (user, post) pair.
type Like struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"userId"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID    string    `gorm:"primaryKey;size:36;index" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}
