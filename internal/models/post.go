package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	Images    []string  `gorm:"serializer:json;type:text" json:"images"`
	UserID    string    `gorm:"size:36;not null;index" json:"userId"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Comments []Comment `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Likes    []Like    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return nil
}
