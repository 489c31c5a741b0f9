package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product backs the storefront carousels and the category grid.
// Prices are stored in cents.
type Product struct {
	ID                 string         `gorm:"primaryKey;size:36" json:"id"`
	Name               string         `gorm:"not null" json:"name"`
	Description        string         `gorm:"type:text" json:"description"`
	Category           string         `gorm:"size:64;index" json:"category"`
	CurrentPriceCents  int64          `gorm:"not null" json:"currentPriceCents"`
	OriginalPriceCents int64          `json:"originalPriceCents"`
	Rating             float64        `gorm:"default:0" json:"rating"`
	TotalRatings       int            `gorm:"default:0" json:"totalRatings"`
	Featured           bool           `gorm:"default:false;index" json:"featured"`
	Images             []ProductImage `gorm:"constraint:OnDelete:CASCADE;" json:"images"`
	CreatedAt          time.Time      `gorm:"index" json:"createdAt"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	ProductID string `gorm:"size:36;not null;index" json:"-"`
	URL       string `gorm:"not null" json:"url"`
	Position  int    `gorm:"default:0" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
