package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"socialshop/internal/apperror"
	"socialshop/internal/models"

	"gorm.io/gorm"
)

const ProductPageSize = 20

// ProductQuery filters the catalogue. Zero values mean "no filter".
type ProductQuery struct {
	Page     int
	Category string
	Featured *bool
}

type ProductImageView struct {
	URL string `json:"url"`
}

type ProductView struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Category      string             `json:"category"`
	CurrentPrice  string             `json:"currentPrice"`
	OriginalPrice string             `json:"originalPrice"`
	Discount      string             `json:"discount"`
	Rating        float64            `json:"rating"`
	TotalRatings  int                `json:"totalRatings"`
	Featured      bool               `json:"featured"`
	Images        []ProductImageView `json:"images"`
}

type ProductPage struct {
	Size     int64         `json:"size"`
	Products []ProductView `json:"products"`
}

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) List(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}

	filter := func(tx *gorm.DB) *gorm.DB {
		if q.Category != "" {
			tx = tx.Where("category = ?", q.Category)
		}
		if q.Featured != nil {
			tx = tx.Where("featured = ?", *q.Featured)
		}
		return tx
	}

	tx := s.db.WithContext(ctx)

	var total int64
	if err := tx.Model(&models.Product{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	var products []models.Product
	err := withProductImages(tx).
		Scopes(filter).
		Order("created_at DESC").
		Order("id DESC").
		Limit(ProductPageSize).
		Offset((q.Page - 1) * ProductPageSize).
		Find(&products).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}

	page := &ProductPage{Size: total, Products: make([]ProductView, 0, len(products))}
	for i := range products {
		page.Products = append(page.Products, newProductView(&products[i]))
	}
	return page, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*ProductView, error) {
	var product models.Product
	if err := withProductImages(s.db.WithContext(ctx)).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(apperror.MsgProductNotFound)
		}
		return nil, apperror.Internal(err)
	}
	view := newProductView(&product)
	return &view, nil
}

func withProductImages(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC").Order("id ASC")
	})
}

func newProductView(p *models.Product) ProductView {
	view := ProductView{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		CurrentPrice: FormatPrice(p.CurrentPriceCents),
		Discount:     FormatDiscount(p.CurrentPriceCents, p.OriginalPriceCents),
		Rating:       p.Rating,
		TotalRatings: p.TotalRatings,
		Featured:     p.Featured,
		Images:       make([]ProductImageView, 0, len(p.Images)),
	}
	if p.OriginalPriceCents > 0 {
		view.OriginalPrice = FormatPrice(p.OriginalPriceCents)
	}
	for _, img := range p.Images {
		view.Images = append(view.Images, ProductImageView{URL: img.URL})
	}
	return view
}

// FormatPrice renders cents as "$12.99".
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// FormatDiscount renders the markdown as "-33%", or "" when the product is
// not marked down.
func FormatDiscount(current, original int64) string {
	if original <= 0 || current >= original {
		return ""
	}
	pct := math.Round(float64(original-current) * 100 / float64(original))
	return fmt.Sprintf("-%d%%", int(pct))
}
