// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zodak/storefront-api/internal/config"
	"gorm.io/gorm"
)

// ErrVariantNotFound is returned when a size/color combination does not
// exist for a product.
var ErrVariantNotFound = errors.New("product variant not found")

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListRequest represents product list query parameters
type ListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Category  string `form:"category"` // category slug
	Gender    string `form:"gender"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
	MinPrice  string `form:"min_price"`
	MaxPrice  string `form:"max_price"`
	IsActive  *bool  `form:"is_active"`
}

// CreateRequest represents admin product creation data. Variants are
// materialized as the full sizes x colors matrix, each starting with the
// given stock, mirroring how merchandising enters new apparel.
type CreateRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Gender      Gender          `json:"gender"`
	Badge       string          `json:"badge"`
	Images      []string        `json:"images"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	Stock       int             `json:"stock"`
}

// UpdateRequest represents admin product update data
type UpdateRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Badge       *string          `json:"badge"`
	IsActive    *bool            `json:"is_active"`
	Images      []string         `json:"images"`
}

// ListResponse represents product response with pagination
type ListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Snapshot is the catalog data copied into a cart line at add time. The
// cart trusts these values and never re-queries them.
type Snapshot struct {
	ProductID  uint
	Name       string
	UnitPrice  decimal.Decimal
	ImageRef   string
	StockLimit int
}

// List retrieves products with filtering and pagination
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).
		Preload("Category").
		Preload("Variants", "is_active = ?", true).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC, id ASC")
		})

	if req.IsActive != nil {
		query = query.Where("products.is_active = ?", *req.IsActive)
	} else {
		query = query.Where("products.is_active = ?", true)
	}

	if req.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", req.Category)
	}

	if req.Gender != "" {
		query = query.Where("gender = ?", req.Gender)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", search, search)
	}

	if req.MinPrice != "" {
		if min, err := decimal.NewFromString(req.MinPrice); err == nil {
			query = query.Where("price >= ?", min)
		}
	}
	if req.MaxPrice != "" {
		if max, err := decimal.NewFromString(req.MaxPrice); err == nil {
			query = query.Where("price <= ?", max)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	// Sorting: whitelist columns to avoid order-by injection
	sortBy := req.SortBy
	switch sortBy {
	case "name", "price", "created_at":
	default:
		sortBy = "created_at"
	}
	sortOrder := "DESC"
	if strings.EqualFold(req.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	query = query.Order(fmt.Sprintf("products.%s %s", sortBy, sortOrder))

	// Pagination
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	if err := query.Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &ListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// Get retrieves a product by ID
func (s *Service) Get(id uint) (*Product, error) {
	var prod Product
	err := s.db.Preload("Category").
		Preload("Variants", "is_active = ?", true).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC, id ASC")
		}).
		Where("id = ?", id).First(&prod).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &prod, nil
}

// GetBySlug retrieves a product by slug
func (s *Service) GetBySlug(slug string) (*Product, error) {
	var prod Product
	err := s.db.Preload("Category").
		Preload("Variants", "is_active = ?", true).
		Preload("Images").
		Where("slug = ? AND is_active = ?", slug, true).First(&prod).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &prod, nil
}

// SnapshotVariant returns the catalog snapshot for one size/color
// combination of an active product: name, current unit price, primary
// image and the variant's stock as the line's stock limit.
func (s *Service) SnapshotVariant(productID uint, size, color string) (*Snapshot, error) {
	var prod Product
	err := s.db.Preload("Images").
		Where("id = ? AND is_active = ?", productID, true).First(&prod).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product not found or inactive")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	var variant ProductVariant
	err = s.db.Where("product_id = ? AND size = ? AND color = ? AND is_active = ?",
		productID, size, color, true).First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to retrieve variant: %w", err)
	}

	return &Snapshot{
		ProductID:  prod.ID,
		Name:       prod.Name,
		UnitPrice:  prod.Price,
		ImageRef:   prod.PrimaryImage(),
		StockLimit: variant.Stock,
	}, nil
}

// Create creates a product with its category, images and the full
// sizes x colors variant matrix.
func (s *Service) Create(req *CreateRequest) (*Product, error) {
	category, err := s.ensureCategory(req.Category)
	if err != nil {
		return nil, err
	}

	sku := req.SKU
	if sku == "" {
		sku = strings.ToUpper(Slugify(req.Name))
	}

	prod := Product{
		SKU:         sku,
		Name:        req.Name,
		Slug:        Slugify(req.Name),
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  category.ID,
		Gender:      req.Gender,
		Badge:       req.Badge,
		IsActive:    true,
	}

	sizes := req.Sizes
	if len(sizes) == 0 {
		sizes = []string{"One Size"}
	}
	colors := req.Colors
	if len(colors) == 0 {
		colors = []string{"Default"}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&prod).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		for i, url := range req.Images {
			img := ProductImage{
				ProductID: prod.ID,
				URL:       url,
				AltText:   prod.Name,
				SortOrder: i,
				IsPrimary: i == 0,
			}
			if err := tx.Create(&img).Error; err != nil {
				return fmt.Errorf("failed to create product image: %w", err)
			}
		}

		for _, size := range sizes {
			for _, color := range colors {
				variant := ProductVariant{
					ProductID: prod.ID,
					Size:      size,
					Color:     color,
					Stock:     req.Stock,
					IsActive:  true,
				}
				if err := tx.Create(&variant).Error; err != nil {
					return fmt.Errorf("failed to create variant %s/%s: %w", size, color, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(prod.ID)
}

// Update applies a partial update to a product.
func (s *Service) Update(id uint, req *UpdateRequest) (*Product, error) {
	prod, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = Slugify(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Badge != nil {
		updates["badge"] = *req.Badge
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update product: %w", err)
			}
		}

		if req.Images != nil {
			if err := tx.Where("product_id = ?", id).Delete(&ProductImage{}).Error; err != nil {
				return fmt.Errorf("failed to replace images: %w", err)
			}
			for i, url := range req.Images {
				img := ProductImage{
					ProductID: id,
					URL:       url,
					AltText:   prod.Name,
					SortOrder: i,
					IsPrimary: i == 0,
				}
				if err := tx.Create(&img).Error; err != nil {
					return fmt.Errorf("failed to create product image: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(id)
}

// Delete soft-deletes a product.
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// UpdateVariantStock sets the stock of one variant.
func (s *Service) UpdateVariantStock(productID, variantID uint, stock int) error {
	if stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	result := s.db.Model(&ProductVariant{}).
		Where("id = ? AND product_id = ?", variantID, productID).
		Update("stock", stock)
	if result.Error != nil {
		return fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVariantNotFound
	}
	return nil
}

func (s *Service) ensureCategory(name string) (*Category, error) {
	var category Category
	err := s.db.Where("name = ?", name).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}

	category = Category{Name: name, Slug: Slugify(name)}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

// Slugify turns a display name into a URL slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
