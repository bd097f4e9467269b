// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Gender is the storefront section a product is merchandised under.
type Gender string

const (
	GenderMen   Gender = "men"
	GenderWomen Gender = "women"
	GenderKids  Gender = "kids"
)

// Product represents a catalog product. Price is the unit price shared by
// all of its variants; stock is tracked per variant.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SKU         string          `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name        string          `gorm:"not null;size:255" json:"name"`
	Slug        string          `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Gender      Gender          `gorm:"size:10;index" json:"gender"`
	Badge       string          `gorm:"size:100" json:"badge,omitempty"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Category Category         `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Images   []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// Category represents product categories (Hoodies, Tees, ...).
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// ProductImage represents product images
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"not null;size:500" json:"url"`
	AltText   string    `gorm:"size:255" json:"alt_text"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductVariant is one size/color combination of a product with its own
// stock count. Creating a product materializes the full size x color
// matrix.
type ProductVariant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;index:idx_variant_combo,unique" json:"product_id"`
	Size      string         `gorm:"not null;size:50;index:idx_variant_combo,unique" json:"size"`
	Color     string         `gorm:"not null;size:50;index:idx_variant_combo,unique" json:"color"`
	Stock     int            `gorm:"default:0" json:"stock"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string        { return "products" }
func (Category) TableName() string       { return "categories" }
func (ProductImage) TableName() string   { return "product_images" }
func (ProductVariant) TableName() string { return "product_variants" }

// PrimaryImage returns the URL of the product's primary image, falling
// back to the first image, or "" when none exist.
func (p *Product) PrimaryImage() string {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return p.Images[i].URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// Sizes returns the distinct sizes across active variants, in first-seen order.
func (p *Product) Sizes() []string {
	return p.distinctVariantValues(func(v *ProductVariant) string { return v.Size })
}

// Colors returns the distinct colors across active variants, in first-seen order.
func (p *Product) Colors() []string {
	return p.distinctVariantValues(func(v *ProductVariant) string { return v.Color })
}

func (p *Product) distinctVariantValues(pick func(*ProductVariant) string) []string {
	seen := map[string]bool{}
	var out []string
	for i := range p.Variants {
		if !p.Variants[i].IsActive {
			continue
		}
		v := pick(&p.Variants[i])
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// IsInStock reports whether any active variant has stock.
func (p *Product) IsInStock() bool {
	for i := range p.Variants {
		if p.Variants[i].IsActive && p.Variants[i].Stock > 0 {
			return true
		}
	}
	return false
}
