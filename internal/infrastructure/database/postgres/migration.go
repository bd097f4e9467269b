// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/zodak/storefront-api/internal/domain/order"
	"github.com/zodak/storefront-api/internal/domain/product"
	"github.com/zodak/storefront-api/internal/domain/upload"
	"github.com/zodak/storefront-api/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},

		&product.Category{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductVariant{},

		&order.Order{},
		&order.Item{},
		&order.StatusHistory{},

		&upload.UploadedFile{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_gender_active ON products(gender, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Product image indexes
		"CREATE INDEX IF NOT EXISTS idx_product_images_product_primary ON product_images(product_id, is_primary)",
		"CREATE INDEX IF NOT EXISTS idx_product_images_sort_order ON product_images(product_id, sort_order)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_email ON orders(email)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Order status history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts the launch catalog and default accounts
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing user.User
	result := m.db.Where("email = ?", "admin@zodak.com").First(&existing)
	if result.Error == nil {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:    "admin@zodak.com",
		Password: string(hashedPassword),
		Name:     "ZODAK Admin",
		IsActive: true,
		IsAdmin:  true,
	}
	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("✅ Created admin user: admin@zodak.com (password: admin123)")
	return nil
}

// seedProduct is one launch catalog entry. Stock is the per-variant
// limit; every size/color combination is materialized with it.
type seedProduct struct {
	sku         string
	name        string
	price       string
	description string
	images      []string
	gender      product.Gender
	sizes       []string
	colors      []string
	stock       int
	badge       string
}

var launchCatalog = []seedProduct{
	{
		sku:   "ZDK-H1",
		name:  "Essential Heavyweight Hoodie",
		price: "89.00",
		description: "A premium 500GSM organic cotton hoodie. Featuring a structured fit, " +
			"double-lined hood, and hidden side-seam pockets. Designed for maximum comfort and durability.",
		images: []string{
			"https://images.unsplash.com/photo-1556821840-3a63f95609a7?q=80&w=1200&auto=format&fit=crop",
			"https://images.unsplash.com/photo-1591047139829-d91aecb6caea?q=80&w=1200&auto=format&fit=crop",
		},
		gender: product.GenderMen,
		sizes:  []string{"S", "M", "L", "XL"},
		colors: []string{"Black", "Charcoal", "Cream"},
		stock:  20,
		badge:  "New Arrival",
	},
	{
		sku:   "ZDK-H2",
		name:  "Oversized Studio Hoodie",
		price: "95.00",
		description: "Extreme oversized silhouette with dropped shoulders. Crafted from " +
			"brushed-back fleece for a soft, lived-in feel from the first wear.",
		images: []string{"https://images.unsplash.com/photo-1565538810643-b5bdb714032a?q=80&w=1200&auto=format&fit=crop"},
		gender: product.GenderWomen,
		sizes:  []string{"XS", "S", "M", "L"},
		colors: []string{"Grey Marl", "Vintage Blue"},
		stock:  15,
		badge:  "Limited Edition",
	},
	{
		sku:   "ZDK-H3",
		name:  "Minimalist Zip-Up",
		price: "79.00",
		description: "A clean, zip-front hoodie with premium YKK hardware. Minimalist branding " +
			"and a refined fit makes it perfect for layering.",
		images: []string{"https://images.unsplash.com/photo-1578932750294-f5075e85f44a?q=80&w=1200&auto=format&fit=crop"},
		gender: product.GenderMen,
		sizes:  []string{"M", "L", "XL"},
		colors: []string{"Olive", "Sand"},
		stock:  12,
	},
	{
		sku:   "ZDK-H4",
		name:  "Cropped Signature Hoodie",
		price: "85.00",
		description: "Modern cropped length with a raw-edge finish. Designed for a high-fashion " +
			"aesthetic without compromising on cozy comfort.",
		images: []string{"https://images.unsplash.com/photo-1512436991641-6745cdb1723f?q=80&w=1200&auto=format&fit=crop"},
		gender: product.GenderWomen,
		sizes:  []string{"XS", "S", "M"},
		colors: []string{"Lavender", "Black"},
		stock:  10,
		badge:  "Staff Pick",
	},
	{
		sku:   "ZDK-H5",
		name:  "Heritage Washed Hoodie",
		price: "110.00",
		description: "Vintage-inspired wash treatment for a unique, faded look. Each piece is " +
			"individually garment-dyed for a one-of-a-kind finish.",
		images: []string{"https://images.unsplash.com/photo-1610476402324-f7614d6402ec?q=80&w=1200&auto=format&fit=crop"},
		gender: product.GenderMen,
		sizes:  []string{"S", "M", "L", "XL"},
		colors: []string{"Faded Red", "Washed Clay"},
		stock:  8,
		badge:  "Sale",
	},
	{
		sku:   "ZDK-H6",
		name:  "Tech Fleece Pulse",
		price: "125.00",
		description: "Engineered thermal fleece for lightweight warmth. Features laser-cut " +
			"detailing and reflective accents for a futuristic techwear look.",
		images: []string{"https://images.unsplash.com/photo-1521223890158-f9f7c3d5d504?q=80&w=1200&auto=format&fit=crop"},
		gender: product.GenderMen,
		sizes:  []string{"M", "L", "XL"},
		colors: []string{"Electric Blue", "Stealth Black"},
		stock:  15,
	},
	{
		sku:   "ZDK-H7",
		name:  "Velour Luxe Hoodie",
		price: "140.00",
		description: "Ultra-soft velour fabric with a premium sheen. Elevated loungewear that " +
			"brings luxury to your everyday rotation.",
		images: []string{"https://images.unsplash.com/photo-1520333789090-1afc82db536a?q=80&w=1200&auto=format&fit=crop"},
		gender: product.GenderWomen,
		sizes:  []string{"XS", "S", "M"},
		colors: []string{"Emerald", "Wine"},
		stock:  7,
	},
	{
		sku:   "ZDK-H8",
		name:  "Graphic Icon Hoodie",
		price: "89.00",
		description: "Featuring a high-density screen-printed graphic on the chest. Relaxed fit " +
			"with a slightly shorter length for a modern look.",
		images: []string{"https://images.unsplash.com/photo-1548036328-c9fa89d128fa?q=80&w=1200&auto=format&fit=crop"},
		gender: product.GenderMen,
		sizes:  []string{"S", "M", "L"},
		colors: []string{"White", "Navy"},
		stock:  25,
	},
	{
		sku:   "ZDK-H9",
		name:  "Eco-Loopback Hoodie",
		price: "75.00",
		description: "Made from 100% recycled textile waste. Unbrushed loopback interior for " +
			"breathable wear throughout the year.",
		images: []string{"https://images.unsplash.com/photo-1485230895905-ec40ba36b9bc?q=80&w=1200&auto=format&fit=crop"},
		gender: product.GenderKids,
		sizes:  []string{"6-8Y", "8-10Y", "10-12Y"},
		colors: []string{"Ocean", "Leaf"},
		stock:  30,
	},
	{
		sku:   "ZDK-H10",
		name:  "Monochrome Patch Hoodie",
		price: "99.00",
		description: "Subtle tone-on-tone rubberized patch on the arm. A sophisticated take on " +
			"the classic hoodie for a refined minimalist aesthetic.",
		images: []string{"https://images.unsplash.com/photo-1534030347209-467a5b0ad3e6?q=80&w=1200&auto=format&fit=crop"},
		gender: product.GenderMen,
		sizes:  []string{"S", "M", "L", "XL"},
		colors: []string{"Slate", "Obsidian"},
		stock:  12,
	},
}

func (m *Migration) seedCatalog() error {
	var productCount int64
	m.db.Model(&product.Product{}).Count(&productCount)
	if productCount > 0 {
		log.Println("⏭️ Catalog already seeded")
		return nil
	}

	category := product.Category{Name: "Hoodies", Slug: "hoodies"}
	if err := m.db.Where("slug = ?", category.Slug).FirstOrCreate(&category).Error; err != nil {
		return err
	}

	for _, seed := range launchCatalog {
		price, err := decimal.NewFromString(seed.price)
		if err != nil {
			return fmt.Errorf("invalid seed price for %s: %w", seed.sku, err)
		}

		p := product.Product{
			SKU:         seed.sku,
			Name:        seed.name,
			Slug:        product.Slugify(seed.name),
			Description: seed.description,
			Price:       price,
			CategoryID:  category.ID,
			Gender:      seed.gender,
			Badge:       seed.badge,
			IsActive:    true,
		}
		for i, url := range seed.images {
			p.Images = append(p.Images, product.ProductImage{
				URL:       url,
				AltText:   seed.name,
				SortOrder: i,
				IsPrimary: i == 0,
			})
		}
		for _, size := range seed.sizes {
			for _, color := range seed.colors {
				p.Variants = append(p.Variants, product.ProductVariant{
					Size:     size,
					Color:    color,
					Stock:    seed.stock,
					IsActive: true,
				})
			}
		}

		if err := m.db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to seed product %s: %w", seed.sku, err)
		}
		log.Printf("✅ Seeded product: %s", p.Name)
	}

	return nil
}

// GetTableInfo logs row counts for the main tables, used in development
func (m *Migration) GetTableInfo() {
	tables := map[string]interface{}{
		"users":            &user.User{},
		"categories":       &product.Category{},
		"products":         &product.Product{},
		"product_variants": &product.ProductVariant{},
		"orders":           &order.Order{},
	}

	for name, model := range tables {
		var count int64
		if err := m.db.Model(model).Count(&count).Error; err != nil {
			log.Printf("⚠️ Failed to count %s: %v", name, err)
			continue
		}
		log.Printf("📊 %s: %d rows", name, count)
	}
}
