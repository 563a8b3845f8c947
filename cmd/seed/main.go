package main

import (
	"errors"
	"time"

	"github.com/fixmore/mall/internal/config"
	"github.com/fixmore/mall/internal/logger"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"
	"github.com/fixmore/mall/internal/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seeds demo catalog data for local development. Existing rows matched
// by their unique key are updated, not duplicated.
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("database init failed: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("database migration failed: %v", err)
	}

	settingService := service.NewSettingService(repository.NewSettingRepository(models.DB))
	if err := settingService.SeedDefaults(); err != nil {
		stdLog.Printf("warning: shop settings seed failed: %v", err)
	}

	categoryIDs, err := seedCategories()
	if err != nil {
		stdLog.Fatalf("category seed failed: %v", err)
	}
	stdLog.Printf("seeded %d categories", len(categoryIDs))

	productCount, err := seedProducts(categoryIDs)
	if err != nil {
		stdLog.Fatalf("product seed failed: %v", err)
	}
	stdLog.Printf("seeded %d products", productCount)

	couponCount, err := seedCoupons()
	if err != nil {
		stdLog.Fatalf("coupon seed failed: %v", err)
	}
	stdLog.Printf("seeded %d coupons", couponCount)

	stdLog.Printf("seed complete")
}

func seedCategories() (map[string]uint, error) {
	categories := []models.Category{
		{Name: "Phones & Tablets", Description: "Smartphones, tablets and accessories", SortOrder: 10, IsActive: true},
		{Name: "Electronics", Description: "TVs, audio and home electronics", SortOrder: 20, IsActive: true},
		{Name: "Home & Kitchen", Description: "Appliances, cookware and furniture", SortOrder: 30, IsActive: true},
		{Name: "Fashion", Description: "Clothing, shoes and watches", SortOrder: 40, IsActive: true},
		{Name: "Groceries", Description: "Everyday household essentials", SortOrder: 50, IsActive: true},
	}

	ids := make(map[string]uint, len(categories))
	for _, category := range categories {
		var existing models.Category
		err := models.DB.Where("name = ?", category.Name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := models.DB.Create(&category).Error; err != nil {
				return nil, err
			}
			ids[category.Name] = category.ID
		case err != nil:
			return nil, err
		default:
			existing.Description = category.Description
			existing.SortOrder = category.SortOrder
			existing.IsActive = category.IsActive
			if err := models.DB.Save(&existing).Error; err != nil {
				return nil, err
			}
			ids[existing.Name] = existing.ID
		}
	}
	return ids, nil
}

type seedProduct struct {
	Category    string
	SKU         string
	Name        string
	Description string
	Price       int64
	Stock       int
	LowStock    int
	Tags        []string
	Featured    bool
	SortOrder   int
}

func seedProducts(categoryIDs map[string]uint) (int, error) {
	products := []seedProduct{
		{Category: "Phones & Tablets", SKU: "PH-TECNO-SPARK20", Name: "Tecno Spark 20", Description: "6.6\" HD+, 128GB + 8GB RAM, dual SIM", Price: 18500, Stock: 120, LowStock: 10, Tags: []string{"phone", "tecno"}, Featured: true, SortOrder: 10},
		{Category: "Phones & Tablets", SKU: "PH-SAMSUNG-A15", Name: "Samsung Galaxy A15", Description: "6.5\" AMOLED, 128GB, 5000mAh", Price: 24500, Stock: 80, LowStock: 8, Tags: []string{"phone", "samsung"}, Featured: true, SortOrder: 20},
		{Category: "Phones & Tablets", SKU: "AC-ORAIMO-PWB20", Name: "Oraimo 20000mAh Power Bank", Description: "Fast charge, dual USB output", Price: 2800, Stock: 200, LowStock: 20, Tags: []string{"accessory", "power bank"}, SortOrder: 30},
		{Category: "Electronics", SKU: "TV-HISENSE-43A4", Name: "Hisense 43\" Smart TV", Description: "Full HD, VIDAA OS, Netflix and YouTube", Price: 32000, Stock: 45, LowStock: 5, Tags: []string{"tv", "hisense"}, Featured: true, SortOrder: 10},
		{Category: "Electronics", SKU: "AU-VITRON-HT4", Name: "Vitron 2.1CH Sound Bar", Description: "Bluetooth subwoofer system, 60W", Price: 7500, Stock: 60, LowStock: 6, Tags: []string{"audio"}, SortOrder: 20},
		{Category: "Home & Kitchen", SKU: "HK-RAMTONS-RK55", Name: "Ramtons Electric Kettle 1.7L", Description: "Cordless, auto shutoff", Price: 1950, Stock: 150, LowStock: 15, Tags: []string{"kitchen"}, SortOrder: 10},
		{Category: "Home & Kitchen", SKU: "HK-MIKA-GC304", Name: "Mika 4-Burner Gas Cooker", Description: "3 gas + 1 electric, oven and grill", Price: 42500, Stock: 25, LowStock: 3, Tags: []string{"cooker", "mika"}, SortOrder: 20},
		{Category: "Fashion", SKU: "FA-MENS-POLO-L", Name: "Classic Polo Shirt", Description: "Cotton blend, navy, size L", Price: 1200, Stock: 300, LowStock: 30, Tags: []string{"clothing", "men"}, SortOrder: 10},
		{Category: "Groceries", SKU: "GR-UNGA-PEMBE2K", Name: "Pembe Maize Flour 2kg", Description: "Fortified maize meal", Price: 185, Stock: 500, LowStock: 50, Tags: []string{"flour", "staple"}, SortOrder: 10},
		{Category: "Groceries", SKU: "GR-RICE-PISHORI5", Name: "Pishori Rice 5kg", Description: "Aromatic Mwea pishori", Price: 1150, Stock: 180, LowStock: 20, Tags: []string{"rice", "staple"}, SortOrder: 20},
	}

	count := 0
	for _, p := range products {
		categoryID, ok := categoryIDs[p.Category]
		if !ok {
			continue
		}
		cid := categoryID
		row := models.Product{
			CategoryID:        &cid,
			SKU:               p.SKU,
			Name:              p.Name,
			Description:       p.Description,
			Price:             models.NewMoneyFromDecimal(decimal.NewFromInt(p.Price)),
			StockQuantity:     p.Stock,
			LowStockThreshold: p.LowStock,
			Tags:              p.Tags,
			IsActive:          true,
			IsFeatured:        p.Featured,
			SortOrder:         p.SortOrder,
		}

		var existing models.Product
		err := models.DB.Where("sku = ?", p.SKU).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := models.DB.Create(&row).Error; err != nil {
				return count, err
			}
		case err != nil:
			return count, err
		default:
			existing.CategoryID = row.CategoryID
			existing.Name = row.Name
			existing.Description = row.Description
			existing.Price = row.Price
			existing.LowStockThreshold = row.LowStockThreshold
			existing.Tags = row.Tags
			existing.IsActive = true
			existing.IsFeatured = row.IsFeatured
			existing.SortOrder = row.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				return count, err
			}
		}
		count++
	}
	return count, nil
}

func seedCoupons() (int, error) {
	now := time.Now()
	end := now.AddDate(0, 3, 0)
	coupons := []models.Coupon{
		{
			Code:      "KARIBU200",
			Type:      "fixed",
			Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
			MinAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(2000)),
			StartsAt:  &now,
			EndsAt:    &end,
			IsActive:  true,
		},
		{
			Code:         "SAVE10",
			Type:         "percent",
			Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			MinAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(5000)),
			MaxDiscount:  models.NewMoneyFromDecimal(decimal.NewFromInt(1500)),
			UsageLimit:   500,
			PerUserLimit: 1,
			StartsAt:     &now,
			EndsAt:       &end,
			IsActive:     true,
		},
	}

	count := 0
	for _, coupon := range coupons {
		var existing models.Coupon
		err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := models.DB.Create(&coupon).Error; err != nil {
				return count, err
			}
		case err != nil:
			return count, err
		default:
			existing.Type = coupon.Type
			existing.Value = coupon.Value
			existing.MinAmount = coupon.MinAmount
			existing.MaxDiscount = coupon.MaxDiscount
			existing.UsageLimit = coupon.UsageLimit
			existing.PerUserLimit = coupon.PerUserLimit
			existing.EndsAt = coupon.EndsAt
			existing.IsActive = coupon.IsActive
			if err := models.DB.Save(&existing).Error; err != nil {
				return count, err
			}
		}
		count++
	}
	return count, nil
}
