package db

import (
	"fmt"
	"socialshop/internal/config"
	"socialshop/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the configured database, migrates it and optionally seeds demo
// data. The handle is also kept in DB.
func Init(cfg *config.Config) (*gorm.DB, error) {
	conn, err := Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Database connection established", zap.String("driver", cfg.DBDriver))

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	zap.L().Info("Database migration completed")

	if cfg.SeedDemo {
		if err := Seed(conn); err != nil {
			return nil, err
		}
	}

	DB = conn
	return conn, nil
}

// Open connects with the given driver ("postgres" or "sqlite").
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == config.DriverSQLite {
		// An in-memory database lives and dies with its connection.
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Product{},
		&models.ProductImage{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Seed inserts demo users and the showcase products into an empty database.
func Seed(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		zap.L().Info("Demo data already seeded, skipping")
		return nil
	}

	users := []models.User{
		{Email: "luna@example.com", Name: "Luna", Image: "/Images/avatar1.png"},
		{Email: "orion@example.com", Name: "Orion", Image: "/Images/avatar2.png"},
	}
	products := []models.Product{
		{
			Name: "Starry Night Keychain", Category: "keychains",
			CurrentPriceCents: 1299, OriginalPriceCents: 1949,
			Rating: 4.5, TotalRatings: 88,
			Images: []models.ProductImage{{URL: "/Images/p1.png"}},
		},
		{
			Name: "Cosmic Bliss Necklace", Category: "necklaces", Featured: true,
			Description:       "Elegant pendant reflecting the beauty of the cosmos",
			CurrentPriceCents: 3499, OriginalPriceCents: 3499,
			Images:            []models.ProductImage{{URL: "/Images/s1.png"}},
		},
		{
			Name: "Astro Keyring Set", Category: "keychains", Featured: true,
			Description:       "Three keyrings representing earth, air, and fire elements",
			CurrentPriceCents: 1999, OriginalPriceCents: 2499,
			Images:            []models.ProductImage{{URL: "/Images/s2.png"}},
		},
		{
			Name: "Starlight Anklet", Category: "anklets", Featured: true,
			Description:       "Shining celestial elegance.",
			CurrentPriceCents: 2450,
			Images:            []models.ProductImage{{URL: "/Images/s3.png"}},
		},
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&users).Error; err != nil {
			return err
		}
		if err := tx.Create(&products).Error; err != nil {
			return err
		}
		zap.L().Info("Demo data created successfully",
			zap.Int("users", len(users)), zap.Int("products", len(products)))
		return nil
	})
}
