package database

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Youskoofx/chrono24/internal/model"
	"github.com/Youskoofx/chrono24/pkg/config"
)

// Open connects to the configured database and runs migrations.
// With DB_HOST set it targets PostgreSQL; otherwise it falls back to a
// local SQLite file, the same way the frontend fell back to local storage
// when no hosted backend was configured.
func Open(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Error
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	var db *gorm.DB
	var err error

	if cfg.DB.UsePostgres() {
		pgConfig := postgres.Config{
			DSN:                  cfg.DB.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		}
		db, err = gorm.Open(postgres.New(pgConfig), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.DB.SQLitePath), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := SeedUsers(db, cfg.Auth.DemoPassword); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs the schema migrations
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Tire{}, &model.HistoryEntry{}, &model.User{}); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// SeedUsers inserts the two demo accounts if they are missing
func SeedUsers(db *gorm.DB, demoPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	demoUsers := []model.User{
		{Email: "admin@chronopneus.fr", Name: "Admin", Role: model.RoleAdmin, Password: string(hash)},
		{Email: "user@chronopneus.fr", Name: "Utilisateur", Role: model.RoleUser, Password: string(hash)},
	}

	for _, user := range demoUsers {
		var count int64
		if err := db.Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check demo user: %w", err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed demo user %s: %w", user.Email, err)
		}
	}

	return nil
}
