package db

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"machine-maintenance-backend/config"
	"machine-maintenance-backend/internal/auth"
	"machine-maintenance-backend/internal/model"
)

// Init opens the database, runs migrations and seeds console users. It is
// the explicit bootstrap step: it runs exactly once, before the server
// starts accepting traffic.
func Init(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(openDialector(cfg.Database.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Surface unique-index violations as gorm.ErrDuplicatedKey. The
		// asset-tag constraint is the authority for uniqueness, not any
		// application-level pre-check.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.User{},
		&model.Machine{},
		&model.Ticket{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if err := seedUsers(db, cfg.Auth.SeedUsers); err != nil {
		return nil, fmt.Errorf("seeding users failed: %w", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

func openDialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// seedUsers inserts the configured console accounts, but only when the
// users table is empty.
func seedUsers(db *gorm.DB, seeds []config.SeedUser) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	users := make([]model.User, 0, len(seeds))
	for _, s := range seeds {
		hash, err := auth.HashPassword(s.Password)
		if err != nil {
			return fmt.Errorf("hashing password for %q: %w", s.Username, err)
		}
		role := model.RoleFactory
		if s.Role == string(model.RoleAdmin) {
			role = model.RoleAdmin
		}
		users = append(users, model.User{
			Username:     s.Username,
			PasswordHash: hash,
			Role:         role,
		})
	}

	if len(users) == 0 {
		return nil
	}
	log.Printf("Seeding %d console users...", len(users))
	return db.Create(&users).Error
}
