package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fitreport/internal/config"
)

// DefaultPositions seeds an empty position table. Level 1 is the representative.
var DefaultPositions = []Position{
	{Name: "대표", Level: 1},
	{Name: "이사", Level: 2},
	{Name: "부장", Level: 3},
	{Name: "과장", Level: 4},
	{Name: "대리", Level: 5},
	{Name: "사원", Level: 6},
}

// InitDatabase opens the PostgreSQL connection described by cfg and verifies it with a ping.
func InitDatabase(cfg config.DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap db: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the position, users and documents tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Position{}, &User{}, &Document{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SeedPositions inserts DefaultPositions when the position table is empty.
// It returns the number of inserted rows.
func SeedPositions(ctx context.Context, db *gorm.DB) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&Position{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count positions: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	rows := make([]Position, len(DefaultPositions))
	copy(rows, DefaultPositions)
	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("seed positions: %w", err)
	}
	return len(rows), nil
}

// ErrUserExists is returned by SeedRepresentative when the account is already present.
var ErrUserExists = errors.New("user already exists")

// SeedRepresentative creates the initial level-1 account used to log in the first time.
func SeedRepresentative(ctx context.Context, db *gorm.DB, userID, name, password string) (*User, error) {
	var existing User
	switch err := db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error; {
	case err == nil:
		return nil, ErrUserExists
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("query user: %w", err)
	}

	var representative Position
	if err := db.WithContext(ctx).Where("level = ?", RepresentativeLevel).Order("id").First(&representative).Error; err != nil {
		return nil, fmt.Errorf("find representative position: %w", err)
	}

	user := User{
		UserID:     userID,
		Name:       name,
		PositionID: &representative.ID,
		Password:   password,
		Status:     UserStatusActive,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.Position = &representative
	return &user, nil
}
