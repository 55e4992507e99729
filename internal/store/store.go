// If you are AI: This file opens the user database with gorm and exposes user lookups.
// sqlite (pure Go) is the default; postgres is used for shared deployments.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"trinity/internal/config"
)

var (
	// ErrUserNotFound is returned when no user has the requested name.
	ErrUserNotFound = errors.New("store: user not found")
	// ErrUserExists is returned when creating a user whose name is taken.
	ErrUserExists = errors.New("store: user already exists")
)

// User is a producer account. Column set follows the users table of the service.
type User struct {
	ID             uint64 `gorm:"primaryKey"`
	Name           string `gorm:"size:64;uniqueIndex;not null"`
	Nickname       string `gorm:"size:64"`
	ProfilePicPath string `gorm:"size:255"`
	PasswordHash   string `gorm:"size:128;not null"`
	Admin          bool   `gorm:"default:false"`
}

// Store wraps a gorm connection.
// Lock expectations: none; gorm's pool is safe for concurrent use.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to the configured database and migrates the schema.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: sqlite, postgres)", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite serializes writers; a single connection also keeps :memory: databases shared
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s := &Store{db: db, logger: logger.With(zap.String("component", "store"))}
	if err := s.AutoMigrate(); err != nil {
		return nil, err
	}

	s.logger.Info("Database connected", zap.String("driver", cfg.Driver))
	return s, nil
}

// AutoMigrate creates or updates the users table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	return nil
}

// CreateUser inserts a user. Returns ErrUserExists if the name is taken.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("name = ?", u.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", ErrUserExists, u.Name)
		}
		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrUserExists, u.Name)
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
}

// FindByName returns the user with the given name.
func (s *Store) FindByName(ctx context.Context, name string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// Ping checks database reachability.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
