package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jubairbh/storefront/internal/models"
)

// ErrStorageUnavailable marks the storage location as unusable (missing
// directory, read-only filesystem, corrupt file). It is not retried; the
// router surfaces it as a 5xx.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store wraps the embedded per-process database. The hosting environment
// may discard the underlying file between invocations, so nothing here
// assumes the data survives a cold start: EnsureReady rebuilds an empty
// store from the canonical seed.
type Store struct {
	db   *gorm.DB
	path string

	// readyOnce shares the outcome of the first initialization attempt
	// with every concurrent first-request, success or failure. A raw
	// "ready" flag would let two requests race into seeding.
	readyOnce sync.Once
	readyErr  error

	// Coarse single-writer discipline. SQLite serializes writers anyway;
	// taking the lock up front turns driver-level busy errors into plain
	// queueing, which is fine at storefront throughput.
	writeMu sync.Mutex
}

// Open opens or creates the database file at path and migrates the schema.
// It does not seed; that happens on the first EnsureReady.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorageUnavailable, path, err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", ErrStorageUnavailable, err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the storage location this store was opened on.
func (s *Store) Path() string {
	return s.path
}

// EnsureReady guarantees the seed dataset is present: after a nil return
// the Product table is non-empty and at least one admin user exists.
// Exactly one caller per process performs the work; concurrent callers
// block on it and observe the same result. Re-running never duplicates
// rows or touches data written since the store came up.
func (s *Store) EnsureReady(ctx context.Context) error {
	s.readyOnce.Do(func() {
		s.readyErr = s.seed(ctx)
	})
	return s.readyErr
}

func (s *Store) seed(ctx context.Context) error {
	// Seeding is a write and its outcome is shared process-wide, so the
	// first request's cancellation must not abort it mid-transaction.
	err := s.db.WithContext(context.WithoutCancel(ctx)).Transaction(func(tx *gorm.DB) error {
		var productCount int64
		if err := tx.Model(&models.Product{}).Count(&productCount).Error; err != nil {
			return err
		}
		if productCount == 0 {
			products := SeedProducts()
			if err := tx.Create(&products).Error; err != nil {
				return err
			}
		}

		var adminCount int64
		if err := tx.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount).Error; err != nil {
			return err
		}
		if adminCount == 0 {
			admin, err := SeedAdmin()
			if err != nil {
				return err
			}
			if err := tx.Create(admin).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: seed: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// DB returns the shared handle. Reads may use it directly; writes go
// through Write.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Write runs fn in a transaction detached from client cancellation: once
// started, the transaction either commits fully or rolls back, so a
// request timeout or disconnect can never leave a half-written row.
func (s *Store) Write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.db.WithContext(context.WithoutCancel(ctx)).Transaction(fn)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
