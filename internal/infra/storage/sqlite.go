package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"tuli_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Storage persists verification history and cached profiles.
type Storage struct {
	db *gorm.DB
}

var (
	_ domain.VerificationRepository = (*Storage)(nil)
	_ domain.ProfileRepository      = (*Storage)(nil)
)

// NewStorage opens (or creates) the SQLite database at dbPath. An empty path
// resolves to the user config directory.
func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		var err error
		dbPath, err = getDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.VerificationRecord{}, &domain.ProfileRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "Tuli", "data", "tuli.db"), nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Verification Operations
// ======================================================================================

// SaveVerification appends a verification outcome.
func (s *Storage) SaveVerification(rec *domain.VerificationRecord) error {
	return s.db.Create(rec).Error
}

// LatestVerification returns the most recent outcome for a media, or nil.
func (s *Storage) LatestVerification(chainID int64, mediaAddress, mediaID string) (*domain.VerificationRecord, error) {
	var rec domain.VerificationRecord
	err := s.db.
		Where("chain_id = ? AND media_address = ? AND media_id = ?", chainID, mediaAddress, mediaID).
		Order("checked_at DESC, id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// VerificationHistory lists every outcome for a media, newest first.
func (s *Storage) VerificationHistory(chainID int64, mediaAddress, mediaID string) ([]domain.VerificationRecord, error) {
	var recs []domain.VerificationRecord
	err := s.db.
		Where("chain_id = ? AND media_address = ? AND media_id = ?", chainID, mediaAddress, mediaID).
		Order("checked_at DESC, id DESC").
		Find(&recs).Error
	return recs, err
}

// ======================================================================================
// Profile Operations
// ======================================================================================

// UpsertProfiles creates or replaces cached profiles by address.
func (s *Storage) UpsertProfiles(recs []domain.ProfileRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "fetched_at", "updated_at"}),
	}).Create(&recs).Error
}

// GetProfile retrieves a cached profile by lower-case address, or nil.
func (s *Storage) GetProfile(address string) (*domain.ProfileRecord, error) {
	var rec domain.ProfileRecord
	err := s.db.First(&rec, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteProfile drops a cached profile.
func (s *Storage) DeleteProfile(address string) error {
	return s.db.Where("address = ?", address).Delete(&domain.ProfileRecord{}).Error
}
