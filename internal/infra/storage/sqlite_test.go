package storage

import (
	"path/filepath"
	"testing"
	"time"

	"tuli_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *Storage {
	dbName := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	s := &Storage{db: db}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestNewStorage_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tuli.db")
	s, err := NewStorage(path)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	defer s.Close()

	rec, err := s.LatestVerification(1, "0xabc", "0")
	if err != nil {
		t.Fatalf("LatestVerification failed: %v", err)
	}
	if rec != nil {
		t.Errorf("expected empty database, got %+v", rec)
	}
}

func TestSaveAndLatestVerification(t *testing.T) {
	s := setupTestDB(t)
	const media = "0x7C2668BD0D3c050703CEcC956C11Bd520c26f7d4"

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := &domain.VerificationRecord{
		ChainID:      4,
		MediaAddress: media,
		MediaID:      "7",
		TokenURI:     "https://example.com/7",
		Verified:     true,
		CheckedAt:    base,
	}
	second := &domain.VerificationRecord{
		ChainID:      4,
		MediaAddress: media,
		MediaID:      "7",
		TokenURI:     "https://example.com/7",
		Verified:     false,
		CheckedAt:    base.Add(time.Hour),
	}
	other := &domain.VerificationRecord{
		ChainID:      4,
		MediaAddress: media,
		MediaID:      "8",
		Verified:     true,
		CheckedAt:    base.Add(2 * time.Hour),
	}

	for _, rec := range []*domain.VerificationRecord{first, second, other} {
		if err := s.SaveVerification(rec); err != nil {
			t.Fatalf("SaveVerification failed: %v", err)
		}
	}

	latest, err := s.LatestVerification(4, media, "7")
	if err != nil {
		t.Fatalf("LatestVerification failed: %v", err)
	}
	if latest == nil {
		t.Fatal("latest verification is nil")
	}
	if latest.Verified {
		t.Errorf("expected the later, failed verification; got %+v", latest)
	}

	history, err := s.VerificationHistory(4, media, "7")
	if err != nil {
		t.Fatalf("VerificationHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 records, got %d", len(history))
	}
	if !history[1].Verified {
		t.Errorf("expected oldest record last")
	}

	missing, err := s.LatestVerification(1, media, "7")
	if err != nil {
		t.Fatalf("LatestVerification failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected no record on another chain, got %+v", missing)
	}
}

func TestUpsertAndGetProfile(t *testing.T) {
	s := setupTestDB(t)
	addr := "0x1d7022f5b17d2f8b695918fb48fa1089c9f85401"

	if err := s.UpsertProfiles([]domain.ProfileRecord{{
		Address:   addr,
		Payload:   `{"address":"` + addr + `","username":"first"}`,
		FetchedAt: time.Now(),
	}}); err != nil {
		t.Fatalf("UpsertProfiles failed: %v", err)
	}

	// Update
	if err := s.UpsertProfiles([]domain.ProfileRecord{{
		Address:   addr,
		Payload:   `{"address":"` + addr + `","username":"second"}`,
		FetchedAt: time.Now(),
	}}); err != nil {
		t.Fatalf("UpsertProfiles (update) failed: %v", err)
	}

	fetched, err := s.GetProfile(addr)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("fetched profile is nil")
	}
	if fetched.Payload != `{"address":"`+addr+`","username":"second"}` {
		t.Errorf("expected updated payload, got %s", fetched.Payload)
	}

	if err := s.DeleteProfile(addr); err != nil {
		t.Fatalf("DeleteProfile failed: %v", err)
	}
	gone, err := s.GetProfile(addr)
	if err != nil {
		t.Fatalf("GetProfile after delete failed: %v", err)
	}
	if gone != nil {
		t.Errorf("expected nil after delete, got %+v", gone)
	}
}

func TestUpsertProfiles_Empty(t *testing.T) {
	s := setupTestDB(t)
	if err := s.UpsertProfiles(nil); err != nil {
		t.Errorf("expected nil error for empty batch, got %v", err)
	}
}
