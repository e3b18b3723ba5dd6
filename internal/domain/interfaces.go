package domain

import (
	"context"
)

// ContentFetcher retrieves the raw bytes behind a token or metadata URI.
type ContentFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// VerificationRepository persists verification outcomes.
type VerificationRepository interface {
	SaveVerification(rec *VerificationRecord) error
	LatestVerification(chainID int64, mediaAddress, mediaID string) (*VerificationRecord, error)
}

// ProfileRepository caches profile service answers.
type ProfileRepository interface {
	UpsertProfiles(recs []ProfileRecord) error
	GetProfile(address string) (*ProfileRecord, error)
}
