package domain

import (
	"time"
)

// VerificationRecord is one content verification outcome for a media id.
type VerificationRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ChainID      int64     `gorm:"index:idx_media" json:"chain_id"`
	MediaAddress string    `gorm:"index:idx_media" json:"media_address"`
	MediaID      string    `gorm:"index:idx_media" json:"media_id"` // decimal token id
	TokenURI     string    `json:"token_uri"`
	MetadataURI  string    `json:"metadata_uri"`
	ContentHash  string    `json:"content_hash"`
	MetadataHash string    `json:"metadata_hash"`
	Verified     bool      `json:"verified" gorm:"index"`
	PreviewPath  string    `json:"preview_path"`
	CheckedAt    time.Time `json:"checked_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileRecord caches a user profile returned by the profile service.
type ProfileRecord struct {
	Address   string    `gorm:"primaryKey" json:"address"` // lower-case hex
	Payload   string    `json:"payload"`                   // raw JSON object
	FetchedAt time.Time `json:"fetched_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
