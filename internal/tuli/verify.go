package tuli

import (
	"context"
	"log/slog"
	"math/big"

	"tuli_go/internal/domain"
	"tuli_go/internal/verify"
)

// IsVerifiedMedia re-fetches a media's content and metadata and reports
// whether both still hash to the digests recorded on the ledger.
func (c *Client) IsVerifiedMedia(ctx context.Context, mediaID *big.Int) (bool, error) {
	report, _, err := c.VerifyMedia(ctx, mediaID)
	if err != nil {
		return false, err
	}
	return report.Verified(), nil
}

// VerifyMedia is IsVerifiedMedia with the full report and ledger record.
func (c *Client) VerifyMedia(ctx context.Context, mediaID *big.Int) (verify.Report, domain.MediaRecord, error) {
	rec, err := c.media.Record(ctx, mediaID)
	if err != nil {
		c.metrics.Verification("error")
		return verify.Report{}, domain.MediaRecord{}, err
	}
	report, err := c.verifier.Check(ctx, rec)
	if err != nil {
		c.metrics.Verification("error")
		return verify.Report{}, rec, err
	}

	outcome := "verified"
	if !report.Verified() {
		outcome = "mismatch"
	}
	c.metrics.Verification(outcome)
	c.logger.Info("media verified",
		slog.String("id", mediaID.String()),
		slog.String("outcome", outcome),
	)
	return report, rec, nil
}
