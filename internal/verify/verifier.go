// Package verify checks that off-ledger content still matches the digests
// recorded at mint time.
package verify

import (
	"context"
	"crypto/sha256"
	"errors"
	"log/slog"

	"tuli_go/internal/domain"

	"golang.org/x/sync/errgroup"
)

// Report is the full outcome of one verification.
type Report struct {
	TokenURI         string
	MetadataURI      string
	ExpectedContent  [32]byte
	ActualContent    [32]byte
	ExpectedMetadata [32]byte
	ActualMetadata   [32]byte
	// Content is the fetched token payload, kept for previews.
	Content []byte
}

func (r Report) ContentMatches() bool  { return r.ExpectedContent == r.ActualContent }
func (r Report) MetadataMatches() bool { return r.ExpectedMetadata == r.ActualMetadata }
func (r Report) Verified() bool        { return r.ContentMatches() && r.MetadataMatches() }

// Verifier fetches and hashes media payloads.
type Verifier struct {
	fetcher domain.ContentFetcher
	logger  *slog.Logger
}

func New(fetcher domain.ContentFetcher) *Verifier {
	return &Verifier{
		fetcher: fetcher,
		logger:  slog.Default().With(slog.String("module", "verify")),
	}
}

// WithLogger returns a copy of v logging to logger.
func (v *Verifier) WithLogger(logger *slog.Logger) *Verifier {
	cp := *v
	cp.logger = logger.With(slog.String("module", "verify"))
	return &cp
}

// Check fetches both URIs of rec concurrently and hashes them. A digest
// mismatch is reported in the Report, not as an error.
func (v *Verifier) Check(ctx context.Context, rec domain.MediaRecord) (Report, error) {
	report := Report{
		TokenURI:         rec.TokenURI,
		MetadataURI:      rec.MetadataURI,
		ExpectedContent:  rec.ContentHash,
		ExpectedMetadata: rec.MetadataHash,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := v.fetch(gctx, rec.TokenURI)
		if err != nil {
			return err
		}
		report.Content = body
		report.ActualContent = sha256.Sum256(body)
		return nil
	})
	g.Go(func() error {
		body, err := v.fetch(gctx, rec.MetadataURI)
		if err != nil {
			return err
		}
		report.ActualMetadata = sha256.Sum256(body)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	v.logger.Debug("media checked",
		slog.String("id", idString(rec)),
		slog.Bool("content_match", report.ContentMatches()),
		slog.Bool("metadata_match", report.MetadataMatches()),
	)
	return report, nil
}

// Verify reports whether both payloads hash to the recorded digests.
func (v *Verifier) Verify(ctx context.Context, rec domain.MediaRecord) (bool, error) {
	report, err := v.Check(ctx, rec)
	if err != nil {
		return false, err
	}
	return report.Verified(), nil
}

// VerifyURI checks a single payload against an expected digest.
func (v *Verifier) VerifyURI(ctx context.Context, uri string, expected [32]byte) (bool, error) {
	body, err := v.fetch(ctx, uri)
	if err != nil {
		return false, err
	}
	return sha256.Sum256(body) == expected, nil
}

func (v *Verifier) fetch(ctx context.Context, uri string) ([]byte, error) {
	body, err := v.fetcher.Fetch(ctx, uri)
	if err == nil {
		return body, nil
	}
	var netErr *domain.NetworkError
	if errors.As(err, &netErr) {
		return nil, err
	}
	return nil, domain.NewNetworkError("fetch", err)
}

func idString(rec domain.MediaRecord) string {
	if rec.ID == nil {
		return ""
	}
	return rec.ID.String()
}
