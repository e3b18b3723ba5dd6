package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"tuli_go/internal/chain"
	"tuli_go/internal/domain"
	"tuli_go/internal/infra"
	"tuli_go/internal/infra/storage"
	"tuli_go/internal/signer"
	"tuli_go/internal/tuli"
	"tuli_go/internal/verify"

	"github.com/ethereum/go-ethereum/ethclient"
)

// DefaultConfigPath is where Initialize looks when no path is given.
const DefaultConfigPath = "configs/config.yaml"

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config   *infra.Config
	Metrics  *infra.Metrics
	Storage  *storage.Storage       // nil when storage.path is empty
	Previews *infra.PreviewRenderer // nil when preview.dir is empty
	Profiles *infra.ProfileClient
	Client   *tuli.Client

	// Fetcher overrides the HTTP content fetcher, mainly for tests.
	Fetcher domain.ContentFetcher

	configPath string
	rpc        *ethclient.Client
	http       *verify.HTTPFetcher
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap(configPath string) *Bootstrap {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return &Bootstrap{configPath: configPath}
}

// Initialize loads the configuration, dials the ledger and wires every component.
func (b *Bootstrap) Initialize(ctx context.Context) error {
	cfg, err := infra.LoadConfig(b.configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	slog.SetDefault(infra.NewLogger(cfg))
	slog.Info("Bootstrapping tuli", slog.String("version", cfg.App.Version))

	rpc, err := chain.Dial(ctx, cfg.Network.RPCURL)
	if err != nil {
		return err
	}
	b.rpc = rpc
	slog.Info("Ledger connected", slog.Int64("chain_id", cfg.Network.ChainID))

	return b.Wire(rpc)
}

// Wire builds storage, previews, the profile client and the protocol client
// on top of an existing ledger backend. Config must already be set.
func (b *Bootstrap) Wire(backend chain.Backend) error {
	cfg := b.Config
	if cfg == nil {
		return &domain.ConfigError{Field: "config", Err: domain.ErrConfigNotFound}
	}
	logger := slog.Default()

	b.Metrics = infra.NewMetrics()

	if cfg.Storage.Path != "" {
		store, err := storage.NewStorage(cfg.Storage.Path)
		if err != nil {
			return err
		}
		b.Storage = store
		slog.Info("Database initialized", slog.String("path", cfg.Storage.Path))
	}

	if cfg.Preview.Dir != "" {
		previews, err := infra.NewPreviewRenderer(cfg.Preview.Dir, cfg.Preview.Size)
		if err != nil {
			return err
		}
		b.Previews = previews
	}

	profileOpts := []infra.ProfileOption{
		infra.WithProfileMetrics(b.Metrics),
		infra.WithProfileLogger(logger),
	}
	if b.Storage != nil {
		profileOpts = append(profileOpts, infra.WithProfileStore(b.Storage))
	}
	b.Profiles = infra.NewProfileClient(
		cfg.Profiles.URL,
		time.Duration(cfg.Profiles.TimeoutSec)*time.Second,
		cfg.Profiles.RequestsPerSec,
		profileOpts...,
	)

	fetcher := b.Fetcher
	if fetcher == nil {
		b.http = verify.NewHTTPFetcher(time.Duration(cfg.Content.TimeoutSec)*time.Second, cfg.Content.MaxBytes)
		fetcher = b.http
	}

	opts := []tuli.Option{
		tuli.WithAddresses(cfg.Network.MediaAddress, cfg.Network.MarketAddress),
		tuli.WithVerifier(verify.New(fetcher).WithLogger(logger)),
		tuli.WithMetrics(b.Metrics),
		tuli.WithLogger(logger),
	}
	if cfg.Network.AddressBookPath != "" {
		book, err := infra.LoadAddressBook(cfg.Network.AddressBookPath)
		if err != nil {
			return err
		}
		opts = append(opts, tuli.WithAddressBook(book))
	}
	if cfg.Network.DomainChainID != 0 {
		opts = append(opts, tuli.WithDomainChainID(cfg.Network.DomainChainID))
	}

	id := tuli.ReadOnly(backend)
	if !cfg.ReadOnly() {
		s, err := signer.NewKeySignerFromHex(cfg.Signer.PrivateKey)
		if err != nil {
			return &domain.ConfigError{Field: "signer.private_key", Err: err}
		}
		id = tuli.Authenticated(backend, s)
	}

	client, err := tuli.New(id, cfg.Network.ChainID, opts...)
	if err != nil {
		return err
	}
	b.Client = client

	network, _ := infra.NetworkName(cfg.Network.ChainID)
	slog.Info("Protocol client ready",
		slog.String("network", network),
		slog.String("media", client.MediaAddress().Hex()),
		slog.String("market", client.MarketAddress().Hex()),
		slog.Bool("read_only", client.ReadOnly()),
	)
	return nil
}

// VerifyAndRecord verifies a media, renders a preview of verified image
// content and appends the outcome to the verification history.
func (b *Bootstrap) VerifyAndRecord(ctx context.Context, mediaID *big.Int) (*domain.VerificationRecord, error) {
	if b.Client == nil {
		return nil, errors.New("bootstrap not initialized")
	}
	report, rec, err := b.Client.VerifyMedia(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	out := &domain.VerificationRecord{
		ChainID:      b.Client.ChainID(),
		MediaAddress: strings.ToLower(b.Client.MediaAddress().Hex()),
		MediaID:      mediaID.String(),
		TokenURI:     rec.TokenURI,
		MetadataURI:  rec.MetadataURI,
		ContentHash:  domain.HashHex(rec.ContentHash),
		MetadataHash: domain.HashHex(rec.MetadataHash),
		Verified:     report.Verified(),
		CheckedAt:    time.Now().UTC(),
	}

	if out.Verified && b.Previews != nil && infra.IsImage(report.Content) {
		path, err := b.Previews.Render(rec.ContentHash, report.Content)
		if err != nil {
			slog.Warn("Preview render failed", slog.String("id", out.MediaID), slog.Any("error", err))
		} else {
			out.PreviewPath = path
		}
	}

	if b.Storage != nil {
		if err := b.Storage.SaveVerification(out); err != nil {
			return out, fmt.Errorf("save verification: %w", err)
		}
	}
	return out, nil
}

// LogMetrics writes a snapshot of all counters at info level.
func (b *Bootstrap) LogMetrics() {
	if b.Metrics == nil {
		return
	}
	snap, err := b.Metrics.Snapshot()
	if err != nil {
		slog.Warn("Metrics snapshot failed", slog.Any("error", err))
		return
	}
	attrs := make([]any, 0, len(snap.Counters))
	for name, v := range snap.Counters {
		attrs = append(attrs, slog.Float64(name, v))
	}
	slog.Info("Metrics", attrs...)
}

// Close releases the ledger connection, idle HTTP connections and the database.
func (b *Bootstrap) Close() {
	if b.rpc != nil {
		b.rpc.Close()
	}
	if b.http != nil {
		b.http.CloseIdleConnections()
	}
	if b.Storage != nil {
		if err := b.Storage.Close(); err != nil {
			slog.Warn("Database close failed", slog.Any("error", err))
		}
	}
}
