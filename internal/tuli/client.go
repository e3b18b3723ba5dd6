// Package tuli is the protocol client: it validates inputs locally, then
// reads from or submits transactions to the media and market contracts.
package tuli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"strings"

	"tuli_go/internal/chain"
	"tuli_go/internal/domain"
	"tuli_go/internal/infra"
	"tuli_go/internal/signer"
	"tuli_go/internal/verify"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// LocalChainID is the development chain id. Its chainid opcode reports 1,
// so typed-message domains built for it use 1.
const LocalChainID = 50

// Identity is how the client talks to the ledger: read-only through a
// backend, or authenticated with a signer as well.
type Identity struct {
	backend chain.Backend
	auth    signer.Signer
}

// ReadOnly builds an identity that can only read.
func ReadOnly(backend chain.Backend) Identity {
	return Identity{backend: backend}
}

// Authenticated builds an identity that can sign and submit transactions.
func Authenticated(backend chain.Backend, s signer.Signer) Identity {
	return Identity{backend: backend, auth: s}
}

// AddressBook resolves official deployments by chain id.
type AddressBook interface {
	Lookup(chainID int64) (media, market common.Address, ok bool)
}

// Metrics receives client activity. *infra.Metrics satisfies it.
type Metrics interface {
	TxSubmitted(method string, gasLimit uint64)
	ReadOnlyRejected(method string)
	Verification(outcome string)
}

type nopMetrics struct{}

func (nopMetrics) TxSubmitted(string, uint64) {}
func (nopMetrics) ReadOnlyRejected(string) {}
func (nopMetrics) Verification(string) {}

type options struct {
	media         string
	market        string
	book          AddressBook
	verifier      *verify.Verifier
	metrics       Metrics
	logger        *slog.Logger
	domainChainID int64
}

// Option configures a Client.
type Option func(*options)

// WithAddresses pins the media and market contracts. Both or neither.
func WithAddresses(media, market string) Option {
	return func(o *options) {
		o.media = strings.TrimSpace(media)
		o.market = strings.TrimSpace(market)
	}
}

// WithAddressBook replaces the embedded deployment list.
func WithAddressBook(book AddressBook) Option {
	return func(o *options) { o.book = book }
}

// WithVerifier sets the content verifier used by IsVerifiedMedia.
func WithVerifier(v *verify.Verifier) Option {
	return func(o *options) { o.verifier = v }
}

func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDomainChainID overrides the chain id bound into typed messages.
func WithDomainChainID(id int64) Option {
	return func(o *options) { o.domainChainID = id }
}

// Client is the protocol facade. It holds no mutable state after New.
type Client struct {
	chainID       int64
	domainChainID int64
	readOnly      bool

	backend  chain.Backend
	auth     signer.Signer
	media    *chain.Media
	market   *chain.Market
	tx       *chain.Transactor
	verifier *verify.Verifier
	metrics  Metrics
	logger   *slog.Logger
}

// New validates the configuration and builds a client for chainID.
// Without WithAddresses the deployment comes from the address book.
func New(id Identity, chainID int64, opts ...Option) (*Client, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if id.backend == nil {
		return nil, &domain.ConfigError{Field: "backend", Err: errors.New("ledger backend required")}
	}

	mediaAddr, marketAddr, err := resolveAddresses(chainID, o)
	if err != nil {
		return nil, err
	}

	c := &Client{
		chainID:       chainID,
		domainChainID: DomainChainID(chainID),
		readOnly:      id.auth == nil,
		backend:       id.backend,
		auth:          id.auth,
		media:         chain.NewMedia(mediaAddr, id.backend),
		market:        chain.NewMarket(marketAddr, id.backend),
		verifier:      o.verifier,
		metrics:       o.metrics,
		logger:        o.logger,
	}
	if o.domainChainID != 0 {
		c.domainChainID = o.domainChainID
	}
	if !c.readOnly {
		c.tx = chain.NewTransactor(id.backend, id.auth)
	}
	if c.verifier == nil {
		c.verifier = verify.New(verify.NewHTTPFetcher(0, 0))
	}
	if c.metrics == nil {
		c.metrics = nopMetrics{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With(slog.String("module", "tuli"))
	return c, nil
}

func resolveAddresses(chainID int64, o options) (common.Address, common.Address, error) {
	if (o.media == "") != (o.market == "") {
		return common.Address{}, common.Address{}, &domain.ConfigError{Field: "addresses", Err: domain.ErrAddressPairing}
	}
	if o.media != "" {
		if !common.IsHexAddress(o.media) {
			return common.Address{}, common.Address{}, &domain.ConfigError{
				Field: "media", Err: fmt.Errorf("%s is %w", o.media, domain.ErrInvalidAddress)}
		}
		if !common.IsHexAddress(o.market) {
			return common.Address{}, common.Address{}, &domain.ConfigError{
				Field: "market", Err: fmt.Errorf("%s is %w", o.market, domain.ErrInvalidAddress)}
		}
		return common.HexToAddress(o.media), common.HexToAddress(o.market), nil
	}

	book := o.book
	if book == nil {
		book = infra.DefaultAddressBook()
	}
	media, market, ok := book.Lookup(chainID)
	if !ok {
		return common.Address{}, common.Address{}, &domain.ConfigError{
			Field: "chain_id", Err: fmt.Errorf("chain id %d: %w", chainID, domain.ErrUnsupportedChain)}
	}
	return media, market, nil
}

// DomainChainID maps a configured chain id to the one bound into typed messages.
func DomainChainID(chainID int64) int64 {
	if chainID == LocalChainID {
		return 1
	}
	return chainID
}

// ChainID is the configured protocol chain id.
func (c *Client) ChainID() int64 { return c.chainID }

// ReadOnly reports whether the client lacks a signer.
func (c *Client) ReadOnly() bool { return c.readOnly }

func (c *Client) MediaAddress() common.Address { return c.media.Address() }
func (c *Client) MarketAddress() common.Address { return c.market.Address() }

// Signer returns the authenticated signer, or nil for read-only clients.
func (c *Client) Signer() signer.Signer { return c.auth }

// EIP712Domain is the typed-message domain: protocol name and version,
// the domain chain id and the media contract as verifying contract.
func (c *Client) EIP712Domain() signer.Domain {
	return signer.NewDomain(c.domainChainID, c.media.Address())
}

// NetworkChainID asks the node which chain it serves. Transactions are
// signed for this id.
func (c *Client) NetworkChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, domain.NewNetworkError("chainId", err)
	}
	return id, nil
}

func (c *Client) ensureNotReadOnly(method string) error {
	if c.readOnly {
		c.metrics.ReadOnlyRejected(method)
		return domain.ErrReadOnly
	}
	return nil
}

// padGasLimit adds 10% to a node estimate, rounding down. The result
// saturates at math.MaxUint64.
func padGasLimit(estimate uint64) uint64 {
	pad := estimate / 10
	if estimate > math.MaxUint64-pad {
		return math.MaxUint64
	}
	return estimate + pad
}

func (c *Client) submit(ctx context.Context, call chain.Call) (*types.Transaction, error) {
	estimate, err := c.tx.Estimate(ctx, call)
	if err != nil {
		return nil, err
	}
	limit := padGasLimit(estimate)
	tx, err := c.tx.Send(ctx, call, limit)
	if err != nil {
		return nil, err
	}
	c.metrics.TxSubmitted(call.Method, limit)
	c.logger.Info("transaction submitted",
		slog.String("method", call.Method),
		slog.String("hash", tx.Hash().Hex()),
		slog.Uint64("gas_estimate", estimate),
		slog.Uint64("gas_limit", limit),
	)
	return tx, nil
}
