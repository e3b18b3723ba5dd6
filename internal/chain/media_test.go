package chain_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"tuli_go/internal/chain"
	"tuli_go/internal/chain/chaintest"
	"tuli_go/internal/domain"
	"tuli_go/internal/signer"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	mediaAddr  = common.HexToAddress("0x1D7022f5B17d2F8B695918FB48fa1089C9f85401")
	marketAddr = common.HexToAddress("0x1dC4c1cEFEF38a777b15aA20260a54E584b16C48")
)

func mediaData(t *testing.T, content string) domain.MediaData {
	t.Helper()
	return domain.MediaData{
		TokenURI:     "https://example.com/" + content,
		MetadataURI:  "https://metadata.com/" + content,
		ContentHash:  domain.SHA256FromBytes([]byte(content)),
		MetadataHash: domain.SHA256FromBytes([]byte(`{"name":"` + content + `"}`)),
	}
}

func defaultShares(t *testing.T) domain.BidShares {
	t.Helper()
	shares, err := domain.ConstructBidShares(10, 90, 0)
	require.NoError(t, err)
	return shares
}

type fixture struct {
	ledger *chaintest.Ledger
	media  *chain.Media
	market *chain.Market
	tx     *chain.Transactor
	signer *signer.KeySigner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ledger := chaintest.NewLedger(50, mediaAddr, marketAddr)
	s, err := signer.GenerateKeySigner()
	require.NoError(t, err)
	return &fixture{
		ledger: ledger,
		media:  chain.NewMedia(mediaAddr, ledger),
		market: chain.NewMarket(marketAddr, ledger),
		tx:     chain.NewTransactor(ledger, s),
		signer: s,
	}
}

func (f *fixture) submit(t *testing.T, call chain.Call, err error) {
	t.Helper()
	require.NoError(t, err)
	gas, err := f.tx.Estimate(context.Background(), call)
	require.NoError(t, err)
	_, err = f.tx.Send(context.Background(), call, gas)
	require.NoError(t, err)
}

func TestMintPacksTuples(t *testing.T) {
	f := newFixture(t)
	md := mediaData(t, "invert")
	shares := defaultShares(t)

	call, err := f.media.Mint(md, shares)
	require.NoError(t, err)
	require.Equal(t, mediaAddr, call.To)
	require.Equal(t, "mint", call.Method)

	parsed := chain.ParsedMediaABI()
	method, err := parsed.MethodById(call.Data[:4])
	require.NoError(t, err)
	require.Equal(t, "mint", method.Name)

	args, err := method.Inputs.Unpack(call.Data[4:])
	require.NoError(t, err)
	gotData := *abi.ConvertType(args[0], new(chain.MediaDataTuple)).(*chain.MediaDataTuple)
	gotShares := *abi.ConvertType(args[1], new(chain.BidSharesTuple)).(*chain.BidSharesTuple)

	require.Equal(t, md, gotData.Domain())
	back, err := gotShares.Domain()
	require.NoError(t, err)
	require.True(t, back.Creator.Equal(shares.Creator))
	require.True(t, back.Owner.Equal(shares.Owner))
	require.True(t, back.PrevOwner.Equal(shares.PrevOwner))
}

func TestMediaReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	md := mediaData(t, "invert")

	call, err := f.media.Mint(md, defaultShares(t))
	f.submit(t, call, err)

	id := big.NewInt(0)
	owner, err := f.media.OwnerOf(ctx, id)
	require.NoError(t, err)
	require.Equal(t, f.signer.Address(), owner)

	creator, err := f.media.TokenCreator(ctx, id)
	require.NoError(t, err)
	require.Equal(t, f.signer.Address(), creator)

	balance, err := f.media.BalanceOf(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, int64(1), balance.Int64())

	supply, err := f.media.TotalSupply(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), supply.Int64())

	rec, err := f.media.Record(ctx, id)
	require.NoError(t, err)
	require.Equal(t, md.TokenURI, rec.TokenURI)
	require.Equal(t, md.MetadataURI, rec.MetadataURI)
	require.Equal(t, md.ContentHash, rec.ContentHash)
	require.Equal(t, md.MetadataHash, rec.MetadataHash)

	shares, err := f.market.BidSharesForToken(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "10000000000000000000", shares.Creator.RawString())

	ask, err := f.market.CurrentAskForToken(ctx, id)
	require.NoError(t, err)
	require.Zero(t, ask.Amount.Sign())

	market, err := f.media.MarketContract(ctx)
	require.NoError(t, err)
	require.Equal(t, marketAddr, market)
}

func TestMissingTokenMapsToNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.media.OwnerOf(ctx, big.NewInt(42))
	require.ErrorIs(t, err, domain.ErrMediaNotFound)

	_, err = f.media.Record(ctx, big.NewInt(42))
	require.ErrorIs(t, err, domain.ErrMediaNotFound)

	_, err = f.media.TokenURI(ctx, big.NewInt(42))
	require.ErrorIs(t, err, domain.ErrMediaNotFound)
}

func TestTransportErrorsAreRetriable(t *testing.T) {
	f := newFixture(t)
	f.ledger.SetTransportError(errors.New("connection refused"))

	_, err := f.media.TotalSupply(context.Background())
	require.Error(t, err)
	require.True(t, domain.IsRetriable(err))

	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, "totalSupply", netErr.Op)
}

func TestSendUsesGivenGasLimit(t *testing.T) {
	f := newFixture(t)
	call, err := f.media.Mint(mediaData(t, "gas"), defaultShares(t))
	require.NoError(t, err)

	_, err = f.tx.Send(context.Background(), call, 123_456)
	require.NoError(t, err)

	last := f.ledger.LastTransaction()
	require.NotNil(t, last)
	require.Equal(t, uint64(123_456), last.Gas())
	require.Equal(t, mediaAddr, *last.To())
}

func TestRevertIsFatal(t *testing.T) {
	f := newFixture(t)
	md := mediaData(t, "dup")
	call, err := f.media.Mint(md, defaultShares(t))
	f.submit(t, call, err)

	// Same content hash again.
	call, err = f.media.Mint(md, defaultShares(t))
	require.NoError(t, err)
	_, err = f.tx.Estimate(context.Background(), call)
	require.Error(t, err)
	require.False(t, domain.IsRetriable(err))
	require.Contains(t, err.Error(), "already been created")
}

func TestBidAndAcceptSettles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	call, err := f.media.Mint(mediaData(t, "sale"), defaultShares(t))
	f.submit(t, call, err)

	bidderKey, err := signer.GenerateKeySigner()
	require.NoError(t, err)
	bidderTx := chain.NewTransactor(f.ledger, bidderKey)

	bid := domain.Bid{
		Currency:    marketAddr,
		Amount:      domain.MustDecimal(100).Value(),
		Bidder:      bidderKey.Address(),
		Recipient:   bidderKey.Address(),
		SellOnShare: domain.MustDecimal(10),
	}
	id := big.NewInt(0)
	call, err = f.media.SetBid(id, bid)
	require.NoError(t, err)
	gas, err := bidderTx.Estimate(ctx, call)
	require.NoError(t, err)
	_, err = bidderTx.Send(ctx, call, gas)
	require.NoError(t, err)

	stored, err := f.market.BidForTokenBidder(ctx, id, bidderKey.Address())
	require.NoError(t, err)
	require.Zero(t, bid.Amount.Cmp(stored.Amount))

	call, err = f.media.AcceptBid(id, bid)
	f.submit(t, call, err)

	owner, err := f.media.OwnerOf(ctx, id)
	require.NoError(t, err)
	require.Equal(t, bidderKey.Address(), owner)

	prev, err := f.media.PreviousTokenOwner(ctx, id)
	require.NoError(t, err)
	require.Equal(t, f.signer.Address(), prev)

	shares, err := f.market.BidSharesForToken(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "10000000000000000000", shares.PrevOwner.RawString())
	require.Equal(t, "80000000000000000000", shares.Owner.RawString())
}
