package tuli

import (
	"context"
	"math/big"

	"tuli_go/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

func (c *Client) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return c.media.BalanceOf(ctx, owner)
}

func (c *Client) OwnerOf(ctx context.Context, mediaID *big.Int) (common.Address, error) {
	return c.media.OwnerOf(ctx, mediaID)
}

func (c *Client) Creator(ctx context.Context, mediaID *big.Int) (common.Address, error) {
	return c.media.TokenCreator(ctx, mediaID)
}

func (c *Client) PrevOwner(ctx context.Context, mediaID *big.Int) (common.Address, error) {
	return c.media.PreviousTokenOwner(ctx, mediaID)
}

func (c *Client) ContentHash(ctx context.Context, mediaID *big.Int) ([32]byte, error) {
	return c.media.ContentHash(ctx, mediaID)
}

func (c *Client) MetadataHash(ctx context.Context, mediaID *big.Int) ([32]byte, error) {
	return c.media.MetadataHash(ctx, mediaID)
}

func (c *Client) ContentURI(ctx context.Context, mediaID *big.Int) (string, error) {
	return c.media.TokenURI(ctx, mediaID)
}

func (c *Client) MetadataURI(ctx context.Context, mediaID *big.Int) (string, error) {
	return c.media.MetadataURI(ctx, mediaID)
}

func (c *Client) Approved(ctx context.Context, mediaID *big.Int) (common.Address, error) {
	return c.media.Approved(ctx, mediaID)
}

func (c *Client) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	return c.media.IsApprovedForAll(ctx, owner, operator)
}

func (c *Client) TotalMedia(ctx context.Context) (*big.Int, error) {
	return c.media.TotalSupply(ctx)
}

func (c *Client) MediaByIndex(ctx context.Context, index *big.Int) (*big.Int, error) {
	return c.media.TokenByIndex(ctx, index)
}

func (c *Client) MediaOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	return c.media.TokenOfOwnerByIndex(ctx, owner, index)
}

func (c *Client) MintWithSigNonce(ctx context.Context, creator common.Address) (*big.Int, error) {
	return c.media.MintWithSigNonce(ctx, creator)
}

func (c *Client) PermitNonce(ctx context.Context, owner common.Address, mediaID *big.Int) (*big.Int, error) {
	return c.media.PermitNonce(ctx, owner, mediaID)
}

func (c *Client) CurrentBidShares(ctx context.Context, mediaID *big.Int) (domain.BidShares, error) {
	return c.market.BidSharesForToken(ctx, mediaID)
}

func (c *Client) CurrentAsk(ctx context.Context, mediaID *big.Int) (domain.Ask, error) {
	return c.market.CurrentAskForToken(ctx, mediaID)
}

func (c *Client) CurrentBidForBidder(ctx context.Context, mediaID *big.Int, bidder common.Address) (domain.Bid, error) {
	return c.market.BidForTokenBidder(ctx, mediaID, bidder)
}
